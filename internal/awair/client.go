// Package awair is the client for the Awair developer API. The bearer token
// is static; there is no refresh flow.
package awair

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"roombridge/internal/logger"
	"roombridge/internal/models"
	"roombridge/internal/transport"
)

const (
	vendor         = "awair"
	defaultBaseURL = "https://developer-apis.awair.is"

	// The 15-minute averages smooth single-sample noise; four records cover
	// the last hour.
	avgWindow   = "15-min-avg"
	recordLimit = 4

	// A sensor whose newest record is older than two averaging windows has
	// stopped reporting; its data must not drive an adjustment.
	staleAfter = 30 * time.Minute

	requestTimeout = 20 * time.Second
)

var errNoRecentReading = errors.New("no recent reading")

// Client reads temperatures from a single Awair account.
type Client struct {
	http       *http.Client
	baseURL    string
	token      string
	deviceType string
	retry      transport.Policy
	log        *logger.Logger
}

// NewClient builds a sensor client. An empty baseURL selects the production
// API; tests point it at a local server.
func NewClient(token, deviceType, baseURL string, retry transport.Policy, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		http:       &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		token:      token,
		deviceType: deviceType,
		retry:      retry,
		log:        log,
	}
}

type sensorData struct {
	Comp  string  `json:"comp"`
	Value float64 `json:"value"`
}

type record struct {
	Timestamp string       `json:"timestamp"`
	Sensors   []sensorData `json:"sensors"`
}

type airData struct {
	Data []record `json:"data"`
}

// GetTemperature returns the average of the latest 15-minute temperature
// records for the device. A sensor that has not reported recently yields a
// DeviceError and the tick is skipped.
func (c *Client) GetTemperature(ctx context.Context, deviceID string) (models.Reading, error) {
	url := fmt.Sprintf("%s/v1/users/self/devices/%s/%s/air-data/%s?limit=%d",
		c.baseURL, c.deviceType, deviceID, avgWindow, recordLimit)

	var payload airData
	err := c.retry.Do(ctx, func() error {
		return c.fetch(ctx, url, deviceID, &payload)
	})
	if err != nil {
		return models.Reading{}, err
	}

	temp, err := averageTemp(payload.Data)
	if err != nil {
		return models.Reading{}, &transport.DeviceError{Vendor: vendor, DeviceID: deviceID, Err: err}
	}

	observed := latestTimestamp(payload.Data)
	if time.Since(observed) > staleAfter {
		return models.Reading{}, &transport.DeviceError{
			Vendor:   vendor,
			DeviceID: deviceID,
			Err:      fmt.Errorf("%w: newest record at %s", errNoRecentReading, observed.Format(time.RFC3339)),
		}
	}

	return models.Reading{
		DeviceID:    deviceID,
		Temperature: temp,
		ObservedAt:  observed,
	}, nil
}

// fetch performs one authenticated GET and classifies the outcome.
func (c *Client) fetch(ctx context.Context, url, deviceID string, out *airData) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &transport.TransportError{Vendor: vendor, Op: "get air-data", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return &transport.TransportError{Vendor: vendor, Op: "get air-data", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		var decoded airData
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return &transport.TransportError{Vendor: vendor, Op: "decode air-data", Err: err}
		}
		*out = decoded
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// A static token does not expire; rejection means misconfiguration.
		return &transport.AuthError{Vendor: vendor, Op: "get air-data", Err: httpError(resp)}
	case resp.StatusCode == http.StatusNotFound:
		return &transport.DeviceError{Vendor: vendor, DeviceID: deviceID, Err: httpError(resp)}
	case transport.StatusTransient(resp.StatusCode):
		return &transport.TransportError{Vendor: vendor, Op: "get air-data", Err: httpError(resp)}
	default:
		return &transport.DeviceError{Vendor: vendor, DeviceID: deviceID, Err: httpError(resp)}
	}
}

// averageTemp averages the "temp" component over all records.
func averageTemp(records []record) (float64, error) {
	if len(records) == 0 {
		return 0, errNoRecentReading
	}
	sum := 0.0
	count := 0
	for _, r := range records {
		for _, s := range r.Sensors {
			if s.Comp == "temp" {
				sum += s.Value
				count++
				break
			}
		}
	}
	if count == 0 {
		return 0, errors.New("temp component missing from sensor data")
	}
	return sum / float64(count), nil
}

// latestTimestamp parses the newest record's timestamp, falling back to now.
func latestTimestamp(records []record) time.Time {
	if len(records) > 0 {
		if ts, err := time.Parse(time.RFC3339, records[0].Timestamp); err == nil {
			return ts
		}
	}
	return time.Now().UTC()
}

func httpError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(body) == 0 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	return fmt.Errorf("http %d: %s", resp.StatusCode, body)
}
