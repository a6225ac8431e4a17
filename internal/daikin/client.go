// Package daikin is the client for the Daikin Skyport cloud API. It owns the
// session tokens; callers never see them.
package daikin

import (
	"bytes"
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
	vendor         = "daikin"
	defaultBaseURL = "https://api.daikinskyport.com"

	// Refresh proactively when the access token has less than this left.
	expiryMargin = 60 * time.Second

	requestTimeout = 20 * time.Second
)

// Client talks to the Skyport API on behalf of one account.
type Client struct {
	http     *http.Client
	baseURL  string
	email    string
	password string
	retry    transport.Policy
	log      *logger.Logger

	// Session state. Exclusively owned; ticks are sequential, so no lock.
	sess session
}

type session struct {
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// NewClient builds a thermostat client. An empty baseURL selects the
// production API; tests point it at a local server.
func NewClient(email, password, baseURL string, retry transport.Policy, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		http:     &http.Client{Timeout: requestTimeout},
		baseURL:  baseURL,
		email:    email,
		password: password,
		retry:    retry,
		log:      log,
	}
}

// ---- wire shapes ----

type loginResult struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"accessTokenExpiresIn"`
	RefreshTok  string `json:"refreshToken"`
	TokenType   string `json:"tokenType"`
}

type deviceEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Skyport reports its mode as a small integer.
const (
	vendorModeOff  = 0
	vendorModeHeat = 1
	vendorModeCool = 2
	vendorModeAuto = 3
)

type deviceData struct {
	Mode       int     `json:"mode"`
	CoolSP     float64 `json:"cspHome"`
	HeatSP     float64 `json:"hspHome"`
	TempIndoor float64 `json:"tempIndoor"`
}

type setpointUpdate struct {
	HeatSP                float64 `json:"hspHome"`
	CoolSP                float64 `json:"cspHome"`
	SchedOverride         int     `json:"schedOverride"`
	SchedOverrideDuration int     `json:"schedOverrideDuration"`
}

// ---- public operations ----

// Authenticate exchanges credentials for a session. Invalid credentials are
// fatal; transient upstream failures are retried.
func (c *Client) Authenticate(ctx context.Context) error {
	return c.login(ctx)
}

// ResolveDevice returns the device id to control. If configured is empty the
// account's first device is used, matching the original operator workflow.
func (c *Client) ResolveDevice(ctx context.Context, configured string) (string, error) {
	var devices []deviceEntry
	if err := c.authorized(ctx, http.MethodGet, "/devices", nil, &devices); err != nil {
		return "", mapReadError(err, configured)
	}
	if len(devices) == 0 {
		return "", &transport.DeviceError{Vendor: vendor, DeviceID: configured, Err: errors.New("no devices on account")}
	}
	if configured == "" {
		if c.log != nil {
			c.log.Infow("no thermostat device configured, using first",
				"device_id", devices[0].ID, "name", devices[0].Name)
		}
		return devices[0].ID, nil
	}
	for _, d := range devices {
		if d.ID == configured {
			return d.ID, nil
		}
	}
	return "", &transport.DeviceError{Vendor: vendor, DeviceID: configured, Err: errors.New("device not on account")}
}

// GetState reads the device's mode, setpoints and indoor temperature.
func (c *Client) GetState(ctx context.Context, deviceID string) (models.ThermostatState, error) {
	var data deviceData
	if err := c.authorized(ctx, http.MethodGet, "/deviceData/"+deviceID, nil, &data); err != nil {
		return models.ThermostatState{}, mapReadError(err, deviceID)
	}
	return models.ThermostatState{
		DeviceID:     deviceID,
		Mode:         modeFromVendor(data.Mode),
		HeatSetpoint: data.HeatSP,
		CoolSetpoint: data.CoolSP,
		IndoorTemp:   data.TempIndoor,
		RetrievedAt:  time.Now().UTC(),
	}, nil
}

// SetSetpoints writes both setpoints as a schedule override, the only write
// the bridge ever issues.
func (c *Client) SetSetpoints(ctx context.Context, deviceID string, heat, cool float64, overrideMinutes int) error {
	body := setpointUpdate{
		HeatSP:                heat,
		CoolSP:                cool,
		SchedOverride:         1,
		SchedOverrideDuration: overrideMinutes,
	}
	if err := c.authorized(ctx, http.MethodPut, "/deviceData/"+deviceID, body, nil); err != nil {
		return mapWriteError(err, deviceID)
	}
	return nil
}

// ---- session management ----

// ensureValidSession logs in lazily and refreshes ahead of expiry.
func (c *Client) ensureValidSession(ctx context.Context) error {
	if c.sess.accessToken == "" {
		return c.login(ctx)
	}
	if time.Until(c.sess.expiresAt) < expiryMargin {
		return c.refresh(ctx)
	}
	return nil
}

func (c *Client) login(ctx context.Context) error {
	body := map[string]string{"email": c.email, "password": c.password}
	var result loginResult
	err := c.retry.Do(ctx, func() error {
		return c.send(ctx, http.MethodPost, "/users/auth/login", "", body, &result)
	})
	if err != nil {
		return asAuthFailure("login", err)
	}
	if result.RefreshTok == "" {
		return &transport.AuthError{Vendor: vendor, Op: "login", Err: errors.New("no refresh token returned")}
	}
	c.sess = session{
		accessToken:  result.AccessToken,
		refreshToken: result.RefreshTok,
		expiresAt:    time.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
	}
	if c.log != nil {
		c.log.Debugw("session established", "expires_in_s", result.ExpiresIn)
	}
	return nil
}

func (c *Client) refresh(ctx context.Context) error {
	body := map[string]string{"email": c.email, "refreshToken": c.sess.refreshToken}
	var result loginResult
	err := c.retry.Do(ctx, func() error {
		return c.send(ctx, http.MethodPost, "/users/auth/token", "", body, &result)
	})
	if err != nil {
		return asAuthFailure("refresh", err)
	}
	c.sess.accessToken = result.AccessToken
	c.sess.expiresAt = time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	if result.RefreshTok != "" {
		c.sess.refreshToken = result.RefreshTok
	}
	if c.log != nil {
		c.log.Debugw("session refreshed", "expires_in_s", result.ExpiresIn)
	}
	return nil
}

// authorized runs one API call with the session token. An auth-expired reply
// triggers exactly one refresh-and-retry; a second rejection is fatal.
func (c *Client) authorized(ctx context.Context, method, path string, body, out any) error {
	if err := c.ensureValidSession(ctx); err != nil {
		return err
	}
	err := c.retry.Do(ctx, func() error {
		return c.send(ctx, method, path, c.sess.accessToken, body, out)
	})
	if !errors.Is(err, transport.ErrAuthExpired) {
		return err
	}
	if err := c.refresh(ctx); err != nil {
		return err
	}
	err = c.retry.Do(ctx, func() error {
		return c.send(ctx, method, path, c.sess.accessToken, body, out)
	})
	if errors.Is(err, transport.ErrAuthExpired) {
		return &transport.AuthError{Vendor: vendor, Op: method + " " + path, Err: errors.New("token rejected after refresh")}
	}
	return err
}

// ---- transport ----

// statusError carries a permanent non-auth vendor rejection for the caller
// to map onto the domain taxonomy.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.code, e.message)
}

type apiError struct {
	Message string `json:"message"`
}

// send performs one HTTP round trip and classifies the response.
func (c *Client) send(ctx context.Context, method, path, token string, body, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &transport.TransportError{Vendor: vendor, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &transport.TransportError{Vendor: vendor, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &transport.TransportError{Vendor: vendor, Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return transport.ErrAuthExpired
	case transport.StatusTransient(resp.StatusCode):
		return &transport.TransportError{Vendor: vendor, Op: op, Err: errors.New(readMessage(resp))}
	default:
		return &statusError{code: resp.StatusCode, message: readMessage(resp)}
	}
}

// readMessage extracts the vendor's error message, falling back to the
// status text.
func readMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	var e apiError
	if err := json.Unmarshal(raw, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("http %d", resp.StatusCode)
}

// ---- error mapping ----

// asAuthFailure converts login/refresh rejections into fatal AuthErrors
// while leaving transient failures retryable by the caller's policy.
func asAuthFailure(op string, err error) error {
	if transport.IsTransient(err) {
		return err
	}
	var se *statusError
	if errors.As(err, &se) {
		return &transport.AuthError{Vendor: vendor, Op: op, Err: se}
	}
	if errors.Is(err, transport.ErrAuthExpired) {
		return &transport.AuthError{Vendor: vendor, Op: op, Err: errors.New("credentials rejected")}
	}
	return err
}

func mapReadError(err error, deviceID string) error {
	var se *statusError
	if errors.As(err, &se) {
		return &transport.DeviceError{Vendor: vendor, DeviceID: deviceID, Err: se}
	}
	return err
}

func mapWriteError(err error, deviceID string) error {
	var se *statusError
	if errors.As(err, &se) {
		if se.code == http.StatusNotFound {
			return &transport.DeviceError{Vendor: vendor, DeviceID: deviceID, Err: se}
		}
		return &transport.ValidationError{Vendor: vendor, Op: "set setpoints", Err: se}
	}
	return err
}

func modeFromVendor(m int) string {
	switch m {
	case vendorModeHeat:
		return models.ModeHeat
	case vendorModeCool:
		return models.ModeCool
	case vendorModeAuto:
		return models.ModeAuto
	case vendorModeOff:
		return models.ModeOff
	default:
		return models.ModeOff
	}
}
