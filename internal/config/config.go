// Package config loads and validates the bridge configuration. The loaded
// Config is immutable for the lifetime of the process.
package config

import (
	"errors"
	"fmt"
	"time"

	"roombridge/internal/schedule"

	"github.com/spf13/viper"
)

// Step policies the engine accepts.
const (
	PolicyFixed        = "fixed"
	PolicyProportional = "proportional"
)

const (
	defaultAwairDeviceType  = "awair"
	defaultPollInterval     = 60
	defaultOverrideDuration = 60
	defaultTokenTTL         = 60
	defaultLogLevel         = "info"
)

// Operator is the single account allowed to use the ops API.
type Operator struct {
	Username     string
	PasswordHash string // bcrypt
	SigningKey   string
	TokenTTL     time.Duration
}

// Config carries everything the bridge needs: vendor credentials, the
// control policy, and the ops surface settings.
type Config struct {
	// Thermostat vendor (Daikin Skyport).
	Email              string
	Password           string
	ThermostatDeviceID string
	DaikinBaseURL      string

	// Sensor vendor (Awair).
	AwairToken      string
	SensorDeviceID  string
	AwairDeviceType string
	AwairBaseURL    string

	// Control policy.
	DesiredTemperature float64
	Tolerance          float64
	PollInterval       time.Duration
	MinSetpoint        float64
	MaxSetpoint        float64
	StepSize           float64
	StepPolicy         string
	Window             schedule.Window
	OverrideDuration   int // minutes the thermostat holds a written setpoint

	// Ops surface.
	Port     string
	LogLevel string
	DBPath   string
	Operator Operator
}

// Load reads configs/config.yml and returns a validated Config.
func Load() (Config, error) {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return parse(viper.GetViper())
}

// parse maps viper keys onto Config and validates the result.
func parse(v *viper.Viper) (Config, error) {
	v.SetDefault("awair_device_type", defaultAwairDeviceType)
	v.SetDefault("poll_interval_seconds", defaultPollInterval)
	v.SetDefault("override_duration_minutes", defaultOverrideDuration)
	v.SetDefault("step_policy", PolicyFixed)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("operator.token_ttl_minutes", defaultTokenTTL)

	cfg := Config{
		Email:              v.GetString("email"),
		Password:           v.GetString("password"),
		ThermostatDeviceID: v.GetString("thermostat_device_id"),
		DaikinBaseURL:      v.GetString("daikin_base_url"),

		AwairToken:      v.GetString("awair_token"),
		SensorDeviceID:  v.GetString("sensor_device_id"),
		AwairDeviceType: v.GetString("awair_device_type"),
		AwairBaseURL:    v.GetString("awair_base_url"),

		DesiredTemperature: v.GetFloat64("desired_temperature"),
		Tolerance:          v.GetFloat64("tolerance"),
		PollInterval:       time.Duration(v.GetInt("poll_interval_seconds")) * time.Second,
		MinSetpoint:        v.GetFloat64("min_setpoint"),
		MaxSetpoint:        v.GetFloat64("max_setpoint"),
		StepSize:           v.GetFloat64("step_size"),
		StepPolicy:         v.GetString("step_policy"),
		OverrideDuration:   v.GetInt("override_duration_minutes"),

		Port:     v.GetString("port"),
		LogLevel: v.GetString("log_level"),
		DBPath:   v.GetString("db.path"),
		Operator: Operator{
			Username:     v.GetString("operator.username"),
			PasswordHash: v.GetString("operator.password_hash"),
			SigningKey:   v.GetString("operator.signing_key"),
			TokenTTL:     time.Duration(v.GetInt("operator.token_ttl_minutes")) * time.Minute,
		},
	}

	cfg.Window = schedule.AllDay()
	start, end := v.GetString("control_start"), v.GetString("control_end")
	if start != "" || end != "" {
		w, err := schedule.Parse(start, end)
		if err != nil {
			return Config{}, err
		}
		cfg.Window = w
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validation errors surfaced at startup.
var (
	errMissingCredentials = errors.New("email, password and awair_token are required")
	errBadBounds          = errors.New("min_setpoint must be below max_setpoint")
	errDesiredOutOfBounds = errors.New("desired_temperature must lie within [min_setpoint, max_setpoint]")
	errBadStep            = errors.New("step_size must be positive")
	errBadTolerance       = errors.New("tolerance must not be negative")
	errBadPollInterval    = errors.New("poll_interval_seconds must be positive")
	errBadStepPolicy      = errors.New("step_policy must be \"fixed\" or \"proportional\"")
	errOperatorIncomplete = errors.New("operator requires username, password_hash and signing_key")
)

// Validate checks the control policy bounds and credential presence.
func (c Config) Validate() error {
	if c.Email == "" || c.Password == "" || c.AwairToken == "" {
		return errMissingCredentials
	}
	if c.MinSetpoint >= c.MaxSetpoint {
		return errBadBounds
	}
	if c.DesiredTemperature < c.MinSetpoint || c.DesiredTemperature > c.MaxSetpoint {
		return errDesiredOutOfBounds
	}
	if c.StepSize <= 0 {
		return errBadStep
	}
	if c.Tolerance < 0 {
		return errBadTolerance
	}
	if c.PollInterval <= 0 {
		return errBadPollInterval
	}
	if c.StepPolicy != PolicyFixed && c.StepPolicy != PolicyProportional {
		return errBadStepPolicy
	}
	op := c.Operator
	if op.Username != "" && (op.PasswordHash == "" || op.SigningKey == "") {
		return errOperatorIncomplete
	}
	return nil
}
