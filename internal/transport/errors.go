package transport

import (
	"errors"
	"fmt"
)

// ErrAuthExpired signals that a vendor rejected the current access token.
// It is handled inside the owning client (refresh, then retry once) and is
// never surfaced to the control engine.
var ErrAuthExpired = errors.New("auth token expired")

// AuthError means credentials are invalid or were rejected again after a
// refresh. At startup it is fatal; mid-loop it terminates the process so an
// operator can fix the configuration.
type AuthError struct {
	Vendor string
	Op     string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s: authentication failed: %v", e.Vendor, e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// DeviceError means the device is unknown to the vendor or has no recent
// data (offline sensor). The tick is skipped and the loop continues.
type DeviceError struct {
	Vendor   string
	DeviceID string
	Err      error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: device %q: %v", e.Vendor, e.DeviceID, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// ValidationError means the vendor rejected a requested value, usually a
// setpoint outside its accepted range. Points at a configuration problem.
type ValidationError struct {
	Vendor string
	Op     string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: rejected by vendor: %v", e.Vendor, e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// TransportError covers timeouts, connection resets and 5xx responses.
// Transient: the retry policy may re-attempt it within the tick budget.
type TransportError struct {
	Vendor string
	Op     string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Vendor, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransient reports whether err may succeed on retry.
func IsTransient(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsFatal reports whether err must terminate the process (auth failures
// that survived a refresh attempt).
func IsFatal(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// StatusTransient reports whether an HTTP status code is worth retrying.
func StatusTransient(code int) bool {
	return code >= 500
}
