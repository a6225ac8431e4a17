package transport

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(maxRetries uint64) Policy {
	return Policy{
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxElapsedTime:  time.Second,
		MaxRetries:      maxRetries,
	}
}

func TestPolicyDo_TransientRetriedUntilSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy(5).Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &TransportError{Vendor: "awair", Op: "get", Err: errors.New("503")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls: want 3, got %d", calls)
	}
}

func TestPolicyDo_PermanentSurfacesImmediately(t *testing.T) {
	t.Parallel()

	permanent := &DeviceError{Vendor: "awair", DeviceID: "dev-1", Err: errors.New("unknown device")}
	calls := 0
	err := fastPolicy(5).Do(context.Background(), func() error {
		calls++
		return permanent
	})
	if calls != 1 {
		t.Fatalf("calls: want 1, got %d", calls)
	}
	var de *DeviceError
	if !errors.As(err, &de) {
		t.Fatalf("expected DeviceError, got %v", err)
	}
}

func TestPolicyDo_BudgetExhaustedSurfacesLastError(t *testing.T) {
	t.Parallel()

	transient := &TransportError{Vendor: "daikin", Op: "put", Err: errors.New("timeout")}
	calls := 0
	err := fastPolicy(2).Do(context.Background(), func() error {
		calls++
		return transient
	})
	if calls != 3 { // initial attempt + 2 retries
		t.Fatalf("calls: want 3, got %d", calls)
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestPolicyDo_ContextCancelStopsRetrying(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := fastPolicy(100).Do(ctx, func() error {
		calls++
		if calls == 2 {
			cancel()
		}
		return &TransportError{Vendor: "daikin", Op: "get", Err: errors.New("reset")}
	})
	if err == nil {
		t.Fatalf("expected error after cancellation")
	}
	if calls > 3 {
		t.Fatalf("retries continued after cancel: %d calls", calls)
	}
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	transient := &TransportError{Vendor: "awair", Op: "get", Err: errors.New("reset")}
	fatal := &AuthError{Vendor: "daikin", Op: "login", Err: errors.New("bad credentials")}

	if !IsTransient(transient) {
		t.Errorf("TransportError must be transient")
	}
	if IsTransient(fatal) {
		t.Errorf("AuthError must not be transient")
	}
	if !IsFatal(fatal) {
		t.Errorf("AuthError must be fatal")
	}
	if IsFatal(transient) {
		t.Errorf("TransportError must not be fatal")
	}
	if !IsTransient(&TransportError{Err: transient}) {
		t.Errorf("wrapped TransportError must stay transient")
	}
	if StatusTransient(400) || !StatusTransient(502) {
		t.Errorf("status classification: 4xx permanent, 5xx transient")
	}
}
