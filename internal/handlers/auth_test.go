package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"roombridge/internal/service"
)

func postJSON(r http.Handler, target string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSignIn_ReturnsToken(t *testing.T) {
	auth := &mockAuth{enabled: true, genTokenToken: "jwt-token"}
	r := newTestRouter(&service.Service{Authorization: auth})

	w := postJSON(r, "/auth/sign-in", map[string]string{"username": "home", "password": "s3cr3t"})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["token"] != "jwt-token" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if auth.lastGenUsername != "home" || auth.lastGenPassword != "s3cr3t" {
		t.Fatalf("credentials not forwarded: %q/%q", auth.lastGenUsername, auth.lastGenPassword)
	}
}

func TestSignIn_BadCredentials(t *testing.T) {
	auth := &mockAuth{enabled: true, genTokenErr: service.ErrInvalidCredentials}
	r := newTestRouter(&service.Service{Authorization: auth})

	w := postJSON(r, "/auth/sign-in", map[string]string{"username": "home", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSignIn_MissingFields(t *testing.T) {
	r := newTestRouter(&service.Service{Authorization: &mockAuth{enabled: true}})

	w := postJSON(r, "/auth/sign-in", map[string]string{"username": "home"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSignIn_AuthDisabled(t *testing.T) {
	auth := &mockAuth{genTokenErr: service.ErrAuthDisabled}
	r := newTestRouter(&service.Service{Authorization: auth})

	w := postJSON(r, "/auth/sign-in", map[string]string{"username": "home", "password": "s3cr3t"})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
