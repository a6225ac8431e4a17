package handlers

import (
	"context"
	"net/http"
	"time"

	"roombridge/internal/models"
	"roombridge/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	enabled       bool
	genTokenToken string
	genTokenErr   error
	parseSubject  string
	parseErr      error

	lastGenUsername string
	lastGenPassword string
	lastParseToken  string
}

func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (string, error) {
	m.lastParseToken = token
	return m.parseSubject, m.parseErr
}
func (m *mockAuth) Enabled() bool { return m.enabled }

type mockControl struct {
	runErr       error
	runOnceErr   error
	paused       bool
	pauseCalled  int
	resumeCalled int
}

func (m *mockControl) Run(ctx context.Context, tick time.Duration) error { return m.runErr }
func (m *mockControl) RunOnce(ctx context.Context) error                 { return m.runOnceErr }
func (m *mockControl) Pause(ctx context.Context) {
	m.pauseCalled++
	m.paused = true
}
func (m *mockControl) Resume(ctx context.Context) {
	m.resumeCalled++
	m.paused = false
}
func (m *mockControl) Paused() bool { return m.paused }

type mockMonitoring struct {
	status models.BridgeStatus
	err    error
}

func (m *mockMonitoring) GetStatus(ctx context.Context) (models.BridgeStatus, error) {
	return m.status, m.err
}

type mockEventLog struct {
	resp        []models.TickEvent
	err         error
	lastFrom    time.Time
	lastTo      time.Time
	lastOutcome string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.TickEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastOutcome = f.Outcome
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
