package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/valentinpelus/survey-crm/internal/handler"
	"github.com/valentinpelus/survey-crm/internal/middleware"
	"github.com/valentinpelus/survey-crm/pkg/access"
	"github.com/valentinpelus/survey-crm/pkg/store"
	"github.com/valentinpelus/survey-crm/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, secret string) (*Server, string) {
	t.Helper()
	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>app</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(static, "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := handler.NewHandler(handler.Dependencies{})
	auth := middleware.NewAuthMiddleware(access.NewIssuer(secret, time.Hour))
	return New(Options{Port: "0", StaticDir: static, MaxBodyMB: 1}, h, auth), static
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSPAFallback(t *testing.T) {
	s, _ := newTestServer(t, "")

	if w := get(s, "/dashboard/reports"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "app") {
		t.Errorf("client route = %d %s", w.Code, w.Body.String())
	}
	if w := get(s, "/app.js"); !strings.Contains(w.Body.String(), "console.log") {
		t.Errorf("asset = %d %s", w.Code, w.Body.String())
	}
	if w := get(s, "/../../etc/passwd"); !strings.Contains(w.Body.String(), "app") {
		t.Errorf("traversal should fall back to index.html, got %s", w.Body.String())
	}
	if w := get(s, "/api/unknown"); w.Code != http.StatusNotFound {
		t.Errorf("unknown api route = %d", w.Code)
	}
}

func TestHealthWithoutDatabase(t *testing.T) {
	s, _ := newTestServer(t, "")
	if w := get(s, "/api/health"); w.Code != http.StatusInternalServerError {
		t.Errorf("health = %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, "")
	get(s, "/api/health")
	w := get(s, "/metrics")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "survey_crm_http_requests_total") {
		t.Errorf("metrics = %d", w.Code)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s, _ := newTestServer(t, "secret")
	if w := get(s, "/api/full-backup"); w.Code != http.StatusUnauthorized {
		t.Errorf("full-backup without token = %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodOptions, "/api/feedback", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS headers: %v", w.Header())
	}
}

func TestBodyLimit(t *testing.T) {
	s, _ := newTestServer(t, "")
	body := strings.NewReader(strings.Repeat("x", 2<<20))
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", body)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body = %d", w.Code)
	}
}

type memorySettings struct {
	settings types.Settings
}

func newMemorySettings(t *testing.T) *memorySettings {
	t.Helper()
	s, err := access.PrepareSettings(store.DefaultSettings(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return &memorySettings{settings: s}
}

func (m *memorySettings) Get(context.Context) (types.Settings, error) {
	s := m.settings
	s.Users = append([]types.User{}, s.Users...)
	return s, nil
}

func (m *memorySettings) Save(_ context.Context, s types.Settings) (types.Settings, error) {
	m.settings = s
	return s, nil
}

func (m *memorySettings) Reset(ctx context.Context) (types.Settings, error) {
	return m.Get(ctx)
}

func (m *memorySettings) Replace(_ context.Context, s *types.Settings) error {
	m.settings = *s
	return nil
}

func newAuthServer(t *testing.T) (*Server, *memorySettings) {
	t.Helper()
	settings := newMemorySettings(t)
	issuer := access.NewIssuer("secret", time.Hour)
	h := handler.NewHandler(handler.Dependencies{Settings: settings, Access: access.DefaultPolicy(), Issuer: issuer})
	return New(Options{Port: "0"}, h, middleware.NewAuthMiddleware(issuer)), settings
}

func send(s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestPasswordlessLoginIsNotAdmin(t *testing.T) {
	s, _ := newAuthServer(t)

	w := send(s, http.MethodPost, "/api/login", "", map[string]string{"username": "matlabi"})
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("no token in %s", w.Body.String())
	}

	if w := send(s, http.MethodGet, "/api/full-backup", resp.Token, nil); w.Code != http.StatusForbidden {
		t.Errorf("full-backup with passwordless admin token = %d", w.Code)
	}
	if w := send(s, http.MethodPost, "/api/users/password", resp.Token, map[string]string{"targetUserId": "staff2", "newPassword": "x"}); w.Code != http.StatusForbidden {
		t.Errorf("password change for another user = %d", w.Code)
	}
}

func TestPasswordChangeRequiresToken(t *testing.T) {
	s, settings := newAuthServer(t)

	w := send(s, http.MethodPost, "/api/users/password", "", map[string]string{
		"targetUserId": "admin1", "newPassword": "taken", "currentUsername": "matlabi",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated password change = %d", w.Code)
	}
	u, _ := settings.settings.FindUser("admin1")
	if u.IsPasswordEnabled {
		t.Error("password was changed without a token")
	}
}
