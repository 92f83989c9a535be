package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/puter-gallery/internal/config"
)

func TestHealthCheck(t *testing.T) {
	srv := New(config.ServerConfig{}, zap.NewNop())

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := New(config.ServerConfig{AllowAll: true}, zap.NewNop())

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestExtraMiddlewareRuns(t *testing.T) {
	var seen bool
	mark := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = true
			next.ServeHTTP(w, r)
		})
	}
	srv := New(config.ServerConfig{}, zap.NewNop(), mark)
	srv.Router().Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	if !seen || w.Body.String() != "pong" {
		t.Errorf("seen=%v body=%q", seen, w.Body.String())
	}
}

func TestTimeoutCancelsContext(t *testing.T) {
	srv := New(config.ServerConfig{RequestTimeout: 20 * time.Millisecond}, zap.NewNop())
	srv.Router().Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/slow", nil))
	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", w.Code)
	}
}

func TestTimeoutSkipsWebSocketUpgrade(t *testing.T) {
	srv := New(config.ServerConfig{RequestTimeout: time.Millisecond}, zap.NewNop())
	var hasDeadline bool
	srv.Router().Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	})

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	srv.Router().ServeHTTP(httptest.NewRecorder(), req)
	if hasDeadline {
		t.Error("websocket upgrade got a request deadline")
	}
}
