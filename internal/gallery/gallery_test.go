package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/puter-gallery/internal/auth"
	"github.com/ziadkadry99/puter-gallery/internal/catalog"
	"github.com/ziadkadry99/puter-gallery/internal/config"
	"github.com/ziadkadry99/puter-gallery/internal/platform"
	"github.com/ziadkadry99/puter-gallery/internal/platform/platformtest"
	"github.com/ziadkadry99/puter-gallery/internal/runner"
	"github.com/ziadkadry99/puter-gallery/internal/server"
)

const cookieName = "gallery_session"

type fixture struct {
	release chan struct{}
	router  chi.Router
}

func setup(t *testing.T, a platform.Auth) *fixture {
	t.Helper()
	f := &fixture{release: make(chan struct{})}
	c, err := catalog.New(
		catalog.Entry{Name: "File System", Examples: catalog.List{
			{Title: "Write File", Description: "Writes hello.txt", Action: func(_ context.Context, s catalog.Section) {
				s.Write("File written successfully: /hello.txt")
			}},
			{Title: "Slow", Description: "Waits for the test", Action: func(_ context.Context, s catalog.Section) {
				<-f.release
				s.Write("slow done")
			}},
		}},
		catalog.Entry{Name: "AI", Examples: catalog.List{
			{Title: "Chat", Description: "Asks a question", Action: func(_ context.Context, s catalog.Section) {
				s.Write("AI response: Paris")
			}},
		}},
	)
	if err != nil {
		t.Fatal(err)
	}
	g := New(c, runner.New(a, nil, zap.NewNop()), cookieName, zap.NewNop())
	r := chi.NewRouter()
	r.Use(auth.Middleware(cookieName))
	g.RegisterRoutes(r)
	f.router = r
	return f
}

func signedIn() *platformtest.Auth {
	return platformtest.SignedIn(&platform.User{ID: "u1", Name: "ada"})
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestIndexRendersFirstCategory(t *testing.T) {
	f := setup(t, signedIn())
	w := get(t, f.router, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`href="#File%20System"`, `href="#AI"`, "<h1>File System</h1>", "Writes hello.txt"} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
	if strings.Contains(body, "Asks a question") {
		t.Error("index rendered a second category")
	}
}

func TestContentEndpoint(t *testing.T) {
	f := setup(t, signedIn())
	w := get(t, f.router, "/api/content?fragment=%23AI")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("X-Gallery-Category"); got != "AI" {
		t.Errorf("category header = %q", got)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "<h1>AI</h1>") || strings.Count(body, `<section class="example">`) != 1 {
		t.Errorf("content = %s", body)
	}
	if strings.Contains(body, "<nav") {
		t.Error("content endpoint rendered navigation")
	}

	w = get(t, f.router, "/api/content?fragment=%23Missing")
	if body := w.Body.String(); body != "<h1>Missing</h1>" {
		t.Errorf("unknown category content = %q", body)
	}
}

func TestCatalogEndpoint(t *testing.T) {
	f := setup(t, signedIn())
	w := get(t, f.router, "/api/catalog")
	var got []catalog.CategorySummary
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "File System" || len(got[0].Examples) != 2 || got[1].Examples[0].Title != "Chat" {
		t.Errorf("catalog = %+v", got)
	}
}

func postRun(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, runResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/run", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var resp runResponse
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
	}
	return w, resp
}

func TestRunEndpoint(t *testing.T) {
	f := setup(t, signedIn())
	w, resp := postRun(t, f.router, `{"category":"AI","index":0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp.Outcome != runner.OutcomeRan || resp.Output != "AI response: Paris" {
		t.Errorf("response = %+v", resp)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("cookie set without a new session")
	}
}

func TestRunEndpointSignsIn(t *testing.T) {
	f := setup(t, &platformtest.Auth{CurrentErr: platform.ErrNotAuthenticated})
	w, resp := postRun(t, f.router, `{"category":"File System","index":0}`)
	if resp.Outcome != runner.OutcomeRan {
		t.Errorf("outcome = %s", resp.Outcome)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != cookieName || cookies[0].Value != "token-guest-1" {
		t.Errorf("cookies = %v", cookies)
	}
}

func TestRunEndpointDenied(t *testing.T) {
	f := setup(t, platformtest.SignedOut(errors.New("closed")))
	_, resp := postRun(t, f.router, `{"category":"AI","index":0}`)
	if resp.Outcome != runner.OutcomeDenied || resp.Output != runner.DeniedMessage {
		t.Errorf("response = %+v", resp)
	}
}

func TestRunEndpointOutlivesRequestTimeout(t *testing.T) {
	c, err := catalog.New(catalog.Entry{Name: "AI", Examples: catalog.List{
		{Title: "Chat", Description: "Slow model", Action: func(ctx context.Context, s catalog.Section) {
			select {
			case <-ctx.Done():
				s.Write("Error: " + ctx.Err().Error())
			case <-time.After(300 * time.Millisecond):
				s.Write("AI response: Paris")
			}
		}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	srv := server.New(config.ServerConfig{RequestTimeout: 50 * time.Millisecond}, zap.NewNop(), auth.Middleware(cookieName))
	New(c, runner.New(signedIn(), nil, zap.NewNop()), cookieName, zap.NewNop()).RegisterRoutes(srv.Router())

	_, resp := postRun(t, srv.Router(), `{"category":"AI","index":0}`)
	if resp.Outcome != runner.OutcomeRan || resp.Output != "AI response: Paris" {
		t.Errorf("response = %+v", resp)
	}
}

func TestRunEndpointBadRequests(t *testing.T) {
	f := setup(t, signedIn())
	tests := []struct {
		body string
		want int
	}{
		{`not json`, http.StatusBadRequest},
		{`{"category":"AI","index":3}`, http.StatusNotFound},
		{`{"category":"Nope","index":0}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		if w, _ := postRun(t, f.router, tt.body); w.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.body, w.Code, tt.want)
		}
	}
}

func TestStaticScript(t *testing.T) {
	f := setup(t, signedIn())
	w := get(t, f.router, "/static/gallery.js")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body, _ := io.ReadAll(w.Body)
	if !strings.Contains(string(body), "/ws/gallery") {
		t.Error("script does not reference the live socket")
	}
}

func dial(t *testing.T, h http.Handler) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/gallery"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) serverMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg serverMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocketNavigateAndRun(t *testing.T) {
	f := setup(t, signedIn())
	conn := dial(t, f.router)

	if err := conn.WriteJSON(clientMessage{Type: "navigate", Fragment: "#AI"}); err != nil {
		t.Fatal(err)
	}
	msg := read(t, conn)
	if msg.Type != "content" || msg.Category != "AI" || !strings.Contains(msg.HTML, "<h2>Chat</h2>") {
		t.Errorf("content message = %+v", msg)
	}

	if err := conn.WriteJSON(clientMessage{Type: "run", ID: "7", Category: "AI", Index: 0}); err != nil {
		t.Fatal(err)
	}
	msg = read(t, conn)
	if msg.Type != "output" || msg.ID != "7" || msg.Text != "AI response: Paris" || msg.Outcome != "ran" {
		t.Errorf("output message = %+v", msg)
	}
}

func TestWebSocketSharesIssuedToken(t *testing.T) {
	f := setup(t, &platformtest.Auth{CurrentErr: platform.ErrNotAuthenticated})
	conn := dial(t, f.router)

	conn.WriteJSON(clientMessage{Type: "run", ID: "1", Category: "AI", Index: 0})
	if msg := read(t, conn); msg.Type != "output" {
		t.Fatalf("first message = %+v", msg)
	}
	msg := read(t, conn)
	if msg.Type != "session" || msg.Cookie != cookieName || msg.Token != "token-guest-1" {
		t.Errorf("session message = %+v", msg)
	}
}

func TestWebSocketDropsStaleOutput(t *testing.T) {
	f := setup(t, signedIn())
	conn := dial(t, f.router)

	conn.WriteJSON(clientMessage{Type: "run", ID: "slow", Category: "File System", Index: 1})
	conn.WriteJSON(clientMessage{Type: "navigate", Fragment: "#AI"})
	if msg := read(t, conn); msg.Type != "content" {
		t.Fatalf("expected content, got %+v", msg)
	}
	close(f.release)

	conn.WriteJSON(clientMessage{Type: "run", ID: "next", Category: "AI", Index: 0})
	if msg := read(t, conn); msg.ID != "next" {
		t.Errorf("got %+v, want output of the current view only", msg)
	}
}

func TestWebSocketErrors(t *testing.T) {
	f := setup(t, signedIn())
	conn := dial(t, f.router)

	conn.WriteMessage(websocket.TextMessage, []byte("{"))
	if msg := read(t, conn); msg.Type != "error" {
		t.Errorf("invalid json: %+v", msg)
	}
	conn.WriteJSON(clientMessage{Type: "run", ID: "x", Category: "AI", Index: 9})
	if msg := read(t, conn); msg.Type != "error" || msg.ID != "x" {
		t.Errorf("unknown example: %+v", msg)
	}
	conn.WriteJSON(clientMessage{Type: "dance"})
	if msg := read(t, conn); msg.Type != "error" || !strings.Contains(msg.Text, "dance") {
		t.Errorf("unknown type: %+v", msg)
	}
}
