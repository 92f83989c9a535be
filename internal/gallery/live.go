package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/puter-gallery/internal/catalog"
	"github.com/ziadkadry99/puter-gallery/internal/platform"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is the incoming WebSocket message format.
type clientMessage struct {
	Type     string `json:"type"` // "navigate" or "run"
	Fragment string `json:"fragment,omitempty"`
	ID       string `json:"id,omitempty"`
	Category string `json:"category,omitempty"`
	Index    int    `json:"index,omitempty"`
}

// serverMessage is the outgoing WebSocket message format.
type serverMessage struct {
	Type     string `json:"type"` // "content", "output", "session" or "error"
	ID       string `json:"id,omitempty"`
	Category string `json:"category,omitempty"`
	HTML     string `json:"html,omitempty"`
	Text     string `json:"text,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
	Cookie   string `json:"cookie,omitempty"`
	Token    string `json:"token,omitempty"`
}

// liveSession is one connected page. It owns a document copy and the
// outputs of runs started from the current view.
type liveSession struct {
	g    *Gallery
	conn *websocket.Conn
	ctx  context.Context
	page *page

	writeMu sync.Mutex

	mu        sync.Mutex
	pending   map[*catalog.Output]struct{}
	sentToken string
}

func (g *Gallery) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	p, err := g.newPage()
	if err != nil {
		g.logger.Error("building page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}

	s := &liveSession{
		g:    g,
		conn: conn,
		// Runs outlive the message that started them.
		ctx:     context.WithoutCancel(r.Context()),
		page:    p,
		pending: make(map[*catalog.Output]struct{}),
	}
	if sess := platform.SessionFrom(r.Context()); sess != nil {
		s.sentToken = sess.Token()
	}
	s.serve()
}

func (s *liveSession) serve() {
	defer func() {
		s.detachAll()
		s.conn.Close()
	}()

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.g.logger.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var req clientMessage
		if err := json.Unmarshal(msg, &req); err != nil {
			s.send(serverMessage{Type: "error", Text: "invalid message format"})
			continue
		}

		switch req.Type {
		case "navigate":
			s.navigate(req.Fragment)
		case "run":
			s.run(req)
		default:
			s.send(serverMessage{Type: "error", ID: req.ID, Text: "unknown message type: " + req.Type})
		}
	}
}

// navigate replaces the content region. Runs started from the previous view
// keep going but their output is discarded.
func (s *liveSession) navigate(fragment string) {
	s.detachAll()
	name := s.page.router.Navigate(fragment)

	var buf bytes.Buffer
	if err := s.page.doc.RenderContent(&buf); err != nil {
		s.g.logger.Error("rendering content", zap.Error(err))
		s.send(serverMessage{Type: "error", Text: "rendering failed"})
		return
	}
	s.send(serverMessage{Type: "content", Category: name, HTML: buf.String()})
}

func (s *liveSession) run(req clientMessage) {
	ex, ok := s.g.catalog.Lookup(req.Category, req.Index)
	if !ok {
		s.send(serverMessage{Type: "error", ID: req.ID, Text: "unknown example"})
		return
	}

	out := catalog.NewOutput()
	s.mu.Lock()
	s.pending[out] = struct{}{}
	s.mu.Unlock()

	go func() {
		outcome := s.g.runner.Run(s.ctx, req.Category, ex, out)

		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		s.mu.Lock()
		delete(s.pending, out)
		s.mu.Unlock()
		if out.Detached() {
			s.g.logger.Debug("dropping output of replaced view",
				zap.String("category", req.Category),
				zap.String("example", ex.Title),
				zap.Int("late_writes", out.Dropped()),
			)
			return
		}
		s.write(serverMessage{Type: "output", ID: req.ID, Text: out.String(), Outcome: string(outcome)})
		s.shareToken()
	}()
}

// shareToken hands a newly issued session token to the page so it can
// store the cookie. Callers hold writeMu.
func (s *liveSession) shareToken() {
	sess := platform.SessionFrom(s.ctx)
	if sess == nil || !sess.Issued() {
		return
	}
	token := sess.Token()
	s.mu.Lock()
	fresh := token != s.sentToken
	s.sentToken = token
	s.mu.Unlock()
	if fresh {
		s.write(serverMessage{Type: "session", Cookie: s.g.cookieName, Token: token})
	}
}

func (s *liveSession) detachAll() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for out := range s.pending {
		out.Detach()
		delete(s.pending, out)
	}
}

func (s *liveSession) send(msg serverMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.write(msg)
}

func (s *liveSession) write(msg serverMessage) {
	if err := s.conn.WriteJSON(msg); err != nil {
		s.g.logger.Debug("websocket write", zap.Error(err))
	}
}
