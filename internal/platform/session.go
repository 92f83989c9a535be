package platform

import (
	"context"
	"sync"
)

// Session is a mutable holder for the caller's session. Request handlers
// attach one to the context before running examples; Auth.SignIn fills it in
// and capabilities read the user from it.
type Session struct {
	signIn sync.Mutex
	mu     sync.RWMutex
	token  string
	user   *User
	issued bool
}

// NewSession returns a holder carrying a token presented by the caller.
// An empty token is allowed.
func NewSession(token string) *Session {
	return &Session{token: token}
}

// Token returns the current session token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the user bound to the session, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Bind records a confirmed user for the existing token.
func (s *Session) Bind(u *User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// Issue replaces the token with a newly issued one.
func (s *Session) Issue(token string, u *User) {
	s.mu.Lock()
	s.token = token
	s.user = u
	s.issued = true
	s.mu.Unlock()
}

// LockSignIn serializes sign-in attempts made through this holder and
// returns the matching unlock.
func (s *Session) LockSignIn() (unlock func()) {
	s.signIn.Lock()
	return s.signIn.Unlock
}

// Issued reports whether a new token was issued during this request.
func (s *Session) Issued() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.issued
}

type sessionKey struct{}

// WithSession attaches a session holder to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the holder attached to ctx, or nil.
func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// UserFrom returns the user bound to the ctx session.
func UserFrom(ctx context.Context) (*User, error) {
	s := SessionFrom(ctx)
	if s == nil {
		return nil, ErrNotAuthenticated
	}
	u := s.User()
	if u == nil {
		return nil, ErrNotAuthenticated
	}
	return u, nil
}
