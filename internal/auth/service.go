// Package auth implements guest sign-in and cookie sessions on top of SQLite.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/puter-gallery/internal/db"
	"github.com/ziadkadry99/puter-gallery/internal/platform"
)

var (
	// ErrNoSession is returned by CurrentUser when the caller presented no token.
	ErrNoSession = errors.New("not signed in")
	// ErrSessionExpired is returned for unknown or expired tokens.
	ErrSessionExpired = errors.New("session not found or expired")
	// ErrSignInDisabled is returned by SignIn when guest sign-in is off.
	ErrSignInDisabled = errors.New("interactive sign-in is disabled")
)

// Options configures a Service.
type Options struct {
	GuestSignIn bool
	SessionTTL  time.Duration
	// NameFunc generates guest user names. Defaults to platform.RandomName.
	NameFunc func() string
}

// Service implements platform.Auth.
type Service struct {
	db     *db.DB
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates an auth service backed by the given database.
func NewService(database *db.DB, opts Options, logger *zap.Logger) *Service {
	if opts.NameFunc == nil {
		opts.NameFunc = platform.RandomName
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	return &Service{
		db:     database,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// CurrentUser confirms the session token carried by ctx.
func (s *Service) CurrentUser(ctx context.Context) (*platform.User, error) {
	sess := platform.SessionFrom(ctx)
	if sess == nil || sess.Token() == "" {
		return nil, ErrNoSession
	}
	token := sess.Token()

	var u platform.User
	var guest int
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT u.id, u.name, u.guest, u.created_at, s.expires_at
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.token = ?`, token,
	).Scan(&u.ID, &u.Name, &guest, &u.CreatedAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("looking up session: %w", err)
	}

	if !s.now().Before(expiresAt) {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
			s.logger.Warn("deleting expired session", zap.Error(err))
		}
		return nil, ErrSessionExpired
	}

	u.Guest = guest != 0
	sess.Bind(&u)
	return &u, nil
}

// SignIn creates a guest account and a fresh session, storing the token in
// the ctx session holder.
func (s *Service) SignIn(ctx context.Context) (*platform.User, error) {
	sess := platform.SessionFrom(ctx)
	if sess == nil {
		return nil, fmt.Errorf("sign-in: no session holder in context")
	}
	if !s.opts.GuestSignIn {
		return nil, ErrSignInDisabled
	}

	u, err := s.createGuest(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	token := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		token, u.ID, now, now.Add(s.opts.SessionTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	sess.Issue(token, u)
	s.logger.Info("guest signed in", zap.String("user", u.Name), zap.String("user_id", u.ID))
	return u, nil
}

// createGuest inserts a guest user, retrying on name collisions.
func (s *Service) createGuest(ctx context.Context) (*platform.User, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		u := &platform.User{
			ID:        uuid.New().String(),
			Name:      s.opts.NameFunc(),
			Guest:     true,
			CreatedAt: s.now().UTC(),
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO users (id, name, guest, created_at) VALUES (?, ?, 1, ?)`,
			u.ID, u.Name, u.CreatedAt,
		)
		if err == nil {
			return u, nil
		}
		if !strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("creating guest user: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("creating guest user: %w", lastErr)
}

// SignOut deletes the session identified by token.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every expired session and returns how many were removed.
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token, expires_at FROM sessions`)
	if err != nil {
		return 0, fmt.Errorf("listing sessions: %w", err)
	}
	now := s.now()
	var expired []string
	for rows.Next() {
		var token string
		var expiresAt time.Time
		if err := rows.Scan(&token, &expiresAt); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning session: %w", err)
		}
		if !now.Before(expiresAt) {
			expired = append(expired, token)
		}
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}

	for _, token := range expired {
		if err := s.SignOut(ctx, token); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}
