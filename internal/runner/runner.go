// Package runner gates example actions behind authentication.
package runner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/puter-gallery/internal/catalog"
	"github.com/ziadkadry99/puter-gallery/internal/platform"
)

// DeniedMessage is written to a section when no session can be established.
const DeniedMessage = "Please authenticate with Puter to run this example."

// Outcome reports whether an action was invoked.
type Outcome string

const (
	OutcomeRan    Outcome = "ran"
	OutcomeDenied Outcome = "denied"
)

// Run describes one finished run for a Recorder.
type Run struct {
	Category string
	Example  string
	UserID   string
	Outcome  Outcome
	Output   string
	Started  time.Time
	Duration time.Duration
}

// Recorder persists finished runs.
type Recorder interface {
	Record(ctx context.Context, run Run) error
}

// Runner authenticates, then invokes. It keeps no state between runs.
type Runner struct {
	auth     platform.Auth
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a Runner. recorder may be nil.
func New(auth platform.Auth, recorder Recorder, logger *zap.Logger) *Runner {
	return &Runner{auth: auth, recorder: recorder, logger: logger, now: time.Now}
}

// Run invokes ex.Action against section once the caller is authenticated,
// signing in if there is no current session. If both fail, section receives
// DeniedMessage and the action is not invoked.
func (r *Runner) Run(ctx context.Context, category string, ex catalog.Example, section catalog.Section) Outcome {
	started := r.now()
	rec := &recording{Section: section}

	sess := platform.SessionFrom(ctx)
	var presented string
	if sess != nil {
		presented = sess.Token()
	}

	user, err := r.auth.CurrentUser(ctx)
	if err != nil {
		r.logger.Debug("no current session", zap.String("example", ex.Title), zap.Error(err))
		user, err = r.signIn(ctx, sess, presented)
		if err != nil {
			r.logger.Warn("sign-in failed", zap.String("example", ex.Title), zap.Error(err))
		}
	}

	outcome := OutcomeDenied
	if err == nil {
		outcome = OutcomeRan
		ex.Action(ctx, rec)
	} else {
		rec.Write(DeniedMessage)
	}

	run := Run{
		Category: category,
		Example:  ex.Title,
		Outcome:  outcome,
		Output:   rec.text,
		Started:  started,
		Duration: r.now().Sub(started),
	}
	if user != nil {
		run.UserID = user.ID
	}
	r.logger.Info("example run",
		zap.String("category", category),
		zap.String("example", ex.Title),
		zap.String("outcome", string(outcome)),
		zap.Duration("duration", run.Duration),
	)
	if r.recorder != nil {
		if err := r.recorder.Record(context.WithoutCancel(ctx), run); err != nil {
			r.logger.Warn("recording run", zap.Error(err))
		}
	}
	return outcome
}

// signIn escalates to Auth.SignIn, one caller per session holder at a time.
// A caller that waited behind another run's sign-in reuses that session.
func (r *Runner) signIn(ctx context.Context, sess *platform.Session, presented string) (*platform.User, error) {
	if sess != nil {
		defer sess.LockSignIn()()
		if sess.Token() != presented {
			if user, err := r.auth.CurrentUser(ctx); err == nil {
				return user, nil
			}
		}
	}
	return r.auth.SignIn(ctx)
}

// recording passes writes through while keeping a copy for the Recorder.
type recording struct {
	catalog.Section
	text string
}

func (r *recording) Write(text string) {
	if r.text != "" {
		r.text += "\n"
	}
	r.text += text
	r.Section.Write(text)
}
