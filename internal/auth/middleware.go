package auth

import (
	"net/http"

	"github.com/ziadkadry99/puter-gallery/internal/platform"
)

// Middleware attaches a session holder, seeded from the named cookie, to
// every request context.
func Middleware(cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(cookieName); err == nil {
				token = c.Value
			}
			ctx := platform.WithSession(r.Context(), platform.NewSession(token))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetCookie writes the session cookie if a token was issued during the
// request. It must be called before the response body is written. The cookie
// is readable by the page script, which stores tokens issued over the live
// socket under the same name.
func SetCookie(w http.ResponseWriter, r *http.Request, cookieName string) {
	sess := platform.SessionFrom(r.Context())
	if sess == nil || !sess.Issued() {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    sess.Token(),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireUser rejects requests whose session a cannot confirm. On success
// the user is bound to the request's session holder.
func RequireUser(a platform.Auth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := a.CurrentUser(r.Context()); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"authentication required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
