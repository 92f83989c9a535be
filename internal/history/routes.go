package history

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/puter-gallery/internal/platform"
	"github.com/ziadkadry99/puter-gallery/internal/runner"
)

// RegisterRoutes mounts history endpoints under /api/runs. Callers only see
// their own runs, so the routes sit behind requireUser.
func RegisterRoutes(r chi.Router, store *Store, requireUser func(http.Handler) http.Handler) {
	r.With(requireUser).Route("/api/runs", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Get("/stats", handleStats(store))
	})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := platform.UserFrom(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		filter := Filter{
			UserID:   u.ID,
			Category: q.Get("category"),
			Example:  q.Get("example"),
			Outcome:  runner.Outcome(q.Get("outcome")),
		}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Limit = n
			}
		}

		entries, err := store.List(r.Context(), filter)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func handleStats(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := platform.UserFrom(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		stats, err := store.Stats(r.Context(), u.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
