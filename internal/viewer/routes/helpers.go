package routes

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/vitrinelabs/vitrine/internal/actor"
	"github.com/vitrinelabs/vitrine/internal/editor"
	"github.com/vitrinelabs/vitrine/internal/files"
	"github.com/vitrinelabs/vitrine/internal/storage"
)

// Deps carries everything the route handlers need.
type Deps struct {
	DB       *storage.DB
	Actors   *actor.Manager
	Sessions *editor.Manager
	Files    *files.DiskStore

	BaseURL    string
	CookieName string
	DemoData   bool
}

func (d Deps) cookieName() string {
	if d.CookieName == "" {
		return "vitrine_session"
	}
	return d.CookieName
}

// currentActor resolves the request's session cookie.
func (d Deps) currentActor(r *http.Request) (actor.Identity, bool) {
	c, err := r.Cookie(d.cookieName())
	if err != nil {
		return actor.Identity{}, false
	}
	return d.Actors.Resolve(c.Value)
}

// handleGet registers a GET-only handler.
func handleGet(mux *http.ServeMux, path string, fn http.HandlerFunc) {
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	})
}

// handlePost registers a POST-only handler with a decoded JSON body.
func handlePost[T any](mux *http.ServeMux, path string, fn func(w http.ResponseWriter, r *http.Request, req T)) {
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req T
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		fn(w, r, req)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ROUTES: write JSON: %v", err)
	}
}

func sseHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}
