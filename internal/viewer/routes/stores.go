package routes

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/vitrinelabs/vitrine/internal/storefront"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func registerStores(mux *http.ServeMux, d Deps) {
	// GET /api/stores: the owner's stores.
	handleGet(mux, "/api/stores", func(w http.ResponseWriter, r *http.Request) {
		id, ok := d.currentActor(r)
		if !ok {
			http.Error(w, "not logged in", http.StatusUnauthorized)
			return
		}
		stores, err := d.DB.StoresByOwner(id.ID)
		if err != nil {
			http.Error(w, "cannot list stores", http.StatusInternalServerError)
			return
		}
		if stores == nil {
			stores = []storefront.Store{}
		}
		writeJSON(w, stores)
	})

	// POST /api/stores/create: create a store with default settings.
	handlePost(mux, "/api/stores/create", func(w http.ResponseWriter, r *http.Request, req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}) {
		id, ok := d.currentActor(r)
		if !ok {
			http.Error(w, "not logged in", http.StatusUnauthorized)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
		if req.Name == "" || !slugRe.MatchString(req.Slug) {
			http.Error(w, "missing name or invalid slug", http.StatusBadRequest)
			return
		}

		store := storefront.Store{
			ID:      uuid.NewString(),
			OwnerID: id.ID,
			Slug:    req.Slug,
			Name:    req.Name,
		}
		if err := d.DB.SaveStore(store); err != nil {
			http.Error(w, "slug already in use", http.StatusConflict)
			return
		}
		if err := d.DB.SaveSettings(storefront.DefaultSettings(store.ID)); err != nil {
			http.Error(w, "cannot save settings", http.StatusInternalServerError)
			return
		}
		writeJSON(w, store)
	})
}
