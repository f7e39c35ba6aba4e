package routes

import (
	"log"
	"net/http"
	"strings"

	"github.com/vitrinelabs/vitrine/internal/preview"
	"github.com/vitrinelabs/vitrine/internal/storefront"
	"github.com/vitrinelabs/vitrine/internal/ui/render"
)

// Register wires every route.
func Register(mux *http.ServeMux, d Deps) {
	registerPages(mux, d)
	registerAuth(mux, d)
	registerStores(mux, d)
	registerSessions(mux, d)
}

func registerPages(mux *http.ServeMux, d Deps) {
	// GET /: the owner's store list.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		id, ok := d.currentActor(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		stores, err := d.DB.StoresByOwner(id.ID)
		if err != nil {
			http.Error(w, "cannot list stores", http.StatusInternalServerError)
			return
		}
		render.Render(w, render.DashboardVM{
			BaseVM: render.BaseVM{Title: "Minhas lojas", Active: "home", ContentTmpl: "dashboard.html", ActorEmail: id.Email, BaseURL: d.BaseURL},
			Stores: stores,
		})
	})

	// GET /s/{slug}: the public storefront.
	handleGet(mux, "/s/", func(w http.ResponseWriter, r *http.Request) {
		slug := strings.Trim(strings.TrimPrefix(r.URL.Path, "/s/"), "/")
		if slug == "" {
			http.NotFound(w, r)
			return
		}
		store, err := d.DB.StoreBySlug(slug)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		data, err := d.DB.LoadData(store.ID)
		if err != nil {
			http.Error(w, "cannot load store", http.StatusInternalServerError)
			return
		}
		doc := storefront.Render(data, storefront.Options{Viewport: storefront.ViewportDesktop})
		render.RenderStandalone(w, "storefront.html", render.StorefrontVM{
			Title: store.Name,
			HTML:  doc.InnerHTML(),
		})
	})

	// GET /editor/{storeID}: opens an editing session over the store.
	handleGet(mux, "/editor/", func(w http.ResponseWriter, r *http.Request) {
		storeID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/editor/"), "/")
		if storeID == "" {
			http.NotFound(w, r)
			return
		}
		id, ok := d.currentActor(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		store, err := d.DB.StoreByID(storeID)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if err := preview.Authorize(id.ID, store); err != nil {
			http.Error(w, "somente o proprietário pode editar esta loja", http.StatusForbidden)
			return
		}

		data, err := d.DB.LoadData(storeID)
		if err != nil {
			http.Error(w, "cannot load store", http.StatusInternalServerError)
			return
		}
		if d.DemoData {
			data = storefront.MergeDemoData(data)
		}

		sh, err := d.Sessions.OpenSession(data, storefront.ViewportDesktop)
		if err != nil {
			log.Printf("ROUTES: open session: %v", err)
			http.Error(w, "cannot open editor", http.StatusInternalServerError)
			return
		}

		working := sh.Working()
		render.Render(w, render.EditorVM{
			BaseVM:        render.BaseVM{Title: "Editor · " + store.Name, Active: "editor", ContentTmpl: "editor.html", ActorEmail: id.Email, BaseURL: d.BaseURL},
			Store:         working.Store,
			Settings:      working.Settings,
			Announcements: working.Announcements,
			Banners:       working.Banners,
			SessionID:     sh.Session().ID,
			Viewport:      string(sh.Session().Viewport()),
		})
	})

	// GET /preview/{sessionID}: the preview frame. Anyone who is not
	// the owning editor of the session sees the denial placeholder; the
	// placeholder carries zero store data.
	handleGet(mux, "/preview/", func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/preview/"), "/")

		denied := func() {
			render.RenderStandalone(w, "preview.html", render.PreviewVM{
				SessionID: "",
				HTML:      preview.DenialDocument().InnerHTML(),
				Denied:    true,
			})
		}

		sh, ok := d.Sessions.Get(sessionID)
		if !ok {
			denied()
			return
		}
		id, ok := d.currentActor(r)
		if !ok || preview.Authorize(id.ID, sh.Working().Store) != nil {
			denied()
			return
		}

		sess := sh.Session()
		render.RenderStandalone(w, "preview.html", render.PreviewVM{
			SessionID: sess.ID,
			HTML:      sess.InnerHTML(),
			Viewport:  string(sess.Viewport()),
		})
	})
}
