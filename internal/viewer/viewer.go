// Package viewer serves the editor, the live preview, and the public
// storefronts over HTTP.
package viewer

import (
	"net/http"

	"github.com/vitrinelabs/vitrine/internal/actor"
	"github.com/vitrinelabs/vitrine/internal/editor"
	"github.com/vitrinelabs/vitrine/internal/files"
	"github.com/vitrinelabs/vitrine/internal/storage"
	viewerassets "github.com/vitrinelabs/vitrine/internal/ui/assets"
	"github.com/vitrinelabs/vitrine/internal/ui/render"
	"github.com/vitrinelabs/vitrine/internal/viewer/routes"
)

type Viewer struct {
	DB       *storage.DB
	Actors   *actor.Manager
	Sessions *editor.Manager
	Files    *files.DiskStore

	// Canonical base URL for templates (e.g. http://127.0.0.1:8080)
	BaseURL    string
	CookieName string

	// DemoData fills empty storefronts with placeholder content so the
	// editor never opens on a blank page.
	DemoData bool

	// AssetsDir, when set, is watched for changes and triggers preview
	// reloads during development.
	AssetsDir string
}

func Start(addr string, v Viewer) error {
	if err := render.InitTemplates(); err != nil {
		return err
	}

	mux := http.NewServeMux()

	mux.Handle("/assets/", http.StripPrefix("/assets/",
		noCache(viewerassets.Handler()),
	))
	if v.Files != nil {
		mux.Handle("/uploads/", http.StripPrefix("/uploads/",
			http.FileServer(http.Dir(v.Files.Dir())),
		))
	}

	baseURL := v.BaseURL
	if baseURL == "" {
		baseURL = "http://" + addr
	}

	deps := routes.Deps{
		DB:         v.DB,
		Actors:     v.Actors,
		Sessions:   v.Sessions,
		Files:      v.Files,
		BaseURL:    baseURL,
		CookieName: v.CookieName,
		DemoData:   v.DemoData,
	}
	routes.Register(mux, deps)

	if v.AssetsDir != "" {
		go watchAssets(v.AssetsDir, v.Sessions)
	}

	return http.ListenAndServe(addr, mux)
}
