// Package assets embeds and serves the editor's static files, minified
// once at startup.
package assets

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

//go:embed app.css editor.js preview.js
var rawFS embed.FS

var minified map[string][]byte

var contentTypes = map[string]string{
	".js":  "application/javascript",
	".css": "text/css",
}

func init() {
	m := minify.New()
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("text/css", css.Minify)

	minified = make(map[string][]byte)

	_ = fs.WalkDir(rawFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ctype, ok := contentTypes[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}
		raw, err := rawFS.ReadFile(path)
		if err != nil {
			return nil
		}
		out, err := m.Bytes(ctype, raw)
		if err != nil {
			log.Printf("ASSETS: minify warning: %s: %v (using original)", path, err)
			minified[path] = raw
			return nil
		}
		minified[path] = out
		return nil
	})
}

// Handler serves the minified assets. Mount it at /assets/ with a
// StripPrefix.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if data, ok := minified[path]; ok {
			ctype := contentTypes[strings.ToLower(filepath.Ext(path))]
			w.Header().Set("Content-Type", ctype+"; charset=utf-8")
			w.Write(data)
			return
		}
		http.NotFound(w, r)
	})
}
