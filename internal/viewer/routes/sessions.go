package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vitrinelabs/vitrine/internal/dom"
	"github.com/vitrinelabs/vitrine/internal/editor"
	"github.com/vitrinelabs/vitrine/internal/selection"
	"github.com/vitrinelabs/vitrine/internal/storefront"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// pointerMsg is what the preview mirror reports for clicks and hovers.
type pointerMsg struct {
	Type string `json:"type"`
	Kind string `json:"kind"`
	Path []int  `json:"path"`
}

type shellState struct {
	Mode        string `json:"mode"`
	Section     string `json:"section"`
	ElementID   string `json:"elementId,omitempty"`
	ElementType string `json:"elementType,omitempty"`
}

func stateOf(sh *editor.Shell) shellState {
	id, typ := sh.Selected()
	mode := "browsing"
	switch sh.Mode() {
	case editor.ModeSectionActive:
		mode = "section"
	case editor.ModeElementSelected:
		mode = "selected"
	}
	return shellState{Mode: mode, Section: string(sh.Section()), ElementID: id, ElementType: string(typ)}
}

func registerSessions(mux *http.ServeMux, d Deps) {
	// /api/session/{id}/{action}
	mux.HandleFunc("/api/session/", func(w http.ResponseWriter, r *http.Request) {
		tail := strings.TrimPrefix(r.URL.Path, "/api/session/")
		parts := strings.SplitN(tail, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			http.Error(w, "invalid path, expected /api/session/{id}/{action}", http.StatusBadRequest)
			return
		}
		sessionID, action := parts[0], parts[1]

		sh, ok := d.Sessions.Get(sessionID)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		id, ok := d.currentActor(r)
		if !ok || id.ID != sh.Working().Store.OwnerID {
			http.Error(w, "not your session", http.StatusForbidden)
			return
		}

		switch action {
		case "update":
			handleUpdate(w, r, sh)
		case "viewport":
			handleViewport(w, r, sh)
		case "section":
			handleSection(w, r, sh)
		case "back":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			sh.Back()
			writeJSON(w, stateOf(sh))
		case "publish":
			handlePublish(w, r, sh, d)
		case "logo":
			handleLogo(w, r, sh, d)
		case "events":
			handleEvents(w, r, sh)
		case "close":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			d.Sessions.CloseSession(sessionID)
			writeJSON(w, map[string]string{"status": "closed"})
		default:
			http.NotFound(w, r)
		}
	})

	// GET /ws/preview/{id}. WebSocket: update frames out, pointer
	// reports in. No auth cookie check here beyond session lookup: the
	// socket only ever carries what the preview page already shows.
	mux.HandleFunc("/ws/preview/", func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/ws/preview/"), "/")
		sh, ok := d.Sessions.Get(sessionID)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("PREVIEW [%s]: WebSocket upgrade error: %v", sessionID, err)
			return
		}

		sess := sh.Session()
		sess.Hub().Attach(conn)
		defer sess.Hub().Detach(conn)
		log.Printf("PREVIEW [%s]: mirror connected", sessionID)

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				log.Printf("PREVIEW [%s]: mirror disconnected", sessionID)
				return
			}
			var msg pointerMsg
			if json.Unmarshal(raw, &msg) != nil || msg.Type != "POINTER" {
				continue // foreign traffic
			}
			sel := sess.Selector()
			if sel == nil {
				continue // selection not attached yet
			}
			switch msg.Kind {
			case "click":
				if evt, ok := sel.Click(msg.Path); ok {
					sh.HandleSelection(evt)
				}
			case "hover":
				sel.Hover(msg.Path)
			}
		}
	})
}

func handleUpdate(w http.ResponseWriter, r *http.Request, sh *editor.Shell) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		UpdateType string `json:"updateType"`
		Data       any    `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := sh.ApplyUpdate(req.UpdateType, req.Data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"status": "applied"})
}

func handleViewport(w http.ResponseWriter, r *http.Request, sh *editor.Shell) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Viewport string `json:"viewport"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	v := storefront.Viewport(req.Viewport)
	if v != storefront.ViewportMobile && v != storefront.ViewportDesktop {
		http.Error(w, "unknown viewport", http.StatusBadRequest)
		return
	}
	if err := sh.SetViewport(v); err != nil {
		http.Error(w, fmt.Sprintf("reload failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"viewport": req.Viewport})
}

func handleSection(w http.ResponseWriter, r *http.Request, sh *editor.Shell) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Section string `json:"section"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := sh.SetSection(editor.Section(req.Section)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, stateOf(sh))
}

func handlePublish(w http.ResponseWriter, r *http.Request, sh *editor.Shell, d Deps) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := sh.Publish(r.Context(), d.DB); err != nil {
		if errors.Is(err, editor.ErrPublishInFlight) {
			http.Error(w, "publish already in progress", http.StatusConflict)
			return
		}
		http.Error(w, fmt.Sprintf("publish failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "published"})
}

func handleLogo(w http.ResponseWriter, r *http.Request, sh *editor.Shell, d Deps) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		http.Error(w, "missing logo file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := sh.UploadLogo(d.Files, header.Filename, file)
	if err != nil {
		if errors.Is(err, editor.ErrUploadInFlight) {
			http.Error(w, "upload already in progress", http.StatusConflict)
			return
		}
		http.Error(w, fmt.Sprintf("upload failed: %v", err), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"url": url})
}

// handleEvents streams selection events to the editor panel over SSE.
func handleEvents(w http.ResponseWriter, r *http.Request, sh *editor.Shell) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sseHeaders(w)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"ok\"}\n\n")
	flusher.Flush()

	// The selector attaches asynchronously; wait for it.
	ctx := r.Context()
	var sel *selection.Selector
	for sel == nil {
		sel = sh.Session().Selector()
		if sel != nil {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
	}

	evtCh, cancel := sel.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-evtCh:
			if !ok {
				return
			}
			state := stateOf(sh)
			if evt.Kind == "selected" {
				if sec, ok := editor.SectionForType(dom.ElementType(evt.ElementType)); ok {
					state.Section = string(sec)
				}
				state.ElementID = evt.ElementID
				state.ElementType = evt.ElementType
			}
			data, err := json.Marshal(state)
			if err != nil {
				log.Printf("ROUTES: marshal selection: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: selection\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
