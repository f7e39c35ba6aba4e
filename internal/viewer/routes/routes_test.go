package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vitrinelabs/vitrine/internal/actor"
	"github.com/vitrinelabs/vitrine/internal/editor"
	"github.com/vitrinelabs/vitrine/internal/files"
	"github.com/vitrinelabs/vitrine/internal/storage"
	"github.com/vitrinelabs/vitrine/internal/ui/render"
)

type fixture struct {
	mux      *http.ServeMux
	db       *storage.DB
	sessions *editor.Manager
	cookie   *http.Cookie
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	if err := render.InitTemplates(); err != nil {
		t.Fatalf("templates: %v", err)
	}

	db, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fileStore, err := files.NewDiskStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	sessions := editor.NewManager()
	t.Cleanup(sessions.CloseAll)

	mux := http.NewServeMux()
	Register(mux, Deps{
		DB:       db,
		Actors:   actor.NewManager(db, 0),
		Sessions: sessions,
		Files:    fileStore,
		BaseURL:  "http://test",
	})
	return &fixture{mux: mux, db: db, sessions: sessions}
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if f.cookie != nil {
		req.AddCookie(f.cookie)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	form := url.Values{"email": {"dona@loja.com"}, "password": {"segredo123"}}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := f.do(t, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Value != "" {
			f.cookie = c
			return
		}
	}
	t.Fatal("no session cookie issued")
}

func (f *fixture) createStore(t *testing.T) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"name": "Minha Loja", "slug": "minha-loja"})
	req := httptest.NewRequest(http.MethodPost, "/api/stores/create", bytes.NewReader(body))
	rec := f.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create store status = %d: %s", rec.Code, rec.Body.String())
	}
	var store struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &store); err != nil || store.ID == "" {
		t.Fatalf("create store response: %v %s", err, rec.Body.String())
	}
	return store.ID
}

var sessionIDRe = regexp.MustCompile(`data-session-id="([^"]+)"`)

func (f *fixture) openEditor(t *testing.T, storeID string) string {
	t.Helper()
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/editor/"+storeID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("editor status = %d: %s", rec.Code, rec.Body.String())
	}
	m := sessionIDRe.FindStringSubmatch(rec.Body.String())
	if m == nil {
		t.Fatal("editor page missing session id")
	}
	return m[1]
}

func (f *fixture) postJSON(t *testing.T, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(v)
	return f.do(t, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body)))
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("dashboard without login status = %d", rec.Code)
	}
	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/stores", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("api without login status = %d", rec.Code)
	}
}

func TestStoreCreateAndDashboard(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.createStore(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Minha Loja") {
		t.Fatalf("dashboard: %d %s", rec.Code, rec.Body.String())
	}

	// Duplicate slug is rejected.
	body, _ := json.Marshal(map[string]string{"name": "Outra", "slug": "minha-loja"})
	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/api/stores/create", bytes.NewReader(body)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate slug status = %d", rec.Code)
	}
}

func TestEditSessionEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	storeID := f.createStore(t)
	sessionID := f.openEditor(t, storeID)

	rec := f.postJSON(t, "/api/session/"+sessionID+"/update", map[string]any{
		"updateType": "store_name", "data": "Nova Loja",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	// The update reaches the preview through an async pump.
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = f.do(t, httptest.NewRequest(http.MethodGet, "/preview/"+sessionID, nil))
		if strings.Contains(rec.Body.String(), "Nova Loja") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("preview never showed the edit: %s", rec.Body.String())
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Publish persists the working copy.
	rec = f.postJSON(t, "/api/session/"+sessionID+"/publish", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d: %s", rec.Code, rec.Body.String())
	}
	data, err := f.db.LoadData(storeID)
	if err != nil || data.Store.Name != "Nova Loja" {
		t.Fatalf("published store = %+v err = %v", data.Store, err)
	}
}

func TestUpdateRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	sessionID := f.openEditor(t, f.createStore(t))

	rec := f.postJSON(t, "/api/session/"+sessionID+"/update", map[string]any{
		"updateType": "products_per_row", "data": "muitos",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("garbage update status = %d", rec.Code)
	}
}

func TestSectionAndBack(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	sessionID := f.openEditor(t, f.createStore(t))

	rec := f.postJSON(t, "/api/session/"+sessionID+"/section", map[string]string{"section": "products"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"section":"products"`) {
		t.Fatalf("section: %d %s", rec.Code, rec.Body.String())
	}

	rec = f.postJSON(t, "/api/session/"+sessionID+"/back", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"mode":"browsing"`) {
		t.Fatalf("back: %d %s", rec.Code, rec.Body.String())
	}

	rec = f.postJSON(t, "/api/session/"+sessionID+"/section", map[string]string{"section": "garage"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad section status = %d", rec.Code)
	}
}

func TestViewportEndpoint(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	sessionID := f.openEditor(t, f.createStore(t))

	rec := f.postJSON(t, "/api/session/"+sessionID+"/viewport", map[string]string{"viewport": "mobile"})
	if rec.Code != http.StatusOK {
		t.Fatalf("viewport status = %d: %s", rec.Code, rec.Body.String())
	}
	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/preview/"+sessionID, nil))
	if !strings.Contains(rec.Body.String(), "viewport-mobile") {
		t.Fatal("preview not re-rendered for mobile")
	}

	rec = f.postJSON(t, "/api/session/"+sessionID+"/viewport", map[string]string{"viewport": "huge"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad viewport status = %d", rec.Code)
	}
}

func TestPreviewDeniedForStrangers(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	sessionID := f.openEditor(t, f.createStore(t))

	// Same request without the owner cookie.
	owner := f.cookie
	f.cookie = nil
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/preview/"+sessionID, nil))
	f.cookie = owner

	body := rec.Body.String()
	if !strings.Contains(body, "Acesso restrito") {
		t.Fatalf("no denial placeholder: %s", body)
	}
	if strings.Contains(body, "Minha Loja") || strings.Contains(body, "minha-loja") {
		t.Fatal("denial page leaked store data")
	}

	// Unknown sessions look exactly the same.
	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/preview/does-not-exist", nil))
	if !strings.Contains(rec.Body.String(), "Acesso restrito") {
		t.Fatal("unknown session not denied")
	}

	// The session API proper refuses strangers outright.
	f.cookie = nil
	recAPI := f.postJSON(t, "/api/session/"+sessionID+"/update", map[string]any{
		"updateType": "store_name", "data": "Invasor",
	})
	f.cookie = owner
	if recAPI.Code != http.StatusForbidden {
		t.Fatalf("stranger update status = %d", recAPI.Code)
	}
}

func TestEditorForbiddenForNonOwner(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	storeID := f.createStore(t)

	// Second account.
	form := url.Values{"email": {"outra@loja.com"}, "password": {"segredo123"}}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	f.cookie = nil
	rec := f.do(t, req)
	for _, c := range rec.Result().Cookies() {
		if c.Value != "" {
			f.cookie = c
		}
	}

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/editor/"+storeID, nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner editor status = %d", rec.Code)
	}
}

func TestPublicStorefront(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	storeID := f.createStore(t)
	sessionID := f.openEditor(t, storeID)

	// Publish something first.
	if rec := f.postJSON(t, "/api/session/"+sessionID+"/publish", nil); rec.Code != http.StatusOK {
		t.Fatalf("publish: %d", rec.Code)
	}

	// The public page needs no login.
	f.cookie = nil
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/s/minha-loja", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Minha Loja") {
		t.Fatalf("storefront: %d %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/s/nao-existe", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing slug status = %d", rec.Code)
	}
}

func TestMirrorFramesCoverEveryKind(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	sessionID := f.openEditor(t, f.createStore(t))

	srv := httptest.NewServer(f.mux)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/preview/" + sessionID
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial mirror: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// The hub registers the mirror just after the upgrade; wait for it
	// before sending edits.
	sh, ok := f.sessions.Get(sessionID)
	if !ok {
		t.Fatal("session vanished")
	}
	deadline := time.Now().Add(2 * time.Second)
	for sh.Session().Hub().Count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("mirror never attached to the hub")
		}
		time.Sleep(5 * time.Millisecond)
	}

	readFrame := func() map[string]any {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("frame json: %v", err)
		}
		return m
	}

	// Kinds the mirror patches locally travel as plain envelopes.
	rec := f.postJSON(t, "/api/session/"+sessionID+"/update", map[string]any{
		"updateType": "store_name", "data": "Nova Loja",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	frame := readFrame()
	if frame["type"] != "PREVIEW_UPDATE" || frame["updateType"] != "store_name" {
		t.Fatalf("unexpected frame: %v", frame)
	}

	// Header kinds have no client-side recipe, so the change rides out
	// as a full document frame and still shows up instantly.
	rec = f.postJSON(t, "/api/session/"+sessionID+"/update", map[string]any{
		"updateType": "header_background_color", "data": "#ABCDEF",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	frame = readFrame()
	if frame["type"] != "PREVIEW_RELOAD" {
		t.Fatalf("frame type = %v, want PREVIEW_RELOAD", frame["type"])
	}
	html, _ := frame["html"].(string)
	if !strings.Contains(html, "#ABCDEF") || !strings.Contains(html, "Nova Loja") {
		t.Fatal("document frame missing the applied updates")
	}
}

func TestSessionNotFound(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	rec := f.postJSON(t, "/api/session/nope/update", map[string]any{"updateType": "store_name", "data": "x"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/logout", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("logout status = %d", rec.Code)
	}

	// Old cookie no longer resolves.
	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/stores", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("stale cookie status = %d", rec.Code)
	}
}
