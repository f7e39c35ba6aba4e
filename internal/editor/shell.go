// Package editor implements the editing shell: the working copy of a
// store's theme, the sidebar section router, and the bridge that turns
// form edits into preview updates.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/vitrinelabs/vitrine/internal/dom"
	"github.com/vitrinelabs/vitrine/internal/patch"
	"github.com/vitrinelabs/vitrine/internal/preview"
	"github.com/vitrinelabs/vitrine/internal/selection"
	"github.com/vitrinelabs/vitrine/internal/storefront"
)

// Mode is the shell's navigation state.
type Mode int

const (
	ModeBrowsing Mode = iota
	ModeSectionActive
	ModeElementSelected
)

// ErrPublishInFlight is returned when a publish starts while another is
// still running. Publishing is single-flight per shell.
var ErrPublishInFlight = errors.New("publish already in progress")

// ErrUploadInFlight guards the logo upload the same way.
var ErrUploadInFlight = errors.New("upload already in progress")

// Publisher persists the working copy. Storage implements this.
type Publisher interface {
	Publish(ctx context.Context, data storefront.Data) error
}

// FileStore stores uploaded assets and returns their public URL.
type FileStore interface {
	Store(name string, r io.Reader) (string, error)
}

// Shell is one editing surface over one preview session. Edits land on
// the working copy immediately and flow to the preview as fire-and-forget
// updates; nothing touches storage until Publish.
type Shell struct {
	mu      sync.Mutex
	working storefront.Data
	session *preview.Session

	mode        Mode
	section     Section
	selectedID  string
	selectedTyp dom.ElementType

	publishing bool
	uploading  bool

	stopPump func()
}

// Open creates a shell over a preview session, renders the first preview,
// and starts pumping channel updates into the session's document.
func Open(session *preview.Session, data storefront.Data) (*Shell, error) {
	sh := &Shell{working: data, session: session}
	if err := session.Reload(data, session.Viewport()); err != nil {
		return nil, fmt.Errorf("initial render: %w", err)
	}

	ch, cancel := session.Updates().Subscribe()
	sh.stopPump = cancel
	go func() {
		for env := range ch {
			session.Receive(env)
		}
	}()
	go func() {
		if session.Attacher().Run() == selection.StateGaveUp {
			log.Printf("EDITOR: selection never attached for session %s", session.ID)
		}
	}()

	return sh, nil
}

// Session returns the preview session this shell edits.
func (sh *Shell) Session() *preview.Session { return sh.session }

// Working returns a snapshot of the working copy.
func (sh *Shell) Working() storefront.Data {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.working
}

// Mode returns the navigation state.
func (sh *Shell) Mode() Mode {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.mode
}

// Section returns the active sidebar section.
func (sh *Shell) Section() Section {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.section
}

// Selected returns the selected element's id and type.
func (sh *Shell) Selected() (string, dom.ElementType) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.selectedID, sh.selectedTyp
}

// HandleSelection routes a preview selection event: the matching section
// opens and the element becomes the shell's selection. Events for types
// with no panel are ignored.
func (sh *Shell) HandleSelection(evt selection.Event) {
	if evt.Kind != "selected" {
		return
	}
	sec, ok := SectionForType(dom.ElementType(evt.ElementType))
	if !ok {
		return
	}
	sh.mu.Lock()
	sh.mode = ModeElementSelected
	sh.section = sec
	sh.selectedID = evt.ElementID
	sh.selectedTyp = dom.ElementType(evt.ElementType)
	sh.mu.Unlock()
}

// SetSection opens a sidebar section manually. A selection whose element
// does not belong to the new section is cleared so the shell never shows
// a panel and a selection that disagree.
func (sh *Shell) SetSection(sec Section) error {
	if !ValidSection(sec) {
		return fmt.Errorf("unknown section %q", sec)
	}
	sh.mu.Lock()
	sh.section = sec
	if sh.selectedID != "" {
		if owner, _ := SectionForType(sh.selectedTyp); owner != sec {
			sh.selectedID = ""
			sh.selectedTyp = ""
			if sel := sh.session.Selector(); sel != nil {
				sel.Clear()
			}
		}
	}
	if sh.selectedID != "" {
		sh.mode = ModeElementSelected
	} else {
		sh.mode = ModeSectionActive
	}
	sh.mu.Unlock()
	return nil
}

// Back leaves the current panel: both the section and the selection are
// cleared and the shell returns to browsing.
func (sh *Shell) Back() {
	sh.mu.Lock()
	sh.mode = ModeBrowsing
	sh.section = SectionNone
	sh.selectedID = ""
	sh.selectedTyp = ""
	if sel := sh.session.Selector(); sel != nil {
		sel.Clear()
	}
	sh.mu.Unlock()
}

// SetViewport toggles the preview between desktop and mobile. The
// structural layouts differ, so this is a full re-render of the working
// copy, not a style patch.
func (sh *Shell) SetViewport(v storefront.Viewport) error {
	sh.mu.Lock()
	data := sh.working
	sh.mu.Unlock()
	return sh.session.Reload(data, v)
}

// send pushes one update to the preview. Fire and forget: a preview that
// is not ready simply misses it and catches up on the next reload.
func (sh *Shell) send(updateType string, data any) {
	sh.session.Updates().Send(patch.NewEnvelope(updateType, data))
}

// ── form handlers ──

func (sh *Shell) SetStoreName(name string) {
	sh.mu.Lock()
	sh.working.Store.Name = name
	sh.mu.Unlock()
	sh.send(patch.UpdateStoreName, name)
}

func (sh *Shell) SetPrimaryColor(color string) {
	sh.mu.Lock()
	sh.working.Store.PrimaryColor = color
	sh.mu.Unlock()
	sh.send(patch.UpdatePrimaryColor, color)
}

func (sh *Shell) SetFeaturedSectionTitle(title string) {
	sh.mu.Lock()
	sh.working.Settings.FeaturedSectionTitle = title
	sh.mu.Unlock()
	sh.send(patch.UpdateFeaturedSectionTitle, title)
}

func (sh *Shell) SetProductsPerRow(n int) {
	n = storefront.ClampDesktopColumns(n)
	sh.mu.Lock()
	sh.working.Settings.ProductsPerRow = n
	sh.mu.Unlock()
	sh.send(patch.UpdateProductsPerRow, n)
}

func (sh *Shell) SetProductsPerRowMobile(n int) {
	n = storefront.ClampMobileColumns(n)
	sh.mu.Lock()
	sh.working.Settings.ProductsPerRowMobile = n
	sh.mu.Unlock()
	sh.send(patch.UpdateProductsPerRowMobile, n)
}

func (sh *Shell) SetAnnouncementText(index int, text string) {
	sh.mu.Lock()
	if index >= 0 && index < len(sh.working.Announcements) {
		sh.working.Announcements[index].Text = text
	}
	sh.mu.Unlock()
	sh.send(patch.UpdateAnnouncementText, patch.IndexedUpdate{Index: index, Text: text})
}

func (sh *Shell) SetAnnouncementBgColor(index int, color string) {
	sh.mu.Lock()
	if index >= 0 && index < len(sh.working.Announcements) {
		sh.working.Announcements[index].BackgroundColor = color
	}
	sh.mu.Unlock()
	sh.send(patch.UpdateAnnouncementBgColor, patch.IndexedUpdate{Index: index, Color: color})
}

func (sh *Shell) SetAnnouncementTextColor(index int, color string) {
	sh.mu.Lock()
	if index >= 0 && index < len(sh.working.Announcements) {
		sh.working.Announcements[index].TextColor = color
	}
	sh.mu.Unlock()
	sh.send(patch.UpdateAnnouncementTextColor, patch.IndexedUpdate{Index: index, Color: color})
}

// SetHeaderSetting covers the header appearance fields that share one
// shape: store the value, send the matching update kind.
func (sh *Shell) SetHeaderSetting(updateType, value string) error {
	sh.mu.Lock()
	s := &sh.working.Settings
	switch updateType {
	case patch.UpdateHeaderBackgroundColor:
		s.HeaderBackgroundColor = value
	case patch.UpdateHeaderTextColor:
		s.HeaderTextColor = value
	case patch.UpdateHeaderIconColor:
		s.HeaderIconColor = value
	case patch.UpdateLogoPosition:
		s.LogoPosition = value
	case patch.UpdateLogoSize:
		s.LogoSize = value
	case patch.UpdateMenuPosition:
		s.MenuPosition = value
	case patch.UpdateCartPosition:
		s.CartPosition = value
	case patch.UpdateHeaderMobileBackgroundColor:
		s.HeaderMobileBackgroundColor = value
	case patch.UpdateHeaderMobileTextColor:
		s.HeaderMobileTextColor = value
	case patch.UpdateHeaderMobileIconColor:
		s.HeaderMobileIconColor = value
	default:
		sh.mu.Unlock()
		return fmt.Errorf("not a header setting: %q", updateType)
	}
	sh.mu.Unlock()
	sh.send(updateType, value)
	return nil
}

// ApplyUpdate routes one decoded form update to the matching handler.
// Numbers arrive as float64 from JSON bodies; indexed payloads as maps.
func (sh *Shell) ApplyUpdate(kind string, data any) error {
	switch kind {
	case patch.UpdateStoreName, patch.UpdatePrimaryColor, patch.UpdateLogo, patch.UpdateFeaturedSectionTitle:
		s, ok := data.(string)
		if !ok {
			return fmt.Errorf("%s expects a string", kind)
		}
		switch kind {
		case patch.UpdateStoreName:
			sh.SetStoreName(s)
		case patch.UpdatePrimaryColor:
			sh.SetPrimaryColor(s)
		case patch.UpdateLogo:
			sh.mu.Lock()
			sh.working.Store.LogoURL = s
			sh.mu.Unlock()
			sh.send(patch.UpdateLogo, s)
		case patch.UpdateFeaturedSectionTitle:
			sh.SetFeaturedSectionTitle(s)
		}
		return nil

	case patch.UpdateProductsPerRow, patch.UpdateProductsPerRowMobile:
		n, ok := toInt(data)
		if !ok {
			return fmt.Errorf("%s expects a number", kind)
		}
		if kind == patch.UpdateProductsPerRow {
			sh.SetProductsPerRow(n)
		} else {
			sh.SetProductsPerRowMobile(n)
		}
		return nil

	case patch.UpdateAnnouncementText, patch.UpdateAnnouncementBgColor, patch.UpdateAnnouncementTextColor:
		m, ok := data.(map[string]any)
		if !ok {
			return fmt.Errorf("%s expects an object", kind)
		}
		idx, ok := toInt(m["index"])
		if !ok {
			return fmt.Errorf("%s expects an index", kind)
		}
		switch kind {
		case patch.UpdateAnnouncementText:
			text, _ := m["text"].(string)
			sh.SetAnnouncementText(idx, text)
		case patch.UpdateAnnouncementBgColor:
			color, _ := m["color"].(string)
			sh.SetAnnouncementBgColor(idx, color)
		case patch.UpdateAnnouncementTextColor:
			color, _ := m["color"].(string)
			sh.SetAnnouncementTextColor(idx, color)
		}
		return nil

	default:
		s, ok := data.(string)
		if !ok {
			return fmt.Errorf("%s expects a string", kind)
		}
		return sh.SetHeaderSetting(kind, s)
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}

// UploadLogo stores the asset and points the working copy and the preview
// at its URL. Single-flight: a second upload while one runs is rejected.
func (sh *Shell) UploadLogo(files FileStore, name string, r io.Reader) (string, error) {
	sh.mu.Lock()
	if sh.uploading {
		sh.mu.Unlock()
		return "", ErrUploadInFlight
	}
	sh.uploading = true
	sh.mu.Unlock()

	defer func() {
		sh.mu.Lock()
		sh.uploading = false
		sh.mu.Unlock()
	}()

	url, err := files.Store(name, r)
	if err != nil {
		return "", fmt.Errorf("store logo: %w", err)
	}

	sh.mu.Lock()
	sh.working.Store.LogoURL = url
	sh.mu.Unlock()
	sh.send(patch.UpdateLogo, url)
	return url, nil
}

// Uploading reports whether a logo upload is in flight.
func (sh *Shell) Uploading() bool {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.uploading
}

// Publish persists the working copy. Single-flight: concurrent calls get
// ErrPublishInFlight instead of racing writes.
func (sh *Shell) Publish(ctx context.Context, p Publisher) error {
	sh.mu.Lock()
	if sh.publishing {
		sh.mu.Unlock()
		return ErrPublishInFlight
	}
	sh.publishing = true
	data := sh.working
	sh.mu.Unlock()

	defer func() {
		sh.mu.Lock()
		sh.publishing = false
		sh.mu.Unlock()
	}()

	if err := p.Publish(ctx, data); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	log.Printf("EDITOR: published store %s", data.Store.ID)
	return nil
}

// Publishing reports whether a publish is in flight.
func (sh *Shell) Publishing() bool {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.publishing
}

// Close stops the update pump and tears the preview down.
func (sh *Shell) Close() {
	if sh.stopPump != nil {
		sh.stopPump()
	}
	sh.session.Close()
}
