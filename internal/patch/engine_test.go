package patch

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/vitrinelabs/vitrine/internal/dom"
	"github.com/vitrinelabs/vitrine/internal/storefront"
)

func testEngine(t *testing.T, viewport storefront.Viewport) *Engine {
	t.Helper()
	d := storefront.Data{
		Store: storefront.Store{
			ID:           "st-1",
			Slug:         "minha-loja",
			Name:         "Minha Loja",
			LogoURL:      "/uploads/logo.png",
			PrimaryColor: "#004DF0",
		},
		Settings: storefront.DefaultSettings("st-1"),
		Announcements: []storefront.Announcement{
			{ID: "a1", Text: "Frete grátis", IsActive: true},
			{ID: "a2", Text: "Promoção", IsActive: true},
		},
		Categories: []storefront.Category{{ID: "c1", Name: "Roupas", IsActive: true}},
		Products: []storefront.Product{
			{ID: "p1", CategoryID: "c1", Name: "Camiseta", Price: 59.9, IsActive: true, IsFeatured: true},
		},
	}
	doc := storefront.Render(d, storefront.Options{Viewport: viewport})
	return NewEngine(doc, d.Settings, viewport)
}

func gridClasses(t *testing.T, e *Engine, sectionID string) string {
	t.Helper()
	section := e.doc.ByElementID(sectionID)
	if section == nil {
		t.Fatalf("section %q missing", sectionID)
	}
	grid := section.Find(func(n *dom.Node) bool { return n.HasClass("grid") })
	if grid == nil {
		t.Fatalf("section %q has no grid", sectionID)
	}
	return strings.Join(grid.Classes(), " ")
}

func TestApplyStoreName(t *testing.T) {
	e := testEngine(t, storefront.ViewportDesktop)

	e.Apply(NewEnvelope(UpdateStoreName, "Nova Loja"))

	if got := e.doc.ByElementID("store-name").Text; got != "Nova Loja" {
		t.Fatalf("store name = %q, want %q", got, "Nova Loja")
	}
}

func TestApplyIdempotent(t *testing.T) {
	e := testEngine(t, storefront.ViewportDesktop)

	env := NewEnvelope(UpdateProductsPerRow, 3)
	e.Apply(env)
	first := e.doc.HTML()
	e.Apply(env)
	e.Apply(env)

	if got := e.doc.HTML(); got != first {
		t.Fatal("repeated identical update changed the document")
	}
}

func TestUnknownTrafficIgnored(t *testing.T) {
	e := testEngine(t, storefront.ViewportDesktop)
	before := e.doc.HTML()

	e.Apply(Envelope{Type: "SOMETHING_ELSE", UpdateType: UpdateStoreName, Data: "x"})
	e.Apply(NewEnvelope("not_a_kind", "x"))
	e.Apply(NewEnvelope(UpdateStoreName, 42))
	e.Apply(NewEnvelope(UpdateProductsPerRow, "three"))

	if got := e.doc.HTML(); got != before {
		t.Fatal("foreign or malformed messages mutated the document")
	}
}

func TestDecodeRejectsForeignTag(t *testing.T) {
	if _, ok := Decode([]byte(`{"type":"OTHER","updateType":"store_name","data":"x"}`)); ok {
		t.Fatal("foreign tag accepted")
	}
	if _, ok := Decode([]byte(`{not json`)); ok {
		t.Fatal("malformed JSON accepted")
	}
	env, ok := Decode([]byte(`{"type":"PREVIEW_UPDATE","updateType":"store_name","data":"Nova Loja"}`))
	if !ok || env.UpdateType != UpdateStoreName {
		t.Fatalf("valid envelope rejected: %+v ok=%v", env, ok)
	}
}

func TestGridReflow(t *testing.T) {
	e := testEngine(t, storefront.ViewportDesktop)

	e.Apply(NewEnvelope(UpdateProductsPerRow, 3))
	e.Apply(NewEnvelope(UpdateProductsPerRowMobile, 2))

	want := "grid grid-cols-2 sm:grid-cols-2 lg:grid-cols-3 gap-6"
	for _, section := range []string{"featured-products", "category-c1"} {
		if got := gridClasses(t, e, section); got != want {
			t.Fatalf("%s grid = %q, want %q", section, got, want)
		}
	}

	// Successive changes replace the ladder, never accumulate classes.
	e.Apply(NewEnvelope(UpdateProductsPerRow, 1))
	want = "grid grid-cols-2 sm:grid-cols-1 gap-6"
	if got := gridClasses(t, e, "featured-products"); got != want {
		t.Fatalf("after reflow grid = %q, want %q", got, want)
	}
}

func TestGridClampOverWire(t *testing.T) {
	e := testEngine(t, storefront.ViewportDesktop)

	// JSON numbers decode as float64.
	raw, _ := json.Marshal(NewEnvelope(UpdateProductsPerRow, 9))
	env, ok := Decode(raw)
	if !ok {
		t.Fatal("round-tripped envelope rejected")
	}
	e.Apply(env)

	if got := gridClasses(t, e, "featured-products"); !strings.Contains(got, "xl:grid-cols-4") {
		t.Fatalf("out-of-range column count not clamped to 4: %q", got)
	}
}

func TestAnnouncementByIndex(t *testing.T) {
	e := testEngine(t, storefront.ViewportDesktop)

	e.Apply(NewEnvelope(UpdateAnnouncementBgColor, IndexedUpdate{Index: 1, Color: "#FF0000"}))

	first := e.doc.ByElementID("announcement-0")
	second := e.doc.ByElementID("announcement-1")
	if second.Style("background-color") != "#FF0000" {
		t.Fatalf("second announcement bg = %q", second.Style("background-color"))
	}
	if first.Style("background-color") == "#FF0000" {
		t.Fatal("update leaked onto the first announcement")
	}

	e.Apply(NewEnvelope(UpdateAnnouncementText, IndexedUpdate{Index: 0, Text: "Só hoje"}))
	span := first.Find(func(n *dom.Node) bool { return n.Tag == "span" })
	if span.Text != "Só hoje" {
		t.Fatalf("announcement text = %q", span.Text)
	}

	// Indexes beyond the rendered list are silent no-ops.
	before := e.doc.HTML()
	e.Apply(NewEnvelope(UpdateAnnouncementTextColor, IndexedUpdate{Index: 7, Color: "#00FF00"}))
	if e.doc.HTML() != before {
		t.Fatal("out-of-range announcement index mutated the document")
	}
}

func TestPrimaryColorReplacedWholesale(t *testing.T) {
	e := testEngine(t, storefront.ViewportDesktop)

	e.Apply(NewEnvelope(UpdatePrimaryColor, "#111111"))
	e.Apply(NewEnvelope(UpdatePrimaryColor, "#222222"))

	css, ok := e.doc.StyleResource(PrimaryColorSheet)
	if !ok {
		t.Fatal("dynamic stylesheet not installed")
	}
	if strings.Contains(css, "#111111") {
		t.Fatal("stale color survived in the dynamic stylesheet")
	}
	if !strings.Contains(css, "#222222") {
		t.Fatalf("dynamic stylesheet missing new color: %q", css)
	}

	if got := e.doc.ByElementID("store-name").Style("color"); got != "#222222" {
		t.Fatalf("text node color = %q", got)
	}

	// Exactly one copy of the sheet in the serialized output.
	html := e.doc.HTML()
	if strings.Count(html, `<style id="dynamic-primary-color">`) != 1 {
		t.Fatal("dynamic stylesheet duplicated or missing in output")
	}
}

func TestLayoutClassGroups(t *testing.T) {
	e := testEngine(t, storefront.ViewportDesktop)
	header := e.doc.ByElementID("header")

	e.Apply(NewEnvelope(UpdateLogoPosition, "left"))
	e.Apply(NewEnvelope(UpdateLogoPosition, "right"))
	if header.HasClass("logo-left") || !header.HasClass("logo-right") {
		t.Fatalf("logo position classes = %v", header.Classes())
	}

	e.Apply(NewEnvelope(UpdateLogoSize, "large"))
	logo := e.doc.ByElementID("logo")
	if !logo.HasClass("logo-lg") || logo.HasClass("logo-md") {
		t.Fatalf("logo size classes = %v", logo.Classes())
	}

	nav := header.Find(func(n *dom.Node) bool { return n.Tag == "nav" })
	e.Apply(NewEnvelope(UpdateMenuPosition, "center"))
	if !nav.HasClass("menu-center") || nav.HasClass("menu-left") {
		t.Fatalf("menu classes = %v", nav.Classes())
	}

	cart := header.Find(func(n *dom.Node) bool { return n.Attr("aria-label") == "carrinho" })
	e.Apply(NewEnvelope(UpdateCartPosition, "left"))
	if !cart.HasClass("cart-left") || cart.HasClass("cart-right") {
		t.Fatalf("cart classes = %v", cart.Classes())
	}

	// Values outside the closed vocabulary change nothing.
	e.Apply(NewEnvelope(UpdateLogoPosition, "diagonal"))
	if !header.HasClass("logo-right") {
		t.Fatal("invalid position value altered the class group")
	}
}

func TestMobileHeaderOverrides(t *testing.T) {
	e := testEngine(t, storefront.ViewportDesktop)
	header := e.doc.ByElementID("header")

	e.Apply(NewEnvelope(UpdateHeaderBackgroundColor, "#AAAAAA"))
	e.Apply(NewEnvelope(UpdateHeaderMobileBackgroundColor, "#BBBBBB"))

	// Desktop viewport keeps the desktop value.
	if got := header.Style("background-color"); got != "#AAAAAA" {
		t.Fatalf("desktop header bg = %q", got)
	}

	// A resize to mobile reapplies the stored override without resending it.
	e.SetViewport(storefront.ViewportMobile)
	if got := header.Style("background-color"); got != "#BBBBBB" {
		t.Fatalf("mobile header bg = %q", got)
	}

	// And back.
	e.SetViewport(storefront.ViewportDesktop)
	if got := header.Style("background-color"); got != "#AAAAAA" {
		t.Fatalf("restored desktop header bg = %q", got)
	}
}

func TestHeaderIconColor(t *testing.T) {
	e := testEngine(t, storefront.ViewportDesktop)
	header := e.doc.ByElementID("header")

	e.Apply(NewEnvelope(UpdateHeaderIconColor, "#123456"))

	cart := header.Find(func(n *dom.Node) bool { return n.HasClass("header-icon") })
	if got := cart.Style("color"); got != "#123456" {
		t.Fatalf("icon color = %q", got)
	}
}

func TestLogoURL(t *testing.T) {
	e := testEngine(t, storefront.ViewportDesktop)

	e.Apply(NewEnvelope(UpdateLogo, "/uploads/new-logo.png"))

	if got := e.doc.ByElementID("logo").Attr("src"); got != "/uploads/new-logo.png" {
		t.Fatalf("logo src = %q", got)
	}
}

func TestFeaturedTitle(t *testing.T) {
	e := testEngine(t, storefront.ViewportDesktop)

	e.Apply(NewEnvelope(UpdateFeaturedSectionTitle, "Mais Vendidos"))

	section := e.doc.ByElementID("featured-products")
	h2 := section.Find(func(n *dom.Node) bool { return n.Tag == "h2" })
	if h2.Text != "Mais Vendidos" {
		t.Fatalf("featured title = %q", h2.Text)
	}
}
