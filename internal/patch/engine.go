package patch

import (
	"fmt"

	"github.com/vitrinelabs/vitrine/internal/dom"
	"github.com/vitrinelabs/vitrine/internal/storefront"
)

// PrimaryColorSheet is the named style resource that broadcasts the
// primary color document-wide. It is replaced wholesale on every update.
const PrimaryColorSheet = "dynamic-primary-color"

var (
	logoPositionClasses = []string{"logo-left", "logo-center", "logo-right"}
	logoSizeClasses     = []string{"logo-sm", "logo-md", "logo-lg"}
	menuPositionClasses = []string{"menu-left", "menu-center", "menu-right"}
	cartPositionClasses = []string{"cart-left", "cart-right"}
)

// Engine applies update messages to one renderable document. It remembers
// the header settings it has applied so far so that mobile overrides can be
// re-evaluated on every viewport resize: the effective header style is a
// pure function of (stored settings, current viewport), never a one-shot
// imperative action.
type Engine struct {
	doc      *dom.Document
	viewport storefront.Viewport
	settings storefront.Settings
}

// NewEngine wraps a freshly rendered document. settings must be the
// configuration the document was rendered from, so grid recomputation and
// header reapplication start from the right baseline.
func NewEngine(doc *dom.Document, settings storefront.Settings, viewport storefront.Viewport) *Engine {
	if viewport == "" {
		viewport = storefront.ViewportDesktop
	}
	return &Engine{doc: doc, viewport: viewport, settings: settings}
}

// Viewport returns the viewport the engine currently evaluates mobile
// overrides against.
func (e *Engine) Viewport() storefront.Viewport { return e.viewport }

// recipes is the closed dispatch table. A kind absent here is unknown and
// ignored; a recipe whose target node is missing is a silent no-op.
var recipes = map[string]func(*Engine, any){
	UpdateStoreName:            (*Engine).applyStoreName,
	UpdatePrimaryColor:         (*Engine).applyPrimaryColor,
	UpdateLogo:                 (*Engine).applyLogo,
	UpdateFeaturedSectionTitle: (*Engine).applyFeaturedTitle,
	UpdateProductsPerRow:       (*Engine).applyProductsPerRow,
	UpdateProductsPerRowMobile: (*Engine).applyProductsPerRowMobile,

	UpdateAnnouncementText:      (*Engine).applyAnnouncementText,
	UpdateAnnouncementBgColor:   (*Engine).applyAnnouncementBg,
	UpdateAnnouncementTextColor: (*Engine).applyAnnouncementColor,

	UpdateHeaderBackgroundColor: (*Engine).applyHeaderBg,
	UpdateHeaderTextColor:       (*Engine).applyHeaderText,
	UpdateHeaderIconColor:       (*Engine).applyHeaderIcon,
	UpdateLogoPosition:          (*Engine).applyLogoPosition,
	UpdateLogoSize:              (*Engine).applyLogoSize,
	UpdateMenuPosition:          (*Engine).applyMenuPosition,
	UpdateCartPosition:          (*Engine).applyCartPosition,

	UpdateHeaderMobileBackgroundColor: (*Engine).applyHeaderMobileBg,
	UpdateHeaderMobileTextColor:       (*Engine).applyHeaderMobileText,
	UpdateHeaderMobileIconColor:       (*Engine).applyHeaderMobileIcon,
}

// Apply dispatches one envelope. Foreign channel tags and unknown update
// kinds produce no mutation and no error; the return value reports
// whether a recipe ran.
func (e *Engine) Apply(env Envelope) bool {
	if e == nil || e.doc == nil || env.Type != EnvelopeType {
		return false
	}
	recipe, ok := recipes[env.UpdateType]
	if !ok {
		return false
	}
	recipe(e, env.Data)
	return true
}

// SetViewport records a viewport resize and re-evaluates the header
// styles, reapplying any stored mobile overrides without waiting for the
// original messages to be resent.
func (e *Engine) SetViewport(v storefront.Viewport) {
	if v == "" || v == e.viewport {
		return
	}
	e.viewport = v
	e.reapplyHeaderColors()
}

// ── recipes ──

func (e *Engine) applyStoreName(data any) {
	s, ok := asString(data)
	if !ok {
		return
	}
	if n := e.doc.ByElementID("store-name"); n != nil {
		n.SetText(s)
	}
}

func (e *Engine) applyPrimaryColor(data any) {
	color, ok := asString(data)
	if !ok {
		return
	}

	css := fmt.Sprintf(
		"[data-element-type=\"text\"], header a, header button, footer a { color: %s !important; }\n"+
			".price { color: %s !important; }\n"+
			".buy { background-color: %s !important; }\n",
		color, color, color)
	e.doc.SetStyleResource(PrimaryColorSheet, css)

	for _, n := range e.doc.ByType(dom.TypeText) {
		n.SetStyle("color", color)
	}
	root := e.doc.Root()
	for _, n := range root.FindAll(func(n *dom.Node) bool { return n.HasClass("price") }) {
		n.SetStyle("color", color)
	}
	for _, n := range root.FindAll(func(n *dom.Node) bool { return n.HasClass("buy") }) {
		n.SetStyle("background-color", color)
	}
}

func (e *Engine) applyLogo(data any) {
	url, ok := asString(data)
	if !ok {
		return
	}
	if n := e.doc.ByElementID("logo"); n != nil {
		n.SetAttr("src", url)
	}
}

func (e *Engine) applyFeaturedTitle(data any) {
	s, ok := asString(data)
	if !ok {
		return
	}
	section := e.doc.ByElementID("featured-products")
	if section == nil {
		return
	}
	if h := section.Find(func(n *dom.Node) bool { return n.Tag == "h2" }); h != nil {
		h.SetText(s)
	}
}

func (e *Engine) applyProductsPerRow(data any) {
	n, ok := asInt(data)
	if !ok {
		return
	}
	e.settings.ProductsPerRow = storefront.ClampDesktopColumns(n)
	e.recomputeGrids()
}

func (e *Engine) applyProductsPerRowMobile(data any) {
	n, ok := asInt(data)
	if !ok {
		return
	}
	e.settings.ProductsPerRowMobile = storefront.ClampMobileColumns(n)
	e.recomputeGrids()
}

// recomputeGrids replaces the layout classes of every product grid (the
// featured section and each category) so all regions stay consistent.
func (e *Engine) recomputeGrids() {
	classes := storefront.GridClasses(e.settings.ProductsPerRowMobile, e.settings.ProductsPerRow)

	var regions []*dom.Node
	if featured := e.doc.ByElementID("featured-products"); featured != nil {
		regions = append(regions, featured)
	}
	regions = append(regions, e.doc.ByType(dom.TypeCategory)...)

	for _, region := range regions {
		if grid := region.Find(func(n *dom.Node) bool { return n.HasClass("grid") }); grid != nil {
			grid.SetClasses(classes...)
		}
	}
}

// announcementNode locates an announcement by index, falling back to the
// flat identifier scheme older template versions rendered.
func (e *Engine) announcementNode(index int) *dom.Node {
	if n := e.doc.ByElementID(fmt.Sprintf("announcement-%d", index)); n != nil {
		return n
	}
	return e.doc.ByElementID(fmt.Sprintf("announcement-item-%d", index))
}

func (e *Engine) applyAnnouncementText(data any) {
	upd, ok := asIndexed(data)
	if !ok {
		return
	}
	item := e.announcementNode(upd.Index)
	if item == nil {
		return
	}
	if span := item.Find(func(n *dom.Node) bool { return n.Tag == "span" }); span != nil {
		span.SetText(upd.Text)
	} else {
		item.SetText(upd.Text)
	}
}

func (e *Engine) applyAnnouncementBg(data any) {
	upd, ok := asIndexed(data)
	if !ok {
		return
	}
	if item := e.announcementNode(upd.Index); item != nil {
		item.SetStyle("background-color", upd.Color)
	}
}

func (e *Engine) applyAnnouncementColor(data any) {
	upd, ok := asIndexed(data)
	if !ok {
		return
	}
	if item := e.announcementNode(upd.Index); item != nil {
		item.SetStyle("color", upd.Color)
	}
}

// ── header recipes ──

func (e *Engine) header() *dom.Node { return e.doc.ByElementID("header") }

func (e *Engine) applyHeaderBg(data any) {
	if c, ok := asString(data); ok {
		e.settings.HeaderBackgroundColor = c
		e.reapplyHeaderColors()
	}
}

func (e *Engine) applyHeaderText(data any) {
	if c, ok := asString(data); ok {
		e.settings.HeaderTextColor = c
		e.reapplyHeaderColors()
	}
}

func (e *Engine) applyHeaderIcon(data any) {
	if c, ok := asString(data); ok {
		e.settings.HeaderIconColor = c
		e.reapplyHeaderColors()
	}
}

func (e *Engine) applyHeaderMobileBg(data any) {
	if c, ok := asString(data); ok {
		e.settings.HeaderMobileBackgroundColor = c
		e.reapplyHeaderColors()
	}
}

func (e *Engine) applyHeaderMobileText(data any) {
	if c, ok := asString(data); ok {
		e.settings.HeaderMobileTextColor = c
		e.reapplyHeaderColors()
	}
}

func (e *Engine) applyHeaderMobileIcon(data any) {
	if c, ok := asString(data); ok {
		e.settings.HeaderMobileIconColor = c
		e.reapplyHeaderColors()
	}
}

// reapplyHeaderColors computes the effective header colors for the current
// viewport (mobile overrides win on mobile when set) and writes them onto
// the header and its icons.
func (e *Engine) reapplyHeaderColors() {
	header := e.header()
	if header == nil {
		return
	}
	s := e.settings
	mobile := e.viewport == storefront.ViewportMobile

	bg := s.HeaderBackgroundColor
	text := s.HeaderTextColor
	icon := s.HeaderIconColor
	if mobile {
		if s.HeaderMobileBackgroundColor != "" {
			bg = s.HeaderMobileBackgroundColor
		}
		if s.HeaderMobileTextColor != "" {
			text = s.HeaderMobileTextColor
		}
		if s.HeaderMobileIconColor != "" {
			icon = s.HeaderMobileIconColor
		}
	}

	if bg != "" {
		header.SetStyle("background-color", bg)
	}
	if text != "" {
		header.SetStyle("color", text)
	}
	if icon != "" {
		for _, n := range header.FindAll(func(n *dom.Node) bool { return n.HasClass("header-icon") }) {
			n.SetStyle("color", icon)
		}
	}
}

func (e *Engine) applyLogoPosition(data any) {
	pos, ok := asString(data)
	if !ok || !oneOf(pos, "left", "center", "right") {
		return
	}
	if header := e.header(); header != nil {
		e.settings.LogoPosition = pos
		header.ReplaceClassGroup(logoPositionClasses, "logo-"+pos)
	}
}

func (e *Engine) applyLogoSize(data any) {
	size, ok := asString(data)
	if !ok || !oneOf(size, "small", "medium", "large") {
		return
	}
	logo := e.doc.ByElementID("logo")
	if logo == nil {
		return
	}
	e.settings.LogoSize = size
	class := map[string]string{"small": "logo-sm", "medium": "logo-md", "large": "logo-lg"}[size]
	logo.ReplaceClassGroup(logoSizeClasses, class)
}

func (e *Engine) applyMenuPosition(data any) {
	pos, ok := asString(data)
	if !ok || !oneOf(pos, "left", "center", "right") {
		return
	}
	header := e.header()
	if header == nil {
		return
	}
	nav := header.Find(func(n *dom.Node) bool { return n.Tag == "nav" })
	if nav == nil {
		// Mobile layout renders no inline nav; remember the choice anyway.
		e.settings.MenuPosition = pos
		return
	}
	e.settings.MenuPosition = pos
	nav.ReplaceClassGroup(menuPositionClasses, "menu-"+pos)
}

func (e *Engine) applyCartPosition(data any) {
	pos, ok := asString(data)
	if !ok || !oneOf(pos, "left", "right") {
		return
	}
	header := e.header()
	if header == nil {
		return
	}
	cart := header.Find(func(n *dom.Node) bool { return n.Attr("aria-label") == "carrinho" })
	if cart == nil {
		return
	}
	e.settings.CartPosition = pos
	cart.ReplaceClassGroup(cartPositionClasses, "cart-"+pos)
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
