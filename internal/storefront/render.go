package storefront

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vitrinelabs/vitrine/internal/dom"
)

// Viewport selects the structural layout of the render. Mobile and desktop
// differ structurally (collapsed menu vs. inline nav), not just by CSS
// breakpoint, which is why toggling the mode re-renders the document.
type Viewport string

const (
	ViewportMobile  Viewport = "mobile"
	ViewportDesktop Viewport = "desktop"
)

// Options controls a render pass.
type Options struct {
	Viewport Viewport
	// Preview marks the document as a display-only render: functional
	// controls are disabled at render time and the preview guard script
	// is expected to cancel whatever slips through.
	Preview bool
}

// Render builds the renderable document for a store. Every editable region
// is tagged with its stable element identifier and type; regions left
// untagged are not reachable by the selection protocol.
func Render(d Data, opts Options) *dom.Document {
	if opts.Viewport == "" {
		opts.Viewport = ViewportDesktop
	}
	s := d.Settings

	body := dom.NewNode("body")
	if opts.Preview {
		body.SetAttr("data-preview-mode", "true")
	}
	body.AddClass("viewport-" + string(opts.Viewport))
	if s.Font != "" {
		body.SetStyle("font-family", s.Font)
	}

	body.Append(renderHeader(d, opts))
	body.Append(renderAnnouncements(d.Announcements))
	body.Append(renderBanners(d.Banners, opts))
	body.Append(renderFeatured(d))
	for _, sec := range renderCategories(d) {
		body.Append(sec)
	}
	body.Append(renderFooter(d))

	root := dom.NewNode("html").Append(body)
	return dom.NewDocument(root)
}

func renderHeader(d Data, opts Options) *dom.Node {
	s := d.Settings
	mobile := opts.Viewport == ViewportMobile

	header := dom.NewNode("header").Tagged("header", dom.TypeHeader)
	header.AddClass("logo-" + orDefault(s.LogoPosition, "center"))
	header.SetStyle("background-color", pick(mobile, s.HeaderMobileBackgroundColor, s.HeaderBackgroundColor))
	header.SetStyle("color", pick(mobile, s.HeaderMobileTextColor, s.HeaderTextColor))

	if d.Store.LogoURL != "" {
		logo := dom.NewNode("img").Tagged("logo", dom.TypeLogo)
		logo.SetAttr("src", d.Store.LogoURL)
		logo.SetAttr("alt", d.Store.Name)
		logo.AddClass(logoSizeClass(s.LogoSize))
		header.Append(logo)
	}

	name := dom.NewNode("h1").Tagged("store-name", dom.TypeText)
	name.SetText(d.Store.Name)
	if d.Store.PrimaryColor != "" {
		name.SetStyle("color", d.Store.PrimaryColor)
	}
	header.Append(name)

	iconColor := pick(mobile, s.HeaderMobileIconColor, s.HeaderIconColor)
	if mobile {
		// Collapsed menu toggle instead of inline nav.
		toggle := dom.NewNode("button")
		toggle.AddClass("header-icon")
		toggle.AddClass("menu-toggle")
		toggle.SetAttr("aria-label", "menu")
		toggle.SetStyle("color", iconColor)
		header.Append(toggle)
	} else {
		nav := dom.NewNode("nav")
		nav.AddClass("menu-" + orDefault(s.MenuPosition, "left"))
		for _, c := range d.Categories {
			if !c.IsActive {
				continue
			}
			link := dom.NewNode("a")
			link.SetAttr("href", "#category-"+c.ID)
			link.SetText(c.Name)
			nav.Append(link)
		}
		header.Append(nav)
	}

	cart := dom.NewNode("button")
	cart.AddClass("header-icon")
	cart.AddClass("cart-" + orDefault(s.CartPosition, "right"))
	cart.SetAttr("aria-label", "carrinho")
	cart.SetStyle("color", iconColor)
	if opts.Preview {
		cart.SetAttr("disabled", "disabled")
	}
	header.Append(cart)

	return header
}

func renderAnnouncements(announcements []Announcement) *dom.Node {
	bar := dom.NewNode("div")
	bar.AddClass("announcements")

	i := 0
	for _, a := range announcements {
		if !a.IsActive {
			continue
		}
		item := dom.NewNode("div").Tagged(fmt.Sprintf("announcement-%d", i), dom.TypeAnnouncement)
		item.SetStyle("background-color", orDefault(a.BackgroundColor, "#EC4899"))
		item.SetStyle("color", orDefault(a.TextColor, "#FFFFFF"))

		text := dom.NewNode("span")
		if a.Icon != "" {
			text.SetText(a.Icon + " " + a.Text)
		} else {
			text.SetText(a.Text)
		}
		item.Append(text)
		bar.Append(item)
		i++
	}
	return bar
}

func renderBanners(banners []Banner, opts Options) *dom.Node {
	section := dom.NewNode("section")
	section.AddClass("banners")

	i := 0
	for _, b := range banners {
		if !b.IsActive {
			continue
		}
		item := dom.NewNode("div").Tagged(fmt.Sprintf("banner-%d", i), dom.TypeBanner)
		img := dom.NewNode("img")
		img.SetAttr("src", b.ImageURL)
		img.SetAttr("alt", b.Title)
		item.Append(img)
		if b.LinkURL != "" && !opts.Preview {
			link := dom.NewNode("a")
			link.SetAttr("href", b.LinkURL)
			item.Append(link)
		}
		section.Append(item)
		i++
	}
	return section
}

func renderFeatured(d Data) *dom.Node {
	s := d.Settings
	section := dom.NewNode("section").Tagged("featured-products", dom.TypeFeaturedProducts)

	title := dom.NewNode("h2")
	title.SetText(orDefault(s.FeaturedSectionTitle, "Destaques"))
	section.Append(title)

	grid := dom.NewNode("div")
	grid.SetClasses(GridClasses(s.ProductsPerRowMobile, s.ProductsPerRow)...)
	for _, p := range d.Featured() {
		grid.Append(renderProductCard(p, d.Store))
	}
	section.Append(grid)
	return section
}

func renderCategories(d Data) []*dom.Node {
	s := d.Settings
	byCat := d.ProductsByCategory()

	var sections []*dom.Node
	for _, c := range d.Categories {
		if !c.IsActive {
			continue
		}
		section := dom.NewNode("section").Tagged("category-"+c.ID, dom.TypeCategory)
		section.SetAttr("id", "category-"+c.ID)

		title := dom.NewNode("h3")
		title.SetText(c.Name)
		section.Append(title)

		grid := dom.NewNode("div")
		grid.SetClasses(GridClasses(s.ProductsPerRowMobile, s.ProductsPerRow)...)
		for _, p := range byCat[c.ID] {
			grid.Append(renderProductCard(p, d.Store))
		}
		section.Append(grid)
		sections = append(sections, section)
	}
	return sections
}

func renderProductCard(p Product, store Store) *dom.Node {
	card := dom.NewNode("div").Tagged("product-"+p.ID, dom.TypeProduct)
	card.AddClass("product-card")

	if p.ImageURL != "" {
		img := dom.NewNode("img")
		img.SetAttr("src", p.ImageURL)
		img.SetAttr("alt", p.Name)
		card.Append(img)
	}

	name := dom.NewNode("h4")
	name.SetText(p.Name)
	card.Append(name)

	price := dom.NewNode("p")
	price.AddClass("price")
	price.SetText(FormatPrice(p.Price))
	if store.PrimaryColor != "" {
		price.SetStyle("color", store.PrimaryColor)
	}
	card.Append(price)

	buy := dom.NewNode("button")
	buy.AddClass("buy")
	buy.SetText("COMPRAR")
	if store.PrimaryColor != "" {
		buy.SetStyle("background-color", store.PrimaryColor)
	}
	card.Append(buy)

	return card
}

func renderFooter(d Data) *dom.Node {
	footer := dom.NewNode("footer").Tagged("footer", dom.TypeFooter)

	if about := renderMarkdown(d.Store.About); about != "" {
		aboutNode := dom.NewNode("div")
		aboutNode.AddClass("about")
		aboutNode.Raw = about
		footer.Append(aboutNode)
	}

	if d.Store.WhatsApp != "" {
		contact := dom.NewNode("a")
		contact.SetAttr("href", "https://wa.me/"+d.Store.WhatsApp)
		contact.SetText("Fale conosco")
		footer.Append(contact)
	}

	credit := dom.NewNode("p")
	credit.SetText(d.Store.Name)
	footer.Append(credit)
	return footer
}

func logoSizeClass(size string) string {
	switch size {
	case "small":
		return "logo-sm"
	case "large":
		return "logo-lg"
	default:
		return "logo-md"
	}
}

// FormatPrice renders a price in BRL convention (comma decimal separator).
func FormatPrice(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	return "R$ " + strings.ReplaceAll(s, ".", ",")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func pick(mobile bool, mobileVal, desktopVal string) string {
	if mobile && mobileVal != "" {
		return mobileVal
	}
	if desktopVal != "" {
		return desktopVal
	}
	return "#000000"
}
