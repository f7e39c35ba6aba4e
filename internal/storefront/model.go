// Package storefront holds the store domain model and the renderer that
// turns a store's configuration and catalog into a renderable document.
package storefront

// Store is the top-level storefront entity.
type Store struct {
	ID           string `json:"id"`
	OwnerID      string `json:"owner_id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	LogoURL      string `json:"logo_url"`
	PrimaryColor string `json:"primary_color"`
	WhatsApp     string `json:"whatsapp"`
	About        string `json:"about"` // markdown, shown in the footer
}

// Settings is the per-store theme configuration. Field names follow the
// persisted column names one-to-one.
type Settings struct {
	StoreID              string   `json:"store_id"`
	Font                 string   `json:"font"`
	FeaturedSectionTitle string   `json:"featured_section_title"`
	FeaturedProducts     []string `json:"featured_products"`
	ProductsPerRow       int      `json:"products_per_row"`
	ProductsPerRowMobile int      `json:"products_per_row_mobile"`

	HeaderBackgroundColor string `json:"header_background_color"`
	HeaderTextColor       string `json:"header_text_color"`
	HeaderIconColor       string `json:"header_icon_color"`
	LogoPosition          string `json:"logo_position"` // left | center | right
	LogoSize              string `json:"logo_size"`     // small | medium | large
	MenuPosition          string `json:"menu_position"` // left | center | right
	CartPosition          string `json:"cart_position"` // left | right

	HeaderMobileBackgroundColor string `json:"header_mobile_background_color"`
	HeaderMobileTextColor       string `json:"header_mobile_text_color"`
	HeaderMobileIconColor       string `json:"header_mobile_icon_color"`
}

// DefaultSettings mirrors the defaults applied when a store has no saved
// settings row yet.
func DefaultSettings(storeID string) Settings {
	return Settings{
		StoreID:              storeID,
		FeaturedSectionTitle: "Destaques",
		ProductsPerRow:       4,
		ProductsPerRowMobile: 1,

		HeaderBackgroundColor: "#FFFFFF",
		HeaderTextColor:       "#000000",
		HeaderIconColor:       "#000000",
		LogoPosition:          "center",
		LogoSize:              "medium",
		MenuPosition:          "left",
		CartPosition:          "right",

		HeaderMobileBackgroundColor: "#FFFFFF",
		HeaderMobileTextColor:       "#000000",
		HeaderMobileIconColor:       "#000000",
	}
}

// Announcement is one entry in the rotating announcement bar.
type Announcement struct {
	ID              string `json:"id"`
	StoreID         string `json:"store_id"`
	Text            string `json:"text"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	Icon            string `json:"icon"`
	LinkURL         string `json:"link_url"`
	IsActive        bool   `json:"is_active"`
	OrderIndex      int    `json:"order_index"`
}

// Banner is a hero image slot.
type Banner struct {
	ID         string `json:"id"`
	StoreID    string `json:"store_id"`
	Title      string `json:"title"`
	ImageURL   string `json:"image_url"`
	LinkURL    string `json:"link_url"`
	IsActive   bool   `json:"is_active"`
	OrderIndex int    `json:"order_index"`
}

// Category groups products into a storefront section.
type Category struct {
	ID         string `json:"id"`
	StoreID    string `json:"store_id"`
	Name       string `json:"name"`
	IsActive   bool   `json:"is_active"`
	OrderIndex int    `json:"order_index"`
}

// Product is one catalog item.
type Product struct {
	ID          string  `json:"id"`
	StoreID     string  `json:"store_id"`
	CategoryID  string  `json:"category_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	IsActive    bool    `json:"is_active"`
	IsFeatured  bool    `json:"is_featured"`
	OrderIndex  int     `json:"order_index"`
}

// Data bundles everything the renderer needs for one store.
type Data struct {
	Store         Store
	Settings      Settings
	Announcements []Announcement
	Banners       []Banner
	Categories    []Category
	Products      []Product
}

// ProductsByCategory groups active products per category id, keeping order.
func (d *Data) ProductsByCategory() map[string][]Product {
	out := make(map[string][]Product)
	for _, p := range d.Products {
		if !p.IsActive || p.CategoryID == "" {
			continue
		}
		out[p.CategoryID] = append(out[p.CategoryID], p)
	}
	return out
}

// Featured returns the products shown in the featured section: the ones
// listed in settings when present, otherwise every product flagged
// featured.
func (d *Data) Featured() []Product {
	if len(d.Settings.FeaturedProducts) > 0 {
		want := make(map[string]bool, len(d.Settings.FeaturedProducts))
		for _, id := range d.Settings.FeaturedProducts {
			want[id] = true
		}
		var out []Product
		for _, p := range d.Products {
			if p.IsActive && want[p.ID] {
				out = append(out, p)
			}
		}
		return out
	}
	var out []Product
	for _, p := range d.Products {
		if p.IsActive && p.IsFeatured {
			out = append(out, p)
		}
	}
	return out
}
