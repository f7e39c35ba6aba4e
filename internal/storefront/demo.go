package storefront

// Demo content shown while a store's own catalog is still empty, so the
// editor preview never renders a blank page. Each collection falls back
// independently: real announcements with zero products still get demo
// products, and so on.

var demoAnnouncements = []Announcement{
	{ID: "demo-announcement-0", Text: "Frete grátis acima de R$ 99", BackgroundColor: "#EC4899", TextColor: "#FFFFFF", IsActive: true, OrderIndex: 0},
	{ID: "demo-announcement-1", Text: "10% de desconto na primeira compra", BackgroundColor: "#2563EB", TextColor: "#FFFFFF", IsActive: true, OrderIndex: 1},
}

var demoBanners = []Banner{
	{ID: "demo-banner-0", Title: "Nova coleção", ImageURL: "/assets/demo/banner-1.jpg", IsActive: true, OrderIndex: 0},
	{ID: "demo-banner-1", Title: "Promoções da semana", ImageURL: "/assets/demo/banner-2.jpg", IsActive: true, OrderIndex: 1},
}

var demoCategories = []Category{
	{ID: "demo-cat-roupas", Name: "Roupas", IsActive: true, OrderIndex: 0},
	{ID: "demo-cat-acessorios", Name: "Acessórios", IsActive: true, OrderIndex: 1},
}

var demoProducts = []Product{
	{ID: "demo-prod-1", CategoryID: "demo-cat-roupas", Name: "Camiseta básica", Price: 59.90, ImageURL: "/assets/demo/prod-1.jpg", IsActive: true, IsFeatured: true, OrderIndex: 0},
	{ID: "demo-prod-2", CategoryID: "demo-cat-roupas", Name: "Calça jeans", Price: 149.90, ImageURL: "/assets/demo/prod-2.jpg", IsActive: true, IsFeatured: true, OrderIndex: 1},
	{ID: "demo-prod-3", CategoryID: "demo-cat-acessorios", Name: "Boné", Price: 39.90, ImageURL: "/assets/demo/prod-3.jpg", IsActive: true, IsFeatured: false, OrderIndex: 0},
	{ID: "demo-prod-4", CategoryID: "demo-cat-acessorios", Name: "Mochila", Price: 189.90, ImageURL: "/assets/demo/prod-4.jpg", IsActive: true, IsFeatured: true, OrderIndex: 1},
}

// MergeDemoData fills empty collections with demo content. The store row
// itself is never replaced; demo ids are namespaced so they can never
// collide with persisted uuids.
func MergeDemoData(d Data) Data {
	if len(d.Announcements) == 0 {
		d.Announcements = demoAnnouncements
	}
	if len(d.Banners) == 0 {
		d.Banners = demoBanners
	}
	if len(d.Categories) == 0 {
		d.Categories = demoCategories
	}
	if len(d.Products) == 0 {
		d.Products = demoProducts
	}
	if d.Settings.StoreID == "" {
		d.Settings = DefaultSettings(d.Store.ID)
	}
	return d
}
