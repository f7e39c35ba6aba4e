package render

import "github.com/vitrinelabs/vitrine/internal/storefront"

// BaseVM is what every layout-wrapped page gets.
type BaseVM struct {
	Title       string
	Active      string
	ContentTmpl string
	ActorEmail  string
	BaseURL     string
}

// DashboardVM lists an owner's stores.
type DashboardVM struct {
	BaseVM
	Stores []storefront.Store
}

// EditorVM drives the editor shell page.
type EditorVM struct {
	BaseVM
	Store         storefront.Store
	Settings      storefront.Settings
	Announcements []storefront.Announcement
	Banners       []storefront.Banner
	SessionID     string
	Viewport      string
}

// PreviewVM drives the standalone preview frame.
type PreviewVM struct {
	SessionID string
	HTML      string
	Viewport  string
	Denied    bool
}

// StorefrontVM drives the public storefront page.
type StorefrontVM struct {
	Title string
	HTML  string
}

// LoginVM drives the login/register page.
type LoginVM struct {
	BaseVM
	Error string
}
