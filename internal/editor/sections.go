package editor

import "github.com/vitrinelabs/vitrine/internal/dom"

// Section identifies one panel of the editor sidebar.
type Section string

const (
	SectionNone          Section = ""
	SectionHeader        Section = "header"
	SectionAnnouncements Section = "announcements"
	SectionBanners       Section = "banners"
	SectionProducts      Section = "products"
	SectionFooter        Section = "footer"
)

// sectionByType is the fixed routing table from element type to editor
// section. Types absent here do not open a panel.
var sectionByType = map[dom.ElementType]Section{
	dom.TypeHeader:           SectionHeader,
	dom.TypeLogo:             SectionHeader,
	dom.TypeText:             SectionHeader,
	dom.TypeAnnouncement:     SectionAnnouncements,
	dom.TypeBanner:           SectionBanners,
	dom.TypeCategory:         SectionProducts,
	dom.TypeFeaturedProducts: SectionProducts,
	dom.TypeProduct:          SectionProducts,
	dom.TypeFooter:           SectionFooter,
}

// SectionForType resolves the panel an element type belongs to.
func SectionForType(t dom.ElementType) (Section, bool) {
	s, ok := sectionByType[t]
	return s, ok
}

// ValidSection reports whether a client-supplied section name is known.
func ValidSection(s Section) bool {
	switch s {
	case SectionHeader, SectionAnnouncements, SectionBanners, SectionProducts, SectionFooter:
		return true
	}
	return false
}
