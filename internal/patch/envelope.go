// Package patch implements the receiving half of the preview update
// channel: a fixed JSON envelope and a dispatch table that turns each
// update kind into one targeted document mutation.
package patch

import (
	"encoding/json"
	"math"
	"strconv"
)

// EnvelopeType is the channel discriminator. Messages carrying any other
// value are not ours and must be ignored.
const EnvelopeType = "PREVIEW_UPDATE"

// Update kinds. Each maps to exactly one mutation recipe; there is no
// generic property setter.
const (
	UpdateStoreName            = "store_name"
	UpdatePrimaryColor         = "primary_color"
	UpdateLogo                 = "logo"
	UpdateFeaturedSectionTitle = "featured_section_title"
	UpdateProductsPerRow       = "products_per_row"
	UpdateProductsPerRowMobile = "products_per_row_mobile"

	UpdateAnnouncementText      = "announcement_text"
	UpdateAnnouncementBgColor   = "announcement_bg_color"
	UpdateAnnouncementTextColor = "announcement_text_color"

	UpdateHeaderBackgroundColor = "header_background_color"
	UpdateHeaderTextColor       = "header_text_color"
	UpdateHeaderIconColor       = "header_icon_color"
	UpdateLogoPosition          = "logo_position"
	UpdateLogoSize              = "logo_size"
	UpdateMenuPosition          = "menu_position"
	UpdateCartPosition          = "cart_position"

	UpdateHeaderMobileBackgroundColor = "header_mobile_background_color"
	UpdateHeaderMobileTextColor       = "header_mobile_text_color"
	UpdateHeaderMobileIconColor       = "header_mobile_icon_color"
)

// Envelope is the one bit-exact cross-boundary message format.
type Envelope struct {
	Type       string `json:"type"`
	UpdateType string `json:"updateType"`
	Data       any    `json:"data"`
}

// NewEnvelope builds a tagged update message.
func NewEnvelope(updateType string, data any) Envelope {
	return Envelope{Type: EnvelopeType, UpdateType: updateType, Data: data}
}

// Decode parses a raw message. ok is false for malformed JSON or a
// non-matching channel tag; both are foreign traffic, not errors.
func Decode(raw []byte) (Envelope, bool) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, false
	}
	if env.Type != EnvelopeType {
		return Envelope{}, false
	}
	return env, true
}

// IndexedUpdate is the payload of per-announcement updates.
type IndexedUpdate struct {
	Index int    `json:"index"`
	Text  string `json:"text,omitempty"`
	Color string `json:"color,omitempty"`
}

// asString coerces a payload to a string. Numbers are not coerced: a kind
// expecting text gets text or nothing.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asInt coerces a payload to an int. JSON numbers arrive as float64;
// in-process senders may pass int; string digits are tolerated since form
// inputs produce them.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// asIndexed coerces a payload to an IndexedUpdate, accepting both the
// typed struct (in-process) and the decoded JSON object (wire).
func asIndexed(v any) (IndexedUpdate, bool) {
	switch d := v.(type) {
	case IndexedUpdate:
		return d, true
	case *IndexedUpdate:
		if d != nil {
			return *d, true
		}
	case map[string]any:
		var out IndexedUpdate
		idx, ok := asInt(d["index"])
		if !ok {
			return IndexedUpdate{}, false
		}
		out.Index = idx
		out.Text, _ = asString(d["text"])
		out.Color, _ = asString(d["color"])
		return out, true
	}
	return IndexedUpdate{}, false
}
