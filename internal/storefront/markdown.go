package storefront

import (
	"bytes"
	"log"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.Linkify),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// renderMarkdown converts store-authored markdown (the footer about text)
// to HTML. On failure the raw text is dropped rather than leaked unescaped.
func renderMarkdown(src string) string {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		log.Printf("STOREFRONT: markdown render: %v", err)
		return ""
	}
	return buf.String()
}
