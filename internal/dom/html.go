package dom

import (
	"html"
	"strings"
)

// Tags that never take a closing tag.
var voidTags = map[string]bool{
	"img": true, "br": true, "hr": true, "input": true, "meta": true, "link": true,
}

// HTML serializes the document for the browser mirror: style resources
// first, then the element tree. Output is deterministic (attributes and
// style properties sorted) so applying the same update twice yields
// byte-identical markup.
func (d *Document) HTML() string {
	if d == nil || d.root == nil {
		return ""
	}
	var b strings.Builder
	d.mu.RLock()
	for _, name := range d.styleOrder {
		b.WriteString(`<style id="`)
		b.WriteString(html.EscapeString(name))
		b.WriteString(`">`)
		b.WriteString(d.styles[name])
		b.WriteString("</style>\n")
	}
	d.mu.RUnlock()
	writeNode(&b, d.root)
	return b.String()
}

// InnerHTML serializes the style resources and the root's children
// without the root wrapper, for embedding into a host page that brings
// its own html element.
func (d *Document) InnerHTML() string {
	if d == nil || d.root == nil {
		return ""
	}
	var b strings.Builder
	d.mu.RLock()
	for _, name := range d.styleOrder {
		b.WriteString(`<style id="`)
		b.WriteString(html.EscapeString(name))
		b.WriteString(`">`)
		b.WriteString(d.styles[name])
		b.WriteString("</style>\n")
	}
	d.mu.RUnlock()
	for _, c := range d.root.Children {
		writeNode(&b, c)
	}
	return b.String()
}

// HTML serializes a single node subtree.
func (n *Node) HTML() string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	b.WriteByte('<')
	b.WriteString(n.Tag)

	for _, k := range n.sortedAttrKeys() {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(n.attrs[k]))
		b.WriteByte('"')
	}
	if len(n.classes) > 0 {
		b.WriteString(` class="`)
		b.WriteString(html.EscapeString(strings.Join(n.classes, " ")))
		b.WriteByte('"')
	}
	if s := n.styleAttr(); s != "" {
		b.WriteString(` style="`)
		b.WriteString(html.EscapeString(s))
		b.WriteByte('"')
	}

	if voidTags[n.Tag] {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')

	if n.Text != "" {
		b.WriteString(html.EscapeString(n.Text))
	} else if n.Raw != "" {
		b.WriteString(n.Raw)
	}
	for _, c := range n.Children {
		writeNode(b, c)
	}

	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}
