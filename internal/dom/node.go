// Package dom implements the server-side document tree that backs a
// renderable storefront preview. The tree is the authoritative copy of what
// the browser mirror shows; the patch engine and the selection protocol both
// operate on it directly, so every mutation here must be idempotent.
package dom

import (
	"sort"
	"strings"
)

// Attribute names that make a node reachable by the selection protocol.
const (
	AttrElementID   = "data-element-id"
	AttrElementType = "data-element-type"
)

// ElementType classifies the editing affordances of a tagged node.
type ElementType string

const (
	TypeHeader           ElementType = "header"
	TypeLogo             ElementType = "logo"
	TypeText             ElementType = "text"
	TypeAnnouncement     ElementType = "announcement"
	TypeBanner           ElementType = "banner"
	TypeCategory         ElementType = "category"
	TypeFeaturedProducts ElementType = "featured-products"
	TypeProduct          ElementType = "product"
	TypeFooter           ElementType = "footer"
)

// Node is one element in a renderable document tree.
type Node struct {
	Tag  string
	Text string

	// Raw is pre-rendered inner HTML (markdown output); serialized
	// unescaped and mutually exclusive with Text.
	Raw string

	attrs    map[string]string
	classes  []string
	styles   map[string]string
	parent   *Node
	Children []*Node
}

// NewNode creates a node with the given tag.
func NewNode(tag string) *Node {
	return &Node{Tag: tag}
}

// Tagged marks the node with the stable element identifier pair and returns
// the node for chaining during render.
func (n *Node) Tagged(id string, typ ElementType) *Node {
	n.SetAttr(AttrElementID, id)
	n.SetAttr(AttrElementType, string(typ))
	return n
}

// ElementID returns the stable element identifier, or "" if untagged.
func (n *Node) ElementID() string { return n.Attr(AttrElementID) }

// ElementType returns the semantic element type tag, or "" if untagged.
func (n *Node) ElementType() ElementType { return ElementType(n.Attr(AttrElementType)) }

// Append adds children to the node and returns the node.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// SetText replaces the node's text content.
func (n *Node) SetText(s string) { n.Text = s }

// SetAttr sets an attribute. Setting the same value twice is a no-op.
func (n *Node) SetAttr(key, val string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[key] = val
}

// Attr returns an attribute value, or "" when absent.
func (n *Node) Attr(key string) string { return n.attrs[key] }

// RemoveAttr deletes an attribute.
func (n *Node) RemoveAttr(key string) { delete(n.attrs, key) }

// SetStyle sets one inline style property.
func (n *Node) SetStyle(prop, val string) {
	if n.styles == nil {
		n.styles = make(map[string]string)
	}
	n.styles[prop] = val
}

// Style returns an inline style property, or "" when unset.
func (n *Node) Style(prop string) string { return n.styles[prop] }

// AddClass adds a class if not already present.
func (n *Node) AddClass(class string) {
	if n.HasClass(class) {
		return
	}
	n.classes = append(n.classes, class)
}

// RemoveClass removes a class if present.
func (n *Node) RemoveClass(class string) {
	for i, c := range n.classes {
		if c == class {
			n.classes = append(n.classes[:i], n.classes[i+1:]...)
			return
		}
	}
}

// HasClass reports whether the node carries the class.
func (n *Node) HasClass(class string) bool {
	for _, c := range n.classes {
		if c == class {
			return true
		}
	}
	return false
}

// Classes returns a copy of the class list.
func (n *Node) Classes() []string {
	out := make([]string, len(n.classes))
	copy(out, n.classes)
	return out
}

// SetClasses replaces the whole class list, the way assigning className
// does. Duplicates are collapsed, order of first occurrence kept.
func (n *Node) SetClasses(classes ...string) {
	n.classes = n.classes[:0]
	for _, c := range classes {
		if c != "" {
			n.AddClass(c)
		}
	}
}

// ReplaceClassGroup removes every class in group and then adds repl. Layout
// groups (logo-*, menu-*, cart-*) must be fully replaced, not appended, so
// repeated updates never accumulate conflicting classes.
func (n *Node) ReplaceClassGroup(group []string, repl string) {
	for _, g := range group {
		n.RemoveClass(g)
	}
	if repl != "" {
		n.AddClass(repl)
	}
}

// Closest walks up from the node (inclusive) and returns the nearest node
// for which pred returns true, or nil.
func (n *Node) Closest(pred func(*Node) bool) *Node {
	for cur := n; cur != nil; cur = cur.parent {
		if pred(cur) {
			return cur
		}
	}
	return nil
}

// ClosestTagged returns the nearest ancestor (inclusive) carrying an
// element identifier, or nil when the click landed outside any tagged
// region.
func (n *Node) ClosestTagged() *Node {
	return n.Closest(func(c *Node) bool { return c.ElementID() != "" })
}

// Walk visits the node and all descendants depth-first. Returning false
// from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first descendant (inclusive) matching pred.
func (n *Node) Find(pred func(*Node) bool) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if pred(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindAll returns every descendant (inclusive) matching pred, in document
// order.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if pred(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Path returns the child-index path from the document root to the node.
func (n *Node) Path() []int {
	var path []int
	for cur := n; cur.parent != nil; cur = cur.parent {
		idx := 0
		for i, sib := range cur.parent.Children {
			if sib == cur {
				idx = i
				break
			}
		}
		path = append(path, idx)
	}
	// Reverse: collected leaf→root.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// sortedAttrKeys returns attribute names in stable order for serialization.
func (n *Node) sortedAttrKeys() []string {
	keys := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// styleAttr renders the inline styles as a style attribute value.
func (n *Node) styleAttr() string {
	if len(n.styles) == 0 {
		return ""
	}
	props := make([]string, 0, len(n.styles))
	for p := range n.styles {
		props = append(props, p)
	}
	sort.Strings(props)
	var b strings.Builder
	for i, p := range props {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(p)
		b.WriteString(": ")
		b.WriteString(n.styles[p])
	}
	return b.String()
}
