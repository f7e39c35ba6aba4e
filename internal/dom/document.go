package dom

import "sync"

// Document is a renderable document: one element tree plus the named style
// resources injected into it. Style resources are replaced wholesale by
// name: the "dynamic-primary-color" sheet is rewritten on every primary
// color update rather than appended to.
type Document struct {
	mu   sync.RWMutex
	root *Node

	styles     map[string]string
	styleOrder []string
}

// NewDocument wraps a root node.
func NewDocument(root *Node) *Document {
	return &Document{root: root, styles: make(map[string]string)}
}

// Root returns the root node.
func (d *Document) Root() *Node { return d.root }

// ByElementID returns the node tagged with the given element identifier,
// or nil.
func (d *Document) ByElementID(id string) *Node {
	if d == nil || d.root == nil || id == "" {
		return nil
	}
	return d.root.Find(func(n *Node) bool { return n.ElementID() == id })
}

// ByType returns every node tagged with the given element type, in
// document order.
func (d *Document) ByType(t ElementType) []*Node {
	if d == nil || d.root == nil {
		return nil
	}
	return d.root.FindAll(func(n *Node) bool { return n.ElementType() == t })
}

// NodeAt resolves a child-index path from the root, the shape the browser
// mirror reports pointer targets in. Returns nil for out-of-range paths.
func (d *Document) NodeAt(path []int) *Node {
	if d == nil || d.root == nil {
		return nil
	}
	cur := d.root
	for _, idx := range path {
		if idx < 0 || idx >= len(cur.Children) {
			return nil
		}
		cur = cur.Children[idx]
	}
	return cur
}

// SetStyleResource installs or replaces a named style sheet. Replacement is
// wholesale: the previous content of the same name is discarded.
func (d *Document) SetStyleResource(name, css string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.styles[name]; !exists {
		d.styleOrder = append(d.styleOrder, name)
	}
	d.styles[name] = css
}

// StyleResource returns the content of a named style sheet, and whether it
// is installed.
func (d *Document) StyleResource(name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	css, ok := d.styles[name]
	return css, ok
}

// RemoveStyleResource uninstalls a named style sheet.
func (d *Document) RemoveStyleResource(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.styles[name]; !ok {
		return
	}
	delete(d.styles, name)
	for i, n := range d.styleOrder {
		if n == name {
			d.styleOrder = append(d.styleOrder[:i], d.styleOrder[i+1:]...)
			break
		}
	}
}

// StyleResourceNames returns installed sheet names in insertion order.
func (d *Document) StyleResourceNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.styleOrder))
	copy(out, d.styleOrder)
	return out
}
