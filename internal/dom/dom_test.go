package dom

import (
	"strings"
	"testing"
)

func buildTestDoc() *Document {
	span := NewNode("span")
	span.SetText("Minha Loja")
	name := NewNode("h1").Tagged("store-name", TypeText).Append(span)
	logo := NewNode("img").Tagged("logo", TypeLogo)
	logo.SetAttr("src", "/uploads/logo.png")
	header := NewNode("header").Tagged("header", TypeHeader).Append(logo, name)

	body := NewNode("body").Append(header)
	return NewDocument(NewNode("html").Append(body))
}

func TestByElementID(t *testing.T) {
	doc := buildTestDoc()

	n := doc.ByElementID("logo")
	if n == nil {
		t.Fatal("logo not found")
	}
	if n.Attr("src") != "/uploads/logo.png" {
		t.Fatalf("unexpected src %q", n.Attr("src"))
	}

	if doc.ByElementID("missing") != nil {
		t.Fatal("expected nil for unknown id")
	}
}

func TestClosestTagged(t *testing.T) {
	doc := buildTestDoc()

	t.Run("inclusive", func(t *testing.T) {
		header := doc.ByElementID("header")
		if got := header.ClosestTagged(); got != header {
			t.Fatal("tagged node should resolve to itself")
		}
	})

	t.Run("ancestor", func(t *testing.T) {
		name := doc.ByElementID("store-name")
		inner := name.Children[0] // untagged span
		got := inner.ClosestTagged()
		if got == nil || got.ElementID() != "store-name" {
			t.Fatalf("expected store-name, got %v", got)
		}
	})

	t.Run("none", func(t *testing.T) {
		loose := NewNode("div")
		if loose.ClosestTagged() != nil {
			t.Fatal("untagged orphan should resolve to nil")
		}
	})
}

func TestNodeAtPath(t *testing.T) {
	doc := buildTestDoc()

	logo := doc.ByElementID("logo")
	path := logo.Path()
	if got := doc.NodeAt(path); got != logo {
		t.Fatalf("path %v did not round-trip", path)
	}

	if doc.NodeAt([]int{9, 9}) != nil {
		t.Fatal("out-of-range path should be nil")
	}
}

func TestClassOps(t *testing.T) {
	n := NewNode("div")
	n.AddClass("grid")
	n.AddClass("grid") // idempotent
	n.AddClass("gap-6")
	if got := strings.Join(n.Classes(), " "); got != "grid gap-6" {
		t.Fatalf("unexpected classes %q", got)
	}

	n.SetClasses("grid", "grid-cols-2", "gap-6")
	if n.HasClass("grid-cols-1") {
		t.Fatal("SetClasses must replace, not merge")
	}

	group := []string{"logo-left", "logo-center", "logo-right"}
	n.AddClass("logo-left")
	n.ReplaceClassGroup(group, "logo-right")
	if n.HasClass("logo-left") || !n.HasClass("logo-right") {
		t.Fatalf("class group not replaced: %v", n.Classes())
	}
	// Applying the same replacement twice must not accumulate.
	n.ReplaceClassGroup(group, "logo-right")
	count := 0
	for _, c := range n.Classes() {
		if c == "logo-right" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("logo-right accumulated %d times", count)
	}
}

func TestStyleResources(t *testing.T) {
	doc := buildTestDoc()

	doc.SetStyleResource("dynamic-primary-color", "a { color: #111 }")
	doc.SetStyleResource("dynamic-primary-color", "a { color: #222 }")

	css, ok := doc.StyleResource("dynamic-primary-color")
	if !ok || !strings.Contains(css, "#222") {
		t.Fatalf("replacement not wholesale: %q", css)
	}
	if names := doc.StyleResourceNames(); len(names) != 1 {
		t.Fatalf("duplicate sheet registered: %v", names)
	}

	doc.RemoveStyleResource("dynamic-primary-color")
	if _, ok := doc.StyleResource("dynamic-primary-color"); ok {
		t.Fatal("sheet still installed after removal")
	}
}

func TestHTMLDeterministic(t *testing.T) {
	doc := buildTestDoc()
	doc.SetStyleResource("editor-overlay-styles", "[data-element-id]{cursor:pointer}")

	a := doc.HTML()
	b := doc.HTML()
	if a != b {
		t.Fatal("serialization not deterministic")
	}
	if !strings.Contains(a, `data-element-id="logo"`) {
		t.Fatalf("missing element id attr in output:\n%s", a)
	}
	if !strings.Contains(a, `<style id="editor-overlay-styles">`) {
		t.Fatal("style resource not serialized")
	}
}

func TestHTMLEscaping(t *testing.T) {
	n := NewNode("span")
	n.SetText(`<script>alert("x")</script>`)
	if strings.Contains(n.HTML(), "<script>") {
		t.Fatal("text content not escaped")
	}
}
