package pandoc

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// internalLinkPrefix marks hrefs that point at other notes in the vault
// rather than external URLs.
const internalLinkPrefix = "app://obsidian.md/"

// Fragment is the mutable HTML tree being post-processed. Each render
// invocation owns exactly one Fragment; embedded notes produce a nested
// Fragment transiently, whose serialized form is spliced into the parent.
type Fragment struct {
	// container is a detached body element holding the fragment's nodes.
	// It exists only to give top-level nodes a parent for splicing and is
	// never serialized itself.
	container *html.Node
}

// ParseFragmentHTML parses markup into a Fragment, in body context.
func ParseFragmentHTML(markup string) (*Fragment, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFragmentParse, err)
	}
	container := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return &Fragment{container: container}, nil
}

// String serializes the fragment's content without the container element.
func (f *Fragment) String() string {
	var sb strings.Builder
	for c := f.container.FirstChild; c != nil; c = c.NextSibling {
		// Render only fails on unrenderable node types, which the parser
		// never produces.
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

// nodeKind is the semantic classification of a tree node. Post-processing
// passes match on kind, never on raw tag strings.
type nodeKind int

const (
	kindOther nodeKind = iota
	kindInternalEmbed
	kindInternalLink
	kindImage
	kindDiagram
)

// classify determines the semantic kind of a node.
func classify(n *html.Node) nodeKind {
	if n.Type != html.ElementNode {
		return kindOther
	}
	switch n.DataAtom {
	case atom.Img:
		return kindImage
	case atom.Svg:
		return kindDiagram
	case atom.A:
		if strings.HasPrefix(getAttr(n, "href"), internalLinkPrefix) {
			return kindInternalLink
		}
	case atom.Span, atom.Div:
		if hasClass(n, "internal-embed") {
			return kindInternalEmbed
		}
	}
	if n.Data == "svg" {
		return kindDiagram
	}
	return kindOther
}

// findAll collects every node of the given kind in document order. Passes
// collect before mutating so splices never disturb an in-flight traversal.
func (f *Fragment) findAll(kind nodeKind) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if classify(n) == kind {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := f.container.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return found
}

// getAttr returns the value of an attribute, or "" if absent.
func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// setAttr sets or replaces an attribute.
func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// hasClass reports whether the node's class attribute contains name.
func hasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

// textContent concatenates the visible text beneath a node.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// replaceNode swaps old for the given replacements at the same tree position.
// No-op when old has no parent (already detached).
func replaceNode(old *html.Node, replacements ...*html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	for _, r := range replacements {
		detach(r)
		parent.InsertBefore(r, old)
	}
	parent.RemoveChild(old)
}

// removeNode detaches a node from its parent.
func removeNode(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// detach removes a node from any parent so it can be re-inserted elsewhere.
func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// childNodes returns a stable slice of a node's children.
func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// newTextNode creates a text node.
func newTextNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// newElement creates an element node; attrs are key/value pairs.
func newElement(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// serializeNode renders a single node to markup.
func serializeNode(n *html.Node) string {
	var sb strings.Builder
	_ = html.Render(&sb, n)
	return sb.String()
}
