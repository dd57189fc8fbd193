package pandoc

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// renderFunc re-enters the full render pipeline for an embedded note.
type renderFunc func(ctx context.Context, req RenderRequest) (*Result, error)

// embedExpander replaces embedded-note elements with the rendered content of
// the note they reference, recursing through the pipeline one element at a
// time in document order.
type embedExpander struct {
	resolver *resolver
	render   renderFunc
	logger   *slog.Logger
}

// Expand processes every embedded-note element in the fragment. All failures
// are scoped to the element that raised them: the element is logged and left
// unexpanded, never aborting the enclosing render.
func (e *embedExpander) Expand(ctx context.Context, frag *Fragment, rc renderContext) {
	for _, n := range frag.findAll(kindInternalEmbed) {
		e.expandOne(ctx, n, rc)
	}
}

func (e *embedExpander) expandOne(ctx context.Context, n *html.Node, rc renderContext) {
	src := getAttr(n, "src")
	base, _ := splitAnchor(src)

	rf, ok := e.resolver.Resolve(base, rc.notePath)
	if !ok {
		e.logger.Warn("embed target not found, leaving element as-is",
			"ref", src, "note", rc.notePath)
		return
	}

	// A target already being expanded somewhere up the chain would recurse
	// forever; degrade to a plain link so navigability survives.
	if rc.inAncestry(rf.AbsPath) {
		replaceNode(n, cycleLink(n, rf))
		return
	}

	res, err := e.render(ctx, RenderRequest{
		NotePath:  rf.AbsPath,
		Format:    rc.format,
		Ancestors: rc.descend(rf.AbsPath).ancestors,
	})
	if err != nil {
		e.logger.Warn("embed expansion failed, leaving element as-is",
			"ref", src, "note", rc.notePath, "error", err)
		return
	}

	child, err := ParseFragmentHTML(res.HTML)
	if err != nil {
		e.logger.Warn("embed splice failed, leaving element as-is",
			"ref", src, "note", rc.notePath, "error", err)
		return
	}
	replaceNode(n, childNodes(child.container)...)
}

// cycleLink builds the hyperlink that stands in for a cyclic embed. Display
// text is the element's existing inner content, or the target's base name
// when empty. The link rewriter pass finalizes the href like any other
// internal link.
func cycleLink(n *html.Node, rf ResolvedFile) *html.Node {
	display := strings.TrimSpace(textContent(n))
	if display == "" {
		display = rf.Base
	}
	a := newElement("a",
		"href", internalLinkPrefix+url.PathEscape(rf.Base),
		"class", "internal-link")
	a.AppendChild(newTextNode(display))
	return a
}
