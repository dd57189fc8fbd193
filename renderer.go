package pandoc

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer abstracts the markdown-to-HTML rendering engine. The returned
// Fragment is owned by the caller; rendering must be side-effect-free on its
// inputs. contextFolder is the vault-relative folder of the note being
// rendered, for engines that resolve relative constructs during rendering.
type Renderer interface {
	RenderFragment(ctx context.Context, markdown, contextFolder string) (*Fragment, error)
}

// Precompiled wiki-notation patterns. Embeds carry a leading bang and must be
// matched before plain links.
var (
	embedTokenPattern = regexp.MustCompile(`!\[\[([^\[\]|]+?)(?:\|([^\[\]]+?))?\]\]`)
	wikiLinkPattern   = regexp.MustCompile(`\[\[([^\[\]|]+?)(?:\|([^\[\]]+?))?\]\]`)
	fenceDelimiter    = regexp.MustCompile("^(```|~~~)")
)

// goldmarkRenderer renders markdown with goldmark (pure Go). Wiki notation
// ([[link]], ![[embed]]) is lowered to HTML before conversion so the
// post-processing passes see the same element shapes a native knowledge-base
// renderer produces.
type goldmarkRenderer struct {
	md goldmark.Markdown
}

// NewGoldmarkRenderer creates a Renderer backed by goldmark with GFM
// extensions and class-based syntax highlighting.
func NewGoldmarkRenderer() Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // CSS classes keep markup small and stylable
				),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(), // Treat newlines as <br>, matching note-editor behavior
			html.WithXHTML(),     // Self-closing tags
			html.WithUnsafe(),    // Pass through the lowered wiki-notation HTML
		),
	)
	return &goldmarkRenderer{md: md}
}

// RenderFragment converts markdown to an HTML fragment. Supports context
// cancellation via goroutine + select since goldmark doesn't take a context.
func (r *goldmarkRenderer) RenderFragment(ctx context.Context, markdown, contextFolder string) (*Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content := lowerWikiNotation(markdown)

	type result struct {
		frag *Fragment
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrRenderFailed, err)}
			return
		}
		frag, err := ParseFragmentHTML(buf.String())
		done <- result{frag: frag, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.frag, res.err
	}
}

// lowerWikiNotation rewrites [[link]] and ![[embed]] tokens to their HTML
// element forms, skipping fenced code blocks so examples survive verbatim.
func lowerWikiNotation(content string) string {
	lines := strings.Split(content, "\n")
	inFence := false
	for i, line := range lines {
		if fenceDelimiter.MatchString(strings.TrimLeft(line, " \t")) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		line = embedTokenPattern.ReplaceAllStringFunc(line, lowerEmbedToken)
		line = wikiLinkPattern.ReplaceAllStringFunc(line, lowerLinkToken)
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// lowerEmbedToken converts one ![[ref|display]] token to an internal-embed
// span. The raw reference rides along in the src attribute for the expander.
func lowerEmbedToken(token string) string {
	m := embedTokenPattern.FindStringSubmatch(token)
	if m == nil {
		return token
	}
	ref, display := m[1], m[2]
	if display == "" {
		display = ref
	}
	return fmt.Sprintf(`<span class="internal-embed" src="%s" alt="%s">%s</span>`,
		escapeAttr(ref), escapeAttr(display), escapeText(display))
}

// lowerLinkToken converts one [[ref|display]] token to an internal link.
func lowerLinkToken(token string) string {
	m := wikiLinkPattern.FindStringSubmatch(token)
	if m == nil {
		return token
	}
	ref, display := m[1], m[2]
	if display == "" {
		display = ref
	}
	return fmt.Sprintf(`<a href="%s%s" class="internal-link">%s</a>`,
		internalLinkPrefix, url.PathEscape(ref), escapeText(display))
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")

var textEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")

func escapeAttr(s string) string { return attrEscaper.Replace(s) }

func escapeText(s string) string { return textEscaper.Replace(s) }
