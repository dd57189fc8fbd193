package pandoc

import (
	"fmt"
	"strings"
)

// OutputFormat identifies the downstream conversion target. The target
// decides how internal links and vector diagrams are rewritten: FormatHTML
// keeps links and SVG markup intact, every other format gets absolute paths
// and rasterized diagrams.
type OutputFormat string

// Supported output formats.
const (
	FormatHTML     OutputFormat = "html"
	FormatPDF      OutputFormat = "pdf"
	FormatDOCX     OutputFormat = "docx"
	FormatLaTeX    OutputFormat = "latex"
	FormatEPUB     OutputFormat = "epub"
	FormatMarkdown OutputFormat = "markdown"
)

// Validate checks that the format is a known output format.
func (f OutputFormat) Validate() error {
	switch f {
	case FormatHTML, FormatPDF, FormatDOCX, FormatLaTeX, FormatEPUB, FormatMarkdown:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidFormat, string(f))
}

// supportsVector reports whether the target can embed SVG markup directly.
func (f OutputFormat) supportsVector() bool {
	return f == FormatHTML
}

// LinkPolicy controls how internal cross-note links are rewritten.
type LinkPolicy string

// Link policies.
const (
	// LinkPolicyKeep resolves the reference and rewrites the href to an
	// absolute path, falling back to a path relative to the note's folder.
	LinkPolicyKeep LinkPolicy = "keep-as-link"
	// LinkPolicyStrip removes the link element including its visible text.
	LinkPolicyStrip LinkPolicy = "strip"
	// LinkPolicyText replaces the link element with its plain visible text.
	LinkPolicyText LinkPolicy = "text-only"
	// LinkPolicyLiteral reconstructs wiki-link notation: [[visible text]].
	LinkPolicyLiteral LinkPolicy = "literal"
)

// Validate checks that the policy is a known link policy.
func (p LinkPolicy) Validate() error {
	switch p {
	case LinkPolicyKeep, LinkPolicyStrip, LinkPolicyText, LinkPolicyLiteral:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPolicy, string(p))
}

// CSSMode selects which theme stylesheet is injected into assembled documents
// and diagrams.
type CSSMode string

// CSS injection modes.
const (
	CSSNone         CSSMode = "none"
	CSSLight        CSSMode = "light"
	CSSDark         CSSMode = "dark"
	CSSCurrentTheme CSSMode = "current-theme"
)

// Validate checks that the mode is a known CSS injection mode.
func (m CSSMode) Validate() error {
	switch m {
	case CSSNone, CSSLight, CSSDark, CSSCurrentTheme:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidCSSMode, string(m))
}

// RenderRequest describes one render invocation.
type RenderRequest struct {
	// NotePath is the absolute filesystem path of the note to render.
	NotePath string

	// Format is the downstream conversion target.
	Format OutputFormat

	// Ancestors lists the absolute paths of notes currently being expanded,
	// outermost first. Leave empty for a top-level render; the embed expander
	// populates it when recursing so that cycles degrade to plain links.
	Ancestors []string
}

// Result is the output of a render: for a top-level request a standalone HTML
// document, for a recursive (embedded) request a bare fragment, plus the
// note's front-matter metadata.
type Result struct {
	HTML     string
	Metadata map[string]string
}

// ResolvedFile is the outcome of resolving a note reference against the
// vault. Every ResolvedFile corresponds to exactly one file that existed at
// resolution time.
type ResolvedFile struct {
	AbsPath string // absolute filesystem path
	RelPath string // vault-relative path, forward slashes
	Base    string // file name without extension
	Display string // human-readable name, defaults to Base
}

// renderContext is the state threaded through one render invocation. The
// ancestor list is copied, never mutated in place, when descending into an
// embedded note.
type renderContext struct {
	notePath  string
	format    OutputFormat
	ancestors []string
}

// descend returns a child context for rendering an embedded note, with the
// current note appended to a copy of the ancestor list.
func (rc renderContext) descend(childPath string) renderContext {
	ancestors := make([]string, 0, len(rc.ancestors)+1)
	ancestors = append(ancestors, rc.ancestors...)
	ancestors = append(ancestors, rc.notePath)
	return renderContext{notePath: childPath, format: rc.format, ancestors: ancestors}
}

// inAncestry reports whether path is already being expanded.
func (rc renderContext) inAncestry(path string) bool {
	for _, a := range rc.ancestors {
		if a == path {
			return true
		}
	}
	return false
}

// splitAnchor splits a reference into its base and an optional trailing
// heading fragment: "Note#Heading" -> ("Note", "#Heading").
func splitAnchor(ref string) (base, anchor string) {
	if i := strings.Index(ref, "#"); i >= 0 {
		return ref[:i], ref[i:]
	}
	return ref, ""
}
