package pandoc

import "strings"

// baseCSS carries the typography shared by both themes.
const baseCSS = `body {
  font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
  font-size: 16px;
  line-height: 1.6;
  max-width: 44em;
  margin: 0 auto;
  padding: 2em 1.5em;
}
h1, h2, h3, h4, h5, h6 { line-height: 1.25; margin-top: 1.4em; }
pre { padding: 0.8em; overflow-x: auto; border-radius: 4px; }
code { font-family: "SF Mono", Consolas, Menlo, monospace; font-size: 0.9em; }
blockquote { margin: 0; padding-left: 1em; border-left: 4px solid; }
table { border-collapse: collapse; }
th, td { padding: 0.35em 0.7em; border: 1px solid; }
img, svg { max-width: 100%; }
`

// lightThemeCSS styles documents and diagrams for light backgrounds.
const lightThemeCSS = baseCSS + `body { color: #1f2328; background: #ffffff; }
a { color: #0969da; }
pre { background: #f6f8fa; }
blockquote { border-color: #d0d7de; color: #57606a; }
th, td { border-color: #d0d7de; }
`

// darkThemeCSS styles documents and diagrams for dark backgrounds.
const darkThemeCSS = baseCSS + `body { color: #e6edf3; background: #0d1117; }
a { color: #4493f8; }
pre { background: #161b22; }
blockquote { border-color: #3d444d; color: #9198a1; }
th, td { border-color: #3d444d; }
`

// mathJaxFontCSS keeps MathJax glyphs readable once the markup leaves the
// app that loaded the MathJax fonts.
const mathJaxFontCSS = `mjx-container { font-family: "STIX Two Math", "Latin Modern Math", serif; }
.MathJax, .math { font-family: "STIX Two Math", "Latin Modern Math", serif; }
`

// themeCSS returns the document stylesheet for a CSS injection mode. CSSNone
// yields no document CSS; current-theme is resolved by the caller and maps
// to light here.
func themeCSS(mode CSSMode) string {
	switch mode {
	case CSSNone:
		return ""
	case CSSDark:
		return darkThemeCSS
	default:
		return lightThemeCSS
	}
}

// diagramCSS returns the stylesheet injected into SVG diagrams. Diagrams are
// styled even under CSSNone because unstyled diagrams are illegible.
func diagramCSS(mode CSSMode) string {
	if mode == CSSDark {
		return darkThemeCSS
	}
	return lightThemeCSS
}

// containsMathJaxMarker reports whether rendered markup carries MathJax
// output that needs the font supplement.
func containsMathJaxMarker(body string) bool {
	return strings.Contains(body, "MathJax") ||
		strings.Contains(body, "mjx-container") ||
		strings.Contains(body, `class="math`)
}
