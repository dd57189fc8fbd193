package pandoc

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// documentTemplate wraps a fragment into a complete HTML5 document.
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
%s</head>
<body>
%s
</body>
</html>`

// assembler wraps a top-level fragment into a standalone document with a
// title and concatenated stylesheet content.
type assembler struct {
	vault         Vault
	cssMode       CSSMode
	customCSSPath string
	logger        *slog.Logger
}

// Assemble builds the final document. The stylesheet is theme CSS per the
// injection mode, a MathJax font supplement when the body carries MathJax
// markup, and the optional user stylesheet, in that order.
func (a *assembler) Assemble(title, body string) string {
	css := themeCSS(a.cssMode)
	if containsMathJaxMarker(body) {
		css += mathJaxFontCSS
	}
	css += a.loadCustomCSS()

	var styleBlock string
	if css != "" {
		styleBlock = "<style>\n" + sanitizeCSS(css) + "</style>\n"
	}
	return fmt.Sprintf(documentTemplate, escapeText(title), styleBlock, body)
}

// loadCustomCSS reads the user-supplied stylesheet from an absolute or
// vault-relative path, first match wins. A missing or unreadable file is a
// warning contributing empty CSS, never a render failure.
func (a *assembler) loadCustomCSS() string {
	if a.customCSSPath == "" {
		return ""
	}

	candidates := []string{a.customCSSPath}
	if !filepath.IsAbs(a.customCSSPath) {
		candidates = append(candidates, a.vault.AbsolutePath(a.customCSSPath))
	}

	for _, p := range candidates {
		data, err := os.ReadFile(p) // #nosec G304 -- stylesheet path is user-provided
		if err == nil {
			return string(data)
		}
	}
	a.logger.Warn("custom stylesheet not found, continuing without it",
		"path", a.customCSSPath)
	return ""
}

// sanitizeCSS escapes sequences that could close the style block early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
