package pandoc

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/Xdavlar/obsidian-pandoc/internal/fileutil"
)

// imageEmbedToken matches ![[name]], ![[name|300]] and ![[name|300x200]].
var imageEmbedToken = regexp.MustCompile(`!\[\[([^\[\]|]+?)(?:\|(\d+)(?:x(\d+))?)?\]\]`)

// displaySizePattern recognizes the display-size suffix of an image embed
// ("300" or "300x200") when it rides in the embed's alt text.
var displaySizePattern = regexp.MustCompile(`^(\d+)(?:x(\d+))?$`)

// assetRewriter makes asset references converter-readable: image sources
// become absolute file-scheme URIs.
type assetRewriter struct {
	resolver *resolver
}

// RewriteMarkdownImages is the pre-render pass for the plain-text export
// mode, which bypasses the rendering engine's own image handling. Each
// ![[name|WxH]] token that resolves is rewritten to a standard image
// reference with a file URI and an attribute block for any dimensions given:
//
//	![[diagram.png|300]] -> ![diagram.png](file:///vault/assets/diagram.png){width=300px}
//
// Unresolved tokens are left unchanged. Replacement is exact-substring,
// first-match, once per occurrence; a reference repeated verbatim with
// different intended targets is a known limitation.
func (a *assetRewriter) RewriteMarkdownImages(markdown, sourcePath string) string {
	for _, token := range imageEmbedToken.FindAllString(markdown, -1) {
		m := imageEmbedToken.FindStringSubmatch(token)
		name, width, height := m[1], m[2], m[3]

		rf, ok := a.resolver.Resolve(name, sourcePath)
		if !ok {
			continue
		}

		replacement := fmt.Sprintf("![%s](%s)%s",
			name, fileutil.FileURI(rf.AbsPath), dimensionBlock(width, height))
		markdown = strings.Replace(markdown, token, replacement, 1)
	}
	return markdown
}

// dimensionBlock formats the pandoc-style attribute block for the dimensions
// present, or "" when none were given.
func dimensionBlock(width, height string) string {
	switch {
	case width != "" && height != "":
		return fmt.Sprintf("{width=%spx height=%spx}", width, height)
	case width != "":
		return fmt.Sprintf("{width=%spx}", width)
	default:
		return ""
	}
}

// RewriteFragment is the post-render pass: embed elements whose source is a
// raster image are promoted to true image elements (inner content discarded),
// and relative image sources are rewritten to absolute file URIs.
func (a *assetRewriter) RewriteFragment(frag *Fragment, sourcePath string) {
	for _, n := range frag.findAll(kindInternalEmbed) {
		a.promoteImageEmbed(n, sourcePath)
	}
	for _, n := range frag.findAll(kindImage) {
		a.rewriteImageSource(n, sourcePath)
	}
}

// promoteImageEmbed replaces an image-like embed span with an <img> element
// pointing at the resolved asset. Non-image embeds are left for the embed
// expander.
func (a *assetRewriter) promoteImageEmbed(n *html.Node, sourcePath string) {
	src := getAttr(n, "src")
	base, _ := splitAnchor(src)
	if !fileutil.IsRasterImage(base) {
		return
	}

	rf, ok := a.resolver.Resolve(base, sourcePath)
	if !ok {
		return
	}

	img := newElement("img", "src", fileutil.FileURI(rf.AbsPath), "alt", rf.Base)
	if m := displaySizePattern.FindStringSubmatch(getAttr(n, "alt")); m != nil {
		setAttr(img, "width", m[1])
		if m[2] != "" {
			setAttr(img, "height", m[2])
		}
	}
	replaceNode(n, img)
}

// rewriteImageSource resolves a relative <img> src against the vault and
// swaps in a file URI. Absolute, data and remote sources pass through.
func (a *assetRewriter) rewriteImageSource(n *html.Node, sourcePath string) {
	src := getAttr(n, "src")
	if src == "" || strings.Contains(src, "://") || strings.HasPrefix(src, "data:") ||
		strings.HasPrefix(src, "/") {
		return
	}

	rf, ok := a.resolver.Resolve(src, sourcePath)
	if !ok {
		return
	}
	setAttr(n, "src", fileutil.FileURI(rf.AbsPath))
}
