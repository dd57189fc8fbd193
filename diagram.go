package pandoc

import (
	"context"
	"encoding/base64"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Rasterizer converts SVG markup to PNG bytes at the given logical size and
// pixel density. Implementations must guarantee every call returns or errors;
// a rasterization that never completes would hang the render.
type Rasterizer interface {
	Rasterize(ctx context.Context, svgMarkup string, width, height, scale float64) ([]byte, error)
	Close() error
}

// selfURLRef matches url(...#id) references that carry a document URL before
// the fragment, which break once the SVG is detached from its original
// document context.
var selfURLRef = regexp.MustCompile(`url\((['"]?)[^)#'"]+#([^)'"]+)(['"]?)\)`)

// SVG's intrinsic default size when no dimensions are declared.
const (
	defaultDiagramWidth  = 300
	defaultDiagramHeight = 150
)

// diagramProcessor styles inline vector diagrams and, for targets that can't
// embed vector markup, replaces them with raster images.
type diagramProcessor struct {
	raster   Rasterizer
	themeCSS string
	highDPI  bool
	logger   *slog.Logger
}

// Process handles every diagram in the fragment, one at a time in document
// order. Traversal waits for each rasterization so the replacement lands at
// the correct tree position before serialization.
func (d *diagramProcessor) Process(ctx context.Context, frag *Fragment, rc renderContext) {
	for _, n := range frag.findAll(kindDiagram) {
		// Unstyled diagrams are illegible, so theme CSS goes into the
		// diagram's own style even when document CSS injection is off.
		injectDiagramStyle(n, d.themeCSS)
		normalizeSelfRefs(n)

		if rc.format.supportsVector() {
			continue
		}
		d.rasterizeInPlace(ctx, n)
	}
}

// rasterizeInPlace swaps one SVG for a fixed-size raster image. Failure is
// scoped to the element: logged, vector markup left in place.
func (d *diagramProcessor) rasterizeInPlace(ctx context.Context, n *html.Node) {
	width, height := diagramDimensions(n)
	scale := 1.0
	if d.highDPI {
		scale = 2.0
	}

	png, err := d.raster.Rasterize(ctx, serializeNode(n), width, height, scale)
	if err != nil {
		d.logger.Error("diagram rasterization failed, keeping vector markup", "error", err)
		return
	}

	img := newElement("img",
		"src", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(png),
		"width", formatDimension(width),
		"height", formatDimension(height))
	replaceNode(n, img)
}

// injectDiagramStyle prepends CSS to the diagram's embedded style element,
// creating one when absent.
func injectDiagramStyle(svg *html.Node, css string) {
	if css == "" {
		return
	}
	for c := svg.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "style" {
			c.InsertBefore(newTextNode(css+"\n"), c.FirstChild)
			return
		}
	}
	style := newElement("style")
	style.AppendChild(newTextNode(css))
	svg.InsertBefore(style, svg.FirstChild)
}

// normalizeSelfRefs rewrites url(<doc-url>#id) attribute values to url(#id)
// throughout the diagram subtree so markers, gradients and clip paths keep
// resolving after the SVG leaves its original document.
func normalizeSelfRefs(svg *html.Node) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for i := range n.Attr {
			n.Attr[i].Val = selfURLRef.ReplaceAllString(n.Attr[i].Val, "url(#$2)")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(svg)
}

// diagramDimensions reads the logical size from width/height attributes,
// falling back to the viewBox, then to SVG's intrinsic default.
func diagramDimensions(svg *html.Node) (width, height float64) {
	width = parseDimension(getAttr(svg, "width"))
	height = parseDimension(getAttr(svg, "height"))
	if width > 0 && height > 0 {
		return width, height
	}

	// The parser restores SVG camelCase, but tolerate both spellings.
	viewBox := getAttr(svg, "viewBox")
	if viewBox == "" {
		viewBox = getAttr(svg, "viewbox")
	}
	if vb := strings.Fields(viewBox); len(vb) == 4 {
		w, werr := strconv.ParseFloat(vb[2], 64)
		h, herr := strconv.ParseFloat(vb[3], 64)
		if werr == nil && herr == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	return defaultDiagramWidth, defaultDiagramHeight
}

// parseDimension reads a numeric attribute value, tolerating a px suffix.
// Returns 0 for anything else (percentages, em units, empty).
func parseDimension(v string) float64 {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0
	}
	return f
}

func formatDimension(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
