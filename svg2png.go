package pandoc

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Compile-time interface check.
var _ Rasterizer = (*rodRasterizer)(nil)

// pageTemplate hosts an SVG for screenshotting with no margins and a
// transparent background, so the capture clip matches the diagram exactly.
const pageTemplate = `<!DOCTYPE html>
<html>
<head><style>html,body{margin:0;padding:0;background:transparent}</style></head>
<body>%s</body>
</html>`

// rodRasterizer renders SVG markup to PNG in headless Chrome via go-rod.
// Rod automatically downloads Chromium on first run if not found. Calls are
// serialized internally; concurrent renders share one browser.
type rodRasterizer struct {
	mu      sync.Mutex
	browser *rod.Browser
	timeout time.Duration
}

// newRodRasterizer creates a rodRasterizer with the given per-call timeout.
// The browser launches lazily on first use.
func newRodRasterizer(timeout time.Duration) *rodRasterizer {
	return &rodRasterizer{timeout: timeout}
}

// ensureBrowser lazily connects to the browser. Caller holds mu.
func (r *rodRasterizer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Close releases browser resources.
func (r *rodRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		err := r.browser.Close()
		r.browser = nil
		return err
	}
	return nil
}

// Rasterize loads the SVG into a blank page and captures a PNG clipped to
// the diagram's logical size at the requested pixel density. Every call
// returns a result or an explicit error within the configured timeout.
func (r *rodRasterizer) Rasterize(ctx context.Context, svgMarkup string, width, height, scale float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	page = page.Timeout(timeout)

	if err := page.SetDocumentContent(fmt.Sprintf(pageTemplate, svgMarkup)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}

	png, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:      proto.PageCaptureScreenshotFormatPng,
		FromSurface: true,
		Clip: &proto.PageViewport{
			X:      0,
			Y:      0,
			Width:  width,
			Height: height,
			Scale:  scale,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}
	return png, nil
}
