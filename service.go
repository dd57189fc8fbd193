package pandoc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/Xdavlar/obsidian-pandoc/internal/fileutil"
)

// defaultTimeout bounds one diagram rasterization.
const defaultTimeout = 30 * time.Second

// ErrNilVault is returned when NewService is given no vault.
var ErrNilVault = errors.New("vault cannot be nil")

// Service renders vault notes into portable HTML. Create with NewService,
// render with Render, and Close when done. A Service is safe for concurrent
// Render calls: each render owns its fragment and context, and the shared
// rasterizer serializes internally.
type Service struct {
	cfg      serviceConfig
	vault    Vault
	renderer Renderer
	raster   Rasterizer
	logger   *slog.Logger
	resolver *resolver
	assets   *assetRewriter
}

// serviceConfig holds the recognized configuration surface.
type serviceConfig struct {
	linkPolicy      LinkPolicy
	cssMode         CSSMode
	extensionAppend string
	highDPI         bool
	customCSSPath   string
	timeout         time.Duration
}

// NewService creates a Service over the given vault with default
// configuration. Use options to customize behavior (e.g. WithLinkPolicy,
// WithCSSMode, WithRasterizer).
func NewService(v Vault, opts ...Option) (*Service, error) {
	if v == nil {
		return nil, ErrNilVault
	}

	s := &Service{
		cfg: serviceConfig{
			linkPolicy: LinkPolicyKeep,
			cssMode:    CSSLight,
			timeout:    defaultTimeout,
		},
		vault:    v,
		renderer: NewGoldmarkRenderer(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.cfg.linkPolicy.Validate(); err != nil {
		return nil, err
	}
	if err := s.cfg.cssMode.Validate(); err != nil {
		return nil, err
	}

	s.resolver = &resolver{vault: v}
	s.assets = &assetRewriter{resolver: s.resolver}

	// Create rasterizer if not injected (e.g., by tests). Lazy browser
	// launch means HTML-only use never pays for Chrome.
	if s.raster == nil {
		s.raster = newRodRasterizer(s.cfg.timeout)
	}

	return s, nil
}

// Render runs the pipeline for one note and returns its portable form: a
// standalone document for a top-level request (empty Ancestors), a bare
// fragment for a recursive one. FormatMarkdown short-circuits to the
// plain-text export mode, which rewrites image embeds in the raw markdown
// without invoking the rendering engine.
func (s *Service) Render(ctx context.Context, req RenderRequest) (*Result, error) {
	if req.NotePath == "" {
		return nil, ErrEmptyNotePath
	}
	if err := req.Format.Validate(); err != nil {
		return nil, err
	}

	relPath := s.resolver.relToRoot(req.NotePath)
	raw, err := s.vault.ReadFile(relPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoteRead, req.NotePath, err)
	}
	meta, body := splitFrontMatter(raw)

	if req.Format == FormatMarkdown {
		return &Result{
			HTML:     s.assets.RewriteMarkdownImages(body, req.NotePath),
			Metadata: meta,
		}, nil
	}

	rc := renderContext{
		notePath:  req.NotePath,
		format:    req.Format,
		ancestors: req.Ancestors,
	}

	frag, err := s.renderer.RenderFragment(ctx, body, path.Dir(relPath))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Asset pass: image embeds and sources become converter-readable URIs.
	s.assets.RewriteFragment(frag, req.NotePath)

	// Embed pass: inline referenced notes depth-first, cycle-safe. Failures
	// stay scoped to their element.
	expander := &embedExpander{resolver: s.resolver, render: s.Render, logger: s.logger}
	expander.Expand(ctx, frag, rc)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Link pass: finalize internal hyperlinks per policy.
	links := &linkRewriter{
		resolver:        s.resolver,
		policy:          s.cfg.linkPolicy,
		extensionAppend: s.cfg.extensionAppend,
	}
	links.Rewrite(frag, rc)

	// Diagram pass: style SVGs, rasterize for non-HTML targets.
	diagrams := &diagramProcessor{
		raster:   s.raster,
		themeCSS: diagramCSS(s.cfg.cssMode),
		highDPI:  s.cfg.highDPI,
		logger:   s.logger,
	}
	diagrams.Process(ctx, frag, rc)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	markup := frag.String()

	// Embedded renders return the bare fragment; only the top-level render
	// gets wrapped into a standalone document.
	if len(req.Ancestors) > 0 {
		return &Result{HTML: markup, Metadata: meta}, nil
	}

	title := meta["title"]
	if title == "" {
		title = fileutil.StripExt(path.Base(relPath))
	}
	asm := &assembler{
		vault:         s.vault,
		cssMode:       s.cfg.cssMode,
		customCSSPath: s.cfg.customCSSPath,
		logger:        s.logger,
	}
	return &Result{HTML: asm.Assemble(title, markup), Metadata: meta}, nil
}

// Close releases rasterizer resources (the headless browser, if one was
// ever launched).
func (s *Service) Close() error {
	if s.raster != nil {
		return s.raster.Close()
	}
	return nil
}
