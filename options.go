package pandoc

import (
	"log/slog"
	"time"
)

// Option configures a Service.
type Option func(*Service)

// WithRenderer replaces the default goldmark-backed markdown renderer.
func WithRenderer(r Renderer) Option {
	return func(s *Service) { s.renderer = r }
}

// WithRasterizer replaces the default headless-Chrome diagram rasterizer.
func WithRasterizer(r Rasterizer) Option {
	return func(s *Service) { s.raster = r }
}

// WithLogger sets the logger for per-element warnings (unresolved embeds,
// failed rasterizations, missing stylesheets). Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLinkPolicy sets how internal links are rewritten for non-HTML targets.
// Default is LinkPolicyKeep.
func WithLinkPolicy(p LinkPolicy) Option {
	return func(s *Service) { s.cfg.linkPolicy = p }
}

// WithCSSMode sets which theme stylesheet assembled documents receive.
// Default is CSSLight.
func WithCSSMode(m CSSMode) Option {
	return func(s *Service) { s.cfg.cssMode = m }
}

// WithExtensionAppend sets the extension (without dot) appended to
// extensionless internal link targets, e.g. "md". Empty appends nothing.
func WithExtensionAppend(ext string) Option {
	return func(s *Service) { s.cfg.extensionAppend = ext }
}

// WithHighDPIDiagrams rasterizes diagrams at 2x pixel density.
func WithHighDPIDiagrams(enabled bool) Option {
	return func(s *Service) { s.cfg.highDPI = enabled }
}

// WithCustomStylesheet appends a user stylesheet, read from an absolute or
// vault-relative path, to assembled documents. A missing file is a warning,
// not an error.
func WithCustomStylesheet(path string) Option {
	return func(s *Service) { s.cfg.customCSSPath = path }
}

// WithTimeout bounds each diagram rasterization. Default is 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cfg.timeout = d
		}
	}
}
