package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pandoc "github.com/Xdavlar/obsidian-pandoc"
	"github.com/Xdavlar/obsidian-pandoc/vault"
)

// Sentinel errors for CLI operations.
var (
	ErrNoNotes          = errors.New("no notes given; usage: obsidian-pandoc [flags] <note.md> ...")
	ErrInvalidExtension = errors.New("note must have .md or .markdown extension")
)

// renderer is the slice of the service the exporter needs; tests inject fakes.
type renderer interface {
	Render(ctx context.Context, req pandoc.RenderRequest) (*pandoc.Result, error)
}

// exporter renders notes and writes the output files.
type exporter struct {
	cfg     *Config
	svc     renderer
	verbose bool
	stderr  io.Writer
}

// export renders every note and writes one output file per note. The first
// failure stops the batch.
func (e *exporter) export(ctx context.Context, notes []string) error {
	if len(notes) == 0 {
		return ErrNoNotes
	}

	format := pandoc.OutputFormat(e.cfg.Format)
	for _, note := range notes {
		if err := validateNoteExtension(note); err != nil {
			return err
		}
		absNote, err := filepath.Abs(note)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", note, err)
		}

		if e.verbose {
			fmt.Fprintf(e.stderr, "Rendering %s\n", note)
		}
		result, err := e.svc.Render(ctx, pandoc.RenderRequest{
			NotePath: absNote,
			Format:   format,
		})
		if err != nil {
			return fmt.Errorf("rendering %s: %w", note, err)
		}

		outPath := e.outputPath(absNote, format)
		if err := os.WriteFile(outPath, []byte(result.HTML), 0o644); err != nil { // #nosec G306 -- rendered document, not a secret
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		if e.verbose {
			fmt.Fprintf(e.stderr, "Wrote %s\n", outPath)
		}
	}
	return nil
}

// outputPath decides where a note's rendered form lands: the configured
// output directory, or next to the note. Markdown export keeps the .md
// extension; everything else produces .html for the downstream converter.
func (e *exporter) outputPath(absNote string, format pandoc.OutputFormat) string {
	base := strings.TrimSuffix(filepath.Base(absNote), filepath.Ext(absNote))
	ext := ".html"
	if format == pandoc.FormatMarkdown {
		ext = ".md"
	}

	dir := filepath.Dir(absNote)
	if e.cfg.Output != "" {
		dir = e.cfg.Output
	}
	name := base + ext
	if e.cfg.Output == "" && format == pandoc.FormatMarkdown {
		// Don't clobber the source note when exporting markdown in place.
		name = base + ".export" + ext
	}
	return filepath.Join(dir, name)
}

// validateNoteExtension checks that the input looks like a markdown note.
func validateNoteExtension(note string) error {
	switch strings.ToLower(filepath.Ext(note)) {
	case ".md", ".markdown":
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidExtension, note)
}

// vaultRoot picks the vault directory: configured root, or the first note's
// directory as a single-folder vault.
func vaultRoot(cfg *Config, notes []string) (string, error) {
	if cfg.Vault != "" {
		return cfg.Vault, nil
	}
	if len(notes) == 0 {
		return "", ErrNoNotes
	}
	abs, err := filepath.Abs(notes[0])
	if err != nil {
		return "", err
	}
	return filepath.Dir(abs), nil
}

// buildService opens the vault and assembles the render service from config.
func buildService(cfg *Config, notes []string) (*pandoc.Service, *vault.Vault, error) {
	root, err := vaultRoot(cfg, notes)
	if err != nil {
		return nil, nil, err
	}
	v, err := vault.Open(root)
	if err != nil {
		return nil, nil, err
	}

	opts := []pandoc.Option{
		pandoc.WithLinkPolicy(pandoc.LinkPolicy(cfg.LinkPolicy)),
		pandoc.WithCSSMode(pandoc.CSSMode(cfg.CSSMode)),
		pandoc.WithExtensionAppend(cfg.ExtensionAppend),
		pandoc.WithHighDPIDiagrams(cfg.HighDPI),
	}
	if cfg.CustomCSS != "" {
		opts = append(opts, pandoc.WithCustomStylesheet(cfg.CustomCSS))
	}

	svc, err := pandoc.NewService(v, opts...)
	if err != nil {
		_ = v.Close()
		return nil, nil, err
	}
	return svc, v, nil
}
