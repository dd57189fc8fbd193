package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pandoc "github.com/Xdavlar/obsidian-pandoc"
)

// fakeRenderer records requests and returns canned HTML.
type fakeRenderer struct {
	html string
	err  error
	reqs []pandoc.RenderRequest
}

func (f *fakeRenderer) Render(ctx context.Context, req pandoc.RenderRequest) (*pandoc.Result, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &pandoc.Result{HTML: f.html, Metadata: map[string]string{}}, nil
}

func TestExporter_WritesOutputFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	note := filepath.Join(dir, "Note.md")
	if err := os.WriteFile(note, []byte("# x"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := &fakeRenderer{html: "<!DOCTYPE html><p>out</p>"}
	e := &exporter{cfg: &Config{Format: "pdf"}, svc: r, stderr: io.Discard}

	if err := e.export(context.Background(), []string{note}); err != nil {
		t.Fatalf("export: %v", err)
	}

	out := filepath.Join(dir, "Note.html")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if !strings.Contains(string(data), "<p>out</p>") {
		t.Errorf("output content = %s", data)
	}
	if len(r.reqs) != 1 || r.reqs[0].Format != pandoc.FormatPDF {
		t.Errorf("requests = %+v", r.reqs)
	}
	if len(r.reqs[0].Ancestors) != 0 {
		t.Errorf("top-level export must have no ancestors: %+v", r.reqs[0])
	}
}

func TestExporter_Validation(t *testing.T) {
	t.Parallel()

	e := &exporter{cfg: DefaultConfig(), svc: &fakeRenderer{}, stderr: io.Discard}

	if err := e.export(context.Background(), nil); !errors.Is(err, ErrNoNotes) {
		t.Errorf("err = %v, want ErrNoNotes", err)
	}
	if err := e.export(context.Background(), []string{"note.txt"}); !errors.Is(err, ErrInvalidExtension) {
		t.Errorf("err = %v, want ErrInvalidExtension", err)
	}
}

func TestExporter_RenderFailureStopsBatch(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{err: errors.New("boom")}
	e := &exporter{cfg: DefaultConfig(), svc: r, stderr: io.Discard}

	err := e.export(context.Background(), []string{"a.md", "b.md"})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(r.reqs) != 1 {
		t.Errorf("batch should stop at first failure, got %d requests", len(r.reqs))
	}
}

func TestExporter_OutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    Config
		note   string
		format pandoc.OutputFormat
		want   string
	}{
		{
			name:   "next to note",
			cfg:    Config{},
			note:   "/vault/sub/Note.md",
			format: pandoc.FormatPDF,
			want:   filepath.FromSlash("/vault/sub/Note.html"),
		},
		{
			name:   "output directory",
			cfg:    Config{Output: "/out"},
			note:   "/vault/sub/Note.md",
			format: pandoc.FormatHTML,
			want:   filepath.FromSlash("/out/Note.html"),
		},
		{
			name:   "markdown in place avoids clobbering the source",
			cfg:    Config{},
			note:   "/vault/Note.md",
			format: pandoc.FormatMarkdown,
			want:   filepath.FromSlash("/vault/Note.export.md"),
		},
		{
			name:   "markdown into output directory",
			cfg:    Config{Output: "/out"},
			note:   "/vault/Note.md",
			format: pandoc.FormatMarkdown,
			want:   filepath.FromSlash("/out/Note.md"),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := &exporter{cfg: &tt.cfg, stderr: io.Discard}
			if got := e.outputPath(tt.note, tt.format); got != tt.want {
				t.Errorf("outputPath = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestVaultRoot(t *testing.T) {
	t.Parallel()

	root, err := vaultRoot(&Config{Vault: "/explicit"}, []string{"/vault/a.md"})
	if err != nil || root != "/explicit" {
		t.Errorf("vaultRoot = %s, %v", root, err)
	}

	root, err = vaultRoot(&Config{}, []string{"/vault/sub/a.md"})
	if err != nil || root != filepath.FromSlash("/vault/sub") {
		t.Errorf("vaultRoot = %s, %v", root, err)
	}

	if _, err := vaultRoot(&Config{}, nil); err == nil {
		t.Error("expected error with no notes and no vault")
	}
}
