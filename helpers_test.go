package pandoc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// fakeVault is an in-memory Vault with a stable sorted enumeration.
type fakeVault struct {
	root     string
	files    []FileHandle
	contents map[string]string // rel path -> text
	links    map[string]string // native-convention hits: ref -> rel path
	readErr  map[string]error  // rel path -> forced read error
}

// newFakeVault builds a vault from rel-path -> content pairs.
func newFakeVault(root string, contents map[string]string) *fakeVault {
	v := &fakeVault{
		root:     root,
		contents: contents,
		links:    map[string]string{},
		readErr:  map[string]error{},
	}
	for rel := range contents {
		name := path.Base(rel)
		v.files = append(v.files, FileHandle{
			Path: rel,
			Name: name,
			Base: strings.TrimSuffix(name, path.Ext(name)),
		})
	}
	sort.Slice(v.files, func(i, j int) bool { return v.files[i].Path < v.files[j].Path })
	return v
}

func (v *fakeVault) ResolveLink(name, sourceRelPath string) *FileHandle {
	rel, ok := v.links[name]
	if !ok {
		return nil
	}
	for i := range v.files {
		if v.files[i].Path == rel {
			fh := v.files[i]
			return &fh
		}
	}
	return nil
}

func (v *fakeVault) ListFiles() []FileHandle {
	out := make([]FileHandle, len(v.files))
	copy(out, v.files)
	return out
}

func (v *fakeVault) ReadFile(relPath string) (string, error) {
	if err := v.readErr[relPath]; err != nil {
		return "", err
	}
	text, ok := v.contents[relPath]
	if !ok {
		return "", fmt.Errorf("no such file: %s", relPath)
	}
	return text, nil
}

func (v *fakeVault) AbsolutePath(relPath string) string {
	return filepath.Join(v.root, filepath.FromSlash(relPath))
}

func (v *fakeVault) Root() string { return v.root }

// fakeRasterizer returns canned bytes and records calls.
type fakeRasterizer struct {
	png    []byte
	err    error
	calls  int
	scales []float64
	widths []float64
}

func (r *fakeRasterizer) Rasterize(ctx context.Context, svg string, width, height, scale float64) ([]byte, error) {
	r.calls++
	r.scales = append(r.scales, scale)
	r.widths = append(r.widths, width)
	if r.err != nil {
		return nil, r.err
	}
	if r.png != nil {
		return r.png, nil
	}
	return []byte("png-bytes"), nil
}

func (r *fakeRasterizer) Close() error { return nil }

// quietLogger discards per-element warnings during tests.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService builds a Service over the fake vault with a fake rasterizer.
func newTestService(t *testing.T, v Vault, opts ...Option) *Service {
	t.Helper()
	base := []Option{
		WithRasterizer(&fakeRasterizer{}),
		WithLogger(quietLogger()),
	}
	svc, err := NewService(v, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

// mustParse parses markup or fails the test.
func mustParse(t *testing.T, markup string) *Fragment {
	t.Helper()
	frag, err := ParseFragmentHTML(markup)
	if err != nil {
		t.Fatalf("ParseFragmentHTML: %v", err)
	}
	return frag
}
