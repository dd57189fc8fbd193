// Package vault provides a disk-backed implementation of the pandoc.Vault
// interface: a file index over an Obsidian-style note directory with the
// vault's native link-resolution convention, optionally kept fresh by a
// filesystem watcher.
package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	pandoc "github.com/Xdavlar/obsidian-pandoc"
)

// Compile-time interface check.
var _ pandoc.Vault = (*Vault)(nil)

// rescanDebounce coalesces bursts of filesystem events into one rescan.
const rescanDebounce = 250 * time.Millisecond

// Vault is a read-only index over the files of a note directory. The index
// is built at Open time; call Rescan (or enable the watcher) to pick up
// changes.
type Vault struct {
	root string // absolute path to the vault directory

	mu    sync.RWMutex
	files []pandoc.FileHandle // sorted by Path

	watcher *fsnotify.Watcher
	done    chan struct{}
	timer   *time.Timer
}

// Option configures a Vault at Open time.
type Option func(*Vault)

// WithWatcher keeps the index fresh by rescanning on filesystem events.
func WithWatcher() Option {
	return func(v *Vault) { v.done = make(chan struct{}) }
}

// Open indexes the vault rooted at dir. The directory must exist.
func Open(dir string, opts ...Option) (*Vault, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault: root is not a directory: %s", abs)
	}

	v := &Vault{root: abs}
	for _, opt := range opts {
		opt(v)
	}

	if err := v.Rescan(); err != nil {
		return nil, err
	}

	if v.done != nil {
		if err := v.startWatcher(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Rescan rebuilds the file index from disk. Hidden directories (.obsidian,
// .git, .trash) are skipped. The enumeration is sorted by vault-relative
// path so reference resolution stays deterministic.
func (v *Vault) Rescan() error {
	var files []pandoc.FileHandle
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != v.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(v.root, p)
		if err != nil {
			return err
		}
		name := d.Name()
		files = append(files, pandoc.FileHandle{
			Path: filepath.ToSlash(rel),
			Name: name,
			Base: strings.TrimSuffix(name, filepath.Ext(name)),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("vault: scan: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	v.mu.Lock()
	v.files = files
	v.mu.Unlock()
	return nil
}

// ResolveLink resolves a reference the way the knowledge base itself links:
// an explicit vault path wins, then a file in the linking note's own folder,
// then the same-named file with the shortest path. Returns nil when nothing
// matches.
func (v *Vault) ResolveLink(name, sourceRelPath string) *pandoc.FileHandle {
	v.mu.RLock()
	defer v.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	// Markdown references usually omit the extension.
	candidates := []string{name}
	if path.Ext(name) == "" {
		candidates = []string{name + ".md", name}
	}

	// Explicit path from the vault root.
	if strings.Contains(name, "/") {
		for _, c := range candidates {
			if fh := v.byPath(path.Clean(c)); fh != nil {
				return fh
			}
		}
		return nil
	}

	// Same folder as the linking note.
	folder := path.Dir(sourceRelPath)
	if folder != "." {
		for _, c := range candidates {
			if fh := v.byPath(path.Join(folder, c)); fh != nil {
				return fh
			}
		}
	} else {
		for _, c := range candidates {
			if fh := v.byPath(c); fh != nil {
				return fh
			}
		}
	}

	// Shortest path among all same-named files, ties broken lexicographically.
	var best *pandoc.FileHandle
	for i := range v.files {
		f := &v.files[i]
		if !matchesName(f, name) {
			continue
		}
		if best == nil || shorterPath(f.Path, best.Path) {
			best = f
		}
	}
	if best == nil {
		return nil
	}
	fh := *best
	return &fh
}

// byPath looks up one exact vault-relative path. Caller holds mu.
func (v *Vault) byPath(rel string) *pandoc.FileHandle {
	i := sort.Search(len(v.files), func(i int) bool { return v.files[i].Path >= rel })
	if i < len(v.files) && v.files[i].Path == rel {
		fh := v.files[i]
		return &fh
	}
	return nil
}

// matchesName reports whether a reference without a path component names
// this file, with or without extension.
func matchesName(f *pandoc.FileHandle, name string) bool {
	return f.Name == name || (path.Ext(name) == "" && f.Base == name)
}

// shorterPath orders by folder depth, then lexicographically.
func shorterPath(a, b string) bool {
	da, db := strings.Count(a, "/"), strings.Count(b, "/")
	if da != db {
		return da < db
	}
	return a < b
}

// ListFiles returns the sorted file enumeration.
func (v *Vault) ListFiles() []pandoc.FileHandle {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]pandoc.FileHandle, len(v.files))
	copy(out, v.files)
	return out
}

// ReadFile returns the text content of a vault-relative path. Paths that
// would escape the vault root are rejected.
func (v *Vault) ReadFile(relPath string) (string, error) {
	abs, err := v.safePath(relPath)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs) // #nosec G304 -- path is validated against the vault root
	if err != nil {
		return "", fmt.Errorf("vault: read %s: %w", relPath, err)
	}
	return string(data), nil
}

// AbsolutePath converts a vault-relative path to an absolute one.
func (v *Vault) AbsolutePath(relPath string) string {
	return filepath.Join(v.root, filepath.FromSlash(relPath))
}

// Root returns the vault's absolute root directory.
func (v *Vault) Root() string {
	return v.root
}

// safePath resolves a relative path and rejects traversal outside the root.
func (v *Vault) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		// Absolute paths are accepted only when already under the root.
		if strings.HasPrefix(cleaned, v.root+string(os.PathSeparator)) {
			return cleaned, nil
		}
		return "", fmt.Errorf("vault: path outside vault: %s", rel)
	}
	abs := filepath.Join(v.root, cleaned)
	if !strings.HasPrefix(abs, v.root+string(os.PathSeparator)) && abs != v.root {
		return "", fmt.Errorf("vault: path escapes vault root: %s", rel)
	}
	return abs, nil
}

// startWatcher wires fsnotify over the vault tree and triggers debounced
// rescans on any change.
func (v *Vault) startWatcher() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("vault: watcher: %w", err)
	}
	v.watcher = w

	err = filepath.WalkDir(v.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if p != v.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("vault: watch: %w", err)
	}

	go v.watchLoop()
	return nil
}

// watchLoop coalesces events into rescans until Close.
func (v *Vault) watchLoop() {
	for {
		select {
		case <-v.done:
			return
		case ev, ok := <-v.watcher.Events:
			if !ok {
				return
			}
			// New directories need their own watch before their files
			// produce events.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = v.watcher.Add(ev.Name)
				}
			}
			v.scheduleRescan()
		case _, ok := <-v.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// scheduleRescan arms (or re-arms) the debounce timer.
func (v *Vault) scheduleRescan() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.timer != nil {
		v.timer.Stop()
	}
	v.timer = time.AfterFunc(rescanDebounce, func() { _ = v.Rescan() })
}

// Close stops the watcher, if one was started.
func (v *Vault) Close() error {
	if v.done != nil {
		close(v.done)
		v.done = nil
	}
	v.mu.Lock()
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.mu.Unlock()
	if v.watcher != nil {
		err := v.watcher.Close()
		v.watcher = nil
		return err
	}
	return nil
}
