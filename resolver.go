package pandoc

import (
	"path/filepath"
	"strings"
)

// resolver maps author-written note references to vault files.
type resolver struct {
	vault Vault
}

// Resolve finds the file a reference names, relative to the note at
// sourcePath (absolute). Strategies in order, first match wins:
//
//  1. The vault's own link convention, scoped to the source note's folder.
//  2. A vault-wide scan over the stable file enumeration, matching exact
//     file name, exact base name, path suffix, then case-insensitive name.
//
// Returns ok=false when nothing matches; callers must leave the original
// reference syntax untouched in that case.
func (r *resolver) Resolve(ref, sourcePath string) (ResolvedFile, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ResolvedFile{}, false
	}

	sourceRel := r.relToRoot(sourcePath)
	if fh := r.vault.ResolveLink(ref, sourceRel); fh != nil {
		return r.resolved(*fh), true
	}

	if fh, ok := r.scan(ref); ok {
		return r.resolved(fh), true
	}
	return ResolvedFile{}, false
}

// scan is the vault-wide fallback: four passes in priority order over the
// sorted enumeration, each pass taking the first file it matches.
func (r *resolver) scan(ref string) (FileHandle, bool) {
	files := r.vault.ListFiles()

	for _, f := range files {
		if f.Name == ref {
			return f, true
		}
	}
	for _, f := range files {
		if f.Base == ref {
			return f, true
		}
	}
	for _, f := range files {
		if strings.HasSuffix(f.Path, ref) {
			return f, true
		}
	}
	for _, f := range files {
		if strings.EqualFold(f.Name, ref) {
			return f, true
		}
	}
	return FileHandle{}, false
}

func (r *resolver) resolved(fh FileHandle) ResolvedFile {
	return ResolvedFile{
		AbsPath: r.vault.AbsolutePath(fh.Path),
		RelPath: fh.Path,
		Base:    fh.Base,
		Display: fh.Base,
	}
}

// relToRoot converts an absolute note path to a vault-relative one. Paths
// outside the vault come back unchanged; the link convention then simply
// finds no folder context and the scan takes over.
func (r *resolver) relToRoot(absPath string) string {
	rel, err := filepath.Rel(r.vault.Root(), absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(rel)
}
