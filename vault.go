package pandoc

// FileHandle identifies one file in the vault.
type FileHandle struct {
	Path string // vault-relative path, forward slashes
	Name string // file name with extension
	Base string // file name without extension
}

// Vault abstracts the knowledge base's file index and read primitives.
// The vault subpackage provides a disk-backed implementation; tests inject
// in-memory fakes.
//
// ListFiles must return a stable, sorted enumeration: the resolver's
// vault-wide fallback scan breaks ties by first-encountered order, so scan
// order decides which of several same-named files a reference resolves to.
type Vault interface {
	// ResolveLink resolves a reference using the vault's native link
	// convention (same-name, same-folder, shortest-path disambiguation),
	// scoped to the linking note's folder. Returns nil when nothing matches.
	ResolveLink(name, sourceRelPath string) *FileHandle

	// ListFiles enumerates every file in the vault in stable sorted order.
	ListFiles() []FileHandle

	// ReadFile returns the text content of a vault-relative path.
	ReadFile(relPath string) (string, error)

	// AbsolutePath converts a vault-relative path to an absolute one.
	AbsolutePath(relPath string) string

	// Root returns the vault's absolute root directory.
	Root() string
}
