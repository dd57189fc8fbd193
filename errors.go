package pandoc

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyNotePath    = errors.New("note path cannot be empty")
	ErrInvalidFormat    = errors.New("invalid output format")
	ErrInvalidPolicy    = errors.New("invalid link policy")
	ErrInvalidCSSMode   = errors.New("invalid CSS injection mode")
	ErrNoteRead         = errors.New("failed to read note")
	ErrRenderFailed     = errors.New("markdown rendering failed")
	ErrFragmentParse    = errors.New("failed to parse rendered HTML")

	// Rasterization errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrRasterize      = errors.New("diagram rasterization failed")
)
