// Package fileutil provides small path helpers shared by the render pipeline.
package fileutil

import (
	"path/filepath"
	"strings"
)

// rasterExtensions are the image formats downstream converters read natively.
var rasterExtensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// FileURI converts an absolute filesystem path to a file-scheme URI with
// forward slashes, safe to hand to converters on any platform.
func FileURI(absPath string) string {
	// Normalize both separator styles, not just the host's: exported
	// documents may be prepared on one platform for use on another.
	p := strings.ReplaceAll(filepath.ToSlash(absPath), `\`, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive paths: file:///C:/...
	}
	return "file://" + p
}

// IsRasterImage reports whether a file name ends in a raster-image extension.
func IsRasterImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range rasterExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// StripExt removes the extension from a file name or path.
func StripExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
