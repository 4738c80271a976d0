package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/freight-orders/constants"
)

// AllowedExt checks ext against exts, or the default pdf/txt set when exts is nil.
func AllowedExt(ext string, exts map[string]struct{}) bool {
	if exts == nil {
		exts = constants.AllowedExtensions
	}
	_, ok := exts[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && base != ".." && strings.HasPrefix(base, ".")
}

// ParseExts turns "pdf, .TXT" style input into an extension set.
func ParseExts(list []string) map[string]struct{} {
	if len(list) == 0 {
		return nil
	}
	exts := map[string]struct{}{}
	for _, e := range list {
		for _, part := range strings.Split(e, ",") {
			if part = constants.NormalizeExt(strings.TrimSpace(part)); part != "" {
				exts[part] = struct{}{}
			}
		}
	}
	return exts
}
