package constants

import "strings"

// AllowedExtensions holds the default allowed file extensions for order ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// Source kinds a document can be read from.
const (
	SourcePDF = "PDF"
	SourceTXT = "TXT"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToSource maps a file extension to its source kind, or "" when unsupported.
func MapExtToSource(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return SourcePDF
	case "txt":
		return SourceTXT
	}
	return ""
}
