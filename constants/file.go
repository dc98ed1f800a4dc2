package constants

import "strings"

// AllowedExtensions holds the default allowed file extensions for bank file ingestion.
var AllowedExtensions = map[string]struct{}{
	"rem":   {},
	"ret":   {},
	"txt":   {},
	"cnab":  {},
	"cnab4": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
