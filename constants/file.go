package constants

import "strings"

// AllowedExtensions holds the file extensions picked up from the pdfs folder.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsPDF reports whether the extension (with or without dot) is a PDF one.
func IsPDF(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// Well known file and folder names of the results tree.
const (
	FechasManifest  = "fechas.json"
	RaceIndex       = "index.json"
	StandingsFolder = "Posiciones"
	StandingsOutput = "posiciones.json"
)
