package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/race-results/constants"
)

// AllowedExt checks if a file extension is one we pick up.
func AllowedExt(ext string) bool {
	return constants.IsPDF(ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isFechaDir(name string) bool {
	return constants.FechaNumber(name) > 0 && strings.HasPrefix(strings.ToLower(strings.TrimSpace(name)), "fecha")
}

func isStandingsDir(name string) bool {
	return strings.EqualFold(name, constants.StandingsFolder)
}
