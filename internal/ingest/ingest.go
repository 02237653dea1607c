package ingest

import (
	"github.com/joseph-ayodele/race-results/constants"
)

// Job is one PDF to turn into a document.
type Job struct {
	Path  string
	Kind  constants.DocumentKind
	Fecha string // "Fecha N"; empty for standings
	Race  string // race key; empty for standings
}

// Stem is the PDF file name without folder and extension.
func (j Job) Stem() string {
	return stem(j.Path)
}

// DirStats summarizes a discovery walk.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Races     uint32
	Standings uint32
	Unknown   uint32
	Failed    uint32
}
