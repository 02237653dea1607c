package constants

// DocumentKind tells which reconstruction mode produced a document.
type DocumentKind string

const (
	KindRace      DocumentKind = "race"
	KindStandings DocumentKind = "standings"
)

// JobStatus is the outcome of processing one PDF.
type JobStatus string

// Stable values (stored as-is in the documents table).
const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusOK      JobStatus = "OK"      // rows extracted
	JobStatusEmpty   JobStatus = "EMPTY"   // processed, nothing recognised
	JobStatusSkipped JobStatus = "SKIPPED" // output already present
	JobStatusFailed  JobStatus = "FAILED"
)
