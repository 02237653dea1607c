package entity

// ResultRow is one finisher line of a race result. Rec holds penalty seconds
// (0 when none were found), RecStr the reference time as printed.
type ResultRow struct {
	Position    int     `json:"position"`
	Number      int     `json:"number"`
	Name        string  `json:"name"`
	Rec         float64 `json:"rec"`
	RecStr      *string `json:"rec_str"`
	TFinal      *string `json:"t_final"`
	Laps        int     `json:"laps"`
	Penalty     *int    `json:"penalty"`
	PenaltyNote *string `json:"penalty_note"`
}

// RaceResult is the output record of the race-result mode.
type RaceResult struct {
	Date        *string     `json:"date"`
	Time        *string     `json:"time"`
	Results     []ResultRow `json:"results"`
	SourcePDF   string      `json:"source_pdf,omitempty"`
	GeneratedAt string      `json:"generated_at,omitempty"`
	Backend     string      `json:"backend,omitempty"`
}
