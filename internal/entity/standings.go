package entity

// StandingsRow is one competitor line of a championship standings table.
// Columns that could not be recovered are null.
type StandingsRow struct {
	Pos       int      `json:"pos"`
	Nro       int      `json:"nro"`
	Nombre    string   `json:"nombre"`
	Anterior  *float64 `json:"anterior"`
	Serie     *float64 `json:"serie"`
	Semif     *float64 `json:"semif"`
	Prefinal  *float64 `json:"prefinal"`
	Final     *float64 `json:"final"`
	Total     *float64 `json:"total"`
	Fin       *int     `json:"fin"`
	ExtrasRaw *string  `json:"extras_raw"`
}

// StandingsMeta describes where a standings report came from.
type StandingsMeta struct {
	SourcePDF        string `json:"source_pdf"`
	ExtractedAtUTC   string `json:"extracted_at_utc"`
	FechasCumplidas  *int   `json:"fechas_cumplidas"`
	FechasDetectadas []int  `json:"fechas_detectadas"`
	Backend          string `json:"backend,omitempty"`
}

// StandingsReport is the output record of the standings mode.
type StandingsReport struct {
	Meta      StandingsMeta  `json:"meta"`
	Standings []StandingsRow `json:"standings"`
}
