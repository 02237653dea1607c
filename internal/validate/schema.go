package validate

// StandingsSchema describes the standings report written to posiciones.json.
func StandingsSchema() map[string]any {
	row := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pos":        map[string]any{"type": "integer", "minimum": 0},
			"nro":        map[string]any{"type": "integer", "minimum": 0},
			"nombre":     map[string]any{"type": "string"},
			"anterior":   nullable("number"),
			"serie":      nullable("number"),
			"semif":      nullable("number"),
			"prefinal":   nullable("number"),
			"final":      nullable("number"),
			"total":      nullable("number"),
			"fin":        nullable("integer"),
			"extras_raw": nullable("string"),
		},
		"required": []string{"pos", "nro", "nombre", "anterior", "serie", "semif", "prefinal", "final", "total", "fin", "extras_raw"},
	}
	meta := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"source_pdf":       map[string]any{"type": "string"},
			"extracted_at_utc": map[string]any{"type": "string", "format": "date-time"},
			"fechas_cumplidas": nullable("integer"),
			"fechas_detectadas": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer"},
			},
			"backend": map[string]any{"type": "string"},
		},
		"required": []string{"source_pdf", "extracted_at_utc", "fechas_cumplidas", "fechas_detectadas"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"meta":      meta,
			"standings": map[string]any{"type": "array", "items": row},
		},
		"required": []string{"meta", "standings"},
	}
}

// RaceResultSchema describes one race result file.
func RaceResultSchema() map[string]any {
	row := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"position":     map[string]any{"type": "integer", "minimum": 0},
			"number":       map[string]any{"type": "integer", "minimum": 0},
			"name":         map[string]any{"type": "string"},
			"rec":          map[string]any{"type": "number", "minimum": 0},
			"rec_str":      nullable("string"),
			"t_final":      nullable("string"),
			"laps":         map[string]any{"type": "integer", "minimum": 0},
			"penalty":      nullable("integer"),
			"penalty_note": nullable("string"),
		},
		"required": []string{"position", "number", "name", "rec", "laps"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"date":         nullable("string"),
			"time":         nullable("string"),
			"results":      map[string]any{"type": "array", "items": row},
			"source_pdf":   map[string]any{"type": "string"},
			"generated_at": map[string]any{"type": "string"},
			"backend":      map[string]any{"type": "string"},
		},
		"required": []string{"date", "time", "results"},
	}
}

// ManifestSchema describes fechas.json and <Fecha N>/index.json.
func ManifestSchema(key string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			key: map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "minLength": 1},
				"uniqueItems": true,
			},
		},
		"required": []string{key},
	}
}

func nullable(typ string) map[string]any {
	return map[string]any{"type": []string{typ, "null"}}
}
