package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/entity"
)

const (
	ResultsSheet   = "Resultados"
	StandingsSheet = "Posiciones"
	infoSheet      = "Info"
)

// Service renders documents as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// DocumentXLSX renders whichever record the document carries.
func (s *Service) DocumentXLSX(doc *entity.Document) ([]byte, error) {
	switch {
	case doc == nil:
		return nil, fmt.Errorf("%w: nil document", common.ErrInvalidInput)
	case doc.Result != nil:
		return s.RaceResultXLSX(doc.Result)
	case doc.Standings != nil:
		return s.StandingsXLSX(doc.Standings)
	}
	return nil, fmt.Errorf("%w: document %s has no record", common.ErrInvalidInput, doc.SourcePDF)
}

// RaceResultXLSX returns a workbook with one row per finisher. Times stay
// text, as printed.
func (s *Service) RaceResultXLSX(res *entity.RaceResult) ([]byte, error) {
	start := time.Now()
	f, err := newBook(ResultsSheet)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	headers := []string{"Pos", "Nro", "Piloto", "Rec", "Rec (texto)", "T. Final", "Vueltas", "Penalización", "Nota"}
	if err := writeRow(f, ResultsSheet, 1, toAny(headers)); err != nil {
		return nil, err
	}
	for i, r := range res.Results {
		row := []any{r.Position, r.Number, r.Name, r.Rec, str(r.RecStr), str(r.TFinal), r.Laps, intOrBlank(r.Penalty), str(r.PenaltyNote)}
		if err := writeRow(f, ResultsSheet, i+2, row); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(ResultsSheet, "A", "B", 6)
	_ = f.SetColWidth(ResultsSheet, "C", "C", 32)
	_ = f.SetColWidth(ResultsSheet, "D", "G", 12)
	_ = f.SetColWidth(ResultsSheet, "I", "I", 28)
	if err := freezeHeader(f, ResultsSheet); err != nil {
		return nil, err
	}

	if err := writeInfo(f, [][2]string{
		{"Fuente", res.SourcePDF},
		{"Fecha", str(res.Date)},
		{"Hora", str(res.Time)},
		{"Generado", res.GeneratedAt},
		{"Extracción", res.Backend},
	}); err != nil {
		return nil, err
	}

	out, err := finish(f, ResultsSheet)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok", "sheet", ResultsSheet, "rows", len(res.Results), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// StandingsXLSX returns a workbook with the championship table.
func (s *Service) StandingsXLSX(rep *entity.StandingsReport) ([]byte, error) {
	start := time.Now()
	f, err := newBook(StandingsSheet)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	headers := []string{"Pos", "Nro", "Nombre", "Anterior", "Serie", "Semif", "Prefinal", "Final", "Total", "Fin", "Extras"}
	if err := writeRow(f, StandingsSheet, 1, toAny(headers)); err != nil {
		return nil, err
	}
	for i, r := range rep.Standings {
		row := []any{
			r.Pos, r.Nro, r.Nombre,
			floatOrBlank(r.Anterior), floatOrBlank(r.Serie), floatOrBlank(r.Semif),
			floatOrBlank(r.Prefinal), floatOrBlank(r.Final), floatOrBlank(r.Total),
			intOrBlank(r.Fin), str(r.ExtrasRaw),
		}
		if err := writeRow(f, StandingsSheet, i+2, row); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(StandingsSheet, "A", "B", 6)
	_ = f.SetColWidth(StandingsSheet, "C", "C", 32)
	_ = f.SetColWidth(StandingsSheet, "D", "J", 10)
	_ = f.SetColWidth(StandingsSheet, "K", "K", 24)
	if err := freezeHeader(f, StandingsSheet); err != nil {
		return nil, err
	}

	rounds := ""
	if rep.Meta.FechasCumplidas != nil {
		rounds = fmt.Sprint(*rep.Meta.FechasCumplidas)
	}
	if err := writeInfo(f, [][2]string{
		{"Fuente", rep.Meta.SourcePDF},
		{"Fechas cumplidas", rounds},
		{"Extraído", rep.Meta.ExtractedAtUTC},
		{"Extracción", rep.Meta.Backend},
	}); err != nil {
		return nil, err
	}

	out, err := finish(f, StandingsSheet)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok", "sheet", StandingsSheet, "rows", len(rep.Standings), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

func newBook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("xlsx row %d: %w", row, err)
	}
	return nil
}

func freezeHeader(f *excelize.File, sheet string) error {
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeInfo(f *excelize.File, pairs [][2]string) error {
	if _, err := f.NewSheet(infoSheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	for i, p := range pairs {
		if err := writeRow(f, infoSheet, i+1, []any{p[0], p[1]}); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(infoSheet, "A", "A", 18)
	_ = f.SetColWidth(infoSheet, "B", "B", 40)
	return nil
}

func finish(f *excelize.File, active string) ([]byte, error) {
	if idx, err := f.GetSheetIndex(active); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Missing numbers stay empty cells instead of zeros.
func floatOrBlank(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func intOrBlank(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
