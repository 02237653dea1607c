package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/entity"
	"github.com/joseph-ayodele/race-results/internal/extract"
	"github.com/joseph-ayodele/race-results/internal/ingest"
	"github.com/joseph-ayodele/race-results/internal/layout"
	"github.com/joseph-ayodele/race-results/internal/manifest"
	"github.com/joseph-ayodele/race-results/internal/standings"
)

func (p *Processor) writeRecord(doc *entity.Document, path string) error {
	data, err := doc.EncodePayload(true)
	if err != nil {
		return fmt.Errorf("encode %s: %w", doc.SourcePDF, err)
	}
	if err := manifest.WriteFile(path, data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	p.logger.Debug("pipeline.write.ok", "output", path, "bytes", len(data))
	return nil
}

func (p *Processor) writeWorkbook(doc *entity.Document, jsonPath string) error {
	data, err := p.exporter.DocumentXLSX(doc)
	if err != nil {
		return err
	}
	return manifest.WriteFile(strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath))+".xlsx", data)
}

// debugRecord is the content of <name>.debug.json.
type debugRecord struct {
	Source    string            `json:"source"`
	Kind      string            `json:"kind"`
	Output    string            `json:"output"`
	Backend   string            `json:"backend"`
	Tokens    int               `json:"tokens"`
	Lines     int               `json:"lines"`
	Rows      int               `json:"rows"`
	Status    string            `json:"status"`
	Attempts  []extract.Attempt `json:"attempts"`
	Warnings  []string          `json:"warnings"`
	Extracted string            `json:"extracted_at"`
}

// DebugBase is the artifact path prefix of a job below the debug folder.
func DebugBase(debugDir string, job ingest.Job) string {
	if job.Kind == constants.KindStandings {
		return filepath.Join(debugDir, constants.StandingsFolder, job.Stem())
	}
	return filepath.Join(debugDir, constants.NormalizeFecha(job.Fecha), job.Race)
}

func (p *Processor) writeDebug(job ingest.Job, doc *entity.Document, tr trace) error {
	base := DebugBase(p.cfg.DebugDir, job)
	attempts := tr.attempts
	if attempts == nil {
		attempts = []extract.Attempt{}
	}
	warnings := doc.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	rec := debugRecord{
		Source:    job.Path,
		Kind:      string(job.Kind),
		Output:    tr.outputPath,
		Backend:   doc.Backend,
		Tokens:    doc.TokenCount,
		Lines:     len(tr.parsed.lines),
		Rows:      doc.RowCount,
		Status:    string(doc.Status),
		Attempts:  attempts,
		Warnings:  warnings,
		Extracted: doc.ExtractedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	data, err := entity.EncodeJSON(rec, true)
	if err != nil {
		return err
	}
	if err := manifest.WriteFile(base+".debug.json", data); err != nil {
		return err
	}

	preview := layout.Preview(tr.parsed.lines, p.cfg.PreviewLines)
	if err := manifest.WriteFile(base+".preview.txt", []byte(preview)); err != nil {
		return err
	}
	if job.Kind == constants.KindStandings {
		dump := standings.Dump(tr.parsed.candidates)
		if dump != "" {
			dump += "\n"
		}
		if err := manifest.WriteFile(base+".candidates.txt", []byte(dump)); err != nil {
			return err
		}
	}
	p.logger.Debug("pipeline.debug.ok", "base", base)
	return nil
}
