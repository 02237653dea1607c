package ingest

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
)

// Planner decides which discovered jobs still need processing.
type Planner struct {
	// Output returns where the JSON of a job is written.
	Output func(Job) string
	Force  bool
	Logger *slog.Logger
}

func NewPlanner(output func(Job) string, force bool, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{Output: output, Force: force, Logger: logger}
}

// Plan splits jobs into those to process and those whose output already
// exists. With Force set nothing is skipped.
func (p *Planner) Plan(jobs []Job) (todo, skipped []Job) {
	for _, j := range jobs {
		if !p.Force && p.exists(j) {
			p.Logger.Debug("ingest.skip.exists", "path", j.Path, "output", p.Output(j))
			skipped = append(skipped, j)
			continue
		}
		todo = append(todo, j)
	}
	return todo, skipped
}

func (p *Planner) exists(j Job) bool {
	if p.Output == nil {
		return false
	}
	_, err := os.Stat(p.Output(j))
	if err == nil {
		return true
	}
	if !errors.Is(err, fs.ErrNotExist) {
		p.Logger.Warn("ingest.stat.failed", "path", p.Output(j), "err", err)
	}
	return false
}

// Current reports whether the output of j exists and is not older than its
// PDF. A PDF rewritten after its JSON was produced is not current.
func (p *Planner) Current(j Job) bool {
	if p.Output == nil {
		return false
	}
	out, err := os.Stat(p.Output(j))
	if err != nil {
		return false
	}
	src, err := os.Stat(j.Path)
	if err != nil {
		return true
	}
	return !out.ModTime().Before(src.ModTime())
}
