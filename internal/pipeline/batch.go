package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/entity"
	"github.com/joseph-ayodele/race-results/internal/ingest"
)

// Outcome is what happened to one job of a batch.
type Outcome struct {
	Job      ingest.Job
	Document *entity.Document
	Status   constants.JobStatus
	Err      error
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Total    int
	OK       int
	Empty    int
	Skipped  int
	Failed   int
	Outcomes []Outcome // in job order
}

// RunBatch processes jobs with at most workers in flight. A failing document
// never stops the others; canceling ctx stops jobs not yet started.
func (p *Processor) RunBatch(ctx context.Context, jobs []ingest.Job, workers int) Summary {
	if workers <= 0 {
		workers = 1
	}
	outcomes := make([]Outcome, len(jobs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, job := range jobs {
		if ctx.Err() != nil {
			outcomes[i] = Outcome{Job: job, Status: constants.JobStatusSkipped, Err: ctx.Err()}
			continue
		}
		g.Go(func() error {
			doc, err := p.ProcessAndStore(ctx, job)
			o := Outcome{Job: job, Document: doc, Err: err}
			switch {
			case err != nil:
				o.Status = constants.JobStatusFailed
			default:
				o.Status = doc.Status
			}
			outcomes[i] = o
			return nil
		})
	}
	_ = g.Wait()

	s := Summary{Total: len(jobs), Outcomes: outcomes}
	for _, o := range outcomes {
		s.add(o.Status)
	}
	p.logger.Info("pipeline.batch.done", "total", s.Total, "ok", s.OK, "empty", s.Empty, "failed", s.Failed)
	return s
}

// Skip records jobs that were not run because their output exists.
func (s *Summary) Skip(jobs []ingest.Job) {
	for _, j := range jobs {
		s.Total++
		s.Outcomes = append(s.Outcomes, Outcome{Job: j, Status: constants.JobStatusSkipped})
		s.add(constants.JobStatusSkipped)
	}
}

func (s *Summary) add(status constants.JobStatus) {
	switch status {
	case constants.JobStatusOK:
		s.OK++
	case constants.JobStatusEmpty:
		s.Empty++
	case constants.JobStatusSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}
