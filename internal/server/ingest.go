package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/race-results/internal/async"
	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/ingest"
)

// Enqueuer accepts jobs for background processing.
type Enqueuer interface {
	Enqueue(ctx context.Context, job async.Job) error
}

// IngestionService queues PDFs already present below the pdfs folder.
type IngestionService struct {
	root   string
	queue  Enqueuer
	logger *slog.Logger
}

func NewIngestionService(root string, queue Enqueuer, logger *slog.Logger) *IngestionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestionService{root: root, queue: queue, logger: logger}
}

type submitRequest struct {
	// Path is relative to the pdfs folder, e.g. "Fecha 3/Serie 1.pdf".
	Path  string `json:"path"`
	Force bool   `json:"force"`
}

type submitResponse struct {
	JobID string `json:"job_id"`
	Kind  string `json:"kind"`
	Fecha string `json:"fecha,omitempty"`
	Race  string `json:"race,omitempty"`
}

func (s *IngestionService) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	path := strings.TrimSpace(req.Path)
	if path == "" || filepath.IsAbs(path) {
		s.logger.Warn("ingest request with bad path", "path", req.Path)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path must be relative to the pdfs folder"})
		return
	}

	full := filepath.Join(s.root, filepath.FromSlash(path))
	doc, ok := ingest.Classify(s.root, full)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("%s is not a race or standings PDF", path)})
		return
	}
	if _, err := statFile(full); err != nil {
		writeJSON(w, common.HTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	job := async.NewJob(doc, req.Force)
	if err := s.queue.Enqueue(r.Context(), job); err != nil {
		s.logger.Error("ingest enqueue failed", "path", full, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	s.logger.Info("ingest.queued", "job_id", job.ID, "path", full)
	writeJSON(w, http.StatusAccepted, submitResponse{
		JobID: job.ID.String(),
		Kind:  string(doc.Kind),
		Fecha: doc.Fecha,
		Race:  doc.Race,
	})
}

func statFile(path string) (os.FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrNotFound, filepath.Base(path))
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a folder", common.ErrInvalidInput, filepath.Base(path))
	}
	return fi, nil
}
