package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/entity"
	"github.com/joseph-ayodele/race-results/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ResultsService answers the read API over published results.
type ResultsService struct {
	source   Source
	exporter *export.Service
	ingest   *IngestionService // optional
	logger   *slog.Logger
}

func NewResultsService(source Source, exporter *export.Service, ingest *IngestionService, logger *slog.Logger) *ResultsService {
	if logger == nil {
		logger = slog.Default()
	}
	if exporter == nil {
		exporter = export.NewService(logger)
	}
	return &ResultsService{source: source, exporter: exporter, ingest: ingest, logger: logger}
}

// Routes builds the HTTP handler.
func (s *ResultsService) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Get("/fechas", s.listFechas)
	r.Get("/fechas/{fecha}", s.listRaces)
	r.Get("/fechas/{fecha}/{race}", s.getRace)
	r.Get("/posiciones", s.getStandings)
	r.Get("/posiciones.xlsx", s.getStandings)
	if s.ingest != nil {
		r.Post("/jobs", s.ingest.submit)
	}
	return r
}

func (s *ResultsService) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "race-results"})
}

func (s *ResultsService) listFechas(w http.ResponseWriter, r *http.Request) {
	fechas, err := s.source.Fechas(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if fechas == nil {
		fechas = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"fechas": fechas})
}

func (s *ResultsService) listRaces(w http.ResponseWriter, r *http.Request) {
	races, err := s.source.Races(r.Context(), chi.URLParam(r, "fecha"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if races == nil {
		races = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"races": races})
}

// getRace serves /fechas/{fecha}/{race} as JSON, or as a workbook when the
// race carries an .xlsx suffix.
func (s *ResultsService) getRace(w http.ResponseWriter, r *http.Request) {
	race, xlsx := strings.CutSuffix(chi.URLParam(r, "race"), ".xlsx")
	race = strings.TrimSuffix(race, ".json")
	v := common.NewValidator().Field("race", race, common.Required, common.NoPathSeparators, common.MaxLength(64))
	if err := common.ValidateAndReturnError(v); err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := s.source.Race(r.Context(), chi.URLParam(r, "fecha"), race)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeDocument(w, r, doc, race, xlsx)
}

func (s *ResultsService) getStandings(w http.ResponseWriter, r *http.Request) {
	doc, err := s.source.Standings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeDocument(w, r, doc, "posiciones", strings.HasSuffix(r.URL.Path, ".xlsx"))
}

func (s *ResultsService) writeDocument(w http.ResponseWriter, r *http.Request, doc *entity.Document, name string, xlsx bool) {
	if !xlsx {
		writeJSON(w, http.StatusOK, doc.Payload())
		return
	}
	data, err := s.exporter.DocumentXLSX(doc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *ResultsService) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatus(err)
	msg := http.StatusText(status)
	var appErr *common.AppError
	switch {
	case errors.As(err, &appErr):
		msg = appErr.Message
	case status < http.StatusInternalServerError:
		msg = err.Error()
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("http.request.failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *ResultsService) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := common.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(ctx))
		s.logger.Debug("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed_ms", time.Since(start).Milliseconds(),
			"request_id", common.RequestIDFromContext(ctx),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := entity.EncodeJSON(v, false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
