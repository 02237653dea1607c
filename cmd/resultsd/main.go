package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/race-results/internal/async"
	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/export"
	"github.com/joseph-ayodele/race-results/internal/ingest"
	"github.com/joseph-ayodele/race-results/internal/pipeline"
	"github.com/joseph-ayodele/race-results/internal/server"
)

func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()

	var (
		source  = flag.String("source", "files", "where the API reads results from: files or store")
		noWatch = flag.Bool("no-watch", false, "serve only, do not watch the pdfs folder")
		xlsx    = flag.Bool("xlsx", false, "also write an XLSX workbook next to each JSON file")
	)
	flag.Parse()

	// Setup structured logger that outputs messages with variables but no time
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *source != "files" && *source != "store" {
		logger.Error("unknown --source", "source", *source)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pcfg := pipeline.ConfigFrom(cfg)
	pcfg.WriteXLSX = *xlsx
	proc, man, repo, err := pipeline.Setup(ctx, cfg, pcfg, logger)
	if err != nil {
		logger.Error("failed to set up the pipeline", "error", err)
		os.Exit(1)
	}
	if repo != nil {
		defer repo.Close()
	}

	var src server.Source = server.FileSource{Manifest: man}
	if *source == "store" {
		if repo == nil {
			logger.Error("--source store needs a database, DB_DRIVER is none")
			os.Exit(1)
		}
		src = server.RepoSource{Repo: repo}
	}

	planner := ingest.NewPlanner(proc.OutputPath, cfg.Pipeline.Force, logger)
	handler := async.HandlerFunc(func(ctx context.Context, job async.Job) error {
		if !job.Force && !planner.Force && planner.Current(job.Doc) {
			logger.Info("daemon.skip.current", "path", job.Doc.Path, "job_id", job.ID)
			return nil
		}
		_, err := proc.ProcessAndStore(ctx, job.Doc)
		return err
	})
	queue := async.NewProcessorQueue(handler, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithProcessTimeout(cfg.Pipeline.ProcessTimeout),
	)

	watchDone := make(chan struct{})
	if *noWatch {
		close(watchDone)
	} else {
		events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Root:        cfg.Paths.PDFDir,
			InitialScan: true,
			Debounce:    cfg.Pipeline.WatchDebounce,
			SkipHidden:  true,
			Logger:      logger,
		})
		if err != nil {
			logger.Error("failed to watch pdf folder", "dir", cfg.Paths.PDFDir, "error", err)
			os.Exit(1)
		}
		go func() {
			defer close(watchDone)
			for events != nil || errs != nil {
				select {
				case job, ok := <-events:
					if !ok {
						events = nil
						continue
					}
					if err := queue.Enqueue(ctx, async.NewJob(job, false)); err != nil && !errors.Is(err, context.Canceled) {
						logger.Warn("daemon.enqueue.failed", "path", job.Path, "error", err)
					}
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					logger.Warn("daemon.watch.error", "error", err)
				}
			}
		}()
		logger.Info("watching pdf folder", "dir", cfg.Paths.PDFDir)
	}

	svc := server.NewResultsService(src, export.NewService(logger),
		server.NewIngestionService(cfg.Paths.PDFDir, queue, logger), logger)
	srv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      svc.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("resultsd listening", "addr", cfg.Server.HTTPAddr, "source", *source)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	<-watchDone
	queue.Shutdown(shutdownCtx)
}
