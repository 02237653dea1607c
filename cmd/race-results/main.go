package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/ingest"
	"github.com/joseph-ayodele/race-results/internal/manifest"
	"github.com/joseph-ayodele/race-results/internal/pipeline"
	"github.com/joseph-ayodele/race-results/internal/publish"
	"github.com/joseph-ayodele/race-results/internal/runner"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()

	var (
		pdfDir    = flag.String("pdfs", cfg.Paths.PDFDir, "folder holding <Fecha N>/*.pdf and Posiciones/*.pdf")
		outDir    = flag.String("out", cfg.Paths.OutputDir, "results folder")
		debugDir  = flag.String("debug-dir", cfg.Paths.DebugDir, "write debug artifacts below this folder")
		workers   = flag.Int("workers", cfg.Pipeline.Workers, "documents processed in parallel")
		force     = flag.Bool("force", cfg.Pipeline.Force, "reprocess PDFs whose JSON already exists")
		rebuild   = flag.Bool("rebuild", false, "only rebuild the manifests from the results folder")
		xlsx      = flag.Bool("xlsx", false, "also write an XLSX workbook next to each JSON file")
		doPublish = flag.Bool("publish", false, "commit and push the results folder when done")
	)
	flag.Parse()
	cfg.Paths.PDFDir = *pdfDir
	cfg.Paths.OutputDir = *outDir
	cfg.Paths.DebugDir = *debugDir
	cfg.Pipeline.Workers = *workers

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *rebuild {
		man, err := manifest.NewManager(cfg.Paths.OutputDir, logger)
		if err != nil {
			logger.Error("failed to open manifests", "error", err)
			os.Exit(1)
		}
		fechas, err := man.Rebuild()
		if err != nil {
			logger.Error("failed to rebuild manifests", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Manifests rebuilt: %d fechas in %s\n", len(fechas.Fechas), cfg.Paths.OutputDir)
		return
	}

	pcfg := pipeline.ConfigFrom(cfg)
	pcfg.WriteXLSX = *xlsx
	proc, _, repo, err := pipeline.Setup(ctx, cfg, pcfg, logger)
	if err != nil {
		logger.Error("failed to set up the pipeline", "error", err)
		os.Exit(1)
	}
	if repo != nil {
		defer repo.Close()
	}

	jobs, stats, err := ingest.Discover(cfg.Paths.PDFDir, true)
	if err != nil {
		logger.Error("failed to scan pdf folder", "dir", cfg.Paths.PDFDir, "error", err)
		os.Exit(1)
	}
	logger.Info("discovery complete",
		"dir", cfg.Paths.PDFDir,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"races", stats.Races,
		"standings", stats.Standings,
		"unknown", stats.Unknown)

	todo, skipped := ingest.NewPlanner(proc.OutputPath, *force, logger).Plan(jobs)
	summary := proc.RunBatch(ctx, todo, cfg.Pipeline.Workers)
	summary.Skip(skipped)

	for _, o := range summary.Outcomes {
		if o.Err != nil {
			logger.Error("document failed", "path", o.Job.Path, "status", o.Status, "error", o.Err)
		}
	}

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- PDFs found: %d\n", stats.Matched)
	fmt.Printf("- Converted: %d\n", summary.OK)
	fmt.Printf("- Empty: %d\n", summary.Empty)
	fmt.Printf("- Skipped: %d\n", summary.Skipped)
	fmt.Printf("- Failures: %d\n", summary.Failed)
	fmt.Printf("- Output: %s\n", cfg.Paths.OutputDir)

	if *doPublish && ctx.Err() == nil {
		pub, err := publish.NewPublisher(publish.FromConfig(cfg.Publish), runner.New(logger).InDir(cfg.Publish.RepoDir), logger)
		if err != nil {
			logger.Error("invalid publish configuration", "error", err)
			os.Exit(1)
		}
		res, err := pub.Publish(ctx)
		if err != nil {
			logger.Error("failed to publish results", "error", err)
			os.Exit(1)
		}
		if !res.Commit {
			fmt.Println("No new JSON files to publish")
		} else {
			fmt.Printf("- Published: %d changed paths\n", len(res.Changed))
		}
	}
}
