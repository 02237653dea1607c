// Command extract runs the extraction backends on one PDF and prints what
// each produced plus the grouped lines of the winner.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/layout"
	"github.com/joseph-ayodele/race-results/internal/pipeline"
)

func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()

	var (
		kind  = flag.String("kind", string(constants.KindRace), "backend order to use: race or standings")
		lines = flag.Int("lines", cfg.Parse.PreviewLines, "grouped lines to print, 0 for all")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "extract [--kind race|standings] <file.pdf>")
		os.Exit(2)
	}
	k := constants.DocumentKind(*kind)
	if k != constants.KindRace && k != constants.KindStandings {
		logger.Error("unknown kind", "kind", *kind)
		os.Exit(2)
	}

	sel, err := pipeline.BuildSelectors(cfg.Extract, logger)
	if err != nil {
		logger.Error("build extraction backends", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.ProcessTimeout)
	defer cancel()

	start := time.Now()
	out, attempts, err := pipeline.NewExtractStage(sel, logger).Run(ctx, k, flag.Arg(0))
	for _, a := range attempts {
		fmt.Printf("%-18s tokens=%-6d %6dms %s\n", a.Backend, a.Count, a.Duration.Milliseconds(), a.Error)
	}
	if err != nil {
		logger.Error("text extraction failed", "path", flag.Arg(0), "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	pcfg := pipeline.ConfigFrom(cfg)
	grouped := layout.Lines(out, pcfg.Parse.Layout)
	fmt.Printf("\nbackend %s: %d tokens, %d lines\n\n", out.Backend, out.Count(), len(grouped))
	fmt.Print(layout.Preview(grouped, *lines))
}
