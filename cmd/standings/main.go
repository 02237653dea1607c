// Command standings extracts the championship standings of a single PDF.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/ingest"
	"github.com/joseph-ayodele/race-results/internal/manifest"
	"github.com/joseph-ayodele/race-results/internal/pipeline"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		out            = flag.String("out", constants.StandingsOutput, "output JSON file")
		pretty         = flag.Bool("pretty", false, "indent the JSON output")
		dumpText       = flag.String("dump-text", "", "write the extracted text to this file")
		dumpCandidates = flag.String("dump-candidates", "", "write the candidate row lines to this file")
	)
	flag.Usage = func() {
		printError("usage: standings [flags] FILE.pdf\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	pdfPath := flag.Arg(0)
	if info, err := os.Stat(pdfPath); err != nil || info.IsDir() {
		printError("Error: %s does not exist\n", pdfPath)
		os.Exit(2)
	}

	_ = godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)
	cfg := common.LoadConfig()

	sel, err := pipeline.BuildSelectors(cfg.Extract, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	proc := pipeline.NewProcessor(logger, pipeline.ConfigFrom(cfg), sel, nil, nil, nil)

	job := ingest.Job{Path: pdfPath, Kind: constants.KindStandings}
	doc, in, err := proc.Inspect(context.Background(), job)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	if *dumpText != "" {
		if err := manifest.WriteFile(*dumpText, []byte(in.Text)); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *dumpCandidates != "" {
		if err := manifest.WriteFile(*dumpCandidates, []byte(strings.Join(in.Candidates, "\n"))); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
	}
	if doc.Standings == nil || doc.Standings.Meta.FechasCumplidas == nil {
		printError("Warning: no 'cumplidas N fechas' block found\n")
	}

	data, err := doc.EncodePayload(*pretty)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if err := manifest.WriteFile(*out, data); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK: %d rows -> %s\n", doc.RowCount, *out)
}
