// Command publish commits the results folder and pushes it to the remote the
// results site is served from.
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
	"github.com/joseph-ayodele/race-results/internal/publish"
	"github.com/joseph-ayodele/race-results/internal/runner"
)

func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()

	var (
		repoDir = flag.String("repo", cfg.Publish.RepoDir, "git working tree")
		path    = flag.String("path", cfg.Publish.Path, "results folder to publish")
		remote  = flag.String("remote", cfg.Publish.Remote, "git remote")
		branch  = flag.String("branch", cfg.Publish.Branch, "git branch")
		message = flag.String("m", cfg.Publish.Message, "commit message")
		pull    = flag.Bool("pull", cfg.Publish.Pull, "pull before committing")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pcfg := publish.Config{RepoDir: *repoDir, Path: *path, Remote: *remote, Branch: *branch, Message: *message, Pull: *pull}
	pub, err := publish.NewPublisher(pcfg, runner.New(logger).InDir(*repoDir), logger)
	if err != nil {
		logger.Error("invalid publish configuration", "error", err)
		os.Exit(2)
	}
	res, err := pub.Publish(ctx)
	if err != nil {
		logger.Error("failed to publish results", "error", err)
		os.Exit(1)
	}
	if !res.Commit {
		fmt.Println("No new JSON files to publish")
		return
	}
	fmt.Printf("Published %d changed paths to %s/%s\n", len(res.Changed), *remote, *branch)
}
