// Package publish commits the results tree to the git repository the web
// front end is served from and pushes it.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/runner"
)

// Config names the repository and what to publish.
type Config struct {
	RepoDir string
	Path    string // results folder, absolute or relative to RepoDir
	Remote  string
	Branch  string
	Message string
	Pull    bool // pull before committing
}

// FromConfig maps the loaded publish settings.
func FromConfig(c common.PublishConfig) Config {
	return Config{RepoDir: c.RepoDir, Path: c.Path, Remote: c.Remote, Branch: c.Branch, Message: c.Message, Pull: c.Pull}
}

// Result reports what a publication did.
type Result struct {
	Changed []string // porcelain status lines of the results folder
	Commit  bool
	Pushed  bool
}

type Publisher struct {
	cfg    Config
	git    runner.Runner
	logger *slog.Logger
}

// NewPublisher runs git through r, which must work inside cfg.RepoDir.
func NewPublisher(cfg Config, r runner.Runner, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	v := common.NewValidator().
		Field("repo_dir", cfg.RepoDir, common.Required).
		Field("path", cfg.Path, common.Required).
		Field("remote", cfg.Remote, common.Required).
		Field("branch", cfg.Branch, common.Required)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	if filepath.IsAbs(cfg.Path) {
		rel, err := filepath.Rel(cfg.RepoDir, cfg.Path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("%s is outside the repository %s", cfg.Path, cfg.RepoDir), common.ErrInvalidInput)
		}
		cfg.Path = rel
	}
	cfg.Path = filepath.ToSlash(cfg.Path)
	if cfg.Message == "" {
		cfg.Message = "Actualizar resultados JSON"
	}
	return &Publisher{cfg: cfg, git: r, logger: logger}, nil
}

// Publish pulls (when configured), stages the results folder, commits and
// pushes. With nothing changed it stops after the status check.
func (p *Publisher) Publish(ctx context.Context) (Result, error) {
	var res Result
	if p.cfg.Pull {
		if _, err := p.run(ctx, "pull", "--ff-only", p.cfg.Remote, p.cfg.Branch); err != nil {
			return res, err
		}
	}

	status, err := p.run(ctx, "status", "--porcelain", "--", p.cfg.Path)
	if err != nil {
		return res, err
	}
	for _, line := range strings.Split(strings.TrimRight(string(status), "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			res.Changed = append(res.Changed, line)
		}
	}
	if len(res.Changed) == 0 {
		p.logger.Info("publish.nothing_to_commit", "path", p.cfg.Path)
		return res, nil
	}

	if _, err := p.run(ctx, "add", "--", p.cfg.Path); err != nil {
		return res, err
	}
	if _, err := p.run(ctx, "commit", "-m", p.cfg.Message); err != nil {
		if errors.Is(err, errNothingToCommit) {
			p.logger.Info("publish.nothing_to_commit", "path", p.cfg.Path)
			return res, nil
		}
		return res, err
	}
	res.Commit = true

	if _, err := p.run(ctx, "push", p.cfg.Remote, p.cfg.Branch); err != nil {
		return res, err
	}
	res.Pushed = true
	p.logger.Info("publish.ok", "path", p.cfg.Path, "files", len(res.Changed), "remote", p.cfg.Remote, "branch", p.cfg.Branch)
	return res, nil
}

var errNothingToCommit = errors.New("nothing to commit")

func (p *Publisher) run(ctx context.Context, args ...string) ([]byte, error) {
	stdout, stderr, err := p.git.Run(ctx, "git", args...)
	if err == nil {
		return stdout, nil
	}
	if args[0] == "commit" && (bytes.Contains(stdout, []byte("nothing to commit")) || bytes.Contains(stderr, []byte("nothing to commit"))) {
		return stdout, errNothingToCommit
	}
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		msg = strings.TrimSpace(string(stdout))
	}
	return stdout, fmt.Errorf("git %s: %w: %s", args[0], err, runner.Truncate(msg, 2<<10))
}
