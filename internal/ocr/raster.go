package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/joseph-ayodele/race-results/internal/runner"
)

var pageNumRe = regexp.MustCompile(`-(\d+)\.png$`)

// Rasterizer renders PDF pages to PNG files with pdftoppm.
type Rasterizer struct {
	bin      string
	dpi      int
	maxPages int
	runner   runner.Runner
	logger   *slog.Logger
}

func NewRasterizer(bin string, dpi, maxPages int, r runner.Runner, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	if bin == "" {
		bin = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &Rasterizer{bin: bin, dpi: dpi, maxPages: maxPages, runner: r, logger: logger}
}

// Rasterize returns the rendered pages in page order. cleanup is always
// non-nil and removes the temporary folder.
func (r *Rasterizer) Rasterize(ctx context.Context, path string) (pages []string, cleanup func(), err error) {
	tmpDir, err := os.MkdirTemp("", "rr-pp-*")
	if err != nil {
		return nil, func() {}, err
	}
	cleanup = func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			r.logger.Warn("failed to remove temp dir", "dir", tmpDir, "err", err)
		}
	}

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", strconv.Itoa(r.dpi), "-png"}
	if r.maxPages > 0 {
		args = append(args, "-l", strconv.Itoa(r.maxPages))
	}
	args = append(args, path, prefix)
	// pdftoppm -r 300 -png [-l N] <in.pdf> <tmp/page>
	if _, errb, err := r.runner.Run(ctx, r.bin, args...); err != nil {
		return nil, cleanup, fmt.Errorf("pdftoppm: %w: %s", err, runner.Truncate(string(errb), 512))
	}

	// collect generated pngs (page-1.png or page-01.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	SortPages(matches)
	if r.maxPages > 0 && len(matches) > r.maxPages {
		matches = matches[:r.maxPages]
	}
	if len(matches) == 0 {
		return nil, cleanup, fmt.Errorf("pdftoppm produced no images for %s", filepath.Base(path))
	}
	return matches, cleanup, nil
}

// SortPages orders page images by the number pdftoppm appends to them.
func SortPages(paths []string) {
	num := func(p string) int {
		m := pageNumRe.FindStringSubmatch(p)
		if m == nil {
			return 0
		}
		n, _ := strconv.Atoi(m[1])
		return n
	}
	sort.SliceStable(paths, func(i, j int) bool { return num(paths[i]) < num(paths[j]) })
}
