package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Root        string        // pdfs folder, watched recursively
	InitialScan bool          // if true, emit the PDFs already present
	Debounce    time.Duration // coalesce rapid write bursts of one file
	SkipHidden  bool
	Logger      *slog.Logger
}

// StartWatcher emits jobs for PDFs created or rewritten below cfg.Root. Both
// channels are closed when ctx is done.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan Job, <-chan error, error) {
	if cfg.Root == "" {
		return nil, nil, errors.New("no root provided")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	evCh := make(chan Job, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("watcher.create.failed", "err", err)
		return nil, nil, err
	}

	addDir := func(root string, onFile func(path string)) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if cfg.SkipHidden && path != cfg.Root && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return w.Add(path)
			}
			onFile(path)
			return nil
		})
	}
	var initial []Job
	collect := func(path string) {
		if job, ok := Classify(cfg.Root, path); ok {
			initial = append(initial, job)
		}
	}
	if err := addDir(cfg.Root, collect); err != nil {
		logger.Error("watcher.add.failed", "root", cfg.Root, "err", err)
		_ = w.Close()
		return nil, nil, err
	}
	if cfg.InitialScan {
		SortJobs(initial)
		for _, j := range initial {
			select {
			case evCh <- j:
			default:
				logger.Warn("watcher.drop", "path", j.Path)
			}
		}
	}

	go func() {
		var (
			mu      sync.Mutex
			pending = map[string]*time.Timer{}
			wg      sync.WaitGroup
		)
		defer func() {
			mu.Lock()
			for p, t := range pending {
				if t.Stop() {
					wg.Done()
				}
				delete(pending, p)
			}
			mu.Unlock()
			wg.Wait()
			close(evCh)
			close(errCh)
			if err := w.Close(); err != nil {
				logger.Warn("watcher.close.failed", "err", err)
			}
		}()

		emit := func(path string) {
			defer wg.Done()
			mu.Lock()
			delete(pending, path)
			mu.Unlock()
			job, ok := Classify(cfg.Root, path)
			if !ok {
				return
			}
			if _, err := os.Stat(path); err != nil {
				return
			}
			select {
			case evCh <- job:
				logger.Debug("watcher.emit", "path", path)
			case <-ctx.Done():
			}
		}

		schedule := func(path string) {
			if !AllowedExt(filepath.Ext(path)) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if t, ok := pending[path]; ok {
				if t.Stop() {
					wg.Done()
				}
			}
			wg.Add(1)
			pending[path] = time.AfterFunc(cfg.Debounce, func() { emit(path) })
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&fsnotify.Create == fsnotify.Create {
					if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() {
						if err := addDir(e.Name, schedule); err != nil {
							logger.Warn("watcher.add.failed", "path", e.Name, "err", err)
						}
						continue
					}
				}
				if !AllowedExt(filepath.Ext(e.Name)) || e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if cfg.SkipHidden && IsHidden(e.Name) {
					continue
				}
				schedule(e.Name)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher.error", "err", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}
