package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/race-results/constants"
)

// Classify maps a PDF path below root to its job. Race PDFs live in
// root/<Fecha N>/, standings PDFs in root/Posiciones/ (any depth).
func Classify(root, path string) (Job, bool) {
	if !AllowedExt(filepath.Ext(path)) {
		return Job{}, false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return Job{}, false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return Job{}, false
	}
	top := parts[0]
	switch {
	case isStandingsDir(top):
		return Job{Path: path, Kind: constants.KindStandings}, true
	case isFechaDir(top) && len(parts) == 2:
		return Job{
			Path:  path,
			Kind:  constants.KindRace,
			Fecha: constants.NormalizeFecha(top),
			Race:  constants.RaceFromFilename(parts[1]),
		}, true
	}
	return Job{}, false
}

// Discover walks root and returns a job for every race and standings PDF,
// ordered by fecha number, then race order, then path. Standings come last.
func Discover(root string, skipHidden bool) ([]Job, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var jobs []Job
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++

		job, ok := Classify(root, path)
		if !ok {
			return nil
		}
		stats.Matched++
		switch {
		case job.Kind == constants.KindStandings:
			stats.Standings++
		case job.Race == constants.UnknownRace:
			stats.Unknown++
		default:
			stats.Races++
		}
		jobs = append(jobs, job)
		return nil
	})
	if err != nil {
		return jobs, stats, fmt.Errorf("walk: %w", err)
	}

	SortJobs(jobs)
	return jobs, stats, nil
}

// SortJobs orders jobs the way they are processed and listed.
func SortJobs(jobs []Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		a, b := jobs[i], jobs[j]
		if a.Kind != b.Kind {
			return a.Kind == constants.KindRace
		}
		if fa, fb := constants.FechaNumber(a.Fecha), constants.FechaNumber(b.Fecha); fa != fb {
			return fa < fb
		}
		if a.Race != b.Race {
			return constants.LessRace(a.Race, b.Race)
		}
		return a.Path < b.Path
	})
}
