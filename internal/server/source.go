package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/entity"
	"github.com/joseph-ayodele/race-results/internal/manifest"
	"github.com/joseph-ayodele/race-results/internal/repository"
)

// Source is where the API reads published results from.
type Source interface {
	Fechas(ctx context.Context) ([]string, error)
	Races(ctx context.Context, fecha string) ([]string, error)
	Race(ctx context.Context, fecha, race string) (*entity.Document, error)
	Standings(ctx context.Context) (*entity.Document, error)
}

// FileSource serves the results tree written by the pipeline.
type FileSource struct {
	Manifest *manifest.Manager
}

func (s FileSource) Fechas(context.Context) ([]string, error) {
	return s.Manifest.Fechas(), nil
}

func (s FileSource) Races(_ context.Context, fecha string) ([]string, error) {
	if !contains(s.Manifest.Fechas(), constants.NormalizeFecha(fecha)) {
		return nil, fmt.Errorf("%w: %s", common.ErrNotFound, fecha)
	}
	return s.Manifest.Races(fecha), nil
}

func (s FileSource) Race(_ context.Context, fecha, race string) (*entity.Document, error) {
	var res entity.RaceResult
	path := s.Manifest.RacePath(fecha, race)
	if err := readJSON(path, &res); err != nil {
		return nil, err
	}
	return &entity.Document{
		Kind:      constants.KindRace,
		Fecha:     constants.NormalizeFecha(fecha),
		Race:      race,
		SourcePDF: res.SourcePDF,
		Backend:   res.Backend,
		RowCount:  len(res.Results),
		Result:    &res,
	}, nil
}

func (s FileSource) Standings(context.Context) (*entity.Document, error) {
	var rep entity.StandingsReport
	if err := readJSON(s.Manifest.LatestStandingsPath(), &rep); err != nil {
		return nil, err
	}
	return &entity.Document{
		Kind:      constants.KindStandings,
		SourcePDF: rep.Meta.SourcePDF,
		Backend:   rep.Meta.Backend,
		RowCount:  len(rep.Standings),
		Standings: &rep,
	}, nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", common.ErrNotFound, filepath.Base(path))
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// RepoSource serves results from the document store.
type RepoSource struct {
	Repo repository.DocumentRepository
}

func (s RepoSource) Fechas(ctx context.Context) ([]string, error) {
	return s.Repo.ListFechas(ctx)
}

func (s RepoSource) Races(ctx context.Context, fecha string) ([]string, error) {
	races, err := s.Repo.ListRaces(ctx, fecha)
	if err != nil {
		return nil, err
	}
	if len(races) == 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrNotFound, fecha)
	}
	return races, nil
}

func (s RepoSource) Race(ctx context.Context, fecha, race string) (*entity.Document, error) {
	return s.Repo.Get(ctx, constants.KindRace, constants.NormalizeFecha(fecha), race)
}

func (s RepoSource) Standings(ctx context.Context) (*entity.Document, error) {
	return s.Repo.Latest(ctx, constants.KindStandings)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
