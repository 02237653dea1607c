// Package manifest maintains the results tree consumed by the web front end:
//
//	<out>/fechas.json               {"fechas": ["Fecha 1", ...]}
//	<out>/<Fecha N>/index.json      {"races": ["serie1", ..., "final"]}
//	<out>/<Fecha N>/<race>.json     one race result
//	<out>/posiciones.json           the most recent standings
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/entity"
	"github.com/joseph-ayodele/race-results/internal/validate"
)

// Fechas is the content of fechas.json.
type Fechas struct {
	Fechas []string `json:"fechas"`
}

// Index is the content of <Fecha N>/index.json.
type Index struct {
	Races []string `json:"races"`
}

// Manager serializes manifest updates of one output folder.
type Manager struct {
	dir    string
	logger *slog.Logger

	mu          sync.Mutex
	fechasShape *jsonschema.Schema
	indexShape  *jsonschema.Schema
}

func NewManager(dir string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fechasShape, err := validate.Compile("fechas.json", validate.ManifestSchema("fechas"))
	if err != nil {
		return nil, err
	}
	indexShape, err := validate.Compile("index.json", validate.ManifestSchema("races"))
	if err != nil {
		return nil, err
	}
	return &Manager{dir: dir, logger: logger, fechasShape: fechasShape, indexShape: indexShape}, nil
}

// Dir is the output folder.
func (m *Manager) Dir() string { return m.dir }

// RacePath is where the result of a race of a fecha is written.
func (m *Manager) RacePath(fecha, race string) string {
	return filepath.Join(m.dir, constants.NormalizeFecha(fecha), race+".json")
}

// StandingsPath is where the standings parsed from one PDF are written.
func (m *Manager) StandingsPath(stem string) string {
	return filepath.Join(m.dir, constants.StandingsFolder, stem+".json")
}

// LatestStandingsPath is the standings file served to readers.
func (m *Manager) LatestStandingsPath() string {
	return filepath.Join(m.dir, constants.StandingsOutput)
}

// Update records a fecha and, unless it is unknown, a race in the manifests.
// It reports whether anything changed.
func (m *Manager) Update(fecha, race string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fecha = constants.NormalizeFecha(fecha)
	changed := false

	fechas := m.loadFechas()
	if !contains(fechas.Fechas, fecha) {
		fechas.Fechas = append(fechas.Fechas, fecha)
		SortFechas(fechas.Fechas)
		if err := writeJSON(filepath.Join(m.dir, constants.FechasManifest), fechas); err != nil {
			return false, err
		}
		changed = true
	}

	if race == "" || race == constants.UnknownRace {
		return changed, nil
	}
	index := m.loadIndex(fecha)
	if !contains(index.Races, race) {
		index.Races = append(index.Races, race)
		SortRaces(index.Races)
		if err := writeJSON(filepath.Join(m.dir, fecha, constants.RaceIndex), index); err != nil {
			return changed, err
		}
		changed = true
	}
	if changed {
		m.logger.Debug("manifest.updated", "fecha", fecha, "race", race)
	}
	return changed, nil
}

// Rebuild regenerates every manifest from the race files on disk. Race
// files found in a fecha folder with a non-normalised name ("fecha 03") are
// moved into the normalised one first. Fecha folders without race files are
// left out.
func (m *Manager) Rebuild() (Fechas, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := os.ReadDir(m.dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Fechas{}, fmt.Errorf("read %s: %w", m.dir, err)
	}
	var fechas []string
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(strings.ToLower(e.Name()), "fecha") {
			continue
		}
		fecha := constants.NormalizeFecha(e.Name())
		if e.Name() != fecha {
			if err := m.moveRaces(filepath.Join(m.dir, e.Name()), filepath.Join(m.dir, fecha)); err != nil {
				return Fechas{}, err
			}
		}
		if !contains(fechas, fecha) {
			fechas = append(fechas, fecha)
		}
	}

	out := Fechas{Fechas: []string{}}
	for _, fecha := range fechas {
		races, err := raceFiles(filepath.Join(m.dir, fecha))
		if err != nil {
			return Fechas{}, err
		}
		if len(races) == 0 {
			continue
		}
		out.Fechas = append(out.Fechas, fecha)
		if err := writeJSON(filepath.Join(m.dir, fecha, constants.RaceIndex), Index{Races: races}); err != nil {
			return Fechas{}, err
		}
	}
	SortFechas(out.Fechas)
	if err := writeJSON(filepath.Join(m.dir, constants.FechasManifest), out); err != nil {
		return Fechas{}, err
	}
	m.logger.Info("manifest.rebuilt", "dir", m.dir, "fechas", len(out.Fechas))
	return out, nil
}

// moveRaces moves the files of src into dst. A file already present in dst
// wins; src is removed when it ends up empty.
func (m *Manager) moveRaces(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || strings.EqualFold(e.Name(), constants.RaceIndex) {
			continue
		}
		from, to := filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())
		if _, err := os.Stat(to); err == nil {
			m.logger.Warn("manifest.move.exists", "from", from, "to", to)
			continue
		}
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("move %s: %w", from, err)
		}
		m.logger.Info("manifest.move.ok", "from", from, "to", to)
	}
	_ = os.Remove(filepath.Join(src, constants.RaceIndex))
	_ = os.Remove(src)
	return nil
}

// Fechas returns the fechas currently listed.
func (m *Manager) Fechas() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadFechas().Fechas
}

// Races returns the races listed for a fecha.
func (m *Manager) Races(fecha string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadIndex(constants.NormalizeFecha(fecha)).Races
}

// PromoteStandings writes data to the latest standings file unless that file
// already declares more completed rounds. It reports whether it wrote.
func (m *Manager) PromoteStandings(report *entity.StandingsReport) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := m.LatestStandingsPath()
	if b, err := os.ReadFile(path); err == nil {
		var current entity.StandingsReport
		if json.Unmarshal(b, &current) == nil && rounds(current.Meta.FechasCumplidas) > rounds(report.Meta.FechasCumplidas) {
			return false, nil
		}
	}
	data, err := entity.EncodeJSON(report, true)
	if err != nil {
		return false, err
	}
	if err := WriteFile(path, data); err != nil {
		return false, err
	}
	return true, nil
}

func rounds(n *int) int {
	if n == nil {
		return -1
	}
	return *n
}

// loadFechas falls back to an empty manifest when the file is missing or
// does not have the expected shape.
func (m *Manager) loadFechas() Fechas {
	var f Fechas
	if !m.load(filepath.Join(m.dir, constants.FechasManifest), m.fechasShape, &f) {
		return Fechas{Fechas: []string{}}
	}
	return f
}

func (m *Manager) loadIndex(fecha string) Index {
	var idx Index
	if !m.load(filepath.Join(m.dir, fecha, constants.RaceIndex), m.indexShape, &idx) {
		return Index{Races: []string{}}
	}
	return idx
}

func (m *Manager) load(path string, schema *jsonschema.Schema, v any) bool {
	b, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := validate.JSON(schema, b); err != nil {
		m.logger.Warn("manifest.invalid", "path", path, "err", err)
		return false
	}
	return json.Unmarshal(b, v) == nil
}

func raceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	races := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".json") || strings.EqualFold(name, constants.RaceIndex) {
			continue
		}
		races = append(races, strings.TrimSuffix(name, filepath.Ext(name)))
	}
	SortRaces(races)
	return races, nil
}

// SortFechas orders fecha names by their number.
func SortFechas(fechas []string) {
	sort.SliceStable(fechas, func(i, j int) bool {
		return constants.FechaNumber(fechas[i]) < constants.FechaNumber(fechas[j])
	})
}

// SortRaces orders race keys serie < repechaje < semifinal < prefinal < final.
func SortRaces(races []string) {
	sort.SliceStable(races, func(i, j int) bool { return constants.LessRace(races[i], races[j]) })
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func writeJSON(path string, v any) error {
	data, err := entity.EncodeJSON(v, true)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

// WriteFile writes data through a temporary file and a rename so readers
// never see a partial file.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
