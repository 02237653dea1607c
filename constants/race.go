package constants

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// RaceKind is the stage of a race meeting a result belongs to.
type RaceKind string

const (
	Serie     RaceKind = "serie"
	Repechaje RaceKind = "repechaje"
	Semifinal RaceKind = "semifinal"
	Prefinal  RaceKind = "prefinal"
	Final     RaceKind = "final"
)

// UnknownRace is the key given to files whose name does not describe a race.
const UnknownRace = "unknown"

var raceOrder = map[RaceKind]int{
	Serie:     1,
	Repechaje: 2,
	Semifinal: 3,
	Prefinal:  4,
	Final:     5,
}

var (
	numberedRaceRe = regexp.MustCompile(`^(serie|repechaje|semifinal)\s*(\d+)$`)
	raceKeyRe      = regexp.MustCompile(`^([a-z]+)(\d+)?$`)
	fechaRe        = regexp.MustCompile(`(?i)^fecha\s*(\d+)$`)
	firstNumberRe  = regexp.MustCompile(`\d+`)
	spacesRe       = regexp.MustCompile(`\s+`)
)

// RaceFromFilename maps a PDF file name such as "Serie 3.PDF" or "prefinal.pdf"
// to its race key ("serie3", "prefinal"). Unrecognised names map to UnknownRace.
func RaceFromFilename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.ToLower(strings.TrimSpace(base))
	base = spacesRe.ReplaceAllString(base, " ")

	if m := numberedRaceRe.FindStringSubmatch(base); m != nil {
		n, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%s%d", m[1], n)
	}
	switch RaceKind(base) {
	case Prefinal, Final:
		return base
	}
	return UnknownRace
}

// RaceSortKey orders race keys serie < repechaje < semifinal < prefinal < final,
// then by their number. Unknown kinds sort last.
func RaceSortKey(race string) (int, int) {
	m := raceKeyRe.FindStringSubmatch(strings.ToLower(race))
	if m == nil {
		return 99, 0
	}
	order, ok := raceOrder[RaceKind(m[1])]
	if !ok {
		order = 99
	}
	n, _ := strconv.Atoi(m[2])
	return order, n
}

// LessRace reports whether race a sorts before race b.
func LessRace(a, b string) bool {
	oa, na := RaceSortKey(a)
	ob, nb := RaceSortKey(b)
	if oa != ob {
		return oa < ob
	}
	if na != nb {
		return na < nb
	}
	return a < b
}

// NormalizeFecha turns "fecha 07" or "FECHA7" into "Fecha 7". Other names are
// returned trimmed but otherwise untouched.
func NormalizeFecha(name string) string {
	name = strings.TrimSpace(name)
	if m := fechaRe.FindStringSubmatch(name); m != nil {
		n, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("Fecha %d", n)
	}
	return name
}

// FechaNumber returns the first number found in a fecha folder name, or 0.
func FechaNumber(name string) int {
	m := firstNumberRe.FindString(name)
	if m == "" {
		return 0
	}
	n, _ := strconv.Atoi(m)
	return n
}
