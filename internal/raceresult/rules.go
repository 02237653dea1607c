package raceresult

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	intRe  = regexp.MustCompile(`^\d+$`)
	timeRe = regexp.MustCompile(`^\d{1,2}[:.]\d{2}(?:[.,]\d{2,3})?$`)
	realRe = regexp.MustCompile(`^\d+(?:[.,]\d+)?$`)
)

// zeroMarkers are printed in the penalty column when no seconds were added.
var zeroMarkers = map[string]struct{}{
	".":   {},
	"-":   {},
	"—":   {},
	"N/L": {},
	"n/l": {},
}

// IsTime reports whether tok is a clock time such as "1:21.416" or "58.30".
func IsTime(tok string) bool { return timeRe.MatchString(tok) }

// positionAndNumber returns the indexes of the first two bare integers.
func positionAndNumber(toks []string) (pos, num int, ok bool) {
	pos, num = -1, -1
	for i, t := range toks {
		if !intRe.MatchString(t) {
			continue
		}
		if pos < 0 {
			pos = i
			continue
		}
		num = i
		return pos, num, true
	}
	return -1, -1, false
}

// times returns the indexes of the reference and final time tokens. With a
// single time token both indexes are the same.
func times(toks []string, from int) (ref, fin int, ok bool) {
	ref, fin = -1, -1
	for i := from; i < len(toks); i++ {
		if !IsTime(toks[i]) {
			continue
		}
		if ref < 0 {
			ref = i
			continue
		}
		fin = i
		break
	}
	if ref < 0 {
		return -1, -1, false
	}
	if fin < 0 {
		fin = ref
	}
	return ref, fin, true
}

// laps returns the index of the last bare integer after the final time.
func laps(toks []string, after int) (int, bool) {
	for i := len(toks) - 1; i > after; i-- {
		if intRe.MatchString(toks[i]) {
			return i, true
		}
	}
	return -1, false
}

// penalties classifies the tokens between the final time and the lap count.
// Zero markers and numbers with a decimal point or no greater than
// secondsMax are penalty seconds; larger whole numbers are a penalty count.
// The first value of each kind wins.
func penalties(middle []string, secondsMax float64) (seconds *float64, count *int) {
	for _, t := range middle {
		if _, zero := zeroMarkers[t]; zero {
			if seconds == nil {
				v := 0.0
				seconds = &v
			}
			continue
		}
		if !realRe.MatchString(t) {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(t, ",", "."), 64)
		if err != nil {
			continue
		}
		decimal := strings.ContainsAny(t, ".,")
		if decimal || v <= secondsMax {
			if seconds == nil {
				seconds = &v
			}
			continue
		}
		if count == nil {
			n := int(v)
			count = &n
		}
	}
	return seconds, count
}

// note joins the tokens after the lap count; empty text and a bare dash are
// no note.
func note(toks []string) *string {
	s := strings.TrimSpace(strings.Join(toks, " "))
	if s == "" || s == "-" || s == "—" {
		return nil
	}
	return &s
}
