// Package human parses and formats the quantities that dawnwire reads from its
// configuration and command line, and prints in tables: byte sizes, durations,
// points in time, counts, ratios and paths.
//
// Every type implements flag.Value and the text, JSON and YAML encodings, so
// the same representation is accepted everywhere:
//
//	ring_size: 4 MiB
//	$ dawnwire run --timeout 1m30s
//	$ dawnwire get traces --since "2 hours ago"
package human

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// splitUnit splits s into a numeric value and the unit letters that follow it.
func splitUnit(s string) (value, unit string) {
	s = strings.TrimSpace(s)
	i := strings.LastIndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	return strings.TrimSpace(s[:i+1]), s[i+1:]
}

// match reports whether s is a case-insensitive abbreviation of unit.
func match(s, unit string) bool {
	return len(s) <= len(unit) && strings.EqualFold(s, unit[:len(s)])
}

// scaled formats value/scale with three significant digits at most.
func scaled(value, scale float64) string {
	switch {
	case value == 0:
		return "0"
	case value < 0:
		return "-" + scaled(-value, scale)
	}
	v, prec := value/scale, 3
	switch {
	case v >= 100:
		prec = 0
	case v >= 10:
		prec = 1
	case scale > 1:
		prec = 2
	}
	return trimZeros(strconv.FormatFloat(v, 'f', prec, 64))
}

func trimZeros(s string) string {
	if strings.IndexByte(s, '.') >= 0 {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

func badVerb(v rune, value any) string {
	return fmt.Sprintf("%%!%c(%T=%v)", v, value, value)
}
