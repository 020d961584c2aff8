package human

import (
	"encoding"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

const (
	Nanosecond  Duration = 1
	Microsecond Duration = 1000 * Nanosecond
	Millisecond Duration = 1000 * Microsecond
	Second      Duration = 1000 * Millisecond
	Minute      Duration = 60 * Second
	Hour        Duration = 60 * Minute
	Day         Duration = 24 * Hour
	Week        Duration = 7 * Day
)

// Duration is a time.Duration accepting the units of the time package and
// long unit names, with or without spaces:
//
//	1m30s
//	250 ms
//	2 days 4h
//	1.5 weeks
//
// Durations print with their largest unit only, unless a precision is given
// to the formatting verb ("%.2v" prints "1m30s").
type Duration time.Duration

type durationUnit struct {
	scale Duration
	short string
	long  string
}

// Ordered by decreasing scale. Months and years have no fixed duration and are
// not units.
var durationUnits = [...]durationUnit{
	{Week, "w", "week"},
	{Day, "d", "day"},
	{Hour, "h", "hour"},
	{Minute, "m", "minute"},
	{Second, "s", "second"},
	{Millisecond, "ms", "millisecond"},
	{Microsecond, "µs", "microsecond"},
	{Microsecond, "us", "microsecond"},
	{Nanosecond, "ns", "nanosecond"},
}

func ParseDuration(s string) (Duration, error) {
	input := s
	if s = strings.TrimSpace(s); s == "0" {
		return 0, nil
	}
	if s == "" {
		return 0, fmt.Errorf("malformed duration: empty string")
	}

	sign := Duration(1)
	if strings.HasPrefix(s, "-") {
		sign, s = -1, s[1:]
	}

	var d Duration
	for s != "" {
		i := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) && r != '.' })
		if i <= 0 {
			return 0, fmt.Errorf("malformed duration: %q", input)
		}
		n, err := strconv.ParseFloat(s[:i], 64)
		if err != nil {
			return 0, fmt.Errorf("malformed duration: %q", input)
		}
		s = strings.TrimLeftFunc(s[i:], unicode.IsSpace)

		j := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
		if j < 0 {
			j = len(s)
		}
		unit := s[:j]
		s = strings.TrimLeftFunc(s[j:], unicode.IsSpace)
		if unit == "" {
			return 0, fmt.Errorf("malformed duration: %q: missing unit after %v", input, n)
		}

		scale := Duration(0)
		for _, u := range durationUnits {
			if unit == u.short || (len(unit) > 1 && match(unit, u.long+"s")) {
				scale = u.scale
				break
			}
		}
		if scale == 0 {
			return 0, fmt.Errorf("malformed duration: %q: unknown unit %q", input, unit)
		}
		d += Duration(n * float64(scale))
	}
	return sign * d, nil
}

func (d Duration) String() string { return d.text(1, false) }

func (d Duration) text(limit int, long bool) string {
	switch {
	case d == 0 && long:
		return "0 seconds"
	case d == 0:
		return "0s"
	case d == math.MinInt64:
		d++
		fallthrough
	case d < 0:
		return "-" + (-d).text(limit, long)
	}

	var parts []string
	for _, u := range durationUnits {
		if d < u.scale || u.short == "us" {
			continue
		}
		n := d / u.scale
		d -= n * u.scale
		if long {
			name := u.long
			if n != 1 {
				name += "s"
			}
			parts = append(parts, strconv.FormatInt(int64(n), 10)+" "+name)
		} else {
			parts = append(parts, strconv.FormatInt(int64(n), 10)+u.short)
		}
		if len(parts) == limit || d == 0 {
			break
		}
	}
	if long {
		return strings.Join(parts, " ")
	}
	return strings.Join(parts, "")
}

// Format implements fmt.Formatter for the 's' and 'v' verbs. The '+' flag
// prints long unit names and the precision sets the number of units.
func (d Duration) Format(w fmt.State, v rune) {
	var s string
	switch v {
	case 's', 'v':
		limit, ok := w.Precision()
		if !ok || limit < 1 {
			limit = 1
		}
		s = d.text(limit, w.Flag('+'))
	default:
		s = badVerb(v, time.Duration(d))
	}
	_, _ = io.WriteString(w, s)
}

func (d *Duration) Set(s string) error {
	p, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = p
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(int64(d)) }

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if json.Unmarshal(b, &s) == nil {
		return d.Set(s)
	}
	return json.Unmarshal(b, (*int64)(d))
}

func (d Duration) MarshalYAML() (any, error) { return time.Duration(d).String(), nil }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error { return d.Set(node.Value) }

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

func (d *Duration) UnmarshalText(b []byte) error { return d.Set(string(b)) }

var (
	_ fmt.Formatter            = Duration(0)
	_ json.Marshaler           = Duration(0)
	_ json.Unmarshaler         = (*Duration)(nil)
	_ yaml.Marshaler           = Duration(0)
	_ yaml.Unmarshaler         = (*Duration)(nil)
	_ encoding.TextMarshaler   = Duration(0)
	_ encoding.TextUnmarshaler = (*Duration)(nil)
	_ flag.Value               = (*Duration)(nil)
)
