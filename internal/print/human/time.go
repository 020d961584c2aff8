package human

import (
	"encoding"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Time is a point in time, printed relative to now ("5m ago", "2h later").
//
// Times are parsed from "now", from durations relative to now ("90s ago",
// "1 day later"), or from the common layouts of the time package.
type Time time.Time

var timeLayouts = [...]string{
	time.RFC3339Nano,
	time.DateTime,
	time.DateOnly,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.UnixDate,
	time.ANSIC,
}

func ParseTime(s string) (Time, error) { return ParseTimeAt(s, time.Now()) }

// ParseTimeAt is like ParseTime with relative times computed from now.
func ParseTimeAt(s string, now time.Time) (Time, error) {
	s = strings.TrimSpace(s)
	if s == "now" {
		return Time(now), nil
	}
	for suffix, sign := range map[string]Duration{" ago": -1, " later": +1} {
		if d, ok := strings.CutSuffix(s, suffix); ok {
			p, err := ParseDuration(d)
			if err != nil {
				return Time{}, fmt.Errorf("malformed time: %q: %w", s, err)
			}
			return Time(now.Add(time.Duration(sign * p))), nil
		}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Time(t), nil
		}
	}
	return Time{}, fmt.Errorf("malformed time: %q", s)
}

func (t Time) IsZero() bool { return time.Time(t).IsZero() }

func (t Time) String() string { return t.Text(time.Now()) }

// Text returns the representation of t relative to now.
func (t Time) Text(now time.Time) string { return t.text(now, 1, false) }

func (t Time) text(now time.Time, limit int, long bool) string {
	if t.IsZero() {
		return "(none)"
	}
	switch d := Duration(now.Sub(time.Time(t))); {
	case d > 0:
		return d.text(limit, long) + " ago"
	case d < 0:
		return (-d).text(limit, long) + " later"
	default:
		return "now"
	}
}

// Format implements fmt.Formatter for the 's' and 'v' verbs, with the flags
// of Duration.Format.
func (t Time) Format(w fmt.State, v rune) {
	var s string
	switch v {
	case 's', 'v':
		limit, ok := w.Precision()
		if !ok || limit < 1 {
			limit = 1
		}
		s = t.text(time.Now(), limit, w.Flag('+'))
	default:
		s = badVerb(v, time.Time(t))
	}
	_, _ = io.WriteString(w, s)
}

func (t *Time) Set(s string) error {
	p, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = p
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) { return time.Time(t).MarshalJSON() }

func (t *Time) UnmarshalJSON(b []byte) error { return (*time.Time)(t).UnmarshalJSON(b) }

func (t Time) MarshalYAML() (any, error) { return time.Time(t).Format(time.RFC3339Nano), nil }

func (t *Time) UnmarshalYAML(node *yaml.Node) error { return t.Set(node.Value) }

func (t Time) MarshalText() ([]byte, error) { return time.Time(t).MarshalText() }

func (t *Time) UnmarshalText(b []byte) error { return t.Set(string(b)) }

var (
	_ fmt.Formatter            = Time{}
	_ json.Marshaler           = Time{}
	_ json.Unmarshaler         = (*Time)(nil)
	_ yaml.IsZeroer            = Time{}
	_ yaml.Marshaler           = Time{}
	_ yaml.Unmarshaler         = (*Time)(nil)
	_ encoding.TextMarshaler   = Time{}
	_ encoding.TextUnmarshaler = (*Time)(nil)
	_ flag.Value               = (*Time)(nil)
)
