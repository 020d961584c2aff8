package human

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Count is a number of things, records or commands, printed with a metric
// suffix once it reaches ten thousand ("12.5K", "3M").
type Count float64

const (
	K Count = 1000
	M Count = 1000 * K
	G Count = 1000 * M
)

var countUnits = [...]struct {
	name  string
	scale Count
}{{"G", G}, {"M", M}, {"K", K}}

func ParseCount(s string) (Count, error) {
	value, unit := splitUnit(s)
	scale := Count(1)
	if unit != "" {
		scale = 0
		for _, u := range countUnits {
			if strings.EqualFold(unit, u.name) {
				scale = u.scale
			}
		}
		if scale == 0 {
			return 0, fmt.Errorf("malformed count: %q: unknown unit %q", s, unit)
		}
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed count: %q", s)
	}
	return Count(f) * scale, nil
}

func (c Count) String() string {
	abs := Count(math.Abs(float64(c)))
	for _, u := range countUnits {
		if abs >= u.scale && (u.scale > K || abs >= 10*K) {
			return scaled(float64(c), float64(u.scale)) + u.name
		}
	}
	return scaled(float64(c), 1)
}

// Format implements fmt.Formatter: 'd' rounds to an integer, 'f' prints the
// exact value, 's' and 'v' print with a suffix.
func (c Count) Format(w fmt.State, v rune) {
	var s string
	switch v {
	case 'd':
		s = strconv.FormatFloat(math.Round(float64(c)), 'f', 0, 64)
	case 'f':
		s = strconv.FormatFloat(float64(c), 'f', -1, 64)
	case 's', 'v':
		s = c.String()
	default:
		s = badVerb(v, float64(c))
	}
	_, _ = io.WriteString(w, s)
}

func (c *Count) Set(s string) error {
	p, err := ParseCount(s)
	if err != nil {
		return err
	}
	*c = p
	return nil
}

func (c Count) MarshalJSON() ([]byte, error) { return json.Marshal(float64(c)) }

func (c *Count) UnmarshalJSON(b []byte) error { return json.Unmarshal(b, (*float64)(c)) }

func (c Count) MarshalYAML() (any, error) { return float64(c), nil }

func (c *Count) UnmarshalYAML(node *yaml.Node) error { return c.Set(node.Value) }

func (c Count) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Count) UnmarshalText(b []byte) error { return c.Set(string(b)) }
