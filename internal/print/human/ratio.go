package human

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ratio is a fraction printed as a percentage, such as the size of a
// compressed trace relative to the commands it holds.
type Ratio float64

// ParseRatio parses fractions ("0.25") and percentages ("25%").
func ParseRatio(s string) (Ratio, error) {
	s = strings.TrimSpace(s)
	k := 1.0
	if p, ok := strings.CutSuffix(s, "%"); ok {
		s, k = strings.TrimSpace(p), 100
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed ratio: %q", s)
	}
	return Ratio(f / k), nil
}

func (r Ratio) String() string { return r.Text(2) }

// Text returns the percentage with at most precision decimals.
func (r Ratio) Text(precision int) string {
	return trimZeros(strconv.FormatFloat(100*float64(r), 'f', precision, 64)) + "%"
}

// Format implements fmt.Formatter: 'f' prints the fraction, 's' and 'v' the
// percentage with the precision of the verb (2 by default).
func (r Ratio) Format(w fmt.State, v rune) {
	var s string
	switch v {
	case 'f':
		s = strconv.FormatFloat(float64(r), 'f', -1, 64)
	case 's', 'v':
		p, ok := w.Precision()
		if !ok {
			p = 2
		}
		s = r.Text(p)
	default:
		s = badVerb(v, float64(r))
	}
	_, _ = io.WriteString(w, s)
}

func (r *Ratio) Set(s string) error {
	p, err := ParseRatio(s)
	if err != nil {
		return err
	}
	*r = p
	return nil
}

func (r Ratio) MarshalJSON() ([]byte, error) { return json.Marshal(float64(r)) }

func (r *Ratio) UnmarshalJSON(b []byte) error { return json.Unmarshal(b, (*float64)(r)) }

func (r Ratio) MarshalYAML() (any, error) { return r.Text(-1), nil }

func (r *Ratio) UnmarshalYAML(node *yaml.Node) error { return r.Set(node.Value) }

func (r Ratio) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Ratio) UnmarshalText(b []byte) error { return r.Set(string(b)) }
