package human

import (
	"encoding"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Bytes is a size in bytes, such as the capacity of a transport ring or the
// size of a command.
//
// Sizes are parsed with decimal (KB, MB, ...) or binary (KiB, MiB, ...) units,
// units may be abbreviated ("16Ki") and values may have a fractional part
// ("1.5 MiB"). Sizes are printed with binary units.
type Bytes uint64

const (
	B Bytes = 1

	KB Bytes = 1000 * B
	MB Bytes = 1000 * KB
	GB Bytes = 1000 * MB
	TB Bytes = 1000 * GB

	KiB Bytes = 1024 * B
	MiB Bytes = 1024 * KiB
	GiB Bytes = 1024 * MiB
	TiB Bytes = 1024 * GiB
)

type byteUnit struct {
	name  string
	scale Bytes
}

var decimalUnits = [...]byteUnit{{"B", B}, {"KB", KB}, {"MB", MB}, {"GB", GB}, {"TB", TB}}

var binaryUnits = [...]byteUnit{{"B", B}, {"KiB", KiB}, {"MiB", MiB}, {"GiB", GiB}, {"TiB", TiB}}

func ParseBytes(s string) (Bytes, error) {
	value, unit := splitUnit(s)
	scale := B
	if unit != "" {
		scale = 0
		for _, units := range [][]byteUnit{decimalUnits[:], binaryUnits[:]} {
			for _, u := range units {
				if scale == 0 && match(unit, u.name) {
					scale = u.scale
				}
			}
		}
		if scale == 0 {
			return 0, fmt.Errorf("malformed byte size: %q: unknown unit %q", s, unit)
		}
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed byte size: %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("malformed byte size: %q: negative value", s)
	}
	return Bytes(math.Floor(f * float64(scale))), nil
}

func (b Bytes) String() string { return b.text(binaryUnits[:]) }

func (b Bytes) text(units []byteUnit) string {
	u := units[0]
	for _, next := range units[1:] {
		if b >= next.scale {
			u = next
		}
	}
	if b == 0 {
		return "0"
	}
	return scaled(float64(b), float64(u.scale)) + " " + u.name
}

// Format implements fmt.Formatter:
//
//	d	number of bytes, without unit
//	b	decimal units
//	s,v	binary units
func (b Bytes) Format(w fmt.State, v rune) {
	var s string
	switch v {
	case 'd':
		s = strconv.FormatUint(uint64(b), 10)
	case 'b':
		s = b.text(decimalUnits[:])
	case 's', 'v':
		s = b.String()
	default:
		s = badVerb(v, uint64(b))
	}
	_, _ = io.WriteString(w, s)
}

func (b *Bytes) Set(s string) error {
	p, err := ParseBytes(s)
	if err != nil {
		return err
	}
	*b = p
	return nil
}

func (b Bytes) MarshalJSON() ([]byte, error) { return json.Marshal(uint64(b)) }

func (b *Bytes) UnmarshalJSON(j []byte) error {
	var s string
	if json.Unmarshal(j, &s) == nil {
		return b.Set(s)
	}
	return json.Unmarshal(j, (*uint64)(b))
}

func (b Bytes) MarshalYAML() (any, error) { return uint64(b), nil }

func (b *Bytes) UnmarshalYAML(node *yaml.Node) error { return b.Set(node.Value) }

func (b Bytes) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *Bytes) UnmarshalText(t []byte) error { return b.Set(string(t)) }

var (
	_ fmt.Formatter            = Bytes(0)
	_ json.Marshaler           = Bytes(0)
	_ json.Unmarshaler         = (*Bytes)(nil)
	_ yaml.Marshaler           = Bytes(0)
	_ yaml.Unmarshaler         = (*Bytes)(nil)
	_ encoding.TextMarshaler   = Bytes(0)
	_ encoding.TextUnmarshaler = (*Bytes)(nil)
	_ flag.Value               = (*Bytes)(nil)
)
