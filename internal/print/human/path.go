package human

import (
	"encoding"
	"flag"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// Path is a file system path where a leading "~" stands for the home
// directory of the user running the program, as in ~/.dawnwire/traces.
type Path string

func (p Path) String() string { return string(p) }

func (p *Path) Set(s string) error {
	if s != "~" && !strings.HasPrefix(s, "~"+string(os.PathSeparator)) {
		*p = Path(s)
		return nil
	}
	home, ok := os.LookupEnv("HOME")
	if !ok {
		u, err := user.Current()
		if err != nil {
			return err
		}
		home = u.HomeDir
	}
	*p = Path(filepath.Join(home, s[1:]))
	return nil
}

func (p Path) MarshalText() ([]byte, error) { return []byte(p), nil }

func (p *Path) UnmarshalText(b []byte) error { return p.Set(string(b)) }

var (
	_ encoding.TextMarshaler   = Path("")
	_ encoding.TextUnmarshaler = (*Path)(nil)
	_ flag.Value               = (*Path)(nil)
)
