// Package config loads the dawnwire configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/stealthrocket/dawnwire/internal/capture"
	"github.com/stealthrocket/dawnwire/internal/print/human"
	"github.com/stealthrocket/dawnwire/internal/transport"
	"github.com/stealthrocket/dawnwire/internal/wire"
	"github.com/stealthrocket/dawnwire/internal/wire/client"
	"github.com/stealthrocket/dawnwire/internal/wire/server"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is the location of the configuration file when neither
	// the command line nor the environment select one.
	DefaultPath = "~/.dawnwire/config.yaml"
	// PathEnv is the environment variable overriding DefaultPath.
	PathEnv = "DAWNWIRECONFIG"

	defaultCapturePath = "~/.dawnwire/traces"
)

// Path returns the path of the configuration file: path itself when it is
// not empty, then $DAWNWIRECONFIG, then DefaultPath.
func Path(path string) (string, error) {
	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path == "" {
		path = DefaultPath
	}
	var p human.Path
	if err := p.Set(path); err != nil {
		return "", err
	}
	return string(p), nil
}

// Load opens and reads the configuration file at path, see Path.
func Load(path string) (*Config, error) {
	r, path, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	c, err := Read(r, Format(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Open opens the configuration file. When the file does not exist, the
// returned reader produces the default configuration.
func Open(path string) (io.ReadCloser, string, error) {
	path, err := Path(path)
	if err != nil {
		return nil, path, err
	}
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, path, err
		}
		var b []byte
		if Format(path) == "toml" {
			b, err = toml.Marshal(DefaultConfig())
		} else {
			b, err = yaml.Marshal(DefaultConfig())
		}
		if err != nil {
			return nil, path, err
		}
		return io.NopCloser(bytes.NewReader(b)), path, nil
	}
	return f, path, nil
}

// Format returns the format of the configuration file at path, "toml" or
// "yaml".
func Format(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

// Read reads and validates a configuration in the given format. Unknown
// fields are errors.
func Read(r io.Reader, format string) (*Config, error) {
	c := DefaultConfig()
	switch format {
	case "toml":
		md, err := toml.NewDecoder(r).Decode(c)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown configuration field %q", undecoded[0].String())
		}
	case "yaml":
		d := yaml.NewDecoder(r)
		d.KnownFields(true)
		if err := d.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported configuration format: %q", format)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultConfig is the default configuration.
func DefaultConfig() *Config {
	c := new(Config)
	c.Transport.Kind = "loopback"
	c.Transport.RingSize = human.Bytes(transport.DefaultRingSize)
	c.Transport.MaxAllocationSize = human.Bytes(transport.DefaultMaxAllocationSize)
	c.Server.MaxIDGap = wire.DefaultMaxIDGap
	c.Client.StrictSerials = true
	c.Capture.Location = Null[human.Path]()
	c.Capture.Compression = "zstd"
	c.Capture.BatchSize = capture.DefaultBatchSize
	c.Log.Level = "info"
	c.Log.Format = "text"
	return c
}

// Config is the dawnwire configuration.
type Config struct {
	Transport struct {
		Kind              string      `json:"kind" yaml:"kind" toml:"kind"`
		Address           string      `json:"address,omitempty" yaml:"address,omitempty" toml:"address"`
		RingSize          human.Bytes `json:"ring_size" yaml:"ring_size" toml:"ring_size"`
		MaxAllocationSize human.Bytes `json:"max_allocation_size" yaml:"max_allocation_size" toml:"max_allocation_size"`
	} `json:"transport" yaml:"transport" toml:"transport"`
	Server struct {
		MaxIDGap int `json:"max_id_gap" yaml:"max_id_gap" toml:"max_id_gap"`
	} `json:"server" yaml:"server" toml:"server"`
	Client struct {
		StrictSerials bool `json:"strict_serials" yaml:"strict_serials" toml:"strict_serials"`
	} `json:"client" yaml:"client" toml:"client"`
	Capture struct {
		// Traces are only recorded when a location is set.
		Location    Nullable[human.Path] `json:"location" yaml:"location" toml:"location"`
		Compression string               `json:"compression" yaml:"compression" toml:"compression"`
		BatchSize   int                  `json:"batch_size" yaml:"batch_size" toml:"batch_size"`
	} `json:"capture" yaml:"capture" toml:"capture"`
	Log struct {
		Level  string `json:"level" yaml:"level" toml:"level"`
		Format string `json:"format" yaml:"format" toml:"format"`
	} `json:"log" yaml:"log" toml:"log"`
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if !slices.Contains(transport.Kinds(), c.Transport.Kind) {
		return fmt.Errorf("transport.kind: unknown transport %q (expected one of %q)", c.Transport.Kind, transport.Kinds())
	}
	if c.Transport.Kind == "unix" || c.Transport.Kind == "http" {
		if c.Transport.Address == "" {
			return fmt.Errorf("transport.address: the %s transport requires an address", c.Transport.Kind)
		}
	}
	if c.Transport.MaxAllocationSize > c.Transport.RingSize && c.Transport.Kind == "loopback" {
		return fmt.Errorf("transport.max_allocation_size: %v is larger than the ring size (%v)", c.Transport.MaxAllocationSize, c.Transport.RingSize)
	}
	if c.Server.MaxIDGap < 0 {
		return fmt.Errorf("server.max_id_gap: must not be negative")
	}
	if _, err := capture.ParseCompression(c.Capture.Compression); err != nil {
		return fmt.Errorf("capture.compression: %w", err)
	}
	if _, err := c.level(); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unsupported format %q (expected text or json)", c.Log.Format)
	}
	return nil
}

// TransportOptions returns the options of the configured transport.
func (c *Config) TransportOptions() transport.Options {
	return transport.Options{
		Kind:              c.Transport.Kind,
		Address:           c.Transport.Address,
		RingSize:          int(c.Transport.RingSize),
		MaxAllocationSize: int(c.Transport.MaxAllocationSize),
	}
}

func (c *Config) ServerConfig() server.Config {
	return server.Config{MaxIDGap: c.Server.MaxIDGap}
}

func (c *Config) ClientConfig() client.Config {
	return client.Config{StrictSerials: c.Client.StrictSerials}
}

// CaptureDirectory returns the directory traces are recorded to, and whether
// capture is enabled.
func (c *Config) CaptureDirectory() (string, bool) {
	location, ok := c.Capture.Location.Value()
	return string(location), ok
}

// CaptureOptions returns the options of the traces recorded by the
// configured capture.
func (c *Config) CaptureOptions() capture.Options {
	compression, _ := capture.ParseCompression(c.Capture.Compression)
	return capture.Options{
		Compression: compression,
		BatchSize:   c.Capture.BatchSize,
	}
}

// DefaultCaptureLocation is where traces are recorded when capture is
// enabled on the command line without a location.
func DefaultCaptureLocation() string {
	var p human.Path
	p.Set(defaultCapturePath)
	return string(p)
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Log.Level))
	return level, err
}

// NewLogger creates a logger writing to w according to the log section.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch c.Log.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
}
