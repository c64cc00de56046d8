// Package config holds the parameters of a simulated interconnect and loads
// them from dotenv files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sarchlab/axiconnect/crossbar"
	"github.com/sarchlab/axiconnect/pipeline"
)

// EnvPrefix is the prefix of every configuration key.
const EnvPrefix = "AXICONNECT_"

// Config describes the interconnect to build and how to run it.
type Config struct {
	NumPorts       int
	BufferDepth    int
	MaxBurstBeats  int
	BurstBeats     int
	Policy         crossbar.Policy
	WriteMode      crossbar.WriteMode
	MaxOutstanding int
	ThroughputMode pipeline.ThroughputMode
	LevelLatency   int
	FreqMHz        float64
	Cycles         uint64
	Seed           int64
	ReadyChance    float64
	DataFirst      bool
	MonitorPort    int
	TraceFile      string
}

// Default returns the configuration of a four-port interconnect in front of
// a 16-entry buffer.
func Default() Config {
	return Config{
		NumPorts:       4,
		BufferDepth:    16,
		MaxBurstBeats:  8,
		BurstBeats:     8,
		Policy:         crossbar.RoundRobin,
		WriteMode:      crossbar.LockUntilResponse,
		MaxOutstanding: 4,
		ThroughputMode: pipeline.FullThroughput,
		LevelLatency:   0,
		FreqMHz:        1000,
		Cycles:         10000,
		Seed:           1,
		ReadyChance:    1,
	}
}

type setter func(c *Config, value string) error

func intSetter(field func(c *Config) *int) setter {
	return func(c *Config, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}

		*field(c) = n

		return nil
	}
}

func floatSetter(field func(c *Config) *float64) setter {
	return func(c *Config, value string) error {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}

		*field(c) = f

		return nil
	}
}

var setters = map[string]setter{
	"NUM_PORTS":       intSetter(func(c *Config) *int { return &c.NumPorts }),
	"BUFFER_DEPTH":    intSetter(func(c *Config) *int { return &c.BufferDepth }),
	"MAX_BURST_BEATS": intSetter(func(c *Config) *int { return &c.MaxBurstBeats }),
	"BURST_BEATS":     intSetter(func(c *Config) *int { return &c.BurstBeats }),
	"MAX_OUTSTANDING": intSetter(func(c *Config) *int { return &c.MaxOutstanding }),
	"LEVEL_LATENCY":   intSetter(func(c *Config) *int { return &c.LevelLatency }),
	"MONITOR_PORT":    intSetter(func(c *Config) *int { return &c.MonitorPort }),
	"FREQ_MHZ":        floatSetter(func(c *Config) *float64 { return &c.FreqMHz }),
	"READY_CHANCE":    floatSetter(func(c *Config) *float64 { return &c.ReadyChance }),
	"POLICY": func(c *Config, value string) (err error) {
		c.Policy, err = crossbar.ParsePolicy(value)
		return err
	},
	"WRITE_MODE": func(c *Config, value string) (err error) {
		c.WriteMode, err = crossbar.ParseWriteMode(value)
		return err
	},
	"THROUGHPUT_MODE": func(c *Config, value string) (err error) {
		c.ThroughputMode, err = pipeline.ParseThroughputMode(value)
		return err
	},
	"CYCLES": func(c *Config, value string) (err error) {
		c.Cycles, err = strconv.ParseUint(value, 10, 64)
		return err
	},
	"SEED": func(c *Config, value string) (err error) {
		c.Seed, err = strconv.ParseInt(value, 10, 64)
		return err
	},
	"DATA_FIRST": func(c *Config, value string) (err error) {
		c.DataFirst, err = strconv.ParseBool(value)
		return err
	},
	"TRACE_FILE": func(c *Config, value string) error {
		c.TraceFile = value
		return nil
	},
}

// Keys returns every supported key, with the prefix.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, EnvPrefix+k)
	}

	sort.Strings(keys)

	return keys
}

// Apply overrides the configuration with the prefixed keys in vars. Keys
// without the prefix are ignored. Unknown prefixed keys are errors.
func (c *Config) Apply(vars map[string]string) error {
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}

	sort.Strings(names)

	for _, k := range names {
		if !strings.HasPrefix(k, EnvPrefix) {
			continue
		}

		set, ok := setters[strings.TrimPrefix(k, EnvPrefix)]
		if !ok {
			return fmt.Errorf("unknown configuration key %s", k)
		}

		if err := set(c, strings.TrimSpace(vars[k])); err != nil {
			return fmt.Errorf("parsing %s=%q: %w", k, vars[k], err)
		}
	}

	return nil
}

// Load starts from Default, applies the dotenv files in order, then the
// process environment, and validates the result.
func Load(paths ...string) (Config, error) {
	c := Default()

	for _, path := range paths {
		vars, err := godotenv.Read(path)
		if err != nil {
			return c, fmt.Errorf("reading %s: %w", path, err)
		}

		if err := c.Apply(vars); err != nil {
			return c, fmt.Errorf("applying %s: %w", path, err)
		}
	}

	if err := c.Apply(environ()); err != nil {
		return c, fmt.Errorf("applying environment: %w", err)
	}

	if err := c.Validate(); err != nil {
		return c, err
	}

	return c, nil
}

func environ() map[string]string {
	vars := make(map[string]string)

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}

	return vars
}

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks that the parameters describe a buildable interconnect.
func (c Config) Validate() error {
	var errs []error

	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs,
				fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.NumPorts >= 1, "number of ports must be positive, got %d",
		c.NumPorts)
	check(c.MaxBurstBeats >= 1 && c.MaxBurstBeats <= 256,
		"max burst beats must be in [1, 256], got %d", c.MaxBurstBeats)
	check(c.BufferDepth >= c.MaxBurstBeats,
		"buffer depth %d cannot hold a %d-beat burst",
		c.BufferDepth, c.MaxBurstBeats)
	check(c.BurstBeats >= 1 && c.BurstBeats <= c.MaxBurstBeats,
		"burst beats must be in [1, %d], got %d",
		c.MaxBurstBeats, c.BurstBeats)
	check(c.MaxOutstanding >= 1, "max outstanding must be positive, got %d",
		c.MaxOutstanding)
	check(c.LevelLatency == 0 || c.LevelLatency == 1,
		"level latency must be 0 or 1, got %d", c.LevelLatency)
	check(c.FreqMHz > 0, "frequency must be positive, got %g", c.FreqMHz)
	check(c.Cycles > 0, "number of cycles must be positive")
	check(c.ReadyChance > 0 && c.ReadyChance <= 1,
		"ready chance must be in (0, 1], got %g", c.ReadyChance)
	check(c.MonitorPort == 0 ||
		(c.MonitorPort >= 1000 && c.MonitorPort <= 65535),
		"monitor port must be 0 or in [1000, 65535], got %d", c.MonitorPort)

	return errors.Join(errs...)
}
