// Package config holds the firmware's tunables and the host simulator
// options, with defaults equal to the values the firmware ships with.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownFormat = errors.New("config: unknown file format")
	ErrInvalid       = errors.New("config: invalid")
)

// NoAffinity lets the scheduler run a task on any core.
const NoAffinity int32 = 0x7FFFFFFF

// maxPriority is the highest task priority the scheduler accepts.
const maxPriority = 24

// Duration is a time.Duration read from text such as "10ms".
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type Config struct {
	Encoder EncoderConfig `toml:"encoder" yaml:"encoder"`
	UI      UIConfig      `toml:"ui" yaml:"ui"`
	// IdlePeriod is the main loop's sleep between iterations.
	IdlePeriod Duration `toml:"idle_period" yaml:"idle_period"`
	// DebugDump makes the main loop log sensor readings every iteration.
	DebugDump bool       `toml:"debug_dump" yaml:"debug_dump"`
	Host      HostConfig `toml:"host" yaml:"host"`
}

type EncoderConfig struct {
	LongPress Duration `toml:"long_press" yaml:"long_press"`
}

// UIConfig describes the task that renders the display.
type UIConfig struct {
	TaskName    string   `toml:"task_name" yaml:"task_name"`
	Priority    uint8    `toml:"priority" yaml:"priority"`
	StackDepth  uint32   `toml:"stack_depth" yaml:"stack_depth"`
	Core        int32    `toml:"core" yaml:"core"`
	FramePeriod Duration `toml:"frame_period" yaml:"frame_period"`
}

// HostConfig is read by the host simulator only.
type HostConfig struct {
	LogLevel  string   `toml:"log_level" yaml:"log_level"`
	Scale     int      `toml:"scale" yaml:"scale"`
	Console   bool     `toml:"console" yaml:"console"`
	Headless  bool     `toml:"headless" yaml:"headless"`
	Duration  Duration `toml:"duration" yaml:"duration"`
	AbortHold Duration `toml:"abort_hold" yaml:"abort_hold"`

	// Script lists encoder events ("cw", "ccw", "click", "press") posted
	// ScriptInterval apart in headless runs.
	Script         []string `toml:"script" yaml:"script"`
	ScriptInterval Duration `toml:"script_interval" yaml:"script_interval"`
}

// Default returns the firmware defaults.
func Default() Config {
	return Config{
		Encoder: EncoderConfig{LongPress: Duration(time.Second)},
		UI: UIConfig{
			TaskName:    "ui_task",
			Priority:    9,
			StackDepth:  8192,
			Core:        NoAffinity,
			FramePeriod: Duration(10 * time.Millisecond),
		},
		IdlePeriod: Duration(100 * time.Millisecond),
		Host: HostConfig{
			LogLevel:       "info",
			Scale:          2,
			Console:        true,
			ScriptInterval: Duration(250 * time.Millisecond),
		},
	}
}

// Load reads path over the defaults. The format follows the extension:
// .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Encoder.LongPress <= 0 {
		errs = append(errs, fmt.Errorf("encoder.long_press must be positive, got %v", c.Encoder.LongPress))
	}
	if c.UI.TaskName == "" {
		errs = append(errs, errors.New("ui.task_name is empty"))
	}
	if c.UI.Priority > maxPriority {
		errs = append(errs, fmt.Errorf("ui.priority %d above %d", c.UI.Priority, maxPriority))
	}
	if c.UI.StackDepth == 0 {
		errs = append(errs, errors.New("ui.stack_depth is zero"))
	}
	if c.UI.Core != NoAffinity && c.UI.Core < 0 {
		errs = append(errs, fmt.Errorf("ui.core %d is negative", c.UI.Core))
	}
	if c.UI.FramePeriod < 0 {
		errs = append(errs, fmt.Errorf("ui.frame_period is negative: %v", c.UI.FramePeriod))
	}
	if c.IdlePeriod <= 0 {
		errs = append(errs, fmt.Errorf("idle_period must be positive, got %v", c.IdlePeriod))
	}
	if _, err := c.Host.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.Host.Scale < 1 {
		errs = append(errs, fmt.Errorf("host.scale must be at least 1, got %d", c.Host.Scale))
	}
	if c.Host.Duration < 0 {
		errs = append(errs, fmt.Errorf("host.duration is negative: %v", c.Host.Duration))
	}
	if c.Host.ScriptInterval < 0 {
		errs = append(errs, fmt.Errorf("host.script_interval is negative: %v", c.Host.ScriptInterval))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// LevelTrace is the slog level of trace lines.
const LevelTrace = slog.Level(-8)

// Level parses LogLevel: "trace" or any slog level name.
func (h HostConfig) Level() (slog.Level, error) {
	if strings.EqualFold(h.LogLevel, "trace") {
		return LevelTrace, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(h.LogLevel)); err != nil {
		return 0, fmt.Errorf("host.log_level: %w", err)
	}
	return l, nil
}
