//go:build !idf

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"lumen/app"
	"lumen/ffi/task"
	"lumen/hal"
	"lumen/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		cfgPath  string
		headless bool
		duration time.Duration
		logLevel string
		debug    bool
	)
	flag.StringVar(&cfgPath, "config", "", "Load settings from a .toml or .yaml file.")
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.DurationVar(&duration, "duration", 0, "Stop after this long (0 = run until interrupted).")
	flag.StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn or error.")
	flag.BoolVar(&debug, "debug-dump", false, "Log sensor readings from the main loop.")
	flag.Parse()

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "headless":
			cfg.Host.Headless = headless
		case "duration":
			cfg.Host.Duration = config.Duration(duration)
		case "log-level":
			cfg.Host.LogLevel = logLevel
		case "debug-dump":
			cfg.DebugDump = debug
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.Host.Level()
	h := hal.NewHost(hal.HostConfig{
		TaskEntry: task.Trampoline,
		LogLevel:  level,
		Console:   cfg.Host.Console && !cfg.Host.Headless,
		AbortHold: cfg.Host.AbortHold.Std(),
	})

	runApp := func(ctx context.Context) error {
		return app.Run(ctx, h, cfg)
	}

	if !cfg.Host.Headless {
		return hal.RunWindow(h, cfg.Host.Scale, runApp)
	}

	script, err := buildScript(cfg.Host)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err = hal.RunHeadless(ctx, h, hal.HeadlessConfig{Duration: cfg.Host.Duration.Std(), Script: script}, runApp)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func buildScript(hc config.HostConfig) ([]hal.ScriptEvent, error) {
	script := make([]hal.ScriptEvent, 0, len(hc.Script))
	for i, name := range hc.Script {
		ev, err := hal.ParseEncoderEvent(name)
		if err != nil {
			return nil, fmt.Errorf("host.script[%d]: %w", i, err)
		}
		script = append(script, hal.ScriptEvent{
			At:    time.Duration(i+1) * hc.ScriptInterval.Std(),
			Event: ev,
		})
	}
	return script, nil
}
