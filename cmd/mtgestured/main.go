// Command mtgestured converts Apple Magic Mouse 2 multi-touch events into
// semantic gestures bound to configurable actions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/badu/mtgestured/config"
	"github.com/badu/mtgestured/daemon"
	"github.com/badu/mtgestured/diag"
	"github.com/badu/mtgestured/evdev"
	initLog "github.com/badu/mtgestured/log"
)

const (
	exitOK = iota
	exitGeneric
	exitDeviceUnavailable
	exitConfigInvalid
	exitMissingDependency
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "/etc/mtgestured/config.yaml", "path to the configuration file")
	devicePath := flag.String("device", "", "override the auto-detected input device path")
	verbose := flag.Bool("verbose", false, "enable per-event tracing")
	checkDeps := flag.Bool("check-deps", false, "verify external action dependencies and exit")
	flag.Parse()

	logger, err := initLog.InitLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mtgestured: failed to init logger: %v\n", err)
		return exitGeneric
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", *configPath).Msg("configuration invalid")
		return exitConfigInvalid
	}

	resolvedDevice, err := resolveDevice(*devicePath, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("device unavailable")
		return exitDeviceUnavailable
	}

	report := diag.Check(cfg, resolvedDevice)
	fmt.Fprint(os.Stderr, diag.Banner(resolvedDevice, cfg, report))

	if *checkDeps {
		if !report.OK() {
			logger.Error().Strs("missing", report.Missing).Msg("missing external action dependencies")
			return exitMissingDependency
		}
		logger.Info().Msg("all configured action dependencies present")
		return exitOK
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	supervisor := daemon.New(cfg, resolvedDevice, nil, logger)
	if err := supervisor.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("pipeline terminated")
		return exitGeneric
	}
	return exitOK
}

func resolveDevice(flagPath string, cfg *config.Config) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if cfg.Device.Path != "" && !cfg.Device.AutoDetect {
		return cfg.Device.Path, nil
	}
	return evdev.FindDevice(cfg.Device.NamePattern)
}
