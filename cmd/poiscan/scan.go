package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/phuslu/log"

	"github.com/turismolocal/poiscan/internal/config"
	"github.com/turismolocal/poiscan/internal/engine/geo"
	"github.com/turismolocal/poiscan/internal/engine/scanner"
	"github.com/turismolocal/poiscan/internal/model"
	"github.com/turismolocal/poiscan/internal/tui"
)

func runScan(args []string) error {
	var params model.ScanParams
	var delayMS int

	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	fs.StringVar(&params.Source, "source", "merged", "Data source: google, inegi or merged")
	fs.StringVar(&params.DatasetName, "name", "cdmx_pois", "Dataset base name")
	fs.StringVar(&params.OutputDir, "output", "", "Output directory (default: from config)")
	fs.IntVar(&delayMS, "delay", 0, "Delay between zones in ms (default: from config)")
	fs.BoolVar(&params.TUI, "tui", false, "Show interactive progress view")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: poiscan scan [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  poiscan scan -source google -name cdmx_google\n")
		fmt.Fprintf(os.Stderr, "  POISCAN_DENUE_TOKEN=... poiscan scan -source inegi -tui\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch params.Source {
	case "google", "inegi", "merged":
	default:
		return fmt.Errorf("invalid -source %q (want google, inegi or merged)", params.Source)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if params.OutputDir == "" {
		params.OutputDir = cfg.Output.Dir
	}
	params.ZoneDelay = time.Duration(cfg.Scan.ZoneDelayMS) * time.Millisecond
	if delayMS > 0 {
		params.ZoneDelay = time.Duration(delayMS) * time.Millisecond
	}

	if err := os.MkdirAll(params.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	logPath := filepath.Join(params.OutputDir,
		fmt.Sprintf("%s_%s.log", params.DatasetName, time.Now().Format("20060102_150405")))
	logger := &log.Logger{
		Level:      log.InfoLevel,
		TimeFormat: time.RFC3339,
		Writer:     &log.FileWriter{Filename: logPath, FileMode: 0o644, EnsureFolder: true},
	}

	zones := geo.Zones(cfg.Area.Bound(), cfg.Area.GridStepDeg, cfg.Area.RadiusMeters)
	if len(zones) == 0 {
		return fmt.Errorf("no zones to scan, check area bounds")
	}

	timeout := time.Duration(cfg.Scan.RequestTimeoutS) * time.Second
	cacheTTL := time.Duration(cfg.Scan.CacheTTLMinutes) * time.Minute
	google, denue := scanner.BuildSources(cfg, timeout, cacheTTL, logger)

	var opts []scanner.Option
	if !params.TUI {
		opts = append(opts, scanner.WithProgress(func(line string) {
			fmt.Fprintf(os.Stderr, "\r%-60s", line)
		}))
	}
	sc := scanner.New(google, denue, zones, params.OutputDir, params.ZoneDelay, logger, opts...)

	logger.Info().Str("source", params.Source).Int("zones", len(zones)).
		Dur("zone_delay", params.ZoneDelay).Msg("session start")

	if params.TUI {
		return runScanTUI(sc, params)
	}
	return runScanHeadless(sc, params, zones, logPath)
}

func runScanHeadless(sc *scanner.Scanner, params model.ScanParams, zones []model.Zone, logPath string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down gracefully...")
		cancel()
	}()

	fmt.Fprintf(os.Stderr, "Log: %s\n", logPath)
	fmt.Fprintf(os.Stderr, "Scanning %d zones (source=%s)\n", len(zones), params.Source)

	startTime := time.Now()
	path, err := dispatchRun(ctx, sc, params)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Scan cancelled.")
			return nil
		}
		return err
	}

	stats := sc.Stats()
	duration := time.Since(startTime).Truncate(time.Second)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Scan Complete\n")
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Source:     %s\n", params.Source)
	fmt.Fprintf(os.Stderr, "  Zones:      %d\n", stats.ZonesDone.Load())
	fmt.Fprintf(os.Stderr, "  Found:      %d\n", stats.RecordsFound.Load())
	fmt.Fprintf(os.Stderr, "  Unique:     %d\n", stats.UniqueRecords.Load())
	fmt.Fprintf(os.Stderr, "  Errors:     %d\n", stats.RequestErrors.Load())
	fmt.Fprintf(os.Stderr, "  Duration:   %s\n", duration)
	fmt.Fprintf(os.Stderr, "  Dataset:    %s\n", path)
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")

	return nil
}

func runScanTUI(sc *scanner.Scanner, params model.ScanParams) error {
	title := fmt.Sprintf("Scanning CDMX (%s)", params.Source)
	path, err := tui.Run(title, sc.Stats(), func(ctx context.Context) (string, error) {
		return dispatchRun(ctx, sc, params)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	if path != "" {
		fmt.Fprintf(os.Stderr, "Dataset: %s\n", path)
	}
	return nil
}

func dispatchRun(ctx context.Context, sc *scanner.Scanner, params model.ScanParams) (string, error) {
	switch params.Source {
	case "google":
		return sc.RunGoogle(ctx, params.DatasetName)
	case "inegi":
		return sc.RunINEGI(ctx, params.DatasetName)
	default:
		return sc.RunMerged(ctx, params.DatasetName)
	}
}
