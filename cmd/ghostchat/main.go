// Package main runs Ghost Chat with the terminal window host.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/ghostchat/pkg/app"
	"github.com/entrhq/ghostchat/pkg/config"
	"github.com/entrhq/ghostchat/pkg/host/term"
	"github.com/entrhq/ghostchat/pkg/lifecycle"
	"github.com/entrhq/ghostchat/pkg/logging"
	"github.com/entrhq/ghostchat/pkg/state"
	"github.com/entrhq/ghostchat/pkg/telemetry"
	"github.com/entrhq/ghostchat/pkg/types"
	"github.com/entrhq/ghostchat/pkg/updater"
)

const version = "0.1.0" // Version reported by -version

// Config holds the command line flags.
type Config struct {
	OptionsPath  string
	StorePath    string
	DevServerURL string
	LogLevel     string
	ShowVersion  bool
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("Ghost Chat v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, lifecycle.ErrCreateOverlay) {
			log.Fatalf("Could not open the overlay: %v", err)
		}
		log.Fatalf("Application error: %v", err)
	}
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.OptionsPath, "config", os.Getenv("GHOSTCHAT_CONFIG"), "Path to a YAML options file (or set GHOSTCHAT_CONFIG)")
	flag.StringVar(&cfg.StorePath, "store", "", "Persisted state file (default ~/.ghostchat/config.json)")
	flag.StringVar(&cfg.DevServerURL, "dev-server-url", "", "Load window content from a dev server instead of index_html")
	flag.StringVar(&cfg.LogLevel, "log-level", "", "Minimum log severity: debug, info, warn, error")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Ghost Chat - a transparent chat overlay\n\n")
		fmt.Fprintf(os.Stderr, "Usage: ghostchat [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  GHOSTCHAT_CONFIG     Path to a YAML options file\n")
		fmt.Fprintf(os.Stderr, "  GHOSTCHAT_LOG_DIR    Directory for log files\n")
		fmt.Fprintf(os.Stderr, "  GHOSTCHAT_LOG_LEVEL  Log threshold before options are read\n")
	}

	flag.Parse()
	return cfg
}

func run(ctx context.Context, cfg *Config) error {
	opts, err := config.LoadOptions(cfg.OptionsPath)
	if err != nil {
		return err
	}
	if cfg.StorePath != "" {
		opts.StorePath = cfg.StorePath
	}
	if cfg.DevServerURL != "" {
		opts.DevServerURL = cfg.DevServerURL
	}
	if cfg.LogLevel != "" {
		opts.LogLevel = cfg.LogLevel
	}

	level, err := opts.Level()
	if err != nil {
		return err
	}
	logging.SetLevel(level)
	defer logging.CloseSession()

	tp, err := telemetry.Setup(ctx, opts.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("Warning: failed to flush traces: %v", err)
		}
	}()

	store, err := config.NewFileStore(opts.StorePath, state.Defaults())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	backend, err := updater.NewGitHubBackend(opts.Updates, opts.Version)
	if err != nil {
		return err
	}
	defer backend.Wait()

	host := term.NewHost(term.Options{})
	a, err := app.New(app.Config{
		Options:   opts,
		Store:     store,
		Host:      host,
		Registrar: host,
		Backend:   backend,
	})
	if err != nil {
		return err
	}
	host.Attach(a)

	if err := a.Start(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			a.Post(types.Close{})
		case <-ctx.Done():
		}
	}()

	loopErr := make(chan error, 1)
	go func() { loopErr <- a.Run(ctx) }()

	hostErr := host.Run(ctx)

	// The terminal may end before the engine does; closing the windows
	// still persists their state.
	a.Post(types.Exit{})
	if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
		return errors.Join(hostErr, err)
	}
	return hostErr
}
