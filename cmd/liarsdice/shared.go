package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/lox/liarsdice/internal/config"
)

// load reads the configuration file and builds the logger. --debug wins over
// the configured level.
func (g *Globals) load() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config %s: %w", g.Config, err)
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	if g.Debug {
		level = log.DebugLevel
	}
	return cfg, setupLogger(level), nil
}

// setupLogger configures a timestamped console logger on stderr
func setupLogger(level log.Level) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}

// setupSignalHandler creates a context that is cancelled on interrupt signals and logs
func setupSignalHandler(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal, shutting down gracefully", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
