package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mesh-intelligence/bbd/internal/logging"
	"github.com/mesh-intelligence/bbd/internal/paths"
	"github.com/mesh-intelligence/bbd/internal/store"
)

// app owns the process-wide logger and store connection. Both are created
// once here and passed to the form; nothing looks them up globally.
type app struct {
	settings settings
	logger   *slog.Logger
	logFile  io.Closer
	backend  *store.Backend
}

// openApp resolves settings, opens the log, and attaches the store.
func openApp(ctx context.Context) (*app, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}

	s, err := loadSettings(configDir, flags.envFile)
	if err != nil {
		return nil, err
	}

	logger, logFile, err := logging.New(s.Log)
	if err != nil {
		return nil, err
	}

	attachCtx, cancel := context.WithTimeout(ctx, s.Store.Timeout)
	defer cancel()

	backend := store.NewBackend()
	if err := backend.Attach(attachCtx, s.Store); err != nil {
		logger.Error("attach store failed", "driver", s.Store.Driver, "table", s.Store.Schema.Table, "err", err)
		logFile.Close()
		return nil, fmt.Errorf("attach store: %w", err)
	}
	logger.Info("store attached", "driver", s.Store.Driver, "table", s.Store.Schema.Table)

	return &app{
		settings: s,
		logger:   logger,
		logFile:  logFile,
		backend:  backend,
	}, nil
}

// callContext bounds a single store call by the configured timeout.
func (a *app) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.settings.Store.Timeout)
}

// Close detaches the store and closes the log.
func (a *app) Close() error {
	return errors.Join(a.backend.Detach(), a.logFile.Close())
}

// textNotifier writes form notices to the command's error stream.
type textNotifier struct {
	w io.Writer
}

func (n textNotifier) Warn(title, message string) {
	fmt.Fprintf(n.w, "%s: %s\n", title, message)
}

func (n textNotifier) Error(title, message string) {
	fmt.Fprintf(n.w, "%s: %s\n", title, message)
}
