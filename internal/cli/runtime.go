package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/tgienger/refurb/internal/config"
	"github.com/tgienger/refurb/internal/db"
	applog "github.com/tgienger/refurb/internal/log"
)

var loadConfigFn = config.Load

type commandDeps struct {
	out     io.Writer
	globals *GlobalOptions
}

// session is everything a command needs once the database is open
type session struct {
	cfg   *config.Config
	log   *slog.Logger
	store *db.DB

	logCloser io.Closer
}

func (s *session) Close() {
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.logCloser != nil {
		_ = s.logCloser.Close()
	}
}

func loadConfig(globals *GlobalOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if globals.ConfigPath != "" {
		cfg, _, err = config.LoadFromPath(globals.ConfigPath)
	} else {
		cfg, _, err = loadConfigFn()
	}
	if err != nil {
		return nil, asExitError(ExitCodeUsage, err)
	}
	applyOverrides(cfg, globals)
	return cfg, nil
}

// applyOverrides lets the persistent flags win over the config file
func applyOverrides(cfg *config.Config, globals *GlobalOptions) {
	if globals.DBPath != "" {
		cfg.Database.Path = globals.DBPath
	}
	if globals.LogLevel != "" {
		cfg.Log.Level = globals.LogLevel
	}
	if globals.LogFile != "" {
		cfg.Log.File = globals.LogFile
	}
}

func openSession(ctx context.Context, globals *GlobalOptions) (*session, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}

	logger, closer, err := applog.New(applog.Options{
		Level:     cfg.Log.Level,
		File:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
		MaxFiles:  cfg.Log.MaxFiles,
	})
	if err != nil {
		return nil, asExitError(ExitCodeUsage, fmt.Errorf("logging: %w", err))
	}

	s := &session{cfg: cfg, log: logger, logCloser: closer}
	s.store, err = db.Open(ctx, cfg.Database.Path, db.WithLogger(logger))
	if err != nil {
		logger.Error("open database", "path", cfg.Database.Path, "error", err)
		s.Close()
		return nil, mapCommandError(err)
	}
	return s, nil
}

// withStore opens the database for the duration of fn
func withStore(ctx context.Context, deps commandDeps, fn func(context.Context, *session) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, deps.globals)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(ctx, s); err != nil {
		s.log.Error("command failed", "error", err)
		return mapCommandError(err)
	}
	return nil
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
