package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/five82/dashterm/internal/backend"
	"github.com/five82/dashterm/internal/config"
	"github.com/five82/dashterm/internal/dash"
	"github.com/five82/dashterm/internal/demo"
	"github.com/five82/dashterm/internal/exitcode"
	"github.com/five82/dashterm/internal/frontend"
	"github.com/five82/dashterm/internal/log"
	"github.com/five82/dashterm/internal/supervisor"
	"github.com/five82/dashterm/internal/ui"
	"github.com/five82/dashterm/internal/ui/classic"
)

// Options configure a dashterm run. Zero values keep the configured settings.
type Options struct {
	ConfigPath string
	Frontend   string        // "tea" or "classic"
	Verbose    bool          // log at debug level
	PollEvery  time.Duration // backend health poll interval

	// Dashboard replaces the built-in population demo.
	Dashboard dash.App
	// Factory replaces the window selected by the frontend setting.
	Factory frontend.Factory
	// Stderr receives errors that happen before logging is set up.
	Stderr io.Writer
}

// Run boots the dashboard and blocks until both halves have stopped.
// It returns the process exit code.
func Run(ctx context.Context, opts Options) int {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "dashterm: %v\n", err)
		return exitcode.Failure
	}

	logger, closer, err := log.Open(cfg.LogOutput, log.ParseLevel(cfg.LogLevel))
	if err != nil {
		fmt.Fprintf(stderr, "dashterm: %v\n", err)
		return exitcode.Failure
	}
	defer closer.Close()

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)
	ctx = log.ContextAttrs(ctx, slog.String("frontend", cfg.Frontend))

	dashboard := opts.Dashboard
	if dashboard == nil {
		dashboard, err = demo.New()
		if err != nil {
			logger.ErrorContext(ctx, "load demo dashboard", "error", err)
			fmt.Fprintf(stderr, "dashterm: load demo dashboard: %v\n", err)
			return exitcode.Failure
		}
	}

	factory := opts.Factory
	if factory == nil {
		factory = windowFactory(cfg.Frontend)
	}

	title := cfg.Title
	if title == "" {
		title = dashboard.Title()
	}

	exit := &exitcode.Register{}
	back := backend.NewRunner(dashboard, backend.Options{
		Host:           cfg.Host,
		ProbeInterval:  cfg.ProbeInterval,
		StartupTimeout: cfg.StartupTimeout,
		Logger:         logger,
		Exit:           exit,
	})
	front := frontend.NewRunner(factory, frontend.Options{
		Endpoint:     back,
		Title:        title,
		Theme:        cfg.Theme,
		PrefsPath:    cfg.PrefsPath,
		LogPath:      cfg.LogFile(),
		PollInterval: cfg.PollInterval,
		Logger:       logger,
		Exit:         exit,
	})

	sup := supervisor.New(back, front, exit, supervisor.Options{
		Listener:        lifecycleListener(ctx, logger, back),
		Logger:          logger,
		JoinTimeout:     cfg.JoinTimeout,
		MonitorInterval: cfg.MonitorInterval,
	})

	logger.InfoContext(ctx, "dashterm starting", "title", title, "log", cfg.LogOutput)
	return sup.Run(ctx)
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if f := strings.TrimSpace(opts.Frontend); f != "" {
		cfg.Frontend = strings.ToLower(f)
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = opts.PollEvery
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func windowFactory(name string) frontend.Factory {
	if name == config.FrontendClassic {
		return classic.NewWindow
	}
	return ui.NewWindow
}

func lifecycleListener(ctx context.Context, logger *slog.Logger, back *backend.Runner) supervisor.Listener {
	var started time.Time
	return supervisor.ListenerFuncs{
		OnStarted: func() {
			started = time.Now()
			logger.InfoContext(ctx, "dashboard running", "url", back.URL())
		},
		OnStopped: func(exitCode int) {
			attrs := []any{"exit_code", exitCode}
			if !started.IsZero() {
				attrs = append(attrs, "uptime", time.Since(started).Round(time.Millisecond).String())
			}
			logger.InfoContext(ctx, "dashboard stopped", attrs...)
		},
	}
}
