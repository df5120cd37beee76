package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Frontend renderer names accepted by the frontend setting.
const (
	FrontendTea     = "tea"
	FrontendClassic = "classic"
)

// Log output targets that are not file paths.
const (
	LogStderr  = "stderr"
	LogStdout  = "stdout"
	LogDiscard = "discard"
)

// Config is the resolved dashterm configuration.
type Config struct {
	Host      string `validate:"required,loopback"`
	Frontend  string `validate:"oneof=tea classic"`
	Title     string
	Theme     string
	PrefsPath string `validate:"required"`

	LogOutput string `validate:"required"`
	LogLevel  string `validate:"oneof=debug info warn error"`

	StartupTimeout  time.Duration `validate:"gt=0"`
	ProbeInterval   time.Duration `validate:"gt=0,ltfield=StartupTimeout"`
	JoinTimeout     time.Duration `validate:"gt=0"`
	MonitorInterval time.Duration `validate:"gt=0"`
	PollInterval    time.Duration `validate:"gt=0"`
}

const (
	defaultConfigPath = "~/.config/dashterm/config.toml"
	defaultPrefsPath  = "~/.config/dashterm/prefs.toml"
	defaultLogOutput  = "~/.local/state/dashterm/dashterm.log"
	defaultHost       = "127.0.0.1"
	defaultLogLevel   = "info"

	defaultStartupTimeout  = 15 * time.Second
	defaultProbeInterval   = 250 * time.Millisecond
	defaultJoinTimeout     = 5 * time.Second
	defaultMonitorInterval = 100 * time.Millisecond
	defaultPollInterval    = 2 * time.Second
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("loopback", isLoopback); err != nil {
		panic(err)
	}
	return v
}

// isLoopback accepts "localhost" and loopback IP literals.
func isLoopback(fl validator.FieldLevel) bool {
	host := fl.Field().String()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Host:            defaultHost,
		Frontend:        FrontendTea,
		PrefsPath:       mustExpand(defaultPrefsPath),
		LogOutput:       mustExpand(defaultLogOutput),
		LogLevel:        defaultLogLevel,
		StartupTimeout:  defaultStartupTimeout,
		ProbeInterval:   defaultProbeInterval,
		JoinTimeout:     defaultJoinTimeout,
		MonitorInterval: defaultMonitorInterval,
		PollInterval:    defaultPollInterval,
	}
}

type rawConfig struct {
	Host      string `toml:"host"`
	Frontend  string `toml:"frontend"`
	Title     string `toml:"title"`
	Theme     string `toml:"theme"`
	PrefsFile string `toml:"prefs_file"`
	Log       struct {
		Output string `toml:"output"`
		Level  string `toml:"level"`
	} `toml:"log"`
	Timing struct {
		StartupTimeout  string `toml:"startup_timeout"`
		ProbeInterval   string `toml:"probe_interval"`
		JoinTimeout     string `toml:"join_timeout"`
		MonitorInterval string `toml:"monitor_interval"`
		PollInterval    string `toml:"poll_interval"`
	} `toml:"timing"`
}

// Load locates and parses the dashterm config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	setString(&cfg.Host, raw.Host)
	setString(&cfg.Frontend, strings.ToLower(raw.Frontend))
	setString(&cfg.Title, raw.Title)
	setString(&cfg.Theme, raw.Theme)
	setString(&cfg.LogLevel, strings.ToLower(raw.Log.Level))
	if p := strings.TrimSpace(raw.PrefsFile); p != "" {
		cfg.PrefsPath = mustExpand(p)
	}
	if out := strings.TrimSpace(raw.Log.Output); out != "" {
		cfg.LogOutput = ResolveLogOutput(out)
	}

	timings := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"startup_timeout", raw.Timing.StartupTimeout, &cfg.StartupTimeout},
		{"probe_interval", raw.Timing.ProbeInterval, &cfg.ProbeInterval},
		{"join_timeout", raw.Timing.JoinTimeout, &cfg.JoinTimeout},
		{"monitor_interval", raw.Timing.MonitorInterval, &cfg.MonitorInterval},
		{"poll_interval", raw.Timing.PollInterval, &cfg.PollInterval},
	}
	for _, tm := range timings {
		value := strings.TrimSpace(tm.value)
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse timing.%s: %w", tm.name, err)
		}
		*tm.dst = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and reports the first offending field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %w", err)
}

// ResolveLogOutput expands a log output setting. The stream names are kept verbatim.
func ResolveLogOutput(out string) string {
	switch trimmed := strings.ToLower(strings.TrimSpace(out)); trimmed {
	case LogStderr, LogStdout, LogDiscard:
		return trimmed
	}
	return mustExpand(out)
}

// LogFile reports the log file path, or "" when logs go to a stream.
func (c Config) LogFile() string {
	switch c.LogOutput {
	case LogStderr, LogStdout, LogDiscard, "":
		return ""
	}
	return c.LogOutput
}

func setString(dst *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dst = trimmed
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading "~" against the home directory and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
