package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/lintdoc/internal/loader"
	"github.com/dgallion1/lintdoc/internal/report"
	"github.com/dgallion1/lintdoc/internal/rules"
)

// DefaultPath is read when no --config flag is given. A missing default file
// is not an error.
const DefaultPath = ".lintdoc.yaml"

type Config struct {
	// Rules
	RequiredSections []string           `yaml:"required_sections"`
	AllowEmpty       []string           `yaml:"allow_empty"`
	MaxSectionTokens int                `yaml:"max_section_tokens"`
	Disabled         []string           `yaml:"disabled"`
	CustomRules      []rules.CustomRule `yaml:"custom_rules"`

	// Loading
	MaxDocumentBytes     int64 `yaml:"max_document_bytes"`
	PDFFallbackPdftotext bool  `yaml:"pdf_fallback_pdftotext"`

	// Output
	Format string `yaml:"format"`

	Server Server `yaml:"server"`
	Watch  Watch  `yaml:"watch"`
}

// Server configures `lintdoc serve`.
type Server struct {
	Port           string `yaml:"port"`
	APIKey         string `yaml:"api_key"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	BatchWorkers   int    `yaml:"batch_workers"`

	// StatsWindow bounds the latency samples reported by /api/stats.
	StatsWindow time.Duration `yaml:"stats_window"`
}

// Watch configures `lintdoc watch`.
type Watch struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the built-in configuration.
func Default() Config {
	s := rules.DefaultSettings()
	return Config{
		RequiredSections:     s.RequiredSections,
		AllowEmpty:           s.AllowEmpty,
		MaxSectionTokens:     s.MaxSectionTokens,
		MaxDocumentBytes:     loader.DefaultMaxBytes,
		PDFFallbackPdftotext: true,
		Format:               string(report.Text),
		Server: Server{
			Port:           "8090",
			MaxUploadBytes: 52428800, // 50MB
			BatchWorkers:   4,
			StatsWindow:    time.Hour,
		},
		Watch: Watch{Debounce: 200 * time.Millisecond},
	}
}

// Load reads path over the defaults, then applies environment overrides and
// validates the result. An empty path means DefaultPath, which may be absent.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = envOr("LINTDOC_PORT", c.Server.Port)
	c.Server.APIKey = envOr("LINTDOC_API_KEY", c.Server.APIKey)
	c.Server.MaxUploadBytes = envInt64("LINTDOC_MAX_UPLOAD_BYTES", c.Server.MaxUploadBytes)
	c.Server.BatchWorkers = envInt("LINTDOC_BATCH_WORKERS", c.Server.BatchWorkers)
	c.Server.StatsWindow = envDuration("LINTDOC_STATS_WINDOW", c.Server.StatsWindow)
	c.Format = envOr("LINTDOC_FORMAT", c.Format)
	c.PDFFallbackPdftotext = envBool("LINTDOC_PDF_FALLBACK_PDFTOTEXT", c.PDFFallbackPdftotext)
	c.Watch.Debounce = envDuration("LINTDOC_WATCH_DEBOUNCE", c.Watch.Debounce)
}

func (c Config) Validate() error {
	if _, err := report.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.MaxSectionTokens < 0 {
		return fmt.Errorf("max_section_tokens must not be negative")
	}
	if c.MaxDocumentBytes <= 0 {
		return fmt.Errorf("max_document_bytes must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if c.Server.BatchWorkers <= 0 {
		return fmt.Errorf("server.batch_workers must be positive")
	}
	if c.Server.StatsWindow <= 0 {
		return fmt.Errorf("server.stats_window must be positive")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if _, err := strconv.Atoi(strings.TrimPrefix(c.Server.Port, ":")); err != nil {
		return fmt.Errorf("server.port %q is not a number", c.Server.Port)
	}
	if _, err := rules.Build(c.RuleSettings()); err != nil {
		return err
	}
	return nil
}

// RuleSettings converts the rule keys for rules.Build.
func (c Config) RuleSettings() rules.Settings {
	return rules.Settings{
		RequiredSections: c.RequiredSections,
		AllowEmpty:       c.AllowEmpty,
		MaxSectionTokens: c.MaxSectionTokens,
		Disabled:         c.Disabled,
		Custom:           c.CustomRules,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
