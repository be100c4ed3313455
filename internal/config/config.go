// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/poprzeczka/internal/domain/model"
)

const dateLayout = "2006-01-02"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatabasePath is the SQLite file holding every sheet. ":memory:" keeps
	// everything in process memory.
	DatabasePath string `koanf:"database_path"`

	// CacheTTLSeconds is how long a sheet read is reused. 0 disables the cache.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// DedupeSize sets how many submission IDs are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	MailQueueSize     int     `koanf:"mail_queue_size"`
	MailWorkerCount   int     `koanf:"mail_worker_count"`
	MailRatePerSecond float64 `koanf:"mail_rate_per_second"`

	SMTPHost     string `koanf:"smtp_host"`
	SMTPPort     int    `koanf:"smtp_port"`
	SMTPUsername string `koanf:"smtp_username"`
	SMTPPassword string `koanf:"smtp_password"`
	MailFrom     string `koanf:"mail_from"`

	// MailDryRun logs emails instead of sending them.
	MailDryRun bool `koanf:"mail_dry_run"`

	// ArchivePath points at the YAML archive of past editions. Empty means
	// no history.
	ArchivePath string `koanf:"archive_path"`

	AuditSheet      string `koanf:"audit_sheet"`
	SubscriberSheet string `koanf:"subscriber_sheet"`

	Editions []EditionConfig `koanf:"editions"`
}

// EditionConfig is one edition entry of the config file.
type EditionConfig struct {
	ID        string   `koanf:"id"`
	Label     string   `koanf:"label"`
	Sheet     string   `koanf:"sheet"`
	StartDate string   `koanf:"start_date"`
	Roster    []string `koanf:"roster"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		DatabasePath:      "poprzeczka.db",
		CacheTTLSeconds:   30,
		DedupeSize:        10_000,
		MailQueueSize:     1_000,
		MailWorkerCount:   2,
		MailRatePerSecond: 1,
		SMTPPort:          587,
		MailFrom:          "poprzeczka@localhost",
		MailDryRun:        true,
		AuditSheet:        "Log",
		SubscriberSheet:   "Emails",
	}
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database_path must not be empty", ErrInvalidConfig)
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("%w: cache_ttl_seconds must not be negative", ErrInvalidConfig)
	}
	if !c.MailDryRun && c.SMTPHost == "" {
		return fmt.Errorf("%w: smtp_host is required unless mail_dry_run is set", ErrInvalidConfig)
	}
	if c.AuditSheet == c.SubscriberSheet {
		return fmt.Errorf("%w: audit_sheet and subscriber_sheet must differ", ErrInvalidConfig)
	}
	_, err := c.ModelEditions()
	return err
}

// ModelEditions converts and checks the configured editions.
func (c *Config) ModelEditions() ([]model.Edition, error) {
	ids := make(map[string]struct{}, len(c.Editions))
	sheets := map[string]struct{}{c.AuditSheet: {}, c.SubscriberSheet: {}}
	out := make([]model.Edition, 0, len(c.Editions))
	for i, e := range c.Editions {
		if e.ID == "" || e.Sheet == "" {
			return nil, fmt.Errorf("%w: editions[%d] needs id and sheet", ErrInvalidConfig, i)
		}
		if _, dup := ids[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate edition id %q", ErrInvalidConfig, e.ID)
		}
		if _, dup := sheets[e.Sheet]; dup {
			return nil, fmt.Errorf("%w: sheet %q is used twice", ErrInvalidConfig, e.Sheet)
		}
		ids[e.ID] = struct{}{}
		sheets[e.Sheet] = struct{}{}

		if len(e.Roster) == 0 {
			return nil, fmt.Errorf("%w: edition %q has an empty roster", ErrInvalidConfig, e.ID)
		}
		var start time.Time
		if e.StartDate != "" {
			t, err := time.Parse(dateLayout, strings.TrimSpace(e.StartDate))
			if err != nil {
				return nil, fmt.Errorf("%w: edition %q start_date: %w", ErrInvalidConfig, e.ID, err)
			}
			start = t
		}
		label := e.Label
		if label == "" {
			label = e.ID
		}
		out = append(out, model.Edition{ID: e.ID, Label: label, Sheet: e.Sheet, StartDate: start, Roster: e.Roster})
	}
	return out, nil
}
