package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/poprzeczka/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

const sampleYAML = `
addr: ":9090"
database_path: "/var/lib/poprzeczka/sheets.db"
cache_ttl_seconds: 10
mail_worker_count: 4
mail_dry_run: false
smtp_host: "smtp.example.com"
editions:
  - id: "2026-03"
    label: "Marzec 2026"
    sheet: "marzec"
    start_date: "2026-03-01"
    roster: ["Ala", "Bartek", "Celina"]
  - id: "2026-04"
    sheet: "kwiecien"
    roster: ["Ala"]
`

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 30)
				convey.So(cfg.Editions, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("POPRZECZKA_ADDR", ":8080")
			_ = os.Setenv("POPRZECZKA_DEDUPE_SIZE", "500")
			_ = os.Setenv("POPRZECZKA_MAIL_RATE_PER_SECOND", "2.5")
			_ = os.Setenv("POPRZECZKA_LOG_LEVEL", "debug")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 500)
				convey.So(cfg.MailRatePerSecond, convey.ShouldEqual, 2.5)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			_ = os.Setenv("POPRZECZKA_CONFIG", writeConfig(t, sampleYAML))

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values and editions should be loaded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 10)
				convey.So(cfg.MailWorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.MailDryRun, convey.ShouldBeFalse)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)

				eds, err := cfg.ModelEditions()
				convey.So(err, convey.ShouldBeNil)
				convey.So(eds, convey.ShouldHaveLength, 2)
				convey.So(eds[0].Label, convey.ShouldEqual, "Marzec 2026")
				convey.So(eds[0].Roster, convey.ShouldResemble, []string{"Ala", "Bartek", "Celina"})
				convey.So(eds[1].Label, convey.ShouldEqual, "2026-04")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			_ = os.Setenv("POPRZECZKA_CONFIG", writeConfig(t, sampleYAML))
			_ = os.Setenv("POPRZECZKA_ADDR", ":7070")
			_ = os.Setenv("POPRZECZKA_MAIL_DRY_RUN", "true")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MailDryRun, convey.ShouldBeTrue)
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("POPRZECZKA_CONFIG", "/non/existent/file.yaml")

			_, err := config.Load(ctx)

			convey.Convey("Then ErrLoadConfig should be returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the address is empty", func() {
			_ = os.Setenv("POPRZECZKA_ADDR", "")

			_, err := config.Load(ctx)

			convey.Convey("Then ErrInvalidConfig should be returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a numeric variable is not a number", func() {
			_ = os.Setenv("POPRZECZKA_DEDUPE_SIZE", "lots")

			_, err := config.Load(ctx)

			convey.Convey("Then ErrLoadConfig should be returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, config.EnvPrefix) {
			_ = os.Unsetenv(key)
		}
	}
}
