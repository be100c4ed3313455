package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/poprzeczka/internal/adapters/mail"
	"github.com/okian/poprzeczka/internal/adapters/repository"
	"github.com/okian/poprzeczka/internal/config"
	"github.com/okian/poprzeczka/pkg/logger"
)

const archiveYAML = `
editions: ["Styczeń 2026"]
participants:
  Ala:
    "Styczeń 2026": {result: 12, rank: 1}
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestBuildMailer(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("Then dry-run should log instead of sending", func() {
			_, ok := buildMailer(cfg, logger.Nop()).(*mail.LogMailer)
			convey.So(ok, convey.ShouldBeTrue)
		})

		convey.Convey("Then real mail should go over SMTP", func() {
			cfg.MailDryRun = false
			cfg.SMTPHost = "smtp.example.com"
			cfg.SMTPUsername = "bot"
			_, ok := buildMailer(cfg, logger.Nop()).(*mail.SMTPMailer)
			convey.So(ok, convey.ShouldBeTrue)
		})
	})
}

func TestLoadArchive(t *testing.T) {
	convey.Convey("Given archive paths", t, func() {
		convey.Convey("Then an empty path is an empty archive", func() {
			a, err := loadArchive("")
			convey.So(err, convey.ShouldBeNil)
			convey.So(a.Editions(), convey.ShouldBeEmpty)
		})

		convey.Convey("Then a missing file is an error", func() {
			_, err := loadArchive(filepath.Join(t.TempDir(), "missing.yaml"))
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Then a valid file is loaded", func() {
			a, err := loadArchive(writeFile(t, "archive.yaml", archiveYAML))
			convey.So(err, convey.ShouldBeNil)
			convey.So(a.Editions(), convey.ShouldResemble, []string{"Styczeń 2026"})
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given a service wired from config", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.ArchivePath = writeFile(t, "archive.yaml", archiveYAML)
		cfg.Editions = []config.EditionConfig{{ID: "2026-03", Sheet: "marzec", Roster: []string{"Ala", "Bartek"}}}

		store, err := repository.OpenSQLite(ctx, ":memory:")
		convey.So(err, convey.ShouldBeNil)
		defer store.Close()

		svc, err := newService(cfg, store, mail.NewLogMailer(logger.Nop()))
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		h := newHandler(svc)

		convey.Convey("Then business and documentation routes are served", func() {
			for _, path := range []string{"/editions", "/editions/2026-03/ranking", "/history/records", "/openapi.yaml", "/healthz"} {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then the metric updaters run without panicking", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})

	convey.Convey("Given an invalid edition", t, func() {
		cfg := config.New()
		cfg.Editions = []config.EditionConfig{{ID: "x", Sheet: "s"}}

		convey.Convey("Then the service should not be built", func() {
			_, err := newService(cfg, nil, nil)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given an in-memory configuration", t, func() {
		t.Setenv("POPRZECZKA_ADDR", "127.0.0.1:0")
		t.Setenv("POPRZECZKA_DATABASE_PATH", ":memory:")
		t.Setenv("POPRZECZKA_LOG_LEVEL", "error")

		convey.Convey("When the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()

			convey.Convey("Then run should shut down cleanly", func() {
				convey.So(run(ctx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given an invalid configuration", t, func() {
		t.Setenv("POPRZECZKA_ADDR", "")

		convey.Convey("Then run should fail before serving", func() {
			convey.So(run(context.Background()), convey.ShouldNotBeNil)
		})
	})
}
