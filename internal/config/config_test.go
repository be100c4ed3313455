package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/poprzeczka/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.CacheTTL(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.MailDryRun, convey.ShouldBeTrue)
			convey.So(cfg.AuditSheet, convey.ShouldEqual, "Log")
			convey.So(cfg.SubscriberSheet, convey.ShouldEqual, "Emails")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_ModelEditions(t *testing.T) {
	convey.Convey("Given a config with one edition", t, func() {
		cfg := config.New()
		cfg.Editions = []config.EditionConfig{{
			ID:        "2026-03",
			Sheet:     "marzec",
			StartDate: "2026-03-01",
			Roster:    []string{"Ala", "Bartek"},
		}}

		convey.Convey("When it is converted", func() {
			eds, err := cfg.ModelEditions()

			convey.Convey("Then the label should default to the id and the date parse", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(eds, convey.ShouldHaveLength, 1)
				convey.So(eds[0].Label, convey.ShouldEqual, "2026-03")
				convey.So(eds[0].StartDate, convey.ShouldEqual, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
			})
		})

		convey.Convey("When editions are invalid", func() {
			bad := []config.EditionConfig{
				{ID: "x", Roster: []string{"a"}},
				{ID: "x", Sheet: "s"},
				{ID: "x", Sheet: "s", Roster: []string{"a"}, StartDate: "1 March"},
				{ID: "x", Sheet: "Log", Roster: []string{"a"}},
			}

			convey.Convey("Then each should fail validation", func() {
				for _, e := range bad {
					cfg.Editions = []config.EditionConfig{e}
					convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				}
			})
		})

		convey.Convey("When an id is repeated", func() {
			cfg.Editions = append(cfg.Editions, config.EditionConfig{ID: "2026-03", Sheet: "other", Roster: []string{"a"}})

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given real mail without an SMTP host", t, func() {
		cfg := config.New()
		cfg.MailDryRun = false

		convey.Convey("Then validation should fail", func() {
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
