package notify_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/okian/poprzeczka/internal/adapters/mq/queue"
	"github.com/okian/poprzeczka/internal/adapters/repository"
	"github.com/okian/poprzeczka/internal/domain/fold"
	"github.com/okian/poprzeczka/internal/domain/model"
	"github.com/okian/poprzeczka/internal/notify"
	"github.com/okian/poprzeczka/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type recorder struct {
	mu   sync.Mutex
	jobs []queue.Job
	full bool
}

func (r *recorder) Enqueue(_ context.Context, j queue.Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return false
	}
	r.jobs = append(r.jobs, j)
	return true
}

func (r *recorder) of(kind notify.Kind) []queue.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []queue.Job
	for _, j := range r.jobs {
		if j.Kind == string(kind) {
			out = append(out, j)
		}
	}
	return out
}

type fixture struct {
	store   *repository.SQLiteStore
	edition model.Edition
	clock   time.Time
}

func newFixture(t *testing.T, roster ...string) *fixture {
	t.Helper()
	ctx := context.Background()
	s, err := repository.OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ed := model.Edition{ID: "2026-03", Label: "Marzec 2026", Sheet: "marzec", Roster: roster}
	if err := s.EnsureSheet(ctx, ed.Sheet, fold.Headers); err != nil {
		t.Fatal(err)
	}
	if err := s.EnsureSheet(ctx, "Emails", notify.RegistryHeaders); err != nil {
		t.Fatal(err)
	}
	return &fixture{store: s, edition: ed, clock: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (f *fixture) report(t *testing.T, participant string, day int, st model.Status) model.Submission {
	t.Helper()
	f.clock = f.clock.Add(time.Minute)
	sub := model.Submission{
		ID:          participant + "-" + strconv.Itoa(day) + "-" + f.clock.Format("150405"),
		Participant: participant,
		Day:         day,
		Status:      st,
		Timestamp:   f.clock,
	}
	if err := f.store.Append(context.Background(), f.edition.Sheet, fold.Row(sub)); err != nil {
		t.Fatal(err)
	}
	return sub
}

func (f *fixture) subscribe(t *testing.T, participant, email, risk, broadcast string) {
	t.Helper()
	if err := f.store.Append(context.Background(), "Emails", []string{participant, email, risk, broadcast}); err != nil {
		t.Fatal(err)
	}
}

func TestCheckAndSend_Alerts(t *testing.T) {
	ctx := context.Background()

	Convey("Given a participant with two failing days in a row", t, func() {
		f := newFixture(t, "Ala", "Bartek")
		f.subscribe(t, "Ala", "ala@example.com", "", "")
		f.report(t, "Ala", 1, model.StatusPass)
		f.report(t, "Ala", 2, model.StatusFail)
		sub := f.report(t, "Ala", 3, model.StatusNoReport)

		rec := &recorder{}
		trig := notify.NewTrigger(f.store, rec, notify.WithLogger(logger.Nop()))

		Convey("When the trigger runs", func() {
			rep := trig.CheckAndSend(ctx, f.edition, sub)

			Convey("Then a risk alert should be queued for the default preference", func() {
				So(rep.Err(), ShouldBeNil)
				So(rep.Alert, ShouldEqual, notify.KindRisk)
				jobs := rec.of(notify.KindRisk)
				So(jobs, ShouldHaveLength, 1)
				So(jobs[0].Message.To, ShouldResemble, []string{"ala@example.com"})
				So(jobs[0].Message.HTML, ShouldContainSubstring, "Ala")
				So(jobs[0].Message.Subject, ShouldContainSubstring, "Marzec 2026")
			})
		})

		Convey("When the trigger runs twice for the same data", func() {
			trig.CheckAndSend(ctx, f.edition, sub)
			trig.CheckAndSend(ctx, f.edition, sub)

			Convey("Then the risk alert should be sent both times", func() {
				jobs := rec.of(notify.KindRisk)
				So(jobs, ShouldHaveLength, 2)
				So(jobs[0].ID, ShouldNotEqual, jobs[1].ID)
			})
		})

		Convey("When the failing day was corrected before the trigger ran", func() {
			f.report(t, "Ala", 3, model.StatusPass)
			rep := trig.CheckAndSend(ctx, f.edition, sub)

			Convey("Then the folded pass should suppress the alert", func() {
				So(rep.Err(), ShouldBeNil)
				So(string(rep.Alert), ShouldBeEmpty)
				So(rec.of(notify.KindRisk), ShouldBeEmpty)
			})
		})

		Convey("When a third failing day follows", func() {
			sub4 := f.report(t, "Ala", 4, model.StatusFail)
			rep := trig.CheckAndSend(ctx, f.edition, sub4)

			Convey("Then an elimination alert should replace the risk alert", func() {
				So(rep.Alert, ShouldEqual, notify.KindElimination)
				So(rec.of(notify.KindElimination), ShouldHaveLength, 1)
				So(rec.of(notify.KindRisk), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a missing previous day", t, func() {
		f := newFixture(t, "Ala")
		f.subscribe(t, "Ala", "ala@example.com", "tak", "")
		sub := f.report(t, "Ala", 2, model.StatusFail)
		rec := &recorder{}
		rep := notify.NewTrigger(f.store, rec, notify.WithLogger(logger.Nop())).CheckAndSend(ctx, f.edition, sub)

		Convey("Then absence should count as failing", func() {
			So(rep.Alert, ShouldEqual, notify.KindRisk)
			So(rec.of(notify.KindRisk), ShouldHaveLength, 1)
		})
	})

	Convey("Given a passing submission", t, func() {
		f := newFixture(t, "Ala")
		f.subscribe(t, "Ala", "ala@example.com", "", "")
		f.report(t, "Ala", 1, model.StatusFail)
		sub := f.report(t, "Ala", 2, model.StatusPass)
		rec := &recorder{}
		rep := notify.NewTrigger(f.store, rec, notify.WithLogger(logger.Nop())).CheckAndSend(ctx, f.edition, sub)

		Convey("Then no alert should be raised", func() {
			So(rep.Alert, ShouldEqual, notify.Kind(""))
			So(rec.of(notify.KindRisk), ShouldBeEmpty)
		})
	})

	Convey("Given subscribers with different alert preferences", t, func() {
		f := newFixture(t, "Ala", "Bartek", "Celina")
		f.subscribe(t, "Ala", "ala@example.com", "false", "true")
		f.subscribe(t, "Bartek", "", "", "")
		rec := &recorder{}
		trig := notify.NewTrigger(f.store, rec, notify.WithLogger(logger.Nop()))

		Convey("When the opted-out participant is at risk", func() {
			f.report(t, "Ala", 1, model.StatusFail)
			rep := trig.CheckAndSend(ctx, f.edition, f.report(t, "Ala", 2, model.StatusFail))

			Convey("Then the alert should be skipped", func() {
				So(rep.Alert, ShouldEqual, notify.KindRisk)
				So(rec.of(notify.KindRisk), ShouldBeEmpty)
				So(rep.Skipped, ShouldContain, "Ala: alerts disabled")
			})
		})

		Convey("When participants without an address are at risk", func() {
			f.report(t, "Bartek", 1, model.StatusFail)
			r1 := trig.CheckAndSend(ctx, f.edition, f.report(t, "Bartek", 2, model.StatusFail))
			f.report(t, "Celina", 1, model.StatusFail)
			r2 := trig.CheckAndSend(ctx, f.edition, f.report(t, "Celina", 2, model.StatusFail))

			Convey("Then both alerts should be skipped", func() {
				So(rec.of(notify.KindRisk), ShouldBeEmpty)
				So(r1.Skipped, ShouldContain, "Bartek: no email")
				So(r2.Skipped, ShouldContain, "Celina: no email")
			})
		})
	})
}

func TestCheckAndSend_Broadcast(t *testing.T) {
	ctx := context.Background()

	Convey("Given two participants and mixed broadcast preferences", t, func() {
		f := newFixture(t, "Ala", "Bartek")
		f.subscribe(t, "Ala", "ala@example.com", "", "true")
		f.subscribe(t, "Bartek", "bartek@example.com", "", "")
		rec := &recorder{}
		trig := notify.NewTrigger(f.store, rec, notify.WithLogger(logger.Nop()))

		f.report(t, "Ala", 1, model.StatusPass)
		f.report(t, "Bartek", 1, model.StatusPass)
		f.report(t, "Ala", 2, model.StatusPass)

		Convey("When a submission completes a new official day", func() {
			sub := f.report(t, "Bartek", 2, model.StatusFail)
			rep := trig.CheckAndSend(ctx, f.edition, sub)

			Convey("Then standings should go only to explicit opt-ins", func() {
				So(rep.Err(), ShouldBeNil)
				So(rep.OfficialDay, ShouldEqual, 2)
				So(rep.Broadcast, ShouldBeTrue)
				jobs := rec.of(notify.KindBroadcast)
				So(jobs, ShouldHaveLength, 1)
				So(jobs[0].Message.To, ShouldResemble, []string{"ala@example.com"})
				So(jobs[0].Message.HTML, ShouldContainSubstring, "Bartek")
				So(jobs[0].Message.Subject, ShouldContainSubstring, "dniu 2")
			})

			Convey("And the trigger runs again for the same day", func() {
				trig.CheckAndSend(ctx, f.edition, sub)

				Convey("Then the broadcast should be sent again", func() {
					So(rec.of(notify.KindBroadcast), ShouldHaveLength, 2)
				})
			})
		})

		Convey("When a submission leaves the latest day incomplete", func() {
			sub := f.report(t, "Ala", 3, model.StatusPass)
			rep := trig.CheckAndSend(ctx, f.edition, sub)

			Convey("Then no broadcast should be sent", func() {
				So(rep.OfficialDay, ShouldEqual, 2)
				So(rep.Broadcast, ShouldBeFalse)
				So(rec.of(notify.KindBroadcast), ShouldBeEmpty)
			})
		})
	})

	Convey("Given an empty log", t, func() {
		f := newFixture(t, "Ala")
		rec := &recorder{}
		rep := notify.NewTrigger(f.store, rec, notify.WithLogger(logger.Nop())).
			CheckAndSend(ctx, f.edition, model.Submission{Participant: "Ala", Day: 1, Status: model.StatusPass})

		Convey("Then the fallback official day should not broadcast", func() {
			So(rep.Fallback, ShouldBeTrue)
			So(rep.OfficialDay, ShouldEqual, 1)
			So(rep.Broadcast, ShouldBeFalse)
		})
	})
}

func TestCheckAndSend_Failures(t *testing.T) {
	ctx := context.Background()

	Convey("Given a missing subscriber sheet", t, func() {
		f := newFixture(t, "Ala")
		f.report(t, "Ala", 1, model.StatusFail)
		sub := f.report(t, "Ala", 2, model.StatusFail)
		rec := &recorder{}
		trig := notify.NewTrigger(f.store, rec, notify.WithSubscriberSheet("Nope"), notify.WithLogger(logger.Nop()))

		Convey("Then the registry error should be captured, not returned", func() {
			rep := trig.CheckAndSend(ctx, f.edition, sub)
			So(rep.Alert, ShouldEqual, notify.KindRisk)
			So(errors.Is(rep.Err(), notify.ErrRegistry), ShouldBeTrue)
			So(errors.Is(rep.Err(), repository.ErrSheetNotFound), ShouldBeTrue)
			So(rec.jobs, ShouldBeEmpty)
		})
	})

	Convey("Given a full dispatcher", t, func() {
		f := newFixture(t, "Ala")
		f.subscribe(t, "Ala", "ala@example.com", "", "")
		f.report(t, "Ala", 1, model.StatusFail)
		sub := f.report(t, "Ala", 2, model.StatusFail)
		rec := &recorder{full: true}

		Convey("Then the dropped alert should be reported", func() {
			rep := notify.NewTrigger(f.store, rec, notify.WithLogger(logger.Nop())).CheckAndSend(ctx, f.edition, sub)
			So(errors.Is(rep.Err(), notify.ErrQueueFull), ShouldBeTrue)
			So(rep.Queued, ShouldBeEmpty)
		})
	})

	Convey("Given an edition whose log does not exist", t, func() {
		f := newFixture(t, "Ala")
		ed := f.edition
		ed.Sheet = "missing"

		Convey("Then the trigger should degrade to an error report", func() {
			rep := notify.NewTrigger(f.store, &recorder{}, notify.WithLogger(logger.Nop())).
				CheckAndSend(ctx, ed, model.Submission{Participant: "Ala", Day: 2, Status: model.StatusFail})
			So(errors.Is(rep.Err(), notify.ErrLog), ShouldBeTrue)
			So(rep.Alert, ShouldEqual, notify.Kind(""))
		})
	})
}

func TestParseRegistry(t *testing.T) {
	Convey("Given a registry sheet", t, func() {
		tbl := model.Table{
			Headers: notify.RegistryHeaders,
			Rows: [][]string{
				{"Ala", "ala@example.com", "TAK", "nie"},
				{"Bartek", "bartek@example.com", "?", "1"},
				{"", "ghost@example.com", "", ""},
				{"Ala", "ala2@example.com", "", "yes"},
			},
		}
		reg, err := notify.ParseRegistry(tbl)

		Convey("Then flags should parse and later rows win", func() {
			So(err, ShouldBeNil)
			ala, ok := reg.Lookup("Ala")
			So(ok, ShouldBeTrue)
			So(ala.Email, ShouldEqual, "ala2@example.com")
			So(ala.WantsAlerts(), ShouldBeTrue)
			bartek, _ := reg.Lookup("Bartek")
			So(bartek.RiskAlerts, ShouldBeNil)
			So(reg.BroadcastRecipients(), ShouldResemble, []string{"ala2@example.com", "bartek@example.com"})
		})
	})

	Convey("Given a registry without an email column", t, func() {
		_, err := notify.ParseRegistry(model.Table{Headers: []string{"participant"}})

		Convey("Then it should be rejected", func() {
			So(errors.Is(err, notify.ErrRegistry), ShouldBeTrue)
		})
	})
}
