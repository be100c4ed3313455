// Package notify decides which emails a new submission triggers: a risk or
// elimination alert for the submitter, and a standings broadcast when the
// submission completes a new official day.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/poprzeczka/internal/adapters/mail"
	"github.com/okian/poprzeczka/internal/adapters/mq/queue"
	"github.com/okian/poprzeczka/internal/domain/fold"
	"github.com/okian/poprzeczka/internal/domain/model"
	"github.com/okian/poprzeczka/internal/domain/ranking"
	"github.com/okian/poprzeczka/internal/domain/stage"
	"github.com/okian/poprzeczka/pkg/logger"
	"github.com/okian/poprzeczka/pkg/metrics"
)

const defaultSubscriberSheet = "Emails"

// Kind names a notification type.
type Kind string

// Notification kinds.
const (
	KindRisk        Kind = "risk"
	KindElimination Kind = "elimination"
	KindBroadcast   Kind = "broadcast"
)

// Reader is the read side of the sheet store.
type Reader interface {
	ReadAll(ctx context.Context, sheet string) (model.Table, error)
}

// Dispatcher accepts mail jobs without blocking.
type Dispatcher interface {
	Enqueue(ctx context.Context, j queue.Job) bool
}

// Notice describes one queued email.
type Notice struct {
	Kind  Kind     `json:"kind"`
	JobID string   `json:"job_id"`
	To    []string `json:"to"`
}

// Report summarises one CheckAndSend run.
type Report struct {
	Alert       Kind     `json:"alert,omitempty"`
	OfficialDay int      `json:"official_day"`
	Fallback    bool     `json:"fallback"`
	Broadcast   bool     `json:"broadcast"`
	Queued      []Notice `json:"queued,omitempty"`
	Skipped     []string `json:"skipped,omitempty"`
	Errors      []error  `json:"-"`
}

// Err joins every captured error, or returns nil.
func (r Report) Err() error { return errors.Join(r.Errors...) }

// Trigger runs the alert and broadcast paths for a submission.
type Trigger struct {
	store           Reader
	dispatcher      Dispatcher
	subscriberSheet string
	logger          logger.Logger
}

// NewTrigger creates a Trigger reading sheets from store and handing mail to d.
func NewTrigger(store Reader, d Dispatcher, opts ...Option) *Trigger {
	t := &Trigger{
		store:           store,
		dispatcher:      d,
		subscriberSheet: defaultSubscriberSheet,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logger.OrGlobal(t.logger).Named("notify")
	return t
}

// CheckAndSend re-reads and folds the edition log, then queues whatever the
// submission triggers. It never fails: problems land in Report.Errors and the
// log. Broadcasts are not deduplicated; calling it twice for the same day
// queues the standings twice.
func (t *Trigger) CheckAndSend(ctx context.Context, ed model.Edition, sub model.Submission) Report {
	var rep Report

	table, err := t.store.ReadAll(ctx, ed.Sheet)
	if err != nil {
		t.fail(ctx, &rep, fmt.Errorf("%w: %s: %w", ErrLog, ed.Sheet, err))
		return rep
	}
	res, err := fold.Process(table, ed.Roster)
	if err != nil {
		t.fail(ctx, &rep, fmt.Errorf("%w: %s: %w", ErrLog, ed.Sheet, err))
		return rep
	}

	// The registry is read at most once, and only if some path needs it.
	var (
		reg    *Registry
		loaded bool
	)
	registry := func() (*Registry, bool) {
		if loaded {
			return reg, reg != nil
		}
		loaded = true
		rt, err := t.store.ReadAll(ctx, t.subscriberSheet)
		if err != nil {
			t.fail(ctx, &rep, fmt.Errorf("%w: %w", ErrRegistry, err))
			return nil, false
		}
		r, err := ParseRegistry(rt)
		if err != nil {
			t.fail(ctx, &rep, err)
			return nil, false
		}
		reg = &r
		return reg, true
	}

	t.alert(ctx, &rep, ed, res.Days, sub, registry)
	t.broadcast(ctx, &rep, ed, res, sub, registry)
	return rep
}

func (t *Trigger) alert(ctx context.Context, rep *Report, ed model.Edition, days model.DayStatusMap, sub model.Submission, registry func() (*Registry, bool)) {
	// The folded entry decides; a later correction may already have replaced
	// the reported status.
	status := sub.Status
	if e, ok := days.Entry(sub.Participant, sub.Day); ok {
		status = e.Status
	}
	if !status.Failing() || sub.Day < 2 || !days.Failing(sub.Participant, sub.Day-1) {
		return
	}

	kind := KindRisk
	if sub.Day >= ranking.StrikeLimit && days.Failing(sub.Participant, sub.Day-2) {
		kind = KindElimination
	}
	rep.Alert = kind

	reg, ok := registry()
	if !ok {
		return
	}
	s, found := reg.Lookup(sub.Participant)
	switch {
	case !found || s.Email == "":
		t.skip(ctx, rep, kind, sub.Participant+": no email")
		return
	case !s.WantsAlerts():
		t.skip(ctx, rep, kind, sub.Participant+": alerts disabled")
		return
	}

	subject := fmt.Sprintf("%s: dwa niezaliczone dni z rzędu", ed.Label)
	if kind == KindElimination {
		subject = fmt.Sprintf("%s: eliminacja", ed.Label)
	}
	body, err := render(string(kind), alertData{
		Participant: sub.Participant,
		Edition:     ed.Label,
		Day:         sub.Day,
		PrevDay:     sub.Day - 1,
		FirstDay:    sub.Day - 2,
	})
	if err != nil {
		t.fail(ctx, rep, err)
		return
	}
	t.enqueue(ctx, rep, kind, mail.Message{To: []string{s.Email}, Subject: subject, HTML: body})
}

func (t *Trigger) broadcast(ctx context.Context, rep *Report, ed model.Edition, res fold.Result, sub model.Submission, registry func() (*Registry, bool)) {
	st := stage.LastComplete(res.Days, res.MaxDay, ed.Roster)
	rep.OfficialDay = st.Official
	rep.Fallback = st.Fallback
	if st.Fallback || st.Official != sub.Day {
		return
	}
	rep.Broadcast = true

	reg, ok := registry()
	if !ok {
		return
	}
	recipients := reg.BroadcastRecipients()
	if len(recipients) == 0 {
		t.skip(ctx, rep, KindBroadcast, "no broadcast subscribers")
		return
	}

	standings := ranking.Calculate(res.Days, st.Official, model.ModeOfficial, ed.Roster)
	body, err := render(string(KindBroadcast), broadcastData{Edition: ed.Label, Day: st.Official, Rows: standings.Rows})
	if err != nil {
		t.fail(ctx, rep, err)
		return
	}
	subject := fmt.Sprintf("%s: oficjalne wyniki po dniu %d", ed.Label, st.Official)
	for _, to := range recipients {
		t.enqueue(ctx, rep, KindBroadcast, mail.Message{To: []string{to}, Subject: subject, HTML: body})
	}
}

func (t *Trigger) enqueue(ctx context.Context, rep *Report, kind Kind, msg mail.Message) {
	j := queue.NewJob(string(kind), msg)
	if !t.dispatcher.Enqueue(ctx, j) {
		metrics.RecordNotification(string(kind), "dropped")
		t.fail(ctx, rep, fmt.Errorf("%w: %s to %s", ErrQueueFull, kind, strings.Join(msg.To, ",")))
		return
	}
	metrics.RecordNotification(string(kind), "queued")
	rep.Queued = append(rep.Queued, Notice{Kind: kind, JobID: j.ID, To: msg.To})
	t.logger.Info(ctx, "notification queued",
		logger.String("kind", string(kind)),
		logger.String("job_id", j.ID),
		logger.Strings("to", msg.To),
	)
}

func (t *Trigger) skip(ctx context.Context, rep *Report, kind Kind, reason string) {
	metrics.RecordNotification(string(kind), "skipped")
	rep.Skipped = append(rep.Skipped, reason)
	t.logger.Debug(ctx, "notification skipped", logger.String("kind", string(kind)), logger.String("reason", reason))
}

func (t *Trigger) fail(ctx context.Context, rep *Report, err error) {
	metrics.RecordErrorByComponent("notify", errorType(err))
	rep.Errors = append(rep.Errors, err)
	t.logger.Warn(ctx, "notification check degraded", logger.Error(err))
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrQueueFull):
		return "queue_full"
	case errors.Is(err, ErrRegistry):
		return "registry"
	case errors.Is(err, ErrTemplate):
		return "template"
	default:
		return "edition_log"
	}
}
