// Package service orchestrates the sheet store, the fold/rank/stage pipeline,
// notifications and the historical archive for the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/poprzeczka/internal/adapters/mail"
	"github.com/okian/poprzeczka/internal/adapters/mq/queue"
	"github.com/okian/poprzeczka/internal/adapters/mq/worker"
	"github.com/okian/poprzeczka/internal/adapters/repository"
	"github.com/okian/poprzeczka/internal/domain/dedupe"
	"github.com/okian/poprzeczka/internal/domain/fold"
	"github.com/okian/poprzeczka/internal/domain/history"
	"github.com/okian/poprzeczka/internal/domain/model"
	"github.com/okian/poprzeczka/internal/domain/types"
	"github.com/okian/poprzeczka/internal/notify"
	"github.com/okian/poprzeczka/pkg/logger"
	"github.com/okian/poprzeczka/pkg/metrics"
)

// Default sheet names and sizes.
const (
	DefaultAuditSheet      = "Log"
	DefaultSubscriberSheet = "Emails"

	defaultWorkerCount = 2
	defaultQueueSize   = 1000
	defaultDedupeSize  = 10_000
)

// AuditHeaders is the column layout of the audit log.
var AuditHeaders = []string{"id", "timestamp", "submitter", "edition", "participant", "day", "status", "notes"}

// Service implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	mailer  mail.Mailer
	archive history.Archive

	editions        []model.Edition
	byID            map[string]model.Edition
	auditSheet      string
	subscriberSheet string

	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	trigger *notify.Trigger

	workerCount int
	queueSize   int
	dedupeSize  int

	now     func() time.Time
	started bool
	logger  logger.Logger
}

// New constructs a Service over store, sending mail through mailer.
func New(store repository.Store, mailer mail.Mailer, opts ...Option) *Service {
	s := &Service{
		store:           store,
		mailer:          mailer,
		auditSheet:      DefaultAuditSheet,
		subscriberSheet: DefaultSubscriberSheet,
		workerCount:     defaultWorkerCount,
		queueSize:       defaultQueueSize,
		dedupeSize:      defaultDedupeSize,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.OrGlobal(s.logger).Named("service")

	s.byID = make(map[string]model.Edition, len(s.editions))
	for _, e := range s.editions {
		s.byID[e.ID] = e
	}
	return s
}

// Start creates missing sheets and starts the mail workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting service...")

	for _, e := range s.editions {
		if err := s.store.EnsureSheet(ctx, e.Sheet, fold.Headers); err != nil {
			return fmt.Errorf("%w: edition %s: %w", ErrStore, e.ID, err)
		}
	}
	if err := s.store.EnsureSheet(ctx, s.auditSheet, AuditHeaders); err != nil {
		return fmt.Errorf("%w: audit sheet: %w", ErrStore, err)
	}
	if err := s.store.EnsureSheet(ctx, s.subscriberSheet, notify.RegistryHeaders); err != nil {
		return fmt.Errorf("%w: subscriber sheet: %w", ErrStore, err)
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.seedDeduper(ctx)
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize), queue.WithLogger(s.logger))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.mailer, worker.WithLogger(s.logger))
	// Workers outlive the start request; Stop ends them.
	s.pool.Start(context.WithoutCancel(ctx))
	s.trigger = notify.NewTrigger(s.store, s.queue,
		notify.WithSubscriberSheet(s.subscriberSheet),
		notify.WithLogger(s.logger),
	)

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("editions", len(s.editions)),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains the mail queue and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping service...")

	err := s.pool.Shutdown(ctx)
	s.started = false
	s.logger.Info(ctx, "service stopped")
	return err
}

// seedDeduper records the submission IDs already in the edition logs so a
// retry after a restart is still recognised. Logs are replayed oldest first;
// when they hold more IDs than the deduper keeps, the newest survive.
// Unreadable logs are skipped.
func (s *Service) seedDeduper(ctx context.Context) {
	seeded := 0
	for _, e := range s.editions {
		t, err := s.store.ReadAll(ctx, e.Sheet)
		if err != nil {
			s.logger.Warn(ctx, "cannot seed submission ids", logger.String("edition", e.ID), logger.Error(err))
			continue
		}
		col, ok := t.Index()[fold.ColumnID]
		if !ok {
			continue
		}
		for _, row := range t.Rows {
			if col < len(row) && row[col] != "" {
				s.deduper.SeenAndRecord(ctx, row[col])
				seeded++
			}
		}
	}
	if seeded > 0 {
		s.logger.Debug(ctx, "seeded submission ids", logger.Int("count", seeded))
	}
}

// Editions lists the configured editions in configuration order.
func (s *Service) Editions() []types.EditionView {
	out := make([]types.EditionView, 0, len(s.editions))
	for _, e := range s.editions {
		out = append(out, types.EditionView{ID: e.ID, Label: e.Label, StartDate: e.StartDate, Roster: e.Roster})
	}
	return out
}

func (s *Service) edition(id string) (model.Edition, error) {
	e, ok := s.byID[id]
	if !ok {
		return model.Edition{}, fmt.Errorf("%w: %s", ErrUnknownEdition, id)
	}
	return e, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"editions":    len(s.editions),
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if s.started {
		queueLen := s.queue.Len(context.Background())
		stats["queueLength"] = queueLen
		stats["seenSubmissions"] = s.deduper.Size()
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
