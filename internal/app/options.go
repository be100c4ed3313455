package service

import (
	"time"

	"github.com/okian/poprzeczka/internal/domain/history"
	"github.com/okian/poprzeczka/internal/domain/model"
	"github.com/okian/poprzeczka/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEditions sets the configured editions. Order is kept for listings.
func WithEditions(editions ...model.Edition) Option {
	return func(s *Service) {
		s.editions = append(s.editions, editions...)
	}
}

// WithArchive sets the historical archive.
func WithArchive(a history.Archive) Option {
	return func(s *Service) {
		s.archive = a
	}
}

// WithAuditSheet sets the audit log sheet name.
func WithAuditSheet(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.auditSheet = name
		}
	}
}

// WithSubscriberSheet sets the subscriber registry sheet name.
func WithSubscriberSheet(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.subscriberSheet = name
		}
	}
}

// WithWorkerCount sets the number of mail workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the mail queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submission IDs are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithClock replaces time.Now for submission timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
