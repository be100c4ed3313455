package notify

import "github.com/okian/poprzeczka/pkg/logger"

// Option applies a configuration option to the Trigger.
type Option func(*Trigger)

// WithSubscriberSheet sets the registry sheet name. Default "Emails".
func WithSubscriberSheet(name string) Option {
	return func(t *Trigger) {
		if name != "" {
			t.subscriberSheet = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Trigger) {
		if l != nil {
			t.logger = l
		}
	}
}
