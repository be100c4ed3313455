package mail

import (
	"time"

	"golang.org/x/time/rate"
)

// SMTPOption applies a configuration option to the SMTPMailer.
type SMTPOption func(*SMTPMailer)

// WithAuth sets PLAIN auth credentials. Empty username disables auth.
func WithAuth(username, password string) SMTPOption {
	return func(m *SMTPMailer) {
		m.username = username
		m.password = password
	}
}

// WithRate caps sends per second. Non-positive values keep the default.
func WithRate(perSecond float64) SMTPOption {
	return func(m *SMTPMailer) {
		if perSecond > 0 {
			m.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithSendFunc replaces smtp.SendMail.
func WithSendFunc(fn SendFunc) SMTPOption {
	return func(m *SMTPMailer) {
		if fn != nil {
			m.send = fn
		}
	}
}

// WithClock replaces time.Now for the Date header.
func WithClock(now func() time.Time) SMTPOption {
	return func(m *SMTPMailer) {
		if now != nil {
			m.now = now
		}
	}
}
