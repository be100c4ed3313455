package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const defaultRatePerSecond = 1.0

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends through an SMTP relay, never faster than the configured rate.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string

	limiter *rate.Limiter
	send    SendFunc
	now     func() time.Time
}

// NewSMTPMailer creates an SMTP mailer for host:port.
func NewSMTPMailer(host string, port int, from string, opts ...SMTPOption) *SMTPMailer {
	m := &SMTPMailer{
		host:    host,
		port:    port,
		from:    from,
		limiter: rate.NewLimiter(rate.Limit(defaultRatePerSecond), 1),
		send:    smtp.SendMail,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send implements Mailer. It blocks until the rate limiter admits the message
// or ctx is done.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: throttled: %w", ErrSend, err)
	}

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	if err := m.send(addr, auth, m.from, msg.To, Compose(m.from, msg, m.now())); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSend, addr, err)
	}
	return nil
}
