// Package mail delivers HTML email notifications.
package mail

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/okian/poprzeczka/pkg/logger"
)

// Message is one outgoing email.
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Validate reports whether the message can be sent.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return fmt.Errorf("%w: no recipients", ErrInvalidMessage)
	}
	for _, to := range m.To {
		if strings.TrimSpace(to) == "" || !strings.Contains(to, "@") {
			return fmt.Errorf("%w: bad recipient %q", ErrInvalidMessage, to)
		}
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: empty subject", ErrInvalidMessage)
	}
	return nil
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// Compose renders m as an RFC 5322 message with an HTML body.
func Compose(from string, m Message, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(m.To, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", m.Subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.HTML, "\n", "\r\n"))
	return []byte(b.String())
}

// LogMailer logs messages instead of sending them. Used for dry runs.
type LogMailer struct {
	logger logger.Logger
}

// NewLogMailer creates a dry-run mailer.
func NewLogMailer(l logger.Logger) *LogMailer {
	return &LogMailer{logger: logger.OrGlobal(l).Named("mail")}
}

// Send implements Mailer.
func (l *LogMailer) Send(ctx context.Context, m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	l.logger.Info(ctx, "dry run: mail not sent",
		logger.Strings("to", m.To),
		logger.String("subject", m.Subject),
		logger.Int("bytes", len(m.HTML)),
	)
	return nil
}
