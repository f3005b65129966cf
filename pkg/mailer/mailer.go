package mailer

import (
	"fmt"
	"sync"

	"github.com/booktime/booktime/config"
	"github.com/booktime/booktime/pkg/logger"
	"gopkg.in/gomail.v2"
)

// Message is a plain-text email.
type Message struct {
	Subject string
	Body    string
	From    string
	To      []string
}

type Mailer interface {
	Send(msg Message) error
}

// New returns an SMTP mailer when a host is configured, otherwise a console
// mailer that only logs outgoing messages.
func New(cfg *config.MailConfig) Mailer {
	if cfg.SMTPHost == "" {
		logger.Info("SMTP host not configured, emails will be logged only")
		return &ConsoleMailer{}
	}
	return NewSMTPMailer(cfg)
}

type SMTPMailer struct {
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

func (m *SMTPMailer) Send(msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mail %q has no recipients", msg.Subject)
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", msg.From)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)

	if err := m.dialer.DialAndSend(gm); err != nil {
		logger.Error("Failed to send email", err, map[string]interface{}{
			"subject": msg.Subject,
			"to":      msg.To,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Debug("Email sent", map[string]interface{}{
		"subject": msg.Subject,
		"to":      msg.To,
	})
	return nil
}

// ConsoleMailer writes messages to the log instead of sending them.
type ConsoleMailer struct{}

func (m *ConsoleMailer) Send(msg Message) error {
	logger.Info("[DEV MODE] email not sent", map[string]interface{}{
		"subject": msg.Subject,
		"from":    msg.From,
		"to":      msg.To,
		"body":    msg.Body,
	})
	return nil
}

// MemoryMailer keeps sent messages in an outbox; used by tests.
type MemoryMailer struct {
	mu     sync.Mutex
	outbox []Message
	Err    error
}

func NewMemoryMailer() *MemoryMailer {
	return &MemoryMailer{}
}

func (m *MemoryMailer) Send(msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.outbox = append(m.outbox, msg)
	return nil
}

// Outbox returns a copy of the messages sent so far.
func (m *MemoryMailer) Outbox() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.outbox))
	copy(out, m.outbox)
	return out
}

func (m *MemoryMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outbox = nil
}
