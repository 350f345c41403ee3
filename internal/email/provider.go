package email

import (
	"sync"

	"taskhub_backend/internal/config"

	"gopkg.in/gomail.v2"
)

// Provider sends transactional mail. Implementations must be safe for
// concurrent use.
type Provider interface {
	Send(to, subject, body string) error
}

// SMTPProvider delivers mail through the configured SMTP relay.
type SMTPProvider struct {
	cfg *config.Config
}

func NewSMTPProvider(cfg *config.Config) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", p.cfg.Email.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		p.cfg.Email.SMTPHost,
		p.cfg.Email.SMTPPort,
		p.cfg.Email.SMTPUsername,
		p.cfg.Email.SMTPPassword,
	)

	return d.DialAndSend(m)
}

// MockProvider records sent messages instead of delivering them.
type MockProvider struct {
	mu   sync.Mutex
	Sent []MockMessage
	Err  error
}

type MockMessage struct {
	To      string
	Subject string
	Body    string
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Send(to, subject, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Sent = append(p.Sent, MockMessage{To: to, Subject: subject, Body: body})
	return nil
}

// Messages returns a copy of everything sent so far.
func (p *MockProvider) Messages() []MockMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]MockMessage, len(p.Sent))
	copy(out, p.Sent)
	return out
}
