package services

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"github.com/safespace/safespace_backend/config"
)

// EmailService sends transactional email through the SendGrid SMTP relay.
// SendGrid authenticates SMTP with the literal username "apikey" and the API
// key as password, so the deployment secret plugs straight into the dialer.
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: "apikey",
		password: cfg.SendGridAPIKey,
		from:     cfg.EmailFrom,
	}
}

// Enabled reports whether an API key is configured. When false every Send is
// skipped by callers (missing-dependency handling, not an error).
func (s *EmailService) Enabled() bool {
	return s.password != ""
}

// Send delivers one email with plain-text and HTML bodies. fromName becomes
// the display name on the fixed From address ("Safe Space - Dr. X" in
// doctor-attributed mail); replyTo may be empty.
func (s *EmailService) Send(to, replyTo, fromName, subject, text, html string) error {
	if !s.Enabled() {
		return fmt.Errorf("email service not configured")
	}
	if fromName == "" {
		fromName = "Safe Space"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.from, fromName))
	m.SetHeader("To", to)
	if replyTo != "" {
		m.SetHeader("Reply-To", replyTo)
	}
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	if html != "" {
		m.AddAlternative("text/html", html)
	}

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	log.Printf("Email sent to %s: %s", to, subject)
	return nil
}
