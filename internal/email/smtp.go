package email

import (
	"fmt"
	"html"

	gomail "gopkg.in/gomail.v2"

	"servicesbladi_backend/internal/config"
)

// SMTPProvider sends mail through the SMTP relay configured in
// config.Email. Each Send dials its own connection, acceptable at the
// current notification volume.
type SMTPProvider struct {
	dialer    *gomail.Dialer
	fromEmail string
	fromName  string
}

func NewSMTPProvider(cfg *config.Config) *SMTPProvider {
	dialer := gomail.NewDialer(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUsername,
		cfg.Email.SMTPPassword,
	)
	return &SMTPProvider{
		dialer:    dialer,
		fromEmail: cfg.Email.FromEmail,
		fromName:  cfg.Email.FromName,
	}
}

// NewProviderFromConfig returns the SMTP provider when email is enabled
// and a configured host exists, the noop provider otherwise.
func NewProviderFromConfig(cfg *config.Config) Provider {
	if !cfg.Email.Enabled || cfg.Email.SMTPHost == "" {
		return NewNoopProvider()
	}
	return NewSMTPProvider(cfg)
}

func (p *SMTPProvider) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.fromEmail, p.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", renderBody(subject, body))

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

func (p *SMTPProvider) Close() error { return nil }

func renderBody(title, content string) string {
	return fmt.Sprintf(
		`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">`+
			`<h2 style="color:#1a5276">%s</h2>`+
			`<p>%s</p>`+
			`<hr style="border:none;border-top:1px solid #eee">`+
			`<p style="color:#888;font-size:12px">ServicesBLADI</p>`+
			`</div>`,
		html.EscapeString(title), html.EscapeString(content))
}
