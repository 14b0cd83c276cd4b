package email

// Provider is the outbound mail transport. Callers treat delivery as
// best-effort and must not fail their own operation on a send error.
type Provider interface {
	Send(to, subject, body string) error
	Close() error
}

// NoopProvider drops every message. Used when email is disabled in
// config and in tests.
type NoopProvider struct{}

func NewNoopProvider() *NoopProvider { return &NoopProvider{} }

func (NoopProvider) Send(to, subject, body string) error { return nil }

func (NoopProvider) Close() error { return nil }
