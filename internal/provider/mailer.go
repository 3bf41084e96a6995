package provider

import "context"

// Message is one outgoing email: a single recipient per provider call.
// The dispatcher fans a rendered body out to each recipient separately so
// one rejected address never blocks the rest of the batch.
type Message struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html"`
}

// Mailer abstracts the external delivery provider. Any response other than
// explicit success is a delivery failure for that recipient only; the
// provider is treated as a best-effort boundary with no internal retries.
// Mocking this interface in tests gives full control over provider
// behaviour without making real HTTP calls.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
