package digest

import (
	"context"

	"go.uber.org/zap"

	"github.com/bizlink/digest-engine/internal/provider"
	"github.com/bizlink/digest-engine/internal/ratelimiter"
)

// RecipientResult records the delivery outcome for one recipient.
// A nil Err means the provider accepted the message.
type RecipientResult struct {
	Recipient string
	Err       error
}

// Dispatcher fans one rendered message out to each recipient, collecting
// per-recipient results. One recipient's failure is recorded and does not
// prevent delivery attempts to the remaining recipients. There is no retry
// loop here: retries belong to a later run re-attempting from the
// still-pending state.
type Dispatcher struct {
	mailer  provider.Mailer
	limiter *ratelimiter.Limiter
	from    string
	logger  *zap.Logger
}

func NewDispatcher(mailer provider.Mailer, limiter *ratelimiter.Limiter, from string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, limiter: limiter, from: from, logger: logger}
}

// Send attempts delivery to every recipient and returns one result per
// recipient in input order.
func (d *Dispatcher) Send(ctx context.Context, subject, body string, recipients []string) []RecipientResult {
	results := make([]RecipientResult, 0, len(recipients))
	for _, to := range recipients {
		if err := d.limiter.Wait(ctx); err != nil {
			// ctx cancelled while waiting; the remaining recipients were
			// never attempted and are recorded as failed.
			results = append(results, RecipientResult{Recipient: to, Err: err})
			continue
		}

		err := d.mailer.Send(ctx, provider.Message{
			From:     d.from,
			To:       to,
			Subject:  subject,
			HTMLBody: body,
		})
		if err != nil {
			d.logger.Warn("delivery failed",
				zap.String("recipient", to),
				zap.String("subject", subject),
				zap.Error(err),
			)
		}
		results = append(results, RecipientResult{Recipient: to, Err: err})
	}
	return results
}

func countFailures(results []RecipientResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
