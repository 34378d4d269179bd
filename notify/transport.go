/*
Package notify provides notification channels (email, SMS) and a composite
that fans a message out to several channels.

CHANNELS:
  Email:     Destination must be a bare email address
  SMS:       Destination must match ^\+?[1-9]\d{1,14}$, message <= 160 chars
  Composite: Succeeds if any channel succeeds; otherwise returns
             AllChannelsFailedError with every channel's failure

DELIVERY:
  Channels validate, then hand the message to a Transport. LogTransport
  only logs the message; nothing leaves the process.

USAGE:
  tr := notify.NewLogTransport(logger)
  n := notify.NewComposite(
      notify.NewEmail(notify.EmailSettings{Host: "smtp.example.com"}, tr),
      notify.NewSMS(notify.SMSSettings{APIKey: "key"}, tr),
  )
  ok, err := n.Send(ctx, "juan@example.com", "Hello")

SEE ALSO:
  - core/contracts.go: Notifier and Channel interfaces
  - payroll/system.go: Soft-fails on notification errors
*/
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Transport delivers an already validated message.
type Transport interface {
	Deliver(ctx context.Context, channel, destination, message string) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, channel, destination, message string) error

func (f TransportFunc) Deliver(ctx context.Context, channel, destination, message string) error {
	return f(ctx, channel, destination, message)
}

func orDiscard(tr Transport) Transport {
	if tr == nil {
		return NewLogTransport(zerolog.Nop())
	}
	return tr
}

// LogTransport simulates delivery by logging each message.
type LogTransport struct {
	logger zerolog.Logger
}

func NewLogTransport(logger zerolog.Logger) *LogTransport {
	return &LogTransport{logger: logger.With().Str("component", "notify").Logger()}
}

func (t *LogTransport) Deliver(ctx context.Context, channel, destination, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.logger.Info().
		Str("channel", channel).
		Str("destination", destination).
		Str("message", message).
		Msg("notification delivered (simulated)")
	return nil
}
