package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/warp/payroll-engine/core"
)

// EmailSettings holds SMTP settings. They are carried for a real transport;
// LogTransport ignores them.
type EmailSettings struct {
	Host     string
	User     string
	Password string
}

// Email sends notifications to email addresses.
type Email struct {
	settings  EmailSettings
	transport Transport
}

// NewEmail returns an email channel. A nil transport discards messages.
func NewEmail(settings EmailSettings, transport Transport) *Email {
	return &Email{settings: settings, transport: orDiscard(transport)}
}

func (c *Email) Name() string { return "email" }

func (c *Email) Send(ctx context.Context, destination, message string) (bool, error) {
	if _, err := core.NormalizeEmail(destination); err != nil {
		return false, core.Invalid("destination", "%q is not a valid email address", destination)
	}
	if strings.TrimSpace(message) == "" {
		return false, core.Invalid("message", "cannot be empty")
	}
	if err := c.transport.Deliver(ctx, c.Name(), destination, message); err != nil {
		return false, fmt.Errorf("email channel: provider error: %w", err)
	}
	return true, nil
}
