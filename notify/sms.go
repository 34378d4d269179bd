package notify

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/warp/payroll-engine/core"
)

// MaxSMSLength is the longest message the SMS channel accepts, in characters.
const MaxSMSLength = 160

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// SMSSettings holds provider API settings.
type SMSSettings struct {
	APIKey string
	APIURL string
}

// SMS sends notifications to phone numbers.
type SMS struct {
	settings  SMSSettings
	transport Transport
}

// NewSMS returns an SMS channel. A nil transport discards messages.
func NewSMS(settings SMSSettings, transport Transport) *SMS {
	return &SMS{settings: settings, transport: orDiscard(transport)}
}

func (c *SMS) Name() string { return "sms" }

func (c *SMS) Send(ctx context.Context, destination, message string) (bool, error) {
	if !phonePattern.MatchString(destination) {
		return false, core.Invalid("destination", "%q is not a valid phone number", destination)
	}
	if strings.TrimSpace(message) == "" {
		return false, core.Invalid("message", "cannot be empty")
	}
	if utf8.RuneCountInString(message) > MaxSMSLength {
		return false, core.Invalid("message", "cannot exceed %d characters", MaxSMSLength)
	}
	if err := c.transport.Deliver(ctx, c.Name(), destination, message); err != nil {
		return false, fmt.Errorf("sms channel: provider error: %w", err)
	}
	return true, nil
}
