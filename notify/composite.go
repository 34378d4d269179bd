package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/warp/payroll-engine/core"
)

var errUnsuccessful = errors.New("reported unsuccessful delivery")

// Composite sends through every channel it holds. One success is enough.
type Composite struct {
	mu       sync.RWMutex
	channels []core.Channel
}

// NewComposite returns a composite over channels. Nil channels are skipped.
func NewComposite(channels ...core.Channel) *Composite {
	c := &Composite{}
	for _, ch := range channels {
		if ch != nil {
			c.channels = append(c.channels, ch)
		}
	}
	return c
}

// Add appends a channel. A nil channel is a ConfigError.
func (c *Composite) Add(ch core.Channel) error {
	if ch == nil {
		return &core.ConfigError{Message: "composite notifier: nil channel"}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels = append(c.channels, ch)
	return nil
}

// Len returns the number of channels.
func (c *Composite) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.channels)
}

func (c *Composite) Name() string { return "composite" }

// Send tries every channel in order, capturing each failure. It returns
// true if at least one channel delivered, a ConfigError if there are no
// channels, and an AllChannelsFailedError otherwise.
func (c *Composite) Send(ctx context.Context, destination, message string) (bool, error) {
	c.mu.RLock()
	channels := make([]core.Channel, len(c.channels))
	copy(channels, c.channels)
	c.mu.RUnlock()

	if len(channels) == 0 {
		return false, &core.ConfigError{Message: "composite notifier has no channels"}
	}

	successes := 0
	var failures []core.ChannelFailure
	for _, ch := range channels {
		ok, err := ch.Send(ctx, destination, message)
		switch {
		case err != nil:
			failures = append(failures, core.ChannelFailure{Channel: ch.Name(), Err: err})
		case !ok:
			failures = append(failures, core.ChannelFailure{Channel: ch.Name(), Err: errUnsuccessful})
		default:
			successes++
		}
	}

	if successes > 0 {
		return true, nil
	}
	return false, &core.AllChannelsFailedError{Failures: failures}
}

// =============================================================================
// BUILDING CHANNELS FROM CONFIG
// =============================================================================

// Channel kinds accepted by Build.
const (
	KindEmail = "email"
	KindSMS   = "sms"
	KindBoth  = "both"
)

// Settings groups the settings of every channel.
type Settings struct {
	Email EmailSettings
	SMS   SMSSettings
}

// Build returns the channel for kind: "email", "sms", or "both" (a
// composite of email then SMS).
func Build(kind string, s Settings, tr Transport) (core.Channel, error) {
	switch kind {
	case KindEmail:
		return NewEmail(s.Email, tr), nil
	case KindSMS:
		return NewSMS(s.SMS, tr), nil
	case KindBoth:
		return NewComposite(NewEmail(s.Email, tr), NewSMS(s.SMS, tr)), nil
	default:
		return nil, &core.ConfigError{Message: fmt.Sprintf("unknown notification channel %q", kind)}
	}
}
