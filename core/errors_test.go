package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/payroll-engine/core"
)

func TestStructuredErrors_UnwrapToSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{&core.ValidationError{Field: "email", Message: "bad"}, core.ErrValidation},
		{&core.NotFoundError{Kind: "employee", Key: "3"}, core.ErrNotFound},
		{&core.DuplicateEmailError{Email: "a@b.com", ExistingID: 1}, core.ErrDuplicateEmail},
		{&core.ConfigError{Message: "no channels"}, core.ErrConfig},
		{&core.AllChannelsFailedError{}, core.ErrAllChannelsFailed},
	}
	for _, tt := range tests {
		wrapped := fmt.Errorf("context: %w", tt.err)
		assert.ErrorIs(t, wrapped, tt.sentinel)
	}
}

func TestAllChannelsFailedError_MentionsEveryFailure(t *testing.T) {
	err := &core.AllChannelsFailedError{Failures: []core.ChannelFailure{
		{Channel: "email", Err: errors.New("invalid address")},
		{Channel: "sms", Err: errors.New("invalid phone")},
	}}

	msg := err.Error()
	assert.Contains(t, msg, "(2)")
	assert.Contains(t, msg, "email: invalid address | sms: invalid phone")
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, core.IsClientError(&core.ValidationError{}))
	assert.True(t, core.IsClientError(&core.DuplicateEmailError{}))
	assert.False(t, core.IsClientError(&core.NotFoundError{}))
	assert.True(t, core.IsNotFound(fmt.Errorf("x: %w", &core.NotFoundError{})))
	assert.False(t, core.IsNotFound(errors.New("boom")))
}

func TestDuplicateEmailError_Message(t *testing.T) {
	assert.EqualError(t, &core.DuplicateEmailError{Email: "a@b.com", ExistingID: 7},
		"email a@b.com is already registered to employee 7")
	assert.EqualError(t, &core.DuplicateEmailError{Email: "a@b.com"},
		"email a@b.com is already registered")
}
