package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	cases := []struct {
		err  error
		want domain.Code
	}{
		{nil, domain.CodeOK},
		{&domain.StepError{Code: domain.CodeFieldNotFound}, domain.CodeFieldNotFound},
		{fmt.Errorf("read: %w", domain.ErrCancelled), domain.CodeCancelled},
		{context.Canceled, domain.CodeCancelled},
		{domain.ErrConnectTimeout, domain.CodeConnectTimeout},
		{fmt.Errorf("x: %w", domain.ErrResponseTimeout), domain.CodeResponseTimeout},
		{domain.ErrPeerDisconnected, domain.CodePeerDisconnected},
		{&domain.NegotiationError{Option: "BINARY"}, domain.CodeNegotiationFailed},
		{domain.ErrNegotiationBudget, domain.CodeNegotiationFailed},
		{&domain.DecodeError{Offset: 3}, domain.CodeProtocolError},
		{&domain.ConfigError{Source: "x", Problems: []string{"y"}}, domain.CodeConfigError},
		{errors.New("boom"), domain.CodeIOError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, domain.CodeOf(tc.err), "%v", tc.err)
	}
}

func TestErrCancelled_IsContextCanceled(t *testing.T) {
	assert.ErrorIs(t, domain.ErrCancelled, context.Canceled)
}

func TestCode_Retryable(t *testing.T) {
	assert.True(t, domain.CodeScreenMismatch.Retryable())
	assert.True(t, domain.CodeAssertionFailed.Retryable())
	assert.False(t, domain.CodeResponseTimeout.Retryable())
	assert.False(t, domain.CodeUnresolvedPlaceholder.Retryable())
}

func TestHostHooks_Join(t *testing.T) {
	var calls []string
	a := domain.HostHooks{OnScreenEnter: func(context.Context, *domain.ScreenEvent) { calls = append(calls, "a") }}
	b := domain.HostHooks{OnScreenEnter: func(context.Context, *domain.ScreenEvent) { calls = append(calls, "b") }}
	joined := a.Join(b)
	joined.OnScreenEnter(context.Background(), &domain.ScreenEvent{})
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Nil(t, joined.OnTransition)
}
