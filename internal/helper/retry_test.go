// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetry(t *testing.T) {
	errTransient := errors.New("transient")

	tests := []struct {
		name      string
		failures  int
		rc        RetryConfig
		wantCalls int
		wantErr   bool
	}{
		{
			name:      "succeeds first time",
			failures:  0,
			rc:        RetryConfig{Count: 3, Delay: time.Millisecond},
			wantCalls: 1,
		},
		{
			name:      "succeeds after two failures",
			failures:  2,
			rc:        RetryConfig{Count: 3, Delay: time.Millisecond},
			wantCalls: 3,
		},
		{
			name:      "gives up after count retries",
			failures:  10,
			rc:        RetryConfig{Count: 2, Delay: time.Millisecond},
			wantCalls: 3,
			wantErr:   true,
		},
		{
			name:      "no retries configured",
			failures:  1,
			rc:        RetryConfig{},
			wantCalls: 1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			effector := func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return errTransient
				}
				return nil
			}

			err := Retry(effector, tt.rc)(t.Context())
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				assert.ErrorIs(t, err, errTransient)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	calls := 0
	effector := func(context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	}

	err := Retry(effector, RetryConfig{Count: 5, Delay: time.Hour})(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestGetExpBackoff(t *testing.T) {
	tests := []struct {
		iteration int
		want      time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, getExpBackoff(time.Second, tt.iteration), "iteration %d", tt.iteration)
	}
}
