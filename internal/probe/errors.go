// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"errors"
	"fmt"
)

var (
	// ErrPermission is returned when the raw ICMP socket cannot be opened
	// because the process lacks NET_RAW capabilities. It is not retryable.
	ErrPermission = errors.New("no NET_RAW capabilities, raw ICMP socket not available")
	// ErrMalformedReply is returned by [ParseReply] when a datagram is too
	// short for the headers its type requires or is not an ICMP datagram.
	ErrMalformedReply = errors.New("malformed reply")
	// ErrInvalidProtocol is returned for protocols other than icmp and udp.
	ErrInvalidProtocol = errors.New("invalid probe protocol")
)

// ErrInvalidRequest is returned when a [Request] cannot be sent.
type ErrInvalidRequest struct {
	Field  string
	Reason string
}

func (e ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid probe request field %q: %s", e.Field, e.Reason)
}

// malformed wraps [ErrMalformedReply] with details.
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedReply, fmt.Sprintf(format, args...))
}
