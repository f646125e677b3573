// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"

	"github.com/telekom/netdiag/internal/probe"
	"github.com/telekom/netdiag/internal/resolver"
)

// ErrInvalidOptions is returned when the [Options] are invalid.
var ErrInvalidOptions = errors.New("invalid traceroute options")

// isFatal reports whether err must abort the walk.
// A missing raw socket privilege or an unresolvable target make
// every further probe pointless.
func isFatal(err error) bool {
	return errors.Is(err, probe.ErrPermission) ||
		errors.Is(err, resolver.ErrResolve) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
