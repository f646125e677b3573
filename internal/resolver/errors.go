// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package resolver

import "errors"

// ErrResolve is returned when a target cannot be resolved to an IPv4 address.
var ErrResolve = errors.New("failed to resolve target")
