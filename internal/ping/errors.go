// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package ping

import "errors"

// ErrInvalidOptions is returned when the [Options] are invalid.
var ErrInvalidOptions = errors.New("invalid ping options")
