// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import "fmt"

// ErrInvalidConfig is returned when a field of a configuration section is invalid.
type ErrInvalidConfig struct {
	Section string
	Field   string
	Reason  string
}

func (e ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid %s.%s: %s", e.Section, e.Field, e.Reason)
}
