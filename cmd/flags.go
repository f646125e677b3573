// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// binding maps a flag to its config key
type binding struct {
	key  string
	flag string
}

// bindFlags binds the flags of the executed command to their config keys.
// Commands sharing config keys bind on execution, so the flags of the
// running command take precedence.
func bindFlags(bindings ...binding) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		for _, b := range bindings {
			f := cmd.Flags().Lookup(b.flag)
			if f == nil {
				return fmt.Errorf("unknown flag %q", b.flag)
			}
			if err := viper.BindPFlag(b.key, f); err != nil {
				return fmt.Errorf("failed to bind flag %q: %w", b.flag, err)
			}
		}
		return nil
	}
}

// secondsFlag returns the duration of an int flag given in seconds and whether it was set.
func secondsFlag(cmd *cobra.Command, name string) (time.Duration, bool, error) {
	if !cmd.Flags().Changed(name) {
		return 0, false, nil
	}
	s, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, false, err
	}
	return time.Duration(s) * time.Second, true, nil
}
