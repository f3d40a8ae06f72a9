package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledger/internal/core"
)

func settingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get KEY",
		Short: "Print a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if key == core.SettingDefaultCurrency {
				v, err := a.svc.Settings.DefaultCurrency(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}

			v, ok, err := a.svc.Settings.Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("setting %q is not set", key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Write a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.Settings.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "%s updated", args[0])
			return nil
		},
	})

	return cmd
}
