package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fundfinder-engine/internal/secrets"
)

var adminTokenCmd = &cobra.Command{
	Use:   "admin-token",
	Short: "Manage the token guarding admin endpoints",
}

var adminTokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store a token in the OS keychain (generated when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var tok string
		if len(args) == 1 {
			tok = args[0]
		} else {
			var err error
			if tok, err = secrets.NewAdminToken(24); err != nil {
				return err
			}
		}
		if err := secrets.SetAdminToken(tok); err != nil {
			return fmt.Errorf("store admin token: %w", err)
		}
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), tok)
		}
		return nil
	},
}

var adminTokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the token from the OS keychain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return secrets.DeleteAdminToken()
	},
}

func init() {
	adminTokenCmd.AddCommand(adminTokenSetCmd, adminTokenClearCmd)
}
