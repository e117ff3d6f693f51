package main

import (
	"time"

	"github.com/spf13/cobra"
)

func addAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add_account <address> <view-key-hex>",
		Short: "Add an account directly, bypassing the creation-request flow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := svc.AddAccount(args[0], args[1], uint64(time.Now().Unix()))
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"scan_height": acc.ScanHeight, "start_height": acc.StartHeight})
		},
	}
}
