package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cryptonote-lws/lws/internal/schema"
)

func rescanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rescan <start-height> <address>...",
		Short: "Reset accounts to rescan from start-height",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			height, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid start height %q: %w", args[0], err)
			}
			rescanned, err := svc.Rescan(schema.BlockID(height), args[1:])
			if err != nil {
				return err
			}
			return printJSON(cmd, rescanned)
		},
	}
}

func rollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <height>",
		Short: "Roll the account store back to height, discarding data above it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			height, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid height %q: %w", args[0], err)
			}
			if err := svc.Rollback(schema.BlockID(height)); err != nil {
				return err
			}
			return printJSON(cmd, map[string]uint64{"height": height})
		},
	}
}
