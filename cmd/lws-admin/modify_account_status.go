package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptonote-lws/lws/internal/schema"
)

func parseAccountStatus(status string) (schema.AccountStatus, error) {
	switch status {
	case "active":
		return schema.StatusActive, nil
	case "inactive":
		return schema.StatusInactive, nil
	case "hidden":
		return schema.StatusHidden, nil
	default:
		return 0, fmt.Errorf("unknown status %q (want active, inactive, or hidden)", status)
	}
}

func modifyAccountStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modify_account_status <status> <address>...",
		Short: "Move accounts into active, inactive, or hidden status",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := parseAccountStatus(args[0])
			if err != nil {
				return err
			}
			modified, err := svc.ModifyAccountStatus(status, args[1:])
			if err != nil {
				return err
			}
			return printJSON(cmd, modified)
		},
	}
}
