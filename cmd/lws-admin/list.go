package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptonote-lws/lws/internal/schema"
)

func listAccountsCmd() *cobra.Command {
	var statusFlag string
	cmd := &cobra.Command{
		Use:   "list_accounts",
		Short: "List accounts, optionally filtered by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []schema.AccountStatus
			if statusFlag != "" {
				status, err := parseAccountStatus(statusFlag)
				if err != nil {
					return err
				}
				statuses = append(statuses, status)
			}
			views, err := svc.ListAccounts(showSensitive, statuses...)
			if err != nil {
				return err
			}
			return printJSON(cmd, views)
		},
	}
	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status: active, inactive, or hidden (default: all)")
	return cmd
}

func listRequestsCmd() *cobra.Command {
	var typeFlag string
	cmd := &cobra.Command{
		Use:   "list_requests",
		Short: "List pending creation or import requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseRequestKind(typeFlag)
			if err != nil {
				return err
			}
			views, err := svc.ListRequests(kind, showSensitive)
			if err != nil {
				return err
			}
			return printJSON(cmd, views)
		},
	}
	cmd.Flags().StringVar(&typeFlag, "type", "create", "Request kind: create or import")
	return cmd
}

func debugDatabaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug_database",
		Short: "Print chain-sync height and per-status account counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := svc.DebugDatabase()
			if err != nil {
				return err
			}
			return printJSON(cmd, info)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
