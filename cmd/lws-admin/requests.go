package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cryptonote-lws/lws/internal/schema"
)

func parseRequestKind(kind string) (schema.RequestKind, error) {
	switch kind {
	case "create":
		return schema.RequestCreate, nil
	case "import":
		return schema.RequestImport, nil
	default:
		return 0, fmt.Errorf("unknown request type %q (want create or import)", kind)
	}
}

func acceptRequestsCmd() *cobra.Command {
	var typeFlag string
	cmd := &cobra.Command{
		Use:   "accept_requests <address>...",
		Short: "Approve pending creation or import requests",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseRequestKind(typeFlag)
			if err != nil {
				return err
			}
			accepted, err := svc.AcceptRequests(kind, args, uint64(time.Now().Unix()))
			if err != nil {
				return err
			}
			return printJSON(cmd, accepted)
		},
	}
	cmd.Flags().StringVar(&typeFlag, "type", "create", "Request kind: create or import")
	return cmd
}

func rejectRequestsCmd() *cobra.Command {
	var typeFlag string
	cmd := &cobra.Command{
		Use:   "reject_requests <address>...",
		Short: "Reject pending creation or import requests",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseRequestKind(typeFlag)
			if err != nil {
				return err
			}
			rejected, err := svc.RejectRequests(kind, args)
			if err != nil {
				return err
			}
			return printJSON(cmd, rejected)
		},
	}
	cmd.Flags().StringVar(&typeFlag, "type", "create", "Request kind: create or import")
	return cmd
}
