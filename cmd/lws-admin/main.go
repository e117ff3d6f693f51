// Package main provides lws-admin, the operator CLI for an lws-scand
// account store: adding accounts, approving or rejecting pending
// creation/import requests, listing accounts and requests, inspecting
// database health, and repairing a store via rescan or rollback.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cryptonote-lws/lws/internal/accountstore"
	"github.com/cryptonote-lws/lws/internal/admin"
	"github.com/cryptonote-lws/lws/internal/netparams"
	"github.com/cryptonote-lws/lws/internal/store"
)

var (
	dbPath        string
	network       string
	showSensitive bool

	svc *admin.Service
	db  *store.Store
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lws-admin",
		Short: "Administer an lws-scand account store",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return openStore()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeStore()
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db-path", "./data/lws.mdbx", "Path to the account store database")
	root.PersistentFlags().StringVar(&network, "network", "main", "Network: main, test, or dev")
	root.PersistentFlags().BoolVar(&showSensitive, "show-sensitive", false, "Include view keys in output")

	root.AddCommand(acceptRequestsCmd())
	root.AddCommand(addAccountCmd())
	root.AddCommand(debugDatabaseCmd())
	root.AddCommand(listAccountsCmd())
	root.AddCommand(listRequestsCmd())
	root.AddCommand(modifyAccountStatusCmd())
	root.AddCommand(rejectRequestsCmd())
	root.AddCommand(rescanCmd())
	root.AddCommand(rollbackCmd())

	return root
}

func openStore() error {
	params, err := resolveNetwork(network)
	if err != nil {
		return err
	}

	db, err = store.Open(&store.Config{DataDir: dbPath})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	as := accountstore.New(db, params)
	if err := as.EnsureGenesis(); err != nil {
		return fmt.Errorf("seeding genesis: %w", err)
	}
	svc = admin.New(as, params)
	return nil
}

func closeStore() error {
	if db == nil {
		return nil
	}
	return db.Close()
}

func resolveNetwork(name string) (*netparams.Params, error) {
	var net netparams.Network
	switch name {
	case "main", "mainnet":
		net = netparams.Mainnet
	case "test", "testnet":
		net = netparams.Testnet
	case "dev", "devnet":
		net = netparams.Devnet
	default:
		return nil, fmt.Errorf("unknown network %q", name)
	}
	params, ok := netparams.Get(net)
	if !ok {
		return nil, fmt.Errorf("no netparams registered for network %q", name)
	}
	return params, nil
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lws-admin:", err)
		os.Exit(1)
	}
}
