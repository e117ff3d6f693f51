// Package main provides lws-scand, the light-wallet scanning daemon: it
// opens the account store, catches the local chain up to the configured
// node, then runs the scanner supervisor and the wallet-facing REST API
// side by side until asked to stop.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cryptonote-lws/lws/internal/accountstore"
	"github.com/cryptonote-lws/lws/internal/chainsync"
	"github.com/cryptonote-lws/lws/internal/config"
	"github.com/cryptonote-lws/lws/internal/netparams"
	"github.com/cryptonote-lws/lws/internal/restapi"
	"github.com/cryptonote-lws/lws/internal/rpcclient"
	"github.com/cryptonote-lws/lws/internal/scanner"
	"github.com/cryptonote-lws/lws/internal/store"
	"github.com/cryptonote-lws/lws/pkg/logging"
)

var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  = flag.String("config", "./lws.yaml", "Config file path")
		logLevel    = flag.String("log-level", "", "Log level, overrides config (debug, info, warn, error)")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	log := logging.New(logging.DefaultConfig())
	logging.SetDefault(log)

	if *showVersion {
		log.Infof("lws-scand %s (commit: %s)", version, commit)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal("failed to load config", "error", err)
	}

	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			log.Fatal("failed to open log file", "error", err)
		}
		defer f.Close()
		logCfg.Output = f
	}
	log = logging.New(logCfg)
	logging.SetDefault(log)

	log.Info("config loaded", "path", *configFile, "network", cfg.Network)

	net, err := netparamsFor(cfg.Network)
	if err != nil {
		log.Fatal("unknown network", "network", cfg.Network, "error", err)
	}

	db, err := store.Open(&store.Config{DataDir: cfg.Store.DataDir, MaxSizeMB: int64(cfg.Store.MaxSizeMB)})
	if err != nil {
		log.Fatal("failed to open account store", "error", err)
	}
	defer db.Close()

	as := accountstore.New(db, net)
	if err := as.EnsureGenesis(); err != nil {
		log.Fatal("failed to seed genesis", "error", err)
	}
	log.Info("account store opened", "path", cfg.Store.DataDir)

	rpc := rpcclient.New(rpcclient.Config{BaseURL: cfg.Daemon.URL, Timeout: cfg.Daemon.Timeout})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncer := chainsync.New(as, rpc, chainsync.Config{BlockRPCTimeout: cfg.Daemon.Timeout})
	log.Info("catching up to node", "url", cfg.Daemon.URL)
	if err := syncer.CatchUp(ctx); err != nil {
		log.Warn("initial catch-up did not complete cleanly", "error", err)
	}

	supervisor := scanner.NewSupervisor(as, rpc, scanner.Config{
		BlockRPCTimeout:     cfg.Daemon.Timeout,
		AccountPollInterval: cfg.Scanner.PollInterval,
		WorkerCount:         cfg.Scanner.Workers,
	})

	scannerDone := make(chan error, 1)
	go func() {
		scannerDone <- supervisor.Run()
	}()
	log.Info("scanner supervisor started", "workers", cfg.Scanner.Workers)

	restServer := restapi.New(as, rpc, net, restapi.Config{
		Addr:                 cfg.REST.Addr,
		RequestTimeout:       cfg.REST.RequestTimeout,
		DisableLogin:         cfg.REST.DisableLogin,
		DisableImportRequest: cfg.REST.DisableImportRequest,
		DisableGetRandomOuts: cfg.REST.DisableGetRandomOuts,
		DisableSubmitRawTx:   cfg.REST.DisableSubmitRawTx,
	})
	if err := restServer.Start(); err != nil {
		log.Fatal("failed to start REST API", "error", err)
	}
	log.Info("REST API listening", "addr", cfg.REST.Addr)

	printBanner(log, cfg, net)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("shutting down...")
	case err := <-scannerDone:
		if err != nil {
			log.Error("scanner supervisor exited unexpectedly", "error", err)
		}
	}

	cancel()
	supervisor.Stop()

	if err := restServer.Stop(); err != nil {
		log.Error("error stopping REST API", "error", err)
	}

	select {
	case <-scannerDone:
	case <-time.After(10 * time.Second):
		log.Warn("scanner supervisor did not stop within timeout")
	}

	log.Info("goodbye")
}

func netparamsFor(n config.Network) (*netparams.Params, error) {
	var net netparams.Network
	switch n {
	case config.NetworkMain:
		net = netparams.Mainnet
	case config.NetworkTest:
		net = netparams.Testnet
	case config.NetworkDev:
		net = netparams.Devnet
	default:
		net = netparams.Network(n)
	}
	p, ok := netparams.Get(net)
	if !ok {
		return nil, errUnknownNetwork(n)
	}
	return p, nil
}

type errUnknownNetwork config.Network

func (e errUnknownNetwork) Error() string {
	return "no netparams registered for network " + string(e)
}

func printBanner(log *logging.Logger, cfg *config.Config, net *netparams.Params) {
	log.Info("")
	log.Info("=================================================")
	log.Infof("  lws-scand (%s)", net.Name)
	log.Infof("  Version: %s", version)
	log.Info("=================================================")
	log.Infof("  Daemon:  %s", cfg.Daemon.URL)
	log.Infof("  REST:    http://%s", cfg.REST.Addr)
	log.Infof("  Store:   %s", cfg.Store.DataDir)
	log.Infof("  Workers: %d", cfg.Scanner.Workers)
	log.Info("=================================================")
	log.Info("")
}
