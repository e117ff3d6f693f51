package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/cryptonote-lws/lws/internal/accountstore"
	"github.com/cryptonote-lws/lws/internal/chainsync"
	"github.com/cryptonote-lws/lws/internal/rpcclient"
	"github.com/cryptonote-lws/lws/internal/scanmatch"
)

// Supervisor runs the scanner forever until Stop is called: it
// snapshots the active account set, partitions it across a worker
// pool, and starts a new cycle once every worker of the current one has
// exited (the poller saw the set change, or each worker stopped on a
// reorg or error).
type Supervisor struct {
	store  *accountstore.AccountStore
	client *rpcclient.Client
	syncer *chainsync.Syncer
	cfg    Config

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSupervisor builds a Supervisor.
func NewSupervisor(store *accountstore.AccountStore, client *rpcclient.Client, cfg Config) *Supervisor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Supervisor{
		store:  store,
		client: client,
		syncer: chainsync.New(store, client, chainsync.Config{BlockRPCTimeout: cfg.blockRPCTimeout()}),
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Stop cancels the context every running worker and the poller watch,
// and returns at once; Run returns after its current cycle has unwound.
func (s *Supervisor) Stop() {
	s.cancel()
}

// Run executes the supervisor loop of §4.5. It returns when Stop has
// been called.
func (s *Supervisor) Run() error {
	for {
		if s.ctx.Err() != nil {
			return nil
		}

		accounts, err := snapshotActiveAccounts(s.store)
		if err != nil {
			return err
		}

		if len(accounts) == 0 {
			select {
			case <-s.ctx.Done():
				return nil
			case <-time.After(s.cfg.accountPollInterval()):
			}
			continue
		}

		s.runCycle(accounts)

		if err := s.syncer.CatchUp(s.ctx); err != nil && s.ctx.Err() == nil {
			log.Warn("catch-up after scan cycle failed", "err", err)
		}
	}
}

// runCycle partitions accounts across the configured worker count,
// runs them to completion, and returns once every worker has exited.
func (s *Supervisor) runCycle(accounts []scanmatch.AccountContext) {
	groups := partition(accounts, s.cfg.workerCount())
	stop := make(chan struct{})
	workersDone := make(chan struct{})
	pollerDone := make(chan struct{})

	go func() {
		defer close(pollerDone)
		s.pollActiveSet(accounts, stop, workersDone)
	}()

	var wg sync.WaitGroup
	for _, g := range groups {
		wg.Add(1)
		go func(g []scanmatch.AccountContext) {
			defer wg.Done()
			w := NewWorker(s.store, s.client, s.cfg)
			if err := w.Run(s.ctx, g, stop); err != nil && s.ctx.Err() == nil {
				log.Warn("scanner worker stopped", "err", err)
			}
		}(g)
	}

	wg.Wait()
	close(workersDone)
	<-pollerDone
}

// pollActiveSet is the supervisor's single poller thread: every
// AccountPollInterval it re-reads the active set and, if its
// membership changed, closes stop so every worker unwinds. It also
// exits on its own once workersDone fires, so it never outlives the
// workers it was watching over.
func (s *Supervisor) pollActiveSet(original []scanmatch.AccountContext, stop chan struct{}, workersDone <-chan struct{}) {
	originalIDs := accountIDSet(original)
	ticker := time.NewTicker(s.cfg.accountPollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-workersDone:
			return
		case <-ticker.C:
			current, err := snapshotActiveAccounts(s.store)
			if err != nil {
				log.Warn("polling active accounts failed", "err", err)
				continue
			}
			if !sameMembership(originalIDs, current) {
				close(stop)
				return
			}
		}
	}
}
