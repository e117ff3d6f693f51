// Package scanner implements the worker pool and supervisor of §4.4.4
// and §4.5: a fixed pool of workers each drive a slice of active
// accounts through block-body fetch and per-transaction matching
// (internal/scanmatch), while a supervisor partitions accounts across
// workers and restarts the cycle whenever the active set changes or a
// reorg is observed.
package scanner

import (
	"time"

	"github.com/cryptonote-lws/lws/internal/accountstore"
	"github.com/cryptonote-lws/lws/internal/scanmatch"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/pkg/logging"
)

var log = logging.GetDefault().Component("scanner")

// Config controls the scanner's pacing and parallelism.
type Config struct {
	// BlockRPCTimeout bounds each get_blocks_fast round trip.
	BlockRPCTimeout time.Duration
	// NoProgressSleep is how long a worker sleeps after the node
	// returns at most one block (nothing new to scan).
	NoProgressSleep time.Duration
	// AccountPollInterval is how often the supervisor re-reads the
	// active account set and the poller checks it for changes.
	AccountPollInterval time.Duration
	// WorkerCount is how many worker goroutines the supervisor runs
	// per cycle. Defaults to 1.
	WorkerCount int
}

func (c Config) blockRPCTimeout() time.Duration {
	if c.BlockRPCTimeout <= 0 {
		return 30 * time.Second
	}
	return c.BlockRPCTimeout
}

func (c Config) noProgressSleep() time.Duration {
	if c.NoProgressSleep <= 0 {
		return 10 * time.Second
	}
	return c.NoProgressSleep
}

func (c Config) accountPollInterval() time.Duration {
	if c.AccountPollInterval <= 0 {
		return 30 * time.Second
	}
	return c.AccountPollInterval
}

func (c Config) workerCount() int {
	if c.WorkerCount < 1 {
		return 1
	}
	return c.WorkerCount
}

// snapshotActiveAccounts reads every Active account's scanning
// context in one pass.
func snapshotActiveAccounts(store *accountstore.AccountStore) ([]scanmatch.AccountContext, error) {
	var out []scanmatch.AccountContext
	for acc, err := range store.GetAccounts(schema.StatusActive) {
		if err != nil {
			return nil, err
		}
		out = append(out, scanmatch.AccountContext{
			AccountID:   acc.ID,
			ViewKey:     acc.ViewKey,
			SpendPublic: acc.Address.SpendPublic,
			ScanHeight:  acc.ScanHeight,
		})
	}
	return out, nil
}

func accountIDSet(accounts []scanmatch.AccountContext) map[schema.AccountID]struct{} {
	set := make(map[schema.AccountID]struct{}, len(accounts))
	for _, a := range accounts {
		set[a.AccountID] = struct{}{}
	}
	return set
}

func sameMembership(original map[schema.AccountID]struct{}, current []scanmatch.AccountContext) bool {
	if len(original) != len(current) {
		return false
	}
	for _, a := range current {
		if _, ok := original[a.AccountID]; !ok {
			return false
		}
	}
	return true
}
