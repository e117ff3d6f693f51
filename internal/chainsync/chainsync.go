// Package chainsync drives the catch-up loop of §4.4.1: it repeatedly
// asks the node for the block-hash run starting at the local chain tip
// and feeds it to the account store's sync_chain protocol, which detects
// and repairs reorgs before the scanner fetches any block bodies.
package chainsync

import (
	"context"
	"fmt"
	"time"

	"github.com/cryptonote-lws/lws/internal/accountstore"
	"github.com/cryptonote-lws/lws/internal/errs"
	"github.com/cryptonote-lws/lws/internal/rpcclient"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/pkg/helpers"
	"github.com/cryptonote-lws/lws/pkg/logging"
)

var log = logging.GetDefault().Component("chainsync")

// Config controls the catch-up loop's per-call timeout.
type Config struct {
	// BlockRPCTimeout bounds each get_hashes round trip.
	BlockRPCTimeout time.Duration
}

func (c Config) timeout() time.Duration {
	if c.BlockRPCTimeout <= 0 {
		return 30 * time.Second
	}
	return c.BlockRPCTimeout
}

// Syncer owns the catch-up loop against one account store and one node
// client.
type Syncer struct {
	store  *accountstore.AccountStore
	client *rpcclient.Client
	cfg    Config
}

// New builds a Syncer.
func New(store *accountstore.AccountStore, client *rpcclient.Client, cfg Config) *Syncer {
	return &Syncer{store: store, client: client, cfg: cfg}
}

// CatchUp runs §4.4.1 to completion: it loops calling get_hashes and
// sync_chain until the node reports the local chain is caught up, ctx is
// cancelled, or any node call or store write fails; no call is retried.
func (s *Syncer) CatchUp(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		top, err := s.store.GetChainSync()
		if err != nil {
			return fmt.Errorf("chainsync: read local chain tip: %w", err)
		}

		callCtx, cancel := context.WithTimeout(ctx, s.cfg.timeout())
		result, err := s.client.GetHashes(callCtx, uint64(top))
		cancel()
		if err != nil {
			return err
		}

		if len(result.Hashes) <= 1 || result.CurrentHeight-result.StartHeight <= 1 {
			return nil
		}

		hashes, err := decodeHashes(result.Hashes)
		if err != nil {
			return errs.Wrap(errs.KindBadDaemonResponse, err, "decoding get_hashes response")
		}

		if err := s.store.SyncChain(schema.BlockID(result.StartHeight), hashes); err != nil {
			return fmt.Errorf("chainsync: sync_chain: %w", err)
		}

		log.Debug("catch-up advanced", "start_height", result.StartHeight, "count", len(hashes))
	}
}

func decodeHashes(hexHashes []string) ([]schema.Hash, error) {
	out := make([]schema.Hash, len(hexHashes))
	for i, h := range hexHashes {
		decoded, err := helpers.HexToFixed32(h)
		if err != nil {
			return nil, fmt.Errorf("hash %d: %w", i, err)
		}
		out[i] = schema.Hash(decoded)
	}
	return out, nil
}
