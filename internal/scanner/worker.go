package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/cryptonote-lws/lws/internal/accountstore"
	"github.com/cryptonote-lws/lws/internal/errs"
	"github.com/cryptonote-lws/lws/internal/rpcclient"
	"github.com/cryptonote-lws/lws/internal/scanmatch"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/pkg/helpers"
)

// Worker drives one slice of accounts through §4.4.4's block-body sync
// loop: fetch, match, persist, repeat.
type Worker struct {
	store  *accountstore.AccountStore
	client *rpcclient.Client
	cfg    Config
}

// NewWorker builds a Worker.
func NewWorker(store *accountstore.AccountStore, client *rpcclient.Client, cfg Config) *Worker {
	return &Worker{store: store, client: client, cfg: cfg}
}

// Run scans on behalf of accounts until ctx is cancelled, stop fires,
// or a terminal error (including a reorg) occurs.
func (w *Worker) Run(ctx context.Context, accounts []scanmatch.AccountContext, stop <-chan struct{}) error {
	if len(accounts) == 0 {
		return nil
	}

	local := make([]scanmatch.AccountContext, len(accounts))
	copy(local, accounts)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		start := minScanHeight(local)

		callCtx, cancel := context.WithTimeout(ctx, w.cfg.blockRPCTimeout())
		result, err := w.client.GetBlocksFast(callCtx, uint64(start))
		cancel()
		if err != nil {
			return err
		}

		if len(result.Blocks) <= 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-stop:
				return nil
			case <-time.After(w.cfg.noProgressSleep()):
			}
			continue
		}

		newHeight, err := w.scanBatch(start, result, local)
		if err != nil {
			return err
		}
		for i := range local {
			local[i].ScanHeight = newHeight
		}
	}
}

// scanBatch runs one round of §4.4.4 over result and returns the scan
// height every account in accounts advanced to.
func (w *Worker) scanBatch(start schema.BlockID, result rpcclient.BlocksResult, accounts []scanmatch.AccountContext) (schema.BlockID, error) {
	if len(result.Blocks) != len(result.OutputIndices) {
		return 0, errs.New(errs.KindBadDaemonResponse, "scanner: blocks/output_indices length mismatch")
	}

	chain := make([]schema.Hash, len(result.Blocks))
	updates := make(map[schema.AccountID]*accountstore.AccountUpdate, len(accounts))
	for _, acc := range accounts {
		updates[acc.AccountID] = &accountstore.AccountUpdate{AccountID: acc.AccountID}
	}

	for idx, entry := range result.Blocks {
		if len(entry.Block.TxHashes) != len(entry.Transactions) {
			return 0, errs.New(errs.KindBadDaemonResponse, "scanner: tx_hashes/transactions length mismatch")
		}
		blockIndices := result.OutputIndices[idx]
		if len(blockIndices) != len(entry.Transactions)+1 {
			return 0, errs.New(errs.KindBadDaemonResponse, "scanner: output_indices shorter than transaction count")
		}

		minerHash := minerTxHash(entry.Block.MinerTx)
		txHashes := make([]schema.Hash, len(entry.Transactions))
		for i, h := range entry.Block.TxHashes {
			decoded, err := helpers.HexToFixed32(h)
			if err != nil {
				return 0, fmt.Errorf("scanner: decode tx hash %d: %w", i, err)
			}
			txHashes[i] = schema.Hash(decoded)
		}
		chain[idx] = computeBlockHash(entry.Block, minerHash, txHashes)

		if idx == 0 && start != 1 {
			continue // overlap block: hash recorded, body already scanned
		}

		height := start + schema.BlockID(idx)

		if err := scanOne(entry.Block.MinerTx, height, entry.Block.Timestamp, minerHash, blockIndices[0], true, accounts, w.store, updates); err != nil {
			return 0, err
		}
		for t, tx := range entry.Transactions {
			if err := scanOne(tx, height, entry.Block.Timestamp, txHashes[t], blockIndices[t+1], false, accounts, w.store, updates); err != nil {
				return 0, err
			}
		}
	}

	upds := make([]accountstore.AccountUpdate, 0, len(accounts))
	for _, acc := range accounts {
		upds = append(upds, *updates[acc.AccountID])
	}

	updated, err := w.store.Update(start, chain, upds)
	if err != nil {
		return 0, err
	}
	if updated < len(accounts) {
		return 0, errs.New(errs.KindBlockchainReorg, "scanner: update applied fewer accounts than expected")
	}

	newHeight := start + schema.BlockID(len(chain)) - 1
	log.Debug("scanned blocks", "start_height", start, "count", len(result.Blocks), "accounts", len(accounts))
	return newHeight, nil
}

// scanOne runs §4.3 for one transaction against every account still
// behind its height, folding any matches into updates.
func scanOne(rtx rpcclient.RPCTransaction, height schema.BlockID, timestamp uint64, txHash schema.Hash, outputIndices []uint64, isCoinbase bool, accounts []scanmatch.AccountContext, store *accountstore.AccountStore, updates map[schema.AccountID]*accountstore.AccountUpdate) error {
	ptx, ok, err := convertTx(rtx, height, timestamp, txHash, outputIndices, isCoinbase)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	for _, acc := range accounts {
		if acc.ScanHeight >= height {
			continue
		}
		result, err := scanmatch.Match(ptx, acc, store.FindOutputMeta)
		if err != nil {
			return err
		}
		if len(result.Outputs) == 0 && len(result.Spends) == 0 {
			continue
		}
		u := updates[acc.AccountID]
		u.Outputs = append(u.Outputs, result.Outputs...)
		u.Spends = append(u.Spends, result.Spends...)
	}
	return nil
}

func minScanHeight(accounts []scanmatch.AccountContext) schema.BlockID {
	min := accounts[0].ScanHeight
	for _, a := range accounts[1:] {
		if a.ScanHeight < min {
			min = a.ScanHeight
		}
	}
	return min
}
