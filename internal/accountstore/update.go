package accountstore

import (
	"github.com/cryptonote-lws/lws/internal/errs"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/internal/store"
)

// appendBatchSize caps how many block hashes sync_chain appends to blocks
// in a single cursor loop, per §4.4.2 step 3.
const appendBatchSize = 25

// SyncChain implements §4.4.2: reconcile a run of block hashes against the
// stored chain, rolling back on the first mismatch and appending whatever
// extends past the stored tip.
func (a *AccountStore) SyncChain(startHeight schema.BlockID, hashes []schema.Hash) error {
	if len(hashes) == 0 {
		return nil
	}

	return a.db.TryWrite(func(w *store.Writer) error {
		storedStart, ok, err := blockHashAt(w, startHeight)
		if err != nil {
			return err
		}
		if ok && storedStart != hashes[0] {
			if err := rollbackLocked(w, startHeight); err != nil {
				return err
			}
			ok = false
		}
		if !ok {
			info := schema.BlockInfo{ID: startHeight, Hash: hashes[0]}
			if err := w.Put(store.TableBlocks, versionKey, info.Encode()); err != nil {
				return err
			}
		}

		i := 1
		for ; i < len(hashes); i++ {
			height := startHeight + schema.BlockID(i)
			stored, exists, err := blockHashAt(w, height)
			if err != nil {
				return err
			}
			if !exists {
				break
			}
			if stored != hashes[i] {
				if err := rollbackLocked(w, height); err != nil {
					return err
				}
				break
			}
		}

		pending := hashes[i:]
		for len(pending) > 0 {
			n := appendBatchSize
			if n > len(pending) {
				n = len(pending)
			}
			for j := 0; j < n; j++ {
				height := startHeight + schema.BlockID(i+j)
				info := schema.BlockInfo{ID: height, Hash: pending[j]}
				if err := w.Put(store.TableBlocks, versionKey, info.Encode()); err != nil {
					return err
				}
			}
			i += n
			pending = pending[n:]
		}

		return nil
	})
}

func blockHashAt(w *store.Writer, height schema.BlockID) (schema.Hash, bool, error) {
	cur, err := w.Cursor(store.TableBlocks)
	if err != nil {
		return schema.Hash{}, false, err
	}
	defer cur.Close()

	search := schema.BlockInfo{ID: height}
	_, v, err := cur.Get(versionKey, search.Encode(), opGetBothRange)
	if err != nil {
		if isNotFound(err) {
			return schema.Hash{}, false, nil
		}
		return schema.Hash{}, false, err
	}
	info, derr := schema.DecodeBlockInfo(v)
	if derr != nil {
		return schema.Hash{}, false, derr
	}
	if info.ID != height {
		return schema.Hash{}, false, nil
	}
	return info.Hash, true, nil
}

// AccountUpdate bundles one scanned account's new records for a single
// update() call; produced by internal/scanner from internal/scanmatch's
// per-block matches.
type AccountUpdate struct {
	AccountID schema.AccountID
	Outputs   []schema.Output
	Spends    []schema.Spend
}

// Update implements the update() contract of §4.2: atomically extend the
// chain with chainHashes starting at baseHeight, write every account's new
// records, and advance scan_height to baseHeight+len(chainHashes)-1.
// Returns how many accounts were actually updated; fewer than len(updates)
// means the caller must restart scanning with the surviving active set.
func (a *AccountStore) Update(baseHeight schema.BlockID, chainHashes []schema.Hash, updates []AccountUpdate) (int, error) {
	if len(chainHashes) == 0 {
		return 0, nil
	}

	var updated int
	err := a.db.TryWrite(func(w *store.Writer) error {
		for i, hash := range chainHashes {
			height := baseHeight + schema.BlockID(i)
			stored, exists, err := blockHashAt(w, height)
			if err != nil {
				return err
			}
			if exists && stored != hash {
				return errs.New(errs.KindBlockchainReorg, "chain hash mismatch in overlap region")
			}
			if !exists {
				info := schema.BlockInfo{ID: height, Hash: hash}
				if err := w.Put(store.TableBlocks, versionKey, info.Encode()); err != nil {
					return err
				}
			}
		}

		newScanHeight := baseHeight + schema.BlockID(len(chainHashes)) - 1

		for _, upd := range updates {
			lookup, err := lookupAccountLookupByID(w, upd.AccountID)
			if err != nil {
				continue
			}

			for _, out := range upd.Outputs {
				added, err := addOutput(w, upd.AccountID, out)
				if err != nil {
					return err
				}
				if !added {
					a.log.Debug("duplicate output ignored", "account_id", upd.AccountID, "height", out.Link.Height, "out_index", out.Meta.OutIndexInTx)
				}
			}
			for _, sp := range upd.Spends {
				if err := addSpend(w, upd.AccountID, sp); err != nil {
					return err
				}
			}

			acc, err := lookupAccountByStatusAndID(&w.Reader, lookup.Status, upd.AccountID)
			if err != nil {
				return err
			}

			oldHeightKey := encodeBlockIDKey(acc.ScanHeight)
			if err := w.Delete(store.TableAccountsByHeight, oldHeightKey, lookup.Encode()); err != nil {
				return err
			}

			statusKey := []byte{byte(lookup.Status)}
			if err := w.Delete(store.TableAccounts, statusKey, acc.Encode()); err != nil {
				return err
			}
			acc.ScanHeight = newScanHeight
			if err := w.Put(store.TableAccounts, statusKey, acc.Encode()); err != nil {
				return err
			}

			newHeightKey := encodeBlockIDKey(newScanHeight)
			if err := w.Put(store.TableAccountsByHeight, newHeightKey, lookup.Encode()); err != nil {
				return err
			}

			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// lookupAccountLookupByID scans accounts_by_height-independent: it walks
// every status bucket in accounts looking for id, since accounts has no
// direct id index. Callers that already hold an AccountLookup (from
// accounts_by_address) should prefer that; this helper exists for the
// update() path where only an AccountID is available.
func lookupAccountLookupByID(w *store.Writer, id schema.AccountID) (schema.AccountLookup, error) {
	for _, status := range []schema.AccountStatus{schema.StatusActive, schema.StatusInactive, schema.StatusHidden} {
		acc, err := lookupAccountByStatusAndID(&w.Reader, status, id)
		if err == nil && acc.ID == id {
			return schema.AccountLookup{ID: id, Status: status}, nil
		}
	}
	return schema.AccountLookup{}, errs.New(errs.KindAccountNotFound, "account id not found during update")
}
