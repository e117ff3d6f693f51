package accountstore

import (
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/internal/store"
)

// Rollback implements §4.4.3: truncate blocks at height and rewind every
// affected account's scan/start height, deleting any output/spend/key-image
// past the rollback point. Exposed both as the admin-facing rollback
// operation and as chain-sync's reorg primitive.
func (a *AccountStore) Rollback(height schema.BlockID) error {
	return a.db.TryWrite(func(w *store.Writer) error {
		return rollbackLocked(w, height)
	})
}

func rollbackLocked(w *store.Writer, height schema.BlockID) error {
	if err := truncateBlocksFrom(w, height); err != nil {
		return err
	}

	lookups, err := accountsAtOrAboveHeight(w, height)
	if err != nil {
		return err
	}

	for _, entry := range lookups {
		acc, err := lookupAccountByStatusAndID(&w.Reader, entry.lookup.Status, entry.lookup.ID)
		if err != nil {
			return err
		}

		if _, err := deleteOutputsFrom(w, acc.ID, height); err != nil {
			return err
		}
		if _, err := deleteSpendsFrom(w, acc.ID, height); err != nil {
			return err
		}

		newScan := schema.BlockID(0)
		if height > 0 {
			newScan = height - 1
		}
		newStart := acc.StartHeight
		if newScan < newStart {
			newStart = newScan
		}

		statusKey := []byte{byte(entry.lookup.Status)}
		if err := w.Delete(store.TableAccounts, statusKey, acc.Encode()); err != nil {
			return err
		}
		acc.ScanHeight = newScan
		acc.StartHeight = newStart
		if err := w.Put(store.TableAccounts, statusKey, acc.Encode()); err != nil {
			return err
		}

		oldHeightKey := encodeBlockIDKey(entry.height)
		if err := w.Delete(store.TableAccountsByHeight, oldHeightKey, entry.lookup.Encode()); err != nil {
			return err
		}
		newHeightKey := encodeBlockIDKey(newScan)
		if err := w.Put(store.TableAccountsByHeight, newHeightKey, entry.lookup.Encode()); err != nil {
			return err
		}
	}

	return nil
}

func truncateBlocksFrom(w *store.Writer, height schema.BlockID) error {
	cur, err := w.Cursor(store.TableBlocks)
	if err != nil {
		return err
	}
	defer cur.Close()

	_, v, err := cur.Get(versionKey, nil, opSetKey)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	for {
		info, derr := schema.DecodeBlockInfo(v)
		if derr != nil {
			return derr
		}
		atEnd := false
		if info.ID >= height {
			if err := w.Delete(store.TableBlocks, versionKey, v); err != nil {
				return err
			}
		}
		_, v, err = cur.Get(nil, nil, opNextDup)
		if err != nil {
			if isNotFound(err) {
				atEnd = true
			} else {
				return err
			}
		}
		if atEnd {
			return nil
		}
	}
}

type heightLookup struct {
	height schema.BlockID
	lookup schema.AccountLookup
}

// accountsAtOrAboveHeight scans accounts_by_height for every entry whose
// key (scan_height) is >= height.
func accountsAtOrAboveHeight(w *store.Writer, height schema.BlockID) ([]heightLookup, error) {
	cur, err := w.Cursor(store.TableAccountsByHeight)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	searchKey := encodeBlockIDKey(height)
	k, v, err := cur.Get(searchKey, nil, opSetRange)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []heightLookup
	for {
		h := decodeBlockIDKey(k)
		lookup, derr := schema.DecodeAccountLookup(v)
		if derr != nil {
			return nil, derr
		}
		out = append(out, heightLookup{height: h, lookup: lookup})

		k, v, err = cur.Get(nil, nil, opNext)
		if err != nil {
			if isNotFound(err) {
				break
			}
			return nil, err
		}
	}
	return out, nil
}

// Rescan sets scan_height = start_height = newStart for every address in
// addresses and deletes any output/spend/key-image at or past newStart.
// Returns the addresses actually changed.
func (a *AccountStore) Rescan(newStart schema.BlockID, addresses []schema.AccountAddress) ([]schema.AccountAddress, error) {
	var changed []schema.AccountAddress

	err := a.db.TryWrite(func(w *store.Writer) error {
		for _, address := range addresses {
			lookup, err := lookupByAddress(&w.Reader, address)
			if err != nil || lookup.Status == schema.StatusPending {
				continue
			}
			acc, err := lookupAccountByStatusAndID(&w.Reader, lookup.Status, lookup.ID)
			if err != nil {
				return err
			}

			if _, err := deleteOutputsFrom(w, acc.ID, newStart); err != nil {
				return err
			}
			if _, err := deleteSpendsFrom(w, acc.ID, newStart); err != nil {
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
			acc.ScanHeight = newStart
			acc.StartHeight = newStart
			if err := w.Put(store.TableAccounts, statusKey, acc.Encode()); err != nil {
				return err
			}

			newHeightKey := encodeBlockIDKey(newStart)
			if err := w.Put(store.TableAccountsByHeight, newHeightKey, lookup.Encode()); err != nil {
				return err
			}

			changed = append(changed, address)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}
