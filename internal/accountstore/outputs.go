package accountstore

import (
	"iter"

	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/internal/store"
)

// GetOutputs streams every Output owned by accountID, ordered by
// (link.height, link.tx_hash, meta.id).
func (a *AccountStore) GetOutputs(accountID schema.AccountID) iter.Seq2[schema.Output, error] {
	return func(yield func(schema.Output, error) bool) {
		_ = a.db.View(func(r *store.Reader) error {
			cur, err := r.Cursor(store.TableOutputs)
			if err != nil {
				yield(schema.Output{}, err)
				return err
			}
			defer cur.Close()

			key := encodeAccountIDKey(accountID)
			_, v, err := cur.Get(key, nil, opSetKey)
			if err != nil {
				if isNotFound(err) {
					return nil
				}
				yield(schema.Output{}, err)
				return err
			}
			for {
				out, derr := schema.DecodeOutput(v)
				if !yield(out, derr) {
					return nil
				}
				_, v, err = cur.Get(nil, nil, opNextDup)
				if err != nil {
					if isNotFound(err) {
						return nil
					}
					yield(schema.Output{}, err)
					return err
				}
			}
		})
	}
}

// FindOutputMeta looks up accountID's Output matching id, for use as the
// scanner's SpendableLookup. Any stored output with that id is returned,
// whether or not a spend of it has been recorded; a missing match (an
// output the account never owned) is reported via the bool, not an error.
func (a *AccountStore) FindOutputMeta(accountID schema.AccountID, id schema.OutputID) (schema.SpendMeta, bool, error) {
	for out, err := range a.GetOutputs(accountID) {
		if err != nil {
			return schema.SpendMeta{}, false, err
		}
		if out.Meta.ID == id {
			return out.Meta, true, nil
		}
	}
	return schema.SpendMeta{}, false, nil
}

// addOutput inserts an Output for accountID, silently skipping it (per
// invariant 7) if one already exists for the same (account, tx_hash,
// out_index_in_tx) — callers can tell a no-op apart from a write via the
// returned bool.
func addOutput(w *store.Writer, accountID schema.AccountID, out schema.Output) (bool, error) {
	cur, err := w.Cursor(store.TableOutputs)
	if err != nil {
		return false, err
	}
	defer cur.Close()

	key := encodeAccountIDKey(accountID)
	_, v, err := cur.Get(key, out.Encode(), opGetBothRange)
	if err == nil {
		existing, derr := schema.DecodeOutput(v)
		if derr == nil &&
			existing.Link.TxHash == out.Link.TxHash &&
			existing.Meta.OutIndexInTx == out.Meta.OutIndexInTx {
			return false, nil
		}
	} else if !isNotFound(err) {
		return false, err
	}

	if err := w.Put(store.TableOutputs, key, out.Encode()); err != nil {
		return false, err
	}
	return true, nil
}

// deleteOutputsFrom removes every Output of accountID with link.height >=
// fromHeight, used by rescan and rollback.
func deleteOutputsFrom(w *store.Writer, accountID schema.AccountID, fromHeight schema.BlockID) (int, error) {
	cur, err := w.Cursor(store.TableOutputs)
	if err != nil {
		return 0, err
	}
	defer cur.Close()

	key := encodeAccountIDKey(accountID)
	_, v, err := cur.Get(key, nil, opSetKey)
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, err
	}

	var removed int
	for {
		out, derr := schema.DecodeOutput(v)
		if derr != nil {
			return removed, derr
		}
		atEnd := false
		if out.Link.Height >= fromHeight {
			if err := w.Delete(store.TableOutputs, key, v); err != nil {
				return removed, err
			}
			removed++
		}
		_, v, err = cur.Get(nil, nil, opNextDup)
		if err != nil {
			if isNotFound(err) {
				atEnd = true
			} else {
				return removed, err
			}
		}
		if atEnd {
			return removed, nil
		}
	}
}
