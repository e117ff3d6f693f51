// Package accountstore implements the typed account-store operations of
// §4.2 over internal/store and internal/schema. Every exported function
// here is the only thing the scanner, chain-sync, query, and admin layers
// use to touch persisted state — none of them import internal/store
// directly.
package accountstore

import (
	"fmt"

	"github.com/cryptonote-lws/lws/internal/errs"
	"github.com/cryptonote-lws/lws/internal/netparams"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/internal/store"
	"github.com/cryptonote-lws/lws/pkg/logging"
)

// AccountStore is the account-store façade bound to one backing Store and
// network.
type AccountStore struct {
	db  *store.Store
	net *netparams.Params
	log *logging.Logger
}

// New wraps db for the given network. Callers must call EnsureGenesis once
// after New before serving any request.
func New(db *store.Store, net *netparams.Params) *AccountStore {
	return &AccountStore{db: db, net: net, log: logging.GetDefault().Component("accountstore")}
}

var versionKey = []byte{0, 0, 0, 0}

// EnsureGenesis implements invariant 1: a fresh store is seeded with the
// network's genesis hash (and highest checkpoint, if any); an existing
// store's block 0 entry is compared against the recomputed genesis hash,
// and a mismatch is fatal — the daemon is pointed at the wrong network.
func (a *AccountStore) EnsureGenesis() error {
	return a.db.TryWrite(func(w *store.Writer) error {
		cur, err := w.Cursor(store.TableBlocks)
		if err != nil {
			return err
		}
		defer cur.Close()

		existing, err := findDupExact(cur, versionKey, func(v []byte) bool {
			info, derr := schema.DecodeBlockInfo(v)
			return derr == nil && info.ID == 0
		})
		if err != nil {
			return err
		}

		genesis := schema.BlockInfo{ID: 0, Hash: schema.Hash(a.net.GenesisHash)}

		if existing == nil {
			if err := w.Put(store.TableBlocks, versionKey, genesis.Encode()); err != nil {
				return err
			}
			if len(a.net.Checkpoints) > 0 {
				top := a.net.Checkpoints[len(a.net.Checkpoints)-1]
				ck := schema.BlockInfo{ID: schema.BlockID(top.Height), Hash: schema.Hash(top.Hash)}
				if err := w.Put(store.TableBlocks, versionKey, ck.Encode()); err != nil {
					return err
				}
			}
			a.log.Info("seeded genesis block", "network", a.net.Name)
			return nil
		}

		stored, derr := schema.DecodeBlockInfo(existing)
		if derr != nil {
			return derr
		}
		if stored.Hash != genesis.Hash {
			return errs.New(errs.KindBadBlockchain, fmt.Sprintf("stored genesis %x does not match network genesis %x", stored.Hash, genesis.Hash))
		}
		return nil
	})
}

// findDupExact scans the dup values at key looking for one matching pred,
// used sparingly — most lookups go through a sort-key-aware GetBothRange
// instead. Exists here because the blocks table's genesis probe needs to
// distinguish id==0 from the (possibly absent) top-of-chain entry sharing
// the same primary key.
func findDupExact(cur cursorLike, key []byte, pred func(value []byte) bool) ([]byte, error) {
	k, v, err := cur.Get(key, nil, opSetKey)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	for {
		if pred(v) {
			out := make([]byte, len(v))
			copy(out, v)
			return out, nil
		}
		k, v, err = cur.Get(nil, nil, opNextDup)
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		_ = k
	}
}
