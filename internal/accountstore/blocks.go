package accountstore

import (
	"fmt"

	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/internal/store"
)

// GetLastBlock returns the highest block stored, the top of the locally
// synced chain.
func (a *AccountStore) GetLastBlock() (schema.BlockInfo, error) {
	var out schema.BlockInfo
	err := a.db.View(func(r *store.Reader) error {
		cur, err := r.Cursor(store.TableBlocks)
		if err != nil {
			return err
		}
		defer cur.Close()

		_, v, err := cur.Get(versionKey, nil, opSetKey)
		if err != nil {
			return err
		}
		_, v, err = cur.Get(nil, nil, opLastDup)
		if err != nil {
			return err
		}
		out, err = schema.DecodeBlockInfo(v)
		return err
	})
	if err != nil {
		return schema.BlockInfo{}, fmt.Errorf("accountstore: get last block: %w", err)
	}
	return out, nil
}

// GetChainSync returns the current top-of-chain height, the starting point
// for chain-sync's catch-up loop.
func (a *AccountStore) GetChainSync() (schema.BlockID, error) {
	info, err := a.GetLastBlock()
	if err != nil {
		return 0, err
	}
	return info.ID, nil
}
