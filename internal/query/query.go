// Package query turns an accountstore snapshot into the wallet API
// response shapes of §6.2. Every function here is a pure projection: it
// reads from an *accountstore.AccountStore and returns plain structs, with
// no knowledge of HTTP, JSON field names, or hex encoding — that belongs
// to internal/restapi.
package query

import "github.com/cryptonote-lws/lws/internal/schema"

// maxBlockNumber mirrors cryptonote's CRYPTONOTE_MAX_BLOCK_NUMBER: an
// unlock_time at or above this is a unix timestamp, below it a block
// height, per the protocol's overloaded unlock_time field.
const maxBlockNumber = 500000000

// isLocked reports whether an output/spend with the given unlock_time is
// still locked at chain tip `last`, as of wall-clock `now`.
func isLocked(unlockTime uint64, last schema.BlockID, now uint64) bool {
	if unlockTime >= maxBlockNumber {
		return unlockTime > now
	}
	return schema.BlockID(unlockTime) > last
}

func compareTxLink(a, b schema.TxLink) int {
	if a.Height != b.Height {
		if a.Height < b.Height {
			return -1
		}
		return 1
	}
	for i := range a.TxHash {
		if a.TxHash[i] != b.TxHash[i] {
			if a.TxHash[i] < b.TxHash[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func sameTx(a, b schema.TxLink) bool {
	return a.Height == b.Height && a.TxHash == b.TxHash
}
