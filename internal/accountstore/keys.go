package accountstore

import (
	"encoding/binary"

	"github.com/cryptonote-lws/lws/internal/schema"
)

// encodeBlockIDKey renders a BlockID as a big-endian 8-byte primary key,
// the form every height-keyed table (accounts_by_height, outputs/spends'
// link.height component) uses so MDBX's byte-lexicographic key compare
// matches numeric height order.
func encodeBlockIDKey(id schema.BlockID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

func decodeBlockIDKey(buf []byte) schema.BlockID {
	return schema.BlockID(binary.BigEndian.Uint64(buf))
}

// encodeAccountIDKey renders an AccountID as a big-endian 4-byte primary
// key, used by outputs/spends which are keyed by AccountId.
func encodeAccountIDKey(id schema.AccountID) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(id))
	return buf
}

func encodeOutputIDKey(id schema.OutputID) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[0:8], id.AmountHi)
	binary.BigEndian.PutUint64(buf[8:16], id.IndexLo)
	return buf
}
