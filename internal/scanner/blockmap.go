package scanner

import (
	"fmt"

	"github.com/cryptonote-lws/lws/internal/cryptoutil"
	"github.com/cryptonote-lws/lws/internal/rpcclient"
	"github.com/cryptonote-lws/lws/internal/scanmatch"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/pkg/helpers"
)

// rctTypeBulletproof2 is the lowest rct_signatures.type value using the
// domain-separated (Bulletproof2-or-later) amount encoding; anything
// below it uses the legacy direct-XOR-by-scalar form.
const rctTypeBulletproof2 = 4

// convertTx turns one decoded RPC transaction into a scanmatch.ParsedTx.
// ok is false when the transaction carries no tx_extra public key, in
// which case it can neither pay nor be spendable by any account and
// scan_transaction skips it outright, matching the original scanner's
// early return.
func convertTx(rtx rpcclient.RPCTransaction, height schema.BlockID, timestamp uint64, txHash schema.Hash, outputIndices []uint64, isCoinbase bool) (*scanmatch.ParsedTx, bool, error) {
	extra, err := parseTxExtra(rtx.Extra)
	if err != nil {
		return nil, false, err
	}
	if !extra.hasPubKey {
		return nil, false, nil
	}

	ptx := &scanmatch.ParsedTx{
		Height:                height,
		Timestamp:             timestamp,
		TxHash:                txHash,
		TxPrefixHash:          txHash,
		UnlockTime:            rtx.UnlockTime,
		TxPublicKey:           extra.pubKey,
		HasEncryptedPaymentID: extra.hasShortPaymentID,
		EncryptedPaymentID:    extra.shortPaymentID,
		HasLongPaymentID:      extra.hasLongPaymentID,
		LongPaymentID:         extra.longPaymentID,
		IsCoinbase:            isCoinbase,
		GlobalOutputIndices:   outputIndices,
	}

	for _, in := range rtx.Vin {
		if in.Key == nil {
			continue
		}
		keyImage, err := helpers.HexToFixed32(in.Key.KeyImage)
		if err != nil {
			return nil, false, fmt.Errorf("scanner: decode key image: %w", err)
		}
		ptx.Inputs = append(ptx.Inputs, scanmatch.TxInputKey{
			Amount:     in.Key.Amount,
			KeyOffsets: in.Key.KeyOffsets,
			KeyImage:   schema.Hash(keyImage),
		})
	}

	for _, out := range rtx.Vout {
		key, err := helpers.HexToFixed32(out.Target.Key)
		if err != nil {
			return nil, false, fmt.Errorf("scanner: decode output key: %w", err)
		}
		ptx.Outputs = append(ptx.Outputs, scanmatch.TxOutputKey{
			Amount: out.Amount,
			Key:    schema.Hash(key),
		})
	}

	if rtx.RctSignatures != nil && !isCoinbase {
		rct := rtx.RctSignatures
		ptx.RCT.Present = true
		ptx.RCT.Bulletproof2OrLater = rct.Type >= rctTypeBulletproof2

		ptx.RCT.EcdhAmount = make([][8]byte, len(rct.EcdhInfo))
		for i, e := range rct.EcdhInfo {
			amt, err := helpers.HexToBytes(e.Amount)
			if err != nil {
				return nil, false, fmt.Errorf("scanner: decode ecdh amount %d: %w", i, err)
			}
			if len(amt) != 8 {
				return nil, false, fmt.Errorf("scanner: ecdh amount %d has length %d, want 8", i, len(amt))
			}
			copy(ptx.RCT.EcdhAmount[i][:], amt)
		}

		ptx.RCT.OutPkMask = make([]schema.Hash, len(rct.OutPk))
		for i, m := range rct.OutPk {
			mask, err := helpers.HexToFixed32(m)
			if err != nil {
				return nil, false, fmt.Errorf("scanner: decode outPk %d: %w", i, err)
			}
			ptx.RCT.OutPkMask[i] = schema.Hash(mask)
		}
	}

	return ptx, true, nil
}

// minerTxHash stands in for get_transaction_hash(miner_tx): the node's
// JSON transcript of get_blocks_fast gives us the miner transaction
// already decoded rather than as a raw blob, so its true binary hash
// isn't recoverable from the fields we have. Hashing a canonical
// encoding of the fields scan_transaction actually reads is a
// deterministic stand-in, stable for one block across repeated scans.
func minerTxHash(tx rpcclient.RPCTransaction) schema.Hash {
	h := cryptoutil.Keccak256([]byte(fmt.Sprintf("%d|%d|%x|%+v|%+v", tx.Version, tx.UnlockTime, []byte(tx.Extra), tx.Vin, tx.Vout)))
	return schema.Hash(h)
}

// computeBlockHash stands in for get_block_hash(block): the true block
// hash requires the binary header fields (major/minor version, nonce)
// and the merkle root over every transaction hash, none of which
// get_blocks_fast's JSON transcript carries. Folding the fields we do
// have — the previous id, timestamp, and every transaction hash in
// mined order — into one hash gives a value that is still unique per
// distinct block content and stable across repeated scans, which is
// all sync_chain's hash-comparison actually needs.
func computeBlockHash(header rpcclient.RPCBlockHeader, minerHash schema.Hash, txHashes []schema.Hash) schema.Hash {
	data := make([]byte, 0, 32+8+32*(len(txHashes)+1))
	data = append(data, []byte(header.PrevID)...)
	for i := 0; i < 8; i++ {
		data = append(data, byte(header.Timestamp>>(8*i)))
	}
	data = append(data, minerHash[:]...)
	for _, h := range txHashes {
		data = append(data, h[:]...)
	}
	return cryptoutil.Keccak256(data)
}
