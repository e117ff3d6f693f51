// Package scanmatch implements the per-transaction, per-account matching
// algorithm of §4.3: given a parsed transaction and an account's keys, it
// recovers which outputs the account received and which of its outputs
// were spent. It performs no I/O — internal/scanner supplies already
// fetched/decoded data and persists whatever Match returns.
package scanmatch

import (
	"fmt"

	"github.com/cryptonote-lws/lws/internal/cryptoutil"
	"github.com/cryptonote-lws/lws/internal/errs"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/pkg/logging"
)

var log = logging.GetDefault().Component("scanmatch")

// Match runs the full §4.3 algorithm for one account against one
// transaction. Callers should only invoke this when
// account.ScanHeight < tx.Height.
func Match(tx *ParsedTx, account AccountContext, lookup SpendableLookup) (MatchResult, error) {
	var result MatchResult

	derivation, err := cryptoutil.KeyDerivation(tx.TxPublicKey, account.ViewKey)
	if err != nil {
		return result, errs.Wrap(errs.KindCryptoFailure, err, "key derivation")
	}

	link := schema.TxLink{Height: tx.Height, TxHash: tx.TxHash}

	spends, mixin, err := matchSpends(tx, account, lookup, link)
	if err != nil {
		return result, err
	}
	result.Spends = spends

	// mixin carries forward the last value the vin loop computed, the same
	// shared-variable pattern the original scanner uses so the vout loop's
	// Output records get the transaction's ring size, not a fresh zero.
	outputs, err := matchReceives(tx, account, derivation, link, mixin)
	if err != nil {
		return result, err
	}
	result.Outputs = outputs

	return result, nil
}

// matchSpends returns the account's spends plus the mixin computed for the
// transaction's last key-offsets input, per spec.md's
// mixin = max(1, key_offsets.len) - 1.
func matchSpends(tx *ParsedTx, account AccountContext, lookup SpendableLookup, link schema.TxLink) ([]schema.Spend, uint32, error) {
	var spends []schema.Spend
	var lastMixin uint32

	for _, in := range tx.Inputs {
		if len(in.KeyOffsets) == 0 {
			continue
		}

		var running uint64
		var lastOffset uint64
		for i, delta := range in.KeyOffsets {
			if i == 0 {
				running = delta
			} else {
				running = lastOffset + delta
			}
			lastOffset = running
		}

		mixin := len(in.KeyOffsets) - 1
		if mixin < 0 {
			mixin = 0
		}
		lastMixin = uint32(mixin)

		id := schema.OutputID{AmountHi: in.Amount, IndexLo: lastOffset}
		meta, found, err := lookup(account.AccountID, id)
		if err != nil {
			return nil, 0, fmt.Errorf("scanmatch: spendable lookup: %w", err)
		}
		if !found {
			continue
		}

		spends = append(spends, schema.Spend{
			Link:       link,
			KeyImage:   in.KeyImage,
			Source:     meta.ID,
			Timestamp:  tx.Timestamp,
			UnlockTime: tx.UnlockTime,
			MixinCount: uint32(mixin),
		})
	}

	return spends, lastMixin, nil
}

func matchReceives(tx *ParsedTx, account AccountContext, derivation schema.Hash, link schema.TxLink, mixin uint32) ([]schema.Output, error) {
	var outputs []schema.Output
	var longPaymentIDUsed bool

	for i, out := range tx.Outputs {
		candidate, err := cryptoutil.DeriveSubaddressPublicKey(out.Key, derivation, uint32(i))
		if err != nil {
			log.Warn("deriving candidate spend key failed, skipping output", "tx", tx.TxHash, "index", i, "err", err)
			continue
		}
		if candidate != account.SpendPublic {
			continue
		}

		amount := out.Amount
		var rctMask schema.Hash
		extraPacked := uint8(0)

		if out.Amount == 0 && tx.RCT.Present && !tx.IsCoinbase {
			if i >= len(tx.RCT.EcdhAmount) || i >= len(tx.RCT.OutPkMask) {
				log.Warn("rct data shorter than outputs, skipping output", "tx", tx.TxHash, "index", i)
				continue
			}

			var decoded cryptoutil.RingCTAmount
			var derr error
			if tx.RCT.Bulletproof2OrLater {
				decoded, derr = cryptoutil.DecodeAmountBulletproof2(tx.RCT.EcdhAmount[i], derivation, uint32(i))
			} else {
				decoded, derr = cryptoutil.DecodeAmountLegacy(tx.RCT.EcdhAmount[i], derivation, uint32(i))
			}
			if derr != nil {
				log.Warn("rct amount decode failed, skipping output", "tx", tx.TxHash, "index", i, "err", derr)
				continue
			}
			amount = decoded.Amount
			rctMask = tx.RCT.OutPkMask[i]
		}

		var pid schema.PaymentID
		if tx.HasLongPaymentID && !longPaymentIDUsed {
			pid.Long = tx.LongPaymentID
			extraPacked |= schema.ExtraHasLongPaymentID
			longPaymentIDUsed = true
		} else if tx.HasEncryptedPaymentID {
			pid.Short = cryptoutil.DecryptPaymentID8(tx.EncryptedPaymentID, derivation)
			extraPacked |= schema.ExtraHasShortPaymentID
		}
		if tx.IsCoinbase {
			extraPacked |= schema.ExtraIsCoinbase
		}

		outMixin := mixin
		if tx.IsCoinbase {
			outMixin = 0
		}

		globalIndex := uint64(0)
		if i < len(tx.GlobalOutputIndices) {
			globalIndex = tx.GlobalOutputIndices[i]
		}

		outputs = append(outputs, schema.Output{
			Link: link,
			Meta: schema.SpendMeta{
				ID:           schema.OutputID{AmountHi: out.Amount, IndexLo: globalIndex},
				Amount:       amount,
				MixinCount:   outMixin,
				OutIndexInTx: uint32(i),
				TxPubkey:     tx.TxPublicKey,
			},
			Timestamp:    tx.Timestamp,
			UnlockTime:   tx.UnlockTime,
			TxPrefixHash: tx.TxPrefixHash,
			PubKey:       out.Key,
			RctMask:      rctMask,
			ExtraPacked:  extraPacked,
			PaymentID:    pid,
		})
	}

	return outputs, nil
}
