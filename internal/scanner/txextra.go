package scanner

import (
	"fmt"

	"github.com/cryptonote-lws/lws/internal/schema"
)

const (
	extraTagPadding             = 0x00
	extraTagPubkey              = 0x01
	extraTagNonce               = 0x02
	extraTagMergeMining         = 0x03
	extraTagAdditionalPubkeys   = 0x04
	extraTagMysteriousMinergate = 0xde

	nonceTagPaymentID          = 0x00
	nonceTagEncryptedPaymentID = 0x01
)

// parsedExtra is what scan_transaction needs out of tx_extra: the
// transaction's public key and at most one payment id variant.
type parsedExtra struct {
	pubKey    schema.Hash
	hasPubKey bool

	hasLongPaymentID bool
	longPaymentID    schema.Hash

	hasShortPaymentID bool
	shortPaymentID    [8]byte
}

// parseTxExtra walks the tx_extra TLV stream, keeping the first public
// key and the first payment id it finds and skipping fields it
// doesn't need, the same tolerant-of-unknown-fields approach
// cryptonote::parse_tx_extra takes.
func parseTxExtra(extra []byte) (parsedExtra, error) {
	var out parsedExtra
	i := 0
	for i < len(extra) {
		tag := extra[i]
		i++
		switch tag {
		case extraTagPadding:
			// single zero byte, no length prefix

		case extraTagPubkey:
			if i+32 > len(extra) {
				return out, fmt.Errorf("scanner: truncated tx_extra pubkey field")
			}
			if !out.hasPubKey {
				copy(out.pubKey[:], extra[i:i+32])
				out.hasPubKey = true
			}
			i += 32

		case extraTagNonce:
			if i >= len(extra) {
				return out, fmt.Errorf("scanner: truncated tx_extra nonce length")
			}
			n := int(extra[i])
			i++
			if i+n > len(extra) {
				return out, fmt.Errorf("scanner: truncated tx_extra nonce body")
			}
			parseNonce(extra[i:i+n], &out)
			i += n

		case extraTagMergeMining, extraTagAdditionalPubkeys, extraTagMysteriousMinergate:
			n, adv, err := readVarint(extra[i:])
			if err != nil {
				return out, err
			}
			i += adv
			if i+int(n) > len(extra) {
				return out, fmt.Errorf("scanner: truncated tx_extra field 0x%02x", tag)
			}
			i += int(n)

		default:
			// No declared length for an unknown tag: stop rather than
			// misinterpret the remaining bytes as something else.
			return out, nil
		}
	}
	return out, nil
}

func parseNonce(nonce []byte, out *parsedExtra) {
	if len(nonce) == 0 {
		return
	}
	switch nonce[0] {
	case nonceTagPaymentID:
		if len(nonce) >= 33 && !out.hasLongPaymentID {
			copy(out.longPaymentID[:], nonce[1:33])
			out.hasLongPaymentID = true
		}
	case nonceTagEncryptedPaymentID:
		if len(nonce) >= 9 && !out.hasShortPaymentID {
			copy(out.shortPaymentID[:], nonce[1:9])
			out.hasShortPaymentID = true
		}
	}
}

// readVarint reads a little-endian base-128 varint, the same encoding
// cryptonote's tools::var_int uses, returning the value and how many
// bytes it consumed.
func readVarint(b []byte) (uint64, int, error) {
	var v uint64
	var shift uint
	for i, c := range b {
		v |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
		if shift > 63 {
			return 0, 0, fmt.Errorf("scanner: varint too long")
		}
	}
	return 0, 0, fmt.Errorf("scanner: truncated varint")
}
