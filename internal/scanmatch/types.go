package scanmatch

import "github.com/cryptonote-lws/lws/internal/schema"

// TxInputKey is a to_key input spending a ring of prior outputs.
type TxInputKey struct {
	Amount     uint64   // 0 for RingCT inputs
	KeyOffsets []uint64 // deltas; caller has NOT pre-summed these
	KeyImage   schema.Hash
}

// TxOutputKey is a to_key output.
type TxOutputKey struct {
	Amount uint64 // 0 for RingCT outputs
	Key    schema.Hash
}

// RCTSignatures carries the subset of a transaction's RingCT data the
// matcher needs to recover amounts: one ecdh info entry and one output
// commitment per output, indexed the same as Outputs.
type RCTSignatures struct {
	// Present is false for a fully-transparent (v1) transaction.
	Present bool
	// Bulletproof2OrLater selects the domain-separated amount/mask
	// derivation over the legacy direct-XOR-by-scalar form.
	Bulletproof2OrLater bool
	EcdhAmount          [][8]byte    // encrypted amount per output
	OutPkMask           []schema.Hash // commitment per output
}

// ParsedTx is the matcher's scan unit: one transaction plus the chain
// context it was mined in. internal/scanner's convertTx builds these from
// internal/rpcclient's decoded transactions; internal/scanmatch never
// touches the wire format itself.
type ParsedTx struct {
	Height       schema.BlockID
	Timestamp    uint64
	TxHash       schema.Hash
	TxPrefixHash schema.Hash
	UnlockTime   uint64

	// TxPublicKey is R, extracted from tx_extra. A transaction with no
	// R is skipped entirely by the caller before Match is invoked.
	TxPublicKey schema.Hash
	// HasEncryptedPaymentID / EncryptedPaymentID is extra_nonce's 8-byte
	// short payment ID, if present.
	HasEncryptedPaymentID bool
	EncryptedPaymentID    [8]byte
	// HasLongPaymentID / LongPaymentID is extra_nonce's 32-byte clear
	// payment id, if present (deprecated but still accepted on read).
	HasLongPaymentID bool
	LongPaymentID    schema.Hash

	IsCoinbase bool
	Inputs     []TxInputKey
	Outputs    []TxOutputKey
	// GlobalOutputIndices[i] is the chain-wide RingCT output index
	// assigned to Outputs[i].
	GlobalOutputIndices []uint64

	RCT RCTSignatures
}

// AccountContext is the minimal per-account state Match needs: the view
// key to derive the shared secret and the spend key to test ownership.
type AccountContext struct {
	AccountID   schema.AccountID
	ViewKey     schema.ViewKey
	SpendPublic schema.Hash
	ScanHeight  schema.BlockID
}

// SpendableLookup resolves whether the account has a recorded output at
// a given OutputId, returning its SpendMeta if so.
// internal/scanner supplies this backed by accountstore so scanmatch stays
// free of store access.
type SpendableLookup func(account schema.AccountID, id schema.OutputID) (schema.SpendMeta, bool, error)

// MatchResult is everything one transaction produced for one account.
type MatchResult struct {
	Outputs []schema.Output
	Spends  []schema.Spend
}
