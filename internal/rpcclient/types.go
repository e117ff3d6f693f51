package rpcclient

import "encoding/json"

// RPCExtra is a transaction's tx_extra byte blob. The node serializes
// it as a JSON array of byte values, not the base64 string
// encoding/json's built-in []byte codec would produce, so it carries
// its own (Un)MarshalJSON.
type RPCExtra []byte

// UnmarshalJSON decodes a JSON array of small integers into raw bytes.
func (e *RPCExtra) UnmarshalJSON(data []byte) error {
	var vals []int
	if err := json.Unmarshal(data, &vals); err != nil {
		return err
	}
	out := make([]byte, len(vals))
	for i, v := range vals {
		out[i] = byte(v)
	}
	*e = out
	return nil
}

// MarshalJSON encodes raw bytes as a JSON array of integers.
func (e RPCExtra) MarshalJSON() ([]byte, error) {
	vals := make([]int, len(e))
	for i, b := range e {
		vals[i] = int(b)
	}
	return json.Marshal(vals)
}

// HashesResult is get_hashes' response: a run of block hashes starting at
// the requested height, used by internal/chainsync to detect reorgs
// without fetching full block bodies.
type HashesResult struct {
	Hashes      []string `json:"m_block_ids"`
	StartHeight uint64   `json:"start_height"`
	CurrentHeight uint64 `json:"current_height"`
}

// RPCToKeyInput is a txin_to_key input: a ring of prior outputs of the
// same amount, spent via its key image.
type RPCToKeyInput struct {
	Amount     uint64   `json:"amount"`
	KeyOffsets []uint64 `json:"key_offsets"`
	KeyImage   string   `json:"k_image"`
}

// RPCGenInput is a txin_gen input: the coinbase marker carrying the
// block height it was mined at, in place of a real ring.
type RPCGenInput struct {
	Height uint64 `json:"height"`
}

// RPCTxIn is one input of a decoded transaction. Exactly one of Key or
// Gen is populated, mirroring the tagged-variant shape the node emits
// for cryptonote::txin_v.
type RPCTxIn struct {
	Key *RPCToKeyInput `json:"key,omitempty"`
	Gen *RPCGenInput   `json:"gen,omitempty"`
}

// RPCTxOutTarget carries an output's spend-check public key.
type RPCTxOutTarget struct {
	Key string `json:"key"`
}

// RPCTxOut is one output of a decoded transaction.
type RPCTxOut struct {
	Amount uint64         `json:"amount"`
	Target RPCTxOutTarget `json:"target"`
}

// RPCEcdhInfo is one output's encrypted amount/mask pair from a
// transaction's rct_signatures.
type RPCEcdhInfo struct {
	Amount string `json:"amount"`
	Mask   string `json:"mask,omitempty"`
}

// RPCRctSignatures is the subset of a transaction's RingCT signature
// data the scanner needs: enough to recover amounts and commitments,
// none of the actual proof material.
type RPCRctSignatures struct {
	Type     uint8         `json:"type"`
	EcdhInfo []RPCEcdhInfo `json:"ecdhInfo,omitempty"`
	OutPk    []string      `json:"outPk,omitempty"`
}

// RPCTransaction is one transaction as the node returns it inside
// get_blocks_fast: already decoded into vin/vout/rct_signatures, not a
// raw blob requiring a separate binary parse.
type RPCTransaction struct {
	Version       uint64            `json:"version"`
	UnlockTime    uint64            `json:"unlock_time"`
	Vin           []RPCTxIn         `json:"vin"`
	Vout          []RPCTxOut        `json:"vout"`
	Extra         RPCExtra          `json:"extra"`
	RctSignatures *RPCRctSignatures `json:"rct_signatures,omitempty"`
}

// RPCBlockHeader is a block's header plus its embedded miner
// transaction, as returned inside a BlockEntry.
type RPCBlockHeader struct {
	Timestamp uint64         `json:"timestamp"`
	PrevID    string         `json:"prev_id"`
	MinerTx   RPCTransaction `json:"miner_tx"`
	TxHashes  []string       `json:"tx_hashes"`
}

// BlockEntry is one block returned by get_blocks_fast: the decoded
// header (with its miner transaction) plus every non-coinbase
// transaction it contains, in mined order.
type BlockEntry struct {
	Block        RPCBlockHeader   `json:"block"`
	Transactions []RPCTransaction `json:"txs"`
}

// BlocksResult is get_blocks_fast's response. OutputIndices[b][t][o] is
// the global RingCT output index assigned to output o of transaction t
// of block b, where t=0 is always the miner transaction.
type BlocksResult struct {
	Blocks        []BlockEntry   `json:"blocks"`
	OutputIndices [][][]uint64   `json:"output_indices"`
	StartHeight   uint64         `json:"start_height"`
	CurrentHeight uint64         `json:"current_height"`
	Status        string         `json:"status"`
}

// HistogramEntry is one bucket of get_output_histogram's response: how
// many outputs of a given amount exist on chain, used by ringpicker to
// size the eligible output set per amount.
type HistogramEntry struct {
	Amount          uint64 `json:"amount"`
	TotalInstances  uint64 `json:"total_instances"`
	UnlockedInstances uint64 `json:"unlocked_instances"`
	RecentInstances uint64 `json:"recent_instances"`
}

// HistogramResult is get_output_histogram's response.
type HistogramResult struct {
	Histogram []HistogramEntry `json:"histogram"`
	Status    string           `json:"status"`
}

// DistributionEntry is one amount's cumulative output count curve, used
// by ringpicker to map a gamma-sampled "how old" choice to a concrete
// global output index.
type DistributionEntry struct {
	Amount          uint64   `json:"amount"`
	StartHeight     uint64   `json:"start_height"`
	Distribution    []uint64 `json:"distribution"`
	Base            uint64   `json:"base"`
	Binary          bool     `json:"binary"`
}

// DistributionResult is get_output_distribution's response.
type DistributionResult struct {
	Distributions []DistributionEntry `json:"distributions"`
	Status        string              `json:"status"`
}

// OutputKeyEntry is one ring member's public key and commitment, as
// returned by get_outs.
type OutputKeyEntry struct {
	Key         string `json:"key"`
	Mask        string `json:"mask"`
	Unlocked    bool   `json:"unlocked"`
	Height      uint64 `json:"height"`
}

// OutsResult is get_outs' response.
type OutsResult struct {
	Outs   []OutputKeyEntry `json:"outs"`
	Status string           `json:"status"`
}

// FeeEstimate is get_fee_estimate's response: a base fee plus per-priority
// multipliers and the minimum mandatory fee (quantization mask).
type FeeEstimate struct {
	Fee              uint64   `json:"fee"`
	Fees             []uint64 `json:"fees"`
	QuantizationMask uint64   `json:"quantization_mask"`
	Status           string   `json:"status"`
}

// RelayResult is send_raw_transaction's response.
type RelayResult struct {
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
	NotRelayed    bool   `json:"not_relayed,omitempty"`
	LowMixin      bool   `json:"low_mixin,omitempty"`
	DoubleSpend   bool   `json:"double_spend,omitempty"`
	InvalidInput  bool   `json:"invalid_input,omitempty"`
	InvalidOutput bool   `json:"invalid_output,omitempty"`
	TooBig        bool   `json:"too_big,omitempty"`
	Overspend     bool   `json:"overspend,omitempty"`
	FeeTooLow     bool   `json:"fee_too_low,omitempty"`
	TxExtraTooBig bool   `json:"tx_extra_too_big,omitempty"`
}

// Accepted reports whether the daemon accepted and relayed the
// transaction.
func (r RelayResult) Accepted() bool {
	return r.Status == "OK" && !r.NotRelayed
}
