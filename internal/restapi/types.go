package restapi

import (
	"encoding/json"
	"strconv"
)

// Amount is an atomic-unit quantity serialized as a JSON string, matching
// the light-wallet convention of never putting a 64-bit integer in a bare
// JSON number (some client runtimes silently lose precision above 2^53).
type Amount uint64

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(a), 10))
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, perr := strconv.ParseUint(s, 10, 64)
		if perr != nil {
			return perr
		}
		*a = Amount(v)
		return nil
	}
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Amount(n)
	return nil
}

// Credentials is the address/view_key pair every authenticated endpoint
// embeds, per §6.2.
type Credentials struct {
	Address string `json:"address"`
	ViewKey string `json:"view_key"`
}

// LoginRequest is `/login`'s body.
type LoginRequest struct {
	Credentials
	CreateAccount    bool `json:"create_account"`
	GeneratedLocally bool `json:"generated_locally"`
}

// LoginResponse is `/login`'s body.
type LoginResponse struct {
	NewAddress       bool `json:"new_address"`
	GeneratedLocally bool `json:"generated_locally"`
}

// SpentOutputView is one spent-output entry shared by `/get_address_info`
// and `/get_address_txs`.
type SpentOutputView struct {
	Amount   Amount `json:"amount"`
	KeyImage string `json:"key_image"`
	TxHash   string `json:"tx_hash"`
	Height   uint64 `json:"height"`
	OutIndex uint32 `json:"out_index"`
	Mixin    uint32 `json:"mixin"`
}

// AddressInfoResponse is `/get_address_info`'s body.
type AddressInfoResponse struct {
	LockedFunds        Amount            `json:"locked_funds"`
	TotalReceived      Amount            `json:"total_received"`
	TotalSent          Amount            `json:"total_sent"`
	ScannedHeight      uint64            `json:"scanned_height"`
	ScannedBlockHeight uint64            `json:"scanned_block_height"`
	StartHeight        uint64            `json:"start_height"`
	TransactionHeight  uint64            `json:"transaction_height"`
	BlockchainHeight   uint64            `json:"blockchain_height"`
	SpentOutputs       []SpentOutputView `json:"spent_outputs"`
}

// TxView is one merged transaction entry of `/get_address_txs`.
type TxView struct {
	Height     uint64            `json:"height"`
	Hash       string            `json:"hash"`
	Timestamp  uint64            `json:"timestamp"`
	UnlockTime uint64            `json:"unlock_time"`
	Amount     Amount            `json:"amount"`
	Spent      Amount            `json:"spent"`
	Mixin      uint32            `json:"mixin"`
	Spends     []SpentOutputView `json:"spent_outputs"`
}

// AddressTxsResponse is `/get_address_txs`'s body.
type AddressTxsResponse struct {
	TotalReceived      Amount   `json:"total_received"`
	ScannedHeight      uint64   `json:"scanned_height"`
	ScannedBlockHeight uint64   `json:"scanned_block_height"`
	StartHeight        uint64   `json:"start_height"`
	TransactionHeight  uint64   `json:"transaction_height"`
	BlockchainHeight   uint64   `json:"blockchain_height"`
	Transactions       []TxView `json:"transactions"`
}

// UnspentOutsRequest is `/get_unspent_outs`'s body.
type UnspentOutsRequest struct {
	Credentials
	Amount        uint64 `json:"amount"`
	Mixin         uint32 `json:"mixin"`
	DustThreshold uint64 `json:"dust_threshold"`
	UseDust       bool   `json:"use_dust"`
}

// UnspentOutputView is one candidate output of `/get_unspent_outs`.
type UnspentOutputView struct {
	Amount         Amount   `json:"amount"`
	GlobalIndex    uint64   `json:"global_index"`
	TxHash         string   `json:"tx_hash"`
	TxPubKey       string   `json:"tx_pub_key"`
	RctMask        string   `json:"rct_mask"`
	Height         uint64   `json:"height"`
	Timestamp      uint64   `json:"timestamp"`
	UnlockTime     uint64   `json:"unlock_time"`
	Mixin          uint32   `json:"mixin"`
	SpentKeyImages []string `json:"spend_key_images,omitempty"`
}

// UnspentOutsResponse is `/get_unspent_outs`'s body.
type UnspentOutsResponse struct {
	PerByteFee       uint64              `json:"per_byte_fee"`
	PerOutputFee     uint64              `json:"per_output_fee"`
	QuantizationMask uint64              `json:"quantization_mask"`
	Amount           Amount              `json:"amount"`
	Outputs          []UnspentOutputView `json:"outputs"`
}

// RandomOutsRequest is `/get_random_outs`'s body.
type RandomOutsRequest struct {
	Count   uint32   `json:"count"`
	Amounts []uint64 `json:"amounts"`
}

// RandomOutput is one drawn ring member.
type RandomOutput struct {
	GlobalIndex   uint64 `json:"global_index"`
	PublicKey     string `json:"public_key"`
	RctCommitment string `json:"rct_commitment,omitempty"`
}

// RandomAmountOuts groups the ring members drawn for one requested amount.
type RandomAmountOuts struct {
	Amount  uint64         `json:"amount"`
	Outputs []RandomOutput `json:"outs"`
}

// RandomOutsResponse is `/get_random_outs`'s body.
type RandomOutsResponse struct {
	Amounts []RandomAmountOuts `json:"amount_outs"`
}

// ImportRequestResponse is `/import_request`'s body.
type ImportRequestResponse struct {
	ImportFee        Amount `json:"import_fee"`
	Status           string `json:"status"`
	NewRequest       bool   `json:"new_request"`
	RequestFulfilled bool   `json:"request_fulfilled"`
}

// SubmitRawTxRequest is `/submit_raw_tx`'s body.
type SubmitRawTxRequest struct {
	Tx string `json:"tx"`
}

// SubmitRawTxResponse is `/submit_raw_tx`'s body.
type SubmitRawTxResponse struct {
	Status string `json:"status"`
}

// errorResponse is the body written for every non-2xx response.
type errorResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}
