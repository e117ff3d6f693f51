package restapi

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/cryptonote-lws/lws/internal/address"
	"github.com/cryptonote-lws/lws/internal/cryptoutil"
	"github.com/cryptonote-lws/lws/internal/errs"
	"github.com/cryptonote-lws/lws/internal/query"
	"github.com/cryptonote-lws/lws/internal/ringpicker"
	"github.com/cryptonote-lws/lws/internal/rpcclient"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/pkg/helpers"
)

// authenticate verifies creds the way the original's key_check does:
// the view secret key must actually derive the address's view public
// key. It never touches the store.
func authenticate(creds Credentials, s *Server) (schema.AccountAddress, schema.ViewKey, error) {
	addr, err := address.Decode(s.params, creds.Address)
	if err != nil {
		return schema.AccountAddress{}, schema.ViewKey{}, err
	}

	raw, err := helpers.HexToFixed32(creds.ViewKey)
	if err != nil {
		return schema.AccountAddress{}, schema.ViewKey{}, errs.New(errs.KindBadViewKey, "malformed view key")
	}
	if helpers.IsZeroBytes(raw[:]) {
		return schema.AccountAddress{}, schema.ViewKey{}, errs.New(errs.KindBadViewKey, "view key is all zero")
	}
	viewKey := schema.ViewKey(raw)

	derived, err := cryptoutil.SecretToPublic(viewKey)
	if err != nil {
		return schema.AccountAddress{}, schema.ViewKey{}, errs.Wrap(errs.KindBadViewKey, err, "view key derivation failed")
	}
	if !helpers.ConstantTimeCompare(derived[:], addr.ViewPublic[:]) {
		return schema.AccountAddress{}, schema.ViewKey{}, errs.New(errs.KindBadViewKey, "view key does not match address")
	}

	return schema.AccountAddress{ViewPublic: addr.ViewPublic, SpendPublic: addr.SpendPublic}, viewKey, nil
}

// openAccount authenticates creds and loads the matching account,
// rejecting hidden accounts as not-found the way open_account does.
func (s *Server) openAccount(creds Credentials) (schema.Account, error) {
	addr, _, err := authenticate(creds, s)
	if err != nil {
		return schema.Account{}, err
	}

	status, account, err := s.store.GetAccount(addr)
	if err != nil {
		return schema.Account{}, err
	}
	if status == schema.StatusHidden {
		return schema.Account{}, errs.New(errs.KindAccountNotFound, "account hidden")
	}
	return account, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	addr, key, err := authenticate(req.Credentials, s)
	if err != nil {
		writeError(w, err)
		return
	}

	status, account, err := s.store.GetAccount(addr)
	if err == nil && status != schema.StatusHidden {
		writeJSON(w, http.StatusOK, LoginResponse{
			NewAddress:       false,
			GeneratedLocally: account.Flags&schema.FlagGeneratedLocally != 0,
		})
		return
	}
	if kind, ok := errs.KindOf(err); !ok || kind != errs.KindAccountNotFound {
		writeError(w, err)
		return
	}

	if !req.CreateAccount {
		writeError(w, errs.New(errs.KindAccountNotFound, "no account for address"))
		return
	}

	var flags schema.AccountFlags
	if req.GeneratedLocally {
		flags = schema.FlagGeneratedLocally
	}
	if err := s.store.CreationRequest(addr, key, flags, uint64(time.Now().Unix())); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{NewAddress: true, GeneratedLocally: req.GeneratedLocally})
}

func (s *Server) handleAddressInfo(w http.ResponseWriter, r *http.Request) {
	var req Credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	account, err := s.openAccount(req)
	if err != nil {
		writeError(w, err)
		return
	}

	tip, err := s.store.GetLastBlock()
	if err != nil {
		writeError(w, err)
		return
	}

	info, err := query.BuildAddressInfo(s.store, account, tip.ID, uint64(time.Now().Unix()))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := AddressInfoResponse{
		LockedFunds:        Amount(info.LockedFunds),
		TotalReceived:      Amount(info.TotalReceived),
		TotalSent:          Amount(info.TotalSent),
		ScannedHeight:      uint64(info.ScannedHeight),
		ScannedBlockHeight: uint64(info.ScannedBlockHeight),
		StartHeight:        uint64(info.StartHeight),
		TransactionHeight:  uint64(info.TransactionHeight),
		BlockchainHeight:   uint64(info.BlockchainHeight),
	}
	for _, sp := range info.SpentOutputs {
		resp.SpentOutputs = append(resp.SpentOutputs, SpentOutputView{
			Amount:   Amount(sp.Meta.Amount),
			KeyImage: helpers.BytesToHex(sp.Spend.KeyImage[:]),
			TxHash:   helpers.BytesToHex(sp.Spend.Link.TxHash[:]),
			Height:   uint64(sp.Spend.Link.Height),
			OutIndex: sp.Meta.OutIndexInTx,
			Mixin:    sp.Spend.MixinCount,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddressTxs(w http.ResponseWriter, r *http.Request) {
	var req Credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	account, err := s.openAccount(req)
	if err != nil {
		writeError(w, err)
		return
	}

	tip, err := s.store.GetLastBlock()
	if err != nil {
		writeError(w, err)
		return
	}

	txs, err := query.BuildAddressTxs(s.store, account, tip.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := AddressTxsResponse{
		TotalReceived:      Amount(txs.TotalReceived),
		ScannedHeight:      uint64(txs.ScannedHeight),
		ScannedBlockHeight: uint64(txs.ScannedBlockHeight),
		StartHeight:        uint64(txs.StartHeight),
		TransactionHeight:  uint64(txs.TransactionHeight),
		BlockchainHeight:   uint64(txs.BlockchainHeight),
	}
	for _, tx := range txs.Transactions {
		view := TxView{
			Height:     uint64(tx.Link.Height),
			Hash:       helpers.BytesToHex(tx.Link.TxHash[:]),
			Timestamp:  tx.Timestamp,
			UnlockTime: tx.UnlockTime,
			Mixin:      tx.Meta.MixinCount,
			Spent:      Amount(tx.Spent),
		}
		if tx.HasReceive {
			view.Amount = Amount(tx.Meta.Amount)
		}
		for _, sp := range tx.Spends {
			view.Spends = append(view.Spends, SpentOutputView{
				Amount:   Amount(sp.Meta.Amount),
				KeyImage: helpers.BytesToHex(sp.Spend.KeyImage[:]),
				TxHash:   helpers.BytesToHex(sp.Spend.Link.TxHash[:]),
				Height:   uint64(sp.Spend.Link.Height),
				OutIndex: sp.Meta.OutIndexInTx,
				Mixin:    sp.Spend.MixinCount,
			})
		}
		resp.Transactions = append(resp.Transactions, view)
	}

	writeJSON(w, http.StatusOK, resp)
}

// dustThresholdOrDefault mirrors the original's use_dust flag: a caller
// asking for dust outputs passes dust_threshold=0 explicitly rather than
// omitting it, so use_dust only overrides a non-zero request value.
func dustThresholdOrDefault(req UnspentOutsRequest) uint64 {
	if req.UseDust {
		return 0
	}
	return req.DustThreshold
}

func (s *Server) handleUnspentOuts(w http.ResponseWriter, r *http.Request) {
	var req UnspentOutsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	account, err := s.openAccount(req.Credentials)
	if err != nil {
		writeError(w, err)
		return
	}

	outs, total, err := query.BuildUnspentOutputs(s.store, account.ID, dustThresholdOrDefault(req), req.Mixin)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := UnspentOutsResponse{Amount: Amount(total)}

	estimate, err := s.rpc.GetFeeEstimate(r.Context(), 10)
	if err != nil {
		writeError(w, err)
		return
	}
	resp.PerByteFee = estimate.Fee
	resp.QuantizationMask = estimate.QuantizationMask

	for _, out := range outs {
		view := UnspentOutputView{
			Amount:      Amount(out.Meta.Amount),
			GlobalIndex: out.Meta.ID.IndexLo,
			TxHash:      helpers.BytesToHex(out.Link.TxHash[:]),
			TxPubKey:    helpers.BytesToHex(out.PubKey[:]),
			RctMask:     helpers.BytesToHex(out.RctMask[:]),
			Height:      uint64(out.Link.Height),
			Timestamp:   out.Timestamp,
			UnlockTime:  out.UnlockTime,
			Mixin:       out.Meta.MixinCount,
		}
		for _, ki := range out.SpentKeyImages {
			view.SpentKeyImages = append(view.SpentKeyImages, helpers.BytesToHex(ki[:]))
		}
		resp.Outputs = append(resp.Outputs, view)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRandomOuts(w http.ResponseWriter, r *http.Request) {
	var req RandomOutsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Count == 0 || len(req.Amounts) == 0 {
		writeError(w, errs.New(errs.KindNotEnoughMixin, "no amounts requested"))
		return
	}

	dist, err := s.rpc.GetOutputDistribution(r.Context(), req.Amounts, true, 0, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	rngSource := rand.NewSource(time.Now().UnixNano())
	resp := RandomOutsResponse{}

	for _, entry := range dist.Distributions {
		picker := ringpicker.New(s.params, entry.StartHeight, entry.Distribution, rngSource)
		if !picker.IsValid() {
			writeError(w, errs.New(errs.KindNotEnoughMixin, "not enough outputs for requested mixin"))
			return
		}

		seen := make(map[uint64]bool, req.Count)
		var requests []rpcclient.OutputRequest
		for uint32(len(requests)) < req.Count {
			idx, err := picker.Pick()
			if err != nil {
				writeError(w, err)
				return
			}
			if seen[idx] {
				continue
			}
			seen[idx] = true
			requests = append(requests, rpcclient.OutputRequest{Amount: entry.Amount, Index: idx})
		}

		fetched, err := s.rpc.GetOuts(r.Context(), requests)
		if err != nil {
			writeError(w, err)
			return
		}

		group := RandomAmountOuts{Amount: entry.Amount}
		for i, out := range fetched.Outs {
			group.Outputs = append(group.Outputs, RandomOutput{
				GlobalIndex:   requests[i].Index,
				PublicKey:     out.Key,
				RctCommitment: out.Mask,
			})
		}
		resp.Amounts = append(resp.Amounts, group)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImportRequest(w http.ResponseWriter, r *http.Request) {
	var req Credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	addr, key, err := authenticate(req, s)
	if err != nil {
		writeError(w, err)
		return
	}

	_, account, err := s.store.GetAccount(addr)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ImportRequestResponse{ImportFee: 0}
	resp.RequestFulfilled = account.StartHeight == 0
	if resp.RequestFulfilled {
		resp.Status = "Approved"
		writeJSON(w, http.StatusOK, resp)
		return
	}

	pending := false
	for info, err := range s.store.GetRequests(schema.RequestImport) {
		if err != nil {
			writeError(w, err)
			return
		}
		if info.Address == addr {
			pending = true
			break
		}
	}

	if !pending {
		if err := s.store.ImportRequest(addr, key, 0, uint64(time.Now().Unix())); err != nil {
			writeError(w, err)
			return
		}
		resp.NewRequest = true
		resp.Status = "Accepted, waiting for approval"
	} else {
		resp.Status = "Waiting for Approval"
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitRawTx(w http.ResponseWriter, r *http.Request) {
	var req SubmitRawTxRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.rpc.SendRawTransaction(r.Context(), req.Tx, false)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SubmitRawTxResponse{Status: result.Status})
}
