package query

import (
	"github.com/cryptonote-lws/lws/internal/accountstore"
	"github.com/cryptonote-lws/lws/internal/schema"
)

// SpentOutput pairs a spent output's receive metadata with the spend
// that consumed it, mirroring the original's transaction_spend pair.
type SpentOutput struct {
	Meta  schema.SpendMeta
	Spend schema.Spend
}

// AddressInfo is the projection behind `/get_address_info`.
type AddressInfo struct {
	LockedFunds        uint64
	TotalReceived      uint64
	TotalSent          uint64
	ScannedHeight      schema.BlockID
	ScannedBlockHeight schema.BlockID
	StartHeight        schema.BlockID
	TransactionHeight  schema.BlockID
	BlockchainHeight   schema.BlockID
	SpentOutputs       []SpentOutput
}

// BuildAddressInfo projects account's outputs and spends, plus the
// store's current chain tip, into an AddressInfo.
func BuildAddressInfo(store *accountstore.AccountStore, account schema.Account, chainTop schema.BlockID, now uint64) (AddressInfo, error) {
	info := AddressInfo{
		ScannedHeight:      account.ScanHeight,
		ScannedBlockHeight: account.ScanHeight,
		StartHeight:        account.StartHeight,
		TransactionHeight:  chainTop,
		BlockchainHeight:   chainTop,
	}

	metaByID := make(map[schema.OutputID]schema.SpendMeta)
	for out, err := range store.GetOutputs(account.ID) {
		if err != nil {
			return AddressInfo{}, err
		}
		info.TotalReceived += out.Meta.Amount
		if isLocked(out.UnlockTime, chainTop, now) {
			info.LockedFunds += out.Meta.Amount
		}
		metaByID[out.Meta.ID] = out.Meta
	}

	for sp, err := range store.GetSpends(account.ID) {
		if err != nil {
			return AddressInfo{}, err
		}
		meta, ok := metaByID[sp.Source]
		if !ok {
			return AddressInfo{}, errNoReceiveForSpend(sp)
		}
		info.TotalSent += meta.Amount
		info.SpentOutputs = append(info.SpentOutputs, SpentOutput{Meta: meta, Spend: sp})
	}

	return info, nil
}
