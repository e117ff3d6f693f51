package query

import (
	"github.com/cryptonote-lws/lws/internal/accountstore"
	"github.com/cryptonote-lws/lws/internal/schema"
)

// TxEntry is one merged receive/spend row of `/get_address_txs`: the
// receive side (Meta/Timestamp/UnlockTime) if this account received
// anything in the transaction, plus every spend it made in the same
// transaction.
type TxEntry struct {
	Link       schema.TxLink
	Meta       schema.SpendMeta
	Timestamp  uint64
	UnlockTime uint64
	HasReceive bool
	Spends     []SpentOutput
	Spent      uint64
}

// AddressTxs is the projection behind `/get_address_txs`.
type AddressTxs struct {
	TotalReceived      uint64
	ScannedHeight      schema.BlockID
	ScannedBlockHeight schema.BlockID
	StartHeight        schema.BlockID
	TransactionHeight  schema.BlockID
	BlockchainHeight   schema.BlockID
	Transactions       []TxEntry
}

// BuildAddressTxs merges account's outputs and spends stream, both
// already ordered by (link.height, link.tx_hash, ...), into one
// per-transaction list: a merge-join over two sorted sequences, the same
// shape the original backend uses to avoid materializing either side
// twice.
func BuildAddressTxs(store *accountstore.AccountStore, account schema.Account, chainTop schema.BlockID) (AddressTxs, error) {
	resp := AddressTxs{
		ScannedHeight:      account.ScanHeight,
		ScannedBlockHeight: account.ScanHeight,
		StartHeight:        account.StartHeight,
		TransactionHeight:  chainTop,
		BlockchainHeight:   chainTop,
	}

	var outs []schema.Output
	for out, err := range store.GetOutputs(account.ID) {
		if err != nil {
			return AddressTxs{}, err
		}
		outs = append(outs, out)
	}
	var spends []schema.Spend
	for sp, err := range store.GetSpends(account.ID) {
		if err != nil {
			return AddressTxs{}, err
		}
		spends = append(spends, sp)
	}

	metaByID := make(map[schema.OutputID]schema.SpendMeta, len(outs))
	var oi, si int
	for oi < len(outs) || si < len(spends) {
		takeOutput := si >= len(spends) ||
			(oi < len(outs) && compareTxLink(outs[oi].Link, spends[si].Link) <= 0)

		if takeOutput {
			out := outs[oi]
			oi++
			metaByID[out.Meta.ID] = out.Meta

			if n := len(resp.Transactions); n > 0 && sameTx(resp.Transactions[n-1].Link, out.Link) {
				resp.Transactions[n-1].Meta.Amount += out.Meta.Amount
			} else {
				resp.Transactions = append(resp.Transactions, TxEntry{
					Link:       out.Link,
					Meta:       out.Meta,
					Timestamp:  out.Timestamp,
					UnlockTime: out.UnlockTime,
					HasReceive: true,
				})
			}
			resp.TotalReceived += out.Meta.Amount
			continue
		}

		sp := spends[si]
		si++
		meta, ok := metaByID[sp.Source]
		if !ok {
			return AddressTxs{}, errNoReceiveForSpend(sp)
		}

		n := len(resp.Transactions)
		if n == 0 || !sameTx(resp.Transactions[n-1].Link, sp.Link) {
			resp.Transactions = append(resp.Transactions, TxEntry{
				Link:       sp.Link,
				Meta:       schema.SpendMeta{MixinCount: sp.MixinCount},
				Timestamp:  sp.Timestamp,
				UnlockTime: sp.UnlockTime,
			})
			n = len(resp.Transactions)
		}
		entry := &resp.Transactions[n-1]
		entry.Spends = append(entry.Spends, SpentOutput{Meta: meta, Spend: sp})
		entry.Spent += meta.Amount
	}

	return resp, nil
}
