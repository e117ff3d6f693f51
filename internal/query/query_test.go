package query

import (
	"path/filepath"
	"testing"

	"github.com/cryptonote-lws/lws/internal/accountstore"
	"github.com/cryptonote-lws/lws/internal/netparams"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/internal/store"
)

func openTestStore(t *testing.T) *accountstore.AccountStore {
	t.Helper()
	cfg := &store.Config{DataDir: filepath.Join(t.TempDir(), "lws.mdbx"), MaxSizeMB: 64}
	db, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	net := netparams.MustGet(netparams.Testnet)
	as := accountstore.New(db, net)
	if err := as.EnsureGenesis(); err != nil {
		t.Fatalf("EnsureGenesis() error = %v", err)
	}
	return as
}

func addrFor(seed byte) schema.AccountAddress {
	var view, spend schema.Hash
	for i := range view {
		view[i] = seed + byte(i)
		spend[i] = seed + byte(i) + 64
	}
	return schema.AccountAddress{ViewPublic: view, SpendPublic: spend}
}

func TestBuildAddressInfoSumsReceivesAndSpends(t *testing.T) {
	as := openTestStore(t)
	addr := addrFor(1)
	acc, err := as.AddAccount(addr, schema.ViewKey{}, 1)
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	recvOut := schema.OutputID{IndexLo: 42}
	out := schema.Output{
		Link:       schema.TxLink{Height: 1, TxHash: schema.Hash{1}},
		Meta:       schema.SpendMeta{ID: recvOut, Amount: 1_000_000},
		UnlockTime: 0,
	}
	sp := schema.Spend{
		Link:     schema.TxLink{Height: 2, TxHash: schema.Hash{2}},
		KeyImage: schema.Hash{9},
		Source:   recvOut,
	}

	if _, err := as.Update(1, []schema.Hash{{11}, {12}}, []accountstore.AccountUpdate{
		{AccountID: acc.ID, Outputs: []schema.Output{out}, Spends: []schema.Spend{sp}},
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	_, stored, err := as.GetAccount(addr)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}

	info, err := BuildAddressInfo(as, stored, 2, 100)
	if err != nil {
		t.Fatalf("BuildAddressInfo() error = %v", err)
	}
	if info.TotalReceived != 1_000_000 {
		t.Errorf("TotalReceived = %d, want 1000000", info.TotalReceived)
	}
	if info.TotalSent != 1_000_000 {
		t.Errorf("TotalSent = %d, want 1000000", info.TotalSent)
	}
	if len(info.SpentOutputs) != 1 || info.SpentOutputs[0].Spend.KeyImage != sp.KeyImage {
		t.Errorf("SpentOutputs = %+v", info.SpentOutputs)
	}
	if info.LockedFunds != 0 {
		t.Errorf("LockedFunds = %d, want 0 for an already-unlocked output", info.LockedFunds)
	}
}

func TestBuildAddressInfoLockedFundsRespectsUnlockTime(t *testing.T) {
	as := openTestStore(t)
	addr := addrFor(2)
	acc, err := as.AddAccount(addr, schema.ViewKey{}, 1)
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	out := schema.Output{
		Link:       schema.TxLink{Height: 1, TxHash: schema.Hash{1}},
		Meta:       schema.SpendMeta{ID: schema.OutputID{IndexLo: 1}, Amount: 500},
		UnlockTime: 10,
	}
	if _, err := as.Update(1, []schema.Hash{{1}}, []accountstore.AccountUpdate{
		{AccountID: acc.ID, Outputs: []schema.Output{out}},
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	_, stored, err := as.GetAccount(addr)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}

	info, err := BuildAddressInfo(as, stored, 5, 100)
	if err != nil {
		t.Fatalf("BuildAddressInfo() error = %v", err)
	}
	if info.LockedFunds != 500 {
		t.Errorf("LockedFunds = %d, want 500 (chain tip 5 < unlock height 10)", info.LockedFunds)
	}
}

func TestBuildAddressTxsMergesReceiveAndSpendIntoOneRow(t *testing.T) {
	as := openTestStore(t)
	addr := addrFor(3)
	acc, err := as.AddAccount(addr, schema.ViewKey{}, 1)
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	srcID := schema.OutputID{IndexLo: 7}
	recvLink := schema.TxLink{Height: 1, TxHash: schema.Hash{3}}
	spendLink := schema.TxLink{Height: 2, TxHash: schema.Hash{4}}

	if _, err := as.Update(1, []schema.Hash{{1}, {2}}, []accountstore.AccountUpdate{
		{
			AccountID: acc.ID,
			Outputs: []schema.Output{{
				Link: recvLink,
				Meta: schema.SpendMeta{ID: srcID, Amount: 900},
			}},
			Spends: []schema.Spend{{
				Link:     spendLink,
				KeyImage: schema.Hash{5},
				Source:   srcID,
			}},
		},
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	_, stored, err := as.GetAccount(addr)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}

	txs, err := BuildAddressTxs(as, stored, 2)
	if err != nil {
		t.Fatalf("BuildAddressTxs() error = %v", err)
	}
	if txs.TotalReceived != 900 {
		t.Errorf("TotalReceived = %d, want 900", txs.TotalReceived)
	}
	if len(txs.Transactions) != 2 {
		t.Fatalf("Transactions = %+v, want 2 rows (distinct tx hashes)", txs.Transactions)
	}
	if !txs.Transactions[0].HasReceive || txs.Transactions[0].Meta.Amount != 900 {
		t.Errorf("receive row = %+v", txs.Transactions[0])
	}
	if len(txs.Transactions[1].Spends) != 1 || txs.Transactions[1].Spent != 900 {
		t.Errorf("spend row = %+v", txs.Transactions[1])
	}
}

func TestBuildUnspentOutputsFiltersDustAndMixin(t *testing.T) {
	as := openTestStore(t)
	addr := addrFor(4)
	acc, err := as.AddAccount(addr, schema.ViewKey{}, 1)
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	dust := schema.Output{
		Link: schema.TxLink{Height: 1, TxHash: schema.Hash{1}},
		Meta: schema.SpendMeta{ID: schema.OutputID{IndexLo: 1}, Amount: 1, MixinCount: 10},
	}
	spendable := schema.Output{
		Link: schema.TxLink{Height: 1, TxHash: schema.Hash{2}},
		Meta: schema.SpendMeta{ID: schema.OutputID{IndexLo: 2}, Amount: 5000, MixinCount: 10},
	}

	if _, err := as.Update(1, []schema.Hash{{1}}, []accountstore.AccountUpdate{
		{AccountID: acc.ID, Outputs: []schema.Output{dust, spendable}},
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	outs, total, err := BuildUnspentOutputs(as, acc.ID, 100, 5)
	if err != nil {
		t.Fatalf("BuildUnspentOutputs() error = %v", err)
	}
	if len(outs) != 1 || outs[0].Meta.ID != spendable.Meta.ID {
		t.Fatalf("outs = %+v, want just the spendable output", outs)
	}
	if total != 5000 {
		t.Errorf("total = %d, want 5000", total)
	}
}

func TestBuildAddressInfoErrorsOnMissingReceive(t *testing.T) {
	as := openTestStore(t)
	addr := addrFor(5)
	acc, err := as.AddAccount(addr, schema.ViewKey{}, 1)
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	orphanSpend := schema.Spend{
		Link:     schema.TxLink{Height: 1, TxHash: schema.Hash{6}},
		KeyImage: schema.Hash{7},
		Source:   schema.OutputID{IndexLo: 99},
	}
	if _, err := as.Update(1, []schema.Hash{{1}}, []accountstore.AccountUpdate{
		{AccountID: acc.ID, Spends: []schema.Spend{orphanSpend}},
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	_, stored, err := as.GetAccount(addr)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}

	if _, err := BuildAddressInfo(as, stored, 1, 1); err == nil {
		t.Fatal("BuildAddressInfo() should error when a spend has no matching receive")
	}
}
