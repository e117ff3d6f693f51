package scanner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/cryptonote-lws/lws/internal/accountstore"
	"github.com/cryptonote-lws/lws/internal/netparams"
	"github.com/cryptonote-lws/lws/internal/rpcclient"
	"github.com/cryptonote-lws/lws/internal/scanmatch"
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

func coinbaseBlock(timestamp uint64, prevID string, height uint64) rpcclient.BlockEntry {
	return rpcclient.BlockEntry{
		Block: rpcclient.RPCBlockHeader{
			Timestamp: timestamp,
			PrevID:    prevID,
			MinerTx: rpcclient.RPCTransaction{
				Version: 2,
				Vin:     []rpcclient.RPCTxIn{{Gen: &rpcclient.RPCGenInput{Height: height}}},
			},
			TxHashes: []string{},
		},
		Transactions: []rpcclient.RPCTransaction{},
	}
}

// TestWorkerAdvancesScanHeightWithNoMatches exercises the full
// get_blocks_fast -> convert -> match -> update loop with a block that
// contains no output the test account can recognize, confirming the
// plumbing advances scan_height and then settles into the
// no-progress sleep once the node reports nothing new.
func TestWorkerAdvancesScanHeightWithNoMatches(t *testing.T) {
	as := openTestStore(t)

	// The fake node's block 0 is not the testnet genesis block, so store
	// its hash as block 0 first; Update rejects a mismatching overlap.
	block0 := coinbaseBlock(1, "p0", 0)
	if err := as.SyncChain(0, []schema.Hash{computeBlockHash(block0.Block, minerTxHash(block0.Block.MinerTx), nil)}); err != nil {
		t.Fatalf("SyncChain() error = %v", err)
	}

	var addr schema.AccountAddress
	addr.ViewPublic[0] = 1
	addr.SpendPublic[0] = 2
	var viewKey schema.ViewKey
	viewKey[0] = 3

	acc, err := as.AddAccount(addr, viewKey, 1000)
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StartHeight uint64 `json:"start_height"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		var res rpcclient.BlocksResult
		res.Status = "OK"
		if req.StartHeight == 0 {
			res.StartHeight = 0
			res.CurrentHeight = 2
			res.Blocks = []rpcclient.BlockEntry{
				coinbaseBlock(1, "p0", 0),
				coinbaseBlock(2, "p1", 1),
			}
			res.OutputIndices = [][][]uint64{{{0}}, {{0}}}
		} else {
			res.StartHeight = req.StartHeight
			res.CurrentHeight = req.StartHeight + 1
			res.Blocks = []rpcclient.BlockEntry{coinbaseBlock(3, "p2", req.StartHeight)}
			res.OutputIndices = [][][]uint64{{{0}}}
		}
		json.NewEncoder(w).Encode(res)
	}))
	defer srv.Close()

	client := rpcclient.New(rpcclient.Config{BaseURL: srv.URL})
	worker := NewWorker(as, client, Config{NoProgressSleep: 20 * time.Millisecond})

	accounts := []scanmatch.AccountContext{{
		AccountID:   acc.ID,
		ViewKey:     acc.ViewKey,
		SpendPublic: acc.Address.SpendPublic,
		ScanHeight:  acc.ScanHeight,
	}}

	stop := make(chan struct{})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx, accounts, stop) }()

	time.Sleep(150 * time.Millisecond)
	close(stop)

	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	_, stored, err := as.GetAccount(addr)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if stored.ScanHeight != 1 {
		t.Errorf("ScanHeight = %d, want 1", stored.ScanHeight)
	}
}

func TestWorkerRejectsMismatchedOutputIndicesLength(t *testing.T) {
	as := openTestStore(t)
	var addr schema.AccountAddress
	addr.ViewPublic[0] = 9
	var viewKey schema.ViewKey
	acc, err := as.AddAccount(addr, viewKey, 1)
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := rpcclient.BlocksResult{
			Status:        "OK",
			StartHeight:   0,
			CurrentHeight: 2,
			Blocks:        []rpcclient.BlockEntry{coinbaseBlock(1, "p0", 0), coinbaseBlock(2, "p1", 1)},
			OutputIndices: [][][]uint64{{{0}}}, // deliberately short
		}
		json.NewEncoder(w).Encode(res)
	}))
	defer srv.Close()

	client := rpcclient.New(rpcclient.Config{BaseURL: srv.URL})
	worker := NewWorker(as, client, Config{})
	accounts := []scanmatch.AccountContext{{AccountID: acc.ID, ScanHeight: acc.ScanHeight}}

	err = worker.Run(context.Background(), accounts, make(chan struct{}))
	if err == nil {
		t.Fatal("Run() should error on a blocks/output_indices length mismatch")
	}
}
