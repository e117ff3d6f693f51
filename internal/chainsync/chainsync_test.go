package chainsync

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/cryptonote-lws/lws/internal/accountstore"
	"github.com/cryptonote-lws/lws/internal/netparams"
	"github.com/cryptonote-lws/lws/internal/rpcclient"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/internal/store"
	"github.com/cryptonote-lws/lws/pkg/helpers"
)

func openTestAccountStore(t *testing.T) *accountstore.AccountStore {
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

func hashHex(seed byte) string {
	var h schema.Hash
	for i := range h {
		h[i] = seed + byte(i)
	}
	return helpers.BytesToHex(h[:])
}

func TestCatchUpExitsWhenAlreadySynced(t *testing.T) {
	as := openTestAccountStore(t)
	top, err := as.GetChainSync()
	if err != nil {
		t.Fatalf("GetChainSync() error = %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":"1","result":{"m_block_ids":["%s"],"start_height":%d,"current_height":%d}}`,
			hashHex(1), uint64(top), uint64(top)+1)
	}))
	defer srv.Close()

	syncer := New(as, rpcclient.New(rpcclient.Config{BaseURL: srv.URL}), Config{})
	if err := syncer.CatchUp(context.Background()); err != nil {
		t.Fatalf("CatchUp() error = %v", err)
	}
}

func TestCatchUpAppliesNewHashes(t *testing.T) {
	as := openTestAccountStore(t)
	top, err := as.GetChainSync()
	if err != nil {
		t.Fatalf("GetChainSync() error = %v", err)
	}
	genesis, err := as.GetLastBlock()
	if err != nil {
		t.Fatalf("GetLastBlock() error = %v", err)
	}

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":"1","result":{"m_block_ids":["%s","%s","%s"],"start_height":%d,"current_height":%d}}`,
				helpers.BytesToHex(genesis.Hash[:]), hashHex(2), hashHex(3), uint64(top), uint64(top)+2)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":"1","result":{"m_block_ids":["%s"],"start_height":%d,"current_height":%d}}`,
			hashHex(3), uint64(top)+2, uint64(top)+2)
	}))
	defer srv.Close()

	syncer := New(as, rpcclient.New(rpcclient.Config{BaseURL: srv.URL}), Config{})
	if err := syncer.CatchUp(context.Background()); err != nil {
		t.Fatalf("CatchUp() error = %v", err)
	}

	newTop, err := as.GetChainSync()
	if err != nil {
		t.Fatalf("GetChainSync() error = %v", err)
	}
	if newTop != top+2 {
		t.Errorf("GetChainSync() after catch-up = %d, want %d", newTop, top+2)
	}
}

func TestDecodeHashesRejectsBadHex(t *testing.T) {
	if _, err := decodeHashes([]string{"not-hex"}); err == nil {
		t.Error("decodeHashes() on invalid hex should error")
	}
}
