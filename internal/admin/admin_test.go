package admin

import (
	"path/filepath"
	"testing"

	"github.com/cryptonote-lws/lws/internal/accountstore"
	"github.com/cryptonote-lws/lws/internal/address"
	"github.com/cryptonote-lws/lws/internal/netparams"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/internal/store"
	"github.com/cryptonote-lws/lws/pkg/helpers"

	"filippo.io/edwards25519"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := &store.Config{DataDir: filepath.Join(t.TempDir(), "lws.mdbx"), MaxSizeMB: 64}
	db, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	params := netparams.MustGet(netparams.Testnet)
	as := accountstore.New(db, params)
	if err := as.EnsureGenesis(); err != nil {
		t.Fatalf("EnsureGenesis() error = %v", err)
	}
	return New(as, params)
}

// testKeyPair returns a valid (secret, public) view key pair and the
// matching base58 address built from an arbitrary spend key.
func testKeyPair(t *testing.T, params *netparams.Params, seed uint64) (secretHex string, encodedAddr string, secret schema.ViewKey) {
	t.Helper()
	var wide [64]byte
	for i := 0; i < 8; i++ {
		wide[i] = byte(seed >> (8 * i))
	}
	scalar, err := new(edwards25519.Scalar).SetUniformBytes(wide[:])
	if err != nil {
		t.Fatalf("SetUniformBytes() error = %v", err)
	}
	point := new(edwards25519.Point).ScalarBaseMult(scalar)

	copy(secret[:], scalar.Bytes())
	var viewPublic, spendPublic schema.Hash
	copy(viewPublic[:], point.Bytes())
	for i := range spendPublic {
		spendPublic[i] = byte(seed) + byte(i)
	}

	addr := address.Encode(params, spendPublic, viewPublic)
	return helpers.Fixed32ToHex(secret), addr, secret
}

func TestAddAccountAcceptsMatchingViewKey(t *testing.T) {
	svc := newTestService(t)
	secretHex, addr, _ := testKeyPair(t, svc.params, 1001)

	acc, err := svc.AddAccount(addr, secretHex, 42)
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}
	if acc.ViewKey == (schema.ViewKey{}) {
		t.Error("AddAccount() stored a zero view key")
	}
}

func TestAddAccountRejectsMismatchedViewKey(t *testing.T) {
	svc := newTestService(t)
	_, addr, _ := testKeyPair(t, svc.params, 2002)
	wrongHex, _, _ := testKeyPair(t, svc.params, 3003)

	if _, err := svc.AddAccount(addr, wrongHex, 1); err == nil {
		t.Fatal("AddAccount() should reject a view key that does not match the address")
	}
}

func TestListAccountsReflectsAdded(t *testing.T) {
	svc := newTestService(t)
	secretHex, addr, _ := testKeyPair(t, svc.params, 4004)

	if _, err := svc.AddAccount(addr, secretHex, 1); err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	views, err := svc.ListAccounts(false, schema.StatusActive)
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("len(views) = %d, want 1", len(views))
	}
	if views[0].Address != addr {
		t.Errorf("Address = %q, want %q", views[0].Address, addr)
	}
	if views[0].ViewKey != "" {
		t.Error("ListAccounts(showSensitive=false) should omit the view key")
	}
}

func TestListAccountsShowSensitiveIncludesViewKey(t *testing.T) {
	svc := newTestService(t)
	secretHex, addr, _ := testKeyPair(t, svc.params, 5005)
	if _, err := svc.AddAccount(addr, secretHex, 1); err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	views, err := svc.ListAccounts(true, schema.StatusActive)
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if views[0].ViewKey != secretHex {
		t.Errorf("ViewKey = %q, want %q", views[0].ViewKey, secretHex)
	}
}

func TestModifyAccountStatusMoves(t *testing.T) {
	svc := newTestService(t)
	secretHex, addr, _ := testKeyPair(t, svc.params, 6006)
	if _, err := svc.AddAccount(addr, secretHex, 1); err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	changed, err := svc.ModifyAccountStatus(schema.StatusHidden, []string{addr})
	if err != nil {
		t.Fatalf("ModifyAccountStatus() error = %v", err)
	}
	if len(changed) != 1 {
		t.Fatalf("len(changed) = %d, want 1", len(changed))
	}

	active, err := svc.ListAccounts(false, schema.StatusActive)
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(active) != 0 {
		t.Errorf("len(active) = %d, want 0 after hiding", len(active))
	}

	hidden, err := svc.ListAccounts(false, schema.StatusHidden)
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(hidden) != 1 {
		t.Errorf("len(hidden) = %d, want 1", len(hidden))
	}
}

func TestRollbackDelegatesToStore(t *testing.T) {
	svc := newTestService(t)
	if err := svc.Rollback(0); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
}

func TestDebugDatabaseCountsAccounts(t *testing.T) {
	svc := newTestService(t)
	secretHex, addr, _ := testKeyPair(t, svc.params, 7007)
	if _, err := svc.AddAccount(addr, secretHex, 1); err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	info, err := svc.DebugDatabase()
	if err != nil {
		t.Fatalf("DebugDatabase() error = %v", err)
	}
	if info.AccountCounts["active"] != 1 {
		t.Errorf("AccountCounts[active] = %d, want 1", info.AccountCounts["active"])
	}
}
