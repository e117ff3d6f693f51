package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"filippo.io/edwards25519"

	"github.com/cryptonote-lws/lws/internal/address"
	"github.com/cryptonote-lws/lws/internal/netparams"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/pkg/helpers"
)

func testKeyPair(t *testing.T, params *netparams.Params, seed uint64) (viewKeyHex, addr string) {
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

	var secret schema.ViewKey
	copy(secret[:], scalar.Bytes())
	var viewPublic, spendPublic schema.Hash
	copy(viewPublic[:], point.Bytes())
	for i := range spendPublic {
		spendPublic[i] = byte(seed) + byte(i)
	}

	return helpers.Fixed32ToHex(secret), address.Encode(params, spendPublic, viewPublic)
}

func run(t *testing.T, dbPath string, args ...string) string {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--db-path", dbPath, "--network", "test"}, args...))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v (output: %s)", args, err, out.String())
	}
	return out.String()
}

func TestAddAccountThenListAccounts(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lws.mdbx")
	params := netparams.MustGet(netparams.Testnet)
	viewKeyHex, addr := testKeyPair(t, params, 1)

	run(t, dbPath, "add_account", addr, viewKeyHex)

	out := run(t, dbPath, "list_accounts")
	if !strings.Contains(out, addr) {
		t.Errorf("expected list_accounts output to contain %s, got %s", addr, out)
	}
	if strings.Contains(out, viewKeyHex) {
		t.Error("expected view key to be omitted without --show-sensitive")
	}
}

func TestListAccountsShowsSensitiveWhenRequested(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lws.mdbx")
	params := netparams.MustGet(netparams.Testnet)
	viewKeyHex, addr := testKeyPair(t, params, 2)

	run(t, dbPath, "add_account", addr, viewKeyHex)

	out := run(t, dbPath, "--show-sensitive", "list_accounts")
	if !strings.Contains(out, viewKeyHex) {
		t.Errorf("expected view key %s in output, got %s", viewKeyHex, out)
	}
}

func TestDebugDatabaseReportsAccountCounts(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lws.mdbx")
	params := netparams.MustGet(netparams.Testnet)
	viewKeyHex, addr := testKeyPair(t, params, 3)

	run(t, dbPath, "add_account", addr, viewKeyHex)

	out := run(t, dbPath, "debug_database")
	if !strings.Contains(out, `"active": 1`) {
		t.Errorf("expected one active account in debug output, got %s", out)
	}
}

func TestAddAccountRejectsMalformedAddress(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lws.mdbx")

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--db-path", dbPath, "--network", "test", "add_account", "not-a-real-address", "00"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected add_account with a malformed address to fail")
	}
}

func TestModifyAccountStatusRejectsUnknownStatus(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lws.mdbx")
	params := netparams.MustGet(netparams.Testnet)
	viewKeyHex, addr := testKeyPair(t, params, 4)

	run(t, dbPath, "add_account", addr, viewKeyHex)

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--db-path", dbPath, "--network", "test", "modify_account_status", "bogus", addr})
	if err := cmd.Execute(); err == nil {
		t.Error("expected modify_account_status with an unknown status to fail")
	}
}
