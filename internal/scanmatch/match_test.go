package scanmatch

import (
	"testing"

	"filippo.io/edwards25519"

	"github.com/cryptonote-lws/lws/internal/cryptoutil"
	"github.com/cryptonote-lws/lws/internal/schema"
)

func scalarFromUint(n uint64) *edwards25519.Scalar {
	var wide [64]byte
	for i := 0; i < 8; i++ {
		wide[i] = byte(n >> (8 * i))
	}
	s, err := new(edwards25519.Scalar).SetUniformBytes(wide[:])
	if err != nil {
		panic(err)
	}
	return s
}

func pubFromScalar(s *edwards25519.Scalar) schema.Hash {
	p := new(edwards25519.Point).ScalarBaseMult(s)
	var out schema.Hash
	copy(out[:], p.Bytes())
	return out
}

func TestMatchReceivesOwnedOutput(t *testing.T) {
	r := scalarFromUint(1)
	a := scalarFromUint(2)
	b := scalarFromUint(3)

	R := pubFromScalar(r)
	var aBytes schema.ViewKey
	copy(aBytes[:], a.Bytes())
	B := pubFromScalar(b)

	derivation, err := cryptoutil.KeyDerivation(R, aBytes)
	if err != nil {
		t.Fatalf("KeyDerivation() error = %v", err)
	}
	outKey, err := cryptoutil.DerivePublicKey(derivation, 0, B)
	if err != nil {
		t.Fatalf("DerivePublicKey() error = %v", err)
	}

	tx := &ParsedTx{
		Height:              10,
		TxHash:              schema.Hash{1},
		TxPublicKey:         R,
		Outputs:             []TxOutputKey{{Amount: 500, Key: outKey}},
		GlobalOutputIndices: []uint64{42},
	}
	account := AccountContext{AccountID: 1, ViewKey: aBytes, SpendPublic: B}

	result, err := Match(tx, account, noSpendable)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(result.Outputs) != 1 {
		t.Fatalf("Outputs = %d, want 1", len(result.Outputs))
	}
	if result.Outputs[0].Meta.Amount != 500 {
		t.Errorf("Amount = %d, want 500", result.Outputs[0].Meta.Amount)
	}
	if result.Outputs[0].Meta.ID.IndexLo != 42 {
		t.Errorf("global index = %d, want 42", result.Outputs[0].Meta.ID.IndexLo)
	}
}

func TestMatchIgnoresUnownedOutput(t *testing.T) {
	r := scalarFromUint(5)
	a := scalarFromUint(6)
	R := pubFromScalar(r)
	var aBytes schema.ViewKey
	copy(aBytes[:], a.Bytes())

	tx := &ParsedTx{
		TxPublicKey: R,
		Outputs:     []TxOutputKey{{Amount: 1, Key: schema.Hash{0xff}}},
	}
	account := AccountContext{ViewKey: aBytes, SpendPublic: schema.Hash{0x11}}

	result, err := Match(tx, account, noSpendable)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(result.Outputs) != 0 {
		t.Errorf("Outputs = %d, want 0", len(result.Outputs))
	}
}

func TestMatchSpendsSumsKeyOffsetDeltas(t *testing.T) {
	tx := &ParsedTx{
		Height: 5,
		TxHash: schema.Hash{9},
		Inputs: []TxInputKey{
			{Amount: 0, KeyOffsets: []uint64{10, 5, 2}, KeyImage: schema.Hash{7}},
		},
	}

	wantOffset := uint64(10 + 5 + 2)
	var sawID schema.OutputID
	lookup := func(accountID schema.AccountID, id schema.OutputID) (schema.SpendMeta, bool, error) {
		sawID = id
		return schema.SpendMeta{ID: id}, true, nil
	}

	account := AccountContext{AccountID: 1}
	result, err := Match(tx, account, lookup)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if sawID.IndexLo != wantOffset {
		t.Errorf("looked up offset = %d, want %d", sawID.IndexLo, wantOffset)
	}
	if len(result.Spends) != 1 {
		t.Fatalf("Spends = %d, want 1", len(result.Spends))
	}
	if result.Spends[0].MixinCount != 2 {
		t.Errorf("MixinCount = %d, want 2", result.Spends[0].MixinCount)
	}
}

func noSpendable(schema.AccountID, schema.OutputID) (schema.SpendMeta, bool, error) {
	return schema.SpendMeta{}, false, nil
}

// TestMatchThreadsSpendMixinIntoReceives covers the vin-loop's shared mixin
// carrying forward into the vout loop's Output records, the way the
// original scanner reuses one mixin variable across both loops of the same
// transaction.
func TestMatchThreadsSpendMixinIntoReceives(t *testing.T) {
	r := scalarFromUint(11)
	a := scalarFromUint(12)
	b := scalarFromUint(13)

	R := pubFromScalar(r)
	var aBytes schema.ViewKey
	copy(aBytes[:], a.Bytes())
	B := pubFromScalar(b)

	derivation, err := cryptoutil.KeyDerivation(R, aBytes)
	if err != nil {
		t.Fatalf("KeyDerivation() error = %v", err)
	}
	outKey, err := cryptoutil.DerivePublicKey(derivation, 0, B)
	if err != nil {
		t.Fatalf("DerivePublicKey() error = %v", err)
	}

	tx := &ParsedTx{
		Height:      20,
		TxHash:      schema.Hash{2},
		TxPublicKey: R,
		Inputs: []TxInputKey{
			{Amount: 0, KeyOffsets: []uint64{10, 5, 2}, KeyImage: schema.Hash{7}},
		},
		Outputs:             []TxOutputKey{{Amount: 500, Key: outKey}},
		GlobalOutputIndices: []uint64{1},
	}
	account := AccountContext{AccountID: 1, ViewKey: aBytes, SpendPublic: B}

	lookup := func(schema.AccountID, schema.OutputID) (schema.SpendMeta, bool, error) {
		return schema.SpendMeta{}, true, nil
	}

	result, err := Match(tx, account, lookup)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(result.Spends) != 1 || result.Spends[0].MixinCount != 2 {
		t.Fatalf("Spends = %+v, want one spend with MixinCount 2", result.Spends)
	}
	if len(result.Outputs) != 1 {
		t.Fatalf("Outputs = %d, want 1", len(result.Outputs))
	}
	if result.Outputs[0].Meta.MixinCount != 2 {
		t.Errorf("Output MixinCount = %d, want 2 (carried forward from the spend scan)", result.Outputs[0].Meta.MixinCount)
	}
}

// TestMatchCoinbaseReceiveHasZeroMixin covers the coinbase override: even
// if a transaction somehow carried a non-zero mixin forward, a coinbase
// output's mixin is always reported as 0.
func TestMatchCoinbaseReceiveHasZeroMixin(t *testing.T) {
	r := scalarFromUint(14)
	a := scalarFromUint(15)
	b := scalarFromUint(16)

	R := pubFromScalar(r)
	var aBytes schema.ViewKey
	copy(aBytes[:], a.Bytes())
	B := pubFromScalar(b)

	derivation, err := cryptoutil.KeyDerivation(R, aBytes)
	if err != nil {
		t.Fatalf("KeyDerivation() error = %v", err)
	}
	outKey, err := cryptoutil.DerivePublicKey(derivation, 0, B)
	if err != nil {
		t.Fatalf("DerivePublicKey() error = %v", err)
	}

	tx := &ParsedTx{
		Height:              30,
		TxHash:              schema.Hash{3},
		TxPublicKey:         R,
		IsCoinbase:          true,
		Outputs:             []TxOutputKey{{Amount: 600, Key: outKey}},
		GlobalOutputIndices: []uint64{2},
	}
	account := AccountContext{AccountID: 1, ViewKey: aBytes, SpendPublic: B}

	result, err := Match(tx, account, noSpendable)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(result.Outputs) != 1 {
		t.Fatalf("Outputs = %d, want 1", len(result.Outputs))
	}
	if result.Outputs[0].Meta.MixinCount != 0 {
		t.Errorf("Output MixinCount = %d, want 0 for coinbase", result.Outputs[0].Meta.MixinCount)
	}
}
