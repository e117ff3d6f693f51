package cryptoutil

import (
	"testing"

	"filippo.io/edwards25519"

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

func TestKeyDerivationMatchesFromBothSides(t *testing.T) {
	r := scalarFromUint(12345)
	a := scalarFromUint(67890)

	R := pubFromScalar(r)
	A := pubFromScalar(a)

	var aBytes schema.ViewKey
	copy(aBytes[:], a.Bytes())

	d1, err := KeyDerivation(R, aBytes)
	if err != nil {
		t.Fatalf("KeyDerivation(R, a) error = %v", err)
	}

	var rBytes schema.ViewKey
	copy(rBytes[:], r.Bytes())
	d2, err := KeyDerivation(A, rBytes)
	if err != nil {
		t.Fatalf("KeyDerivation(A, r) error = %v", err)
	}

	if d1 != d2 {
		t.Errorf("derivations differ: 8rA=%x, 8aR=%x", d2, d1)
	}
}

func TestDerivePublicKeyAndSubaddressInverse(t *testing.T) {
	r := scalarFromUint(111)
	a := scalarFromUint(222)
	b := scalarFromUint(333) // spend secret key

	R := pubFromScalar(r)
	var aBytes schema.ViewKey
	copy(aBytes[:], a.Bytes())

	derivation, err := KeyDerivation(R, aBytes)
	if err != nil {
		t.Fatalf("KeyDerivation() error = %v", err)
	}

	B := pubFromScalar(b)
	outKey, err := DerivePublicKey(derivation, 0, B)
	if err != nil {
		t.Fatalf("DerivePublicKey() error = %v", err)
	}

	recovered, err := DeriveSubaddressPublicKey(outKey, derivation, 0)
	if err != nil {
		t.Fatalf("DeriveSubaddressPublicKey() error = %v", err)
	}

	if recovered != B {
		t.Errorf("recovered base key = %x, want %x", recovered, B)
	}
}

func TestDecryptPaymentID8IsSymmetric(t *testing.T) {
	derivation := Keccak256([]byte("some derivation seed"))
	plain := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}

	encrypted := DecryptPaymentID8(plain, derivation)
	decrypted := DecryptPaymentID8(encrypted, derivation)

	if decrypted != plain {
		t.Errorf("round trip mismatch: got %v, want %v", decrypted, plain)
	}
}

func TestDecodeAmountBulletproof2Roundtrip(t *testing.T) {
	derivation := Keccak256([]byte("seed"))
	scalar, err := DerivationToScalar(derivation, 3)
	if err != nil {
		t.Fatalf("DerivationToScalar() error = %v", err)
	}
	amountKeyHash := Keccak256([]byte("amount"), scalar.Bytes())

	var amountBuf [8]byte
	amountBuf[0] = 100 // amount = 100 before masking

	var encrypted [8]byte
	for i := range encrypted {
		encrypted[i] = amountBuf[i] ^ amountKeyHash[i]
	}

	decoded, err := DecodeAmountBulletproof2(encrypted, derivation, 3)
	if err != nil {
		t.Fatalf("DecodeAmountBulletproof2() error = %v", err)
	}
	if decoded.Amount != 100 {
		t.Errorf("Amount = %d, want 100", decoded.Amount)
	}
}

func TestKeccak256Deterministic(t *testing.T) {
	a := Keccak256([]byte("hello"))
	b := Keccak256([]byte("hello"))
	if a != b {
		t.Error("Keccak256 is not deterministic")
	}
	c := Keccak256([]byte("hello "), []byte("world"))
	d := Keccak256([]byte("hello world"))
	if c != d {
		t.Error("Keccak256 over split writes should equal concatenated write")
	}
}

func TestSecretToPublicMatchesScalarBaseMult(t *testing.T) {
	a := scalarFromUint(424242)
	want := pubFromScalar(a)

	var secret schema.ViewKey
	copy(secret[:], a.Bytes())

	got, err := SecretToPublic(secret)
	if err != nil {
		t.Fatalf("SecretToPublic() error = %v", err)
	}
	if got != want {
		t.Errorf("SecretToPublic() = %x, want %x", got, want)
	}
}

func TestSecretToPublicRejectsNonCanonicalScalar(t *testing.T) {
	var secret schema.ViewKey
	for i := range secret {
		secret[i] = 0xff
	}
	if _, err := SecretToPublic(secret); err == nil {
		t.Error("SecretToPublic() should reject a non-canonical scalar")
	}
}
