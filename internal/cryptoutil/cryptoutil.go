// Package cryptoutil implements the CryptoNote key-derivation and RingCT
// amount-decoding primitives the scanner needs to recognize an account's
// outputs and spends. Every function here is pure: no I/O, no locking —
// internal/scanmatch is the only caller, and it supplies already-parsed
// transaction data.
package cryptoutil

import (
	"encoding/binary"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/sha3"

	"github.com/cryptonote-lws/lws/internal/errs"
	"github.com/cryptonote-lws/lws/internal/schema"
)

// Keccak256 hashes the concatenation of data with CryptoNote's Keccak
// (NIST SHA3's predecessor, not SHA3 itself — sha3.NewLegacyKeccak256 is
// the correct primitive for this family of chains).
func Keccak256(data ...[]byte) schema.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out schema.Hash
	copy(out[:], h.Sum(nil))
	return out
}

func putVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// KeyDerivation computes 8 * r * A, the shared secret between a
// transaction's random scalar r (represented by its public key R on the
// caller's side) and an account's secret view key a.
func KeyDerivation(txPublicKey schema.Hash, viewSecretKey schema.ViewKey) (schema.Hash, error) {
	R, err := new(edwards25519.Point).SetBytes(txPublicKey[:])
	if err != nil {
		return schema.Hash{}, errs.Wrap(errs.KindCryptoFailure, err, "invalid transaction public key")
	}
	a, err := new(edwards25519.Scalar).SetCanonicalBytes(viewSecretKey[:])
	if err != nil {
		return schema.Hash{}, errs.Wrap(errs.KindCryptoFailure, err, "invalid view secret key")
	}

	shared := new(edwards25519.Point).ScalarMult(a, R)
	shared.MultByCofactor(shared)

	var out schema.Hash
	copy(out[:], shared.Bytes())
	return out, nil
}

// DerivationToScalar reduces Keccak256(derivation || varint(index)) modulo
// the curve order, CryptoNote's hash_to_scalar.
func DerivationToScalar(derivation schema.Hash, index uint32) (*edwards25519.Scalar, error) {
	buf := make([]byte, 0, 32+10)
	buf = append(buf, derivation[:]...)
	buf = putVarint(buf, uint64(index))
	h := Keccak256(buf)

	// edwards25519.Scalar.SetUniformBytes performs a wide reduction mod l
	// from a 64-byte input; zero-extending the 32-byte hash reduces it
	// exactly as CryptoNote's sc_reduce32 does for a single block of input.
	var wide [64]byte
	copy(wide[:32], h[:])

	s, err := new(edwards25519.Scalar).SetUniformBytes(wide[:])
	if err != nil {
		return nil, errs.Wrap(errs.KindCryptoFailure, err, "hash_to_scalar reduction")
	}
	return s, nil
}

// DerivePublicKey computes base + H_s(derivation, index) * G, the
// recipient's one-time output public key for a standard address.
func DerivePublicKey(derivation schema.Hash, index uint32, base schema.Hash) (schema.Hash, error) {
	scalar, err := DerivationToScalar(derivation, index)
	if err != nil {
		return schema.Hash{}, err
	}
	basePoint, err := new(edwards25519.Point).SetBytes(base[:])
	if err != nil {
		return schema.Hash{}, errs.Wrap(errs.KindCryptoFailure, err, "invalid base public key")
	}

	scaled := new(edwards25519.Point).ScalarBaseMult(scalar)
	result := new(edwards25519.Point).Add(basePoint, scaled)

	var out schema.Hash
	copy(out[:], result.Bytes())
	return out, nil
}

// SecretToPublic computes secret*G, the public key matching a secret
// scalar — used to verify a claimed view key actually produces the
// address's view public key before an account is trusted.
func SecretToPublic(secret schema.ViewKey) (schema.Hash, error) {
	scalar, err := new(edwards25519.Scalar).SetCanonicalBytes(secret[:])
	if err != nil {
		return schema.Hash{}, errs.Wrap(errs.KindCryptoFailure, err, "invalid secret key")
	}
	point := new(edwards25519.Point).ScalarBaseMult(scalar)

	var out schema.Hash
	copy(out[:], point.Bytes())
	return out, nil
}

// DeriveSubaddressPublicKey recovers the candidate base spend key
// out_key - H_s(derivation, index)*G for subaddress matching: if the
// result equals the account's spend public key, the output belongs to
// that subaddress index.
func DeriveSubaddressPublicKey(outKey schema.Hash, derivation schema.Hash, index uint32) (schema.Hash, error) {
	scalar, err := DerivationToScalar(derivation, index)
	if err != nil {
		return schema.Hash{}, err
	}
	outPoint, err := new(edwards25519.Point).SetBytes(outKey[:])
	if err != nil {
		return schema.Hash{}, errs.Wrap(errs.KindCryptoFailure, err, "invalid output key")
	}

	scaled := new(edwards25519.Point).ScalarBaseMult(scalar)
	result := new(edwards25519.Point).Subtract(outPoint, scaled)

	var out schema.Hash
	copy(out[:], result.Bytes())
	return out, nil
}

// encryptedPaymentIDTail is CryptoNote's domain-separation byte for
// encrypted (8-byte) payment IDs.
const encryptedPaymentIDTail = 0x8d

// DecryptPaymentID8 XORs an 8-byte encrypted payment ID with the first 8
// bytes of Keccak256(derivation || tail), symmetric so the same function
// both encrypts and decrypts.
func DecryptPaymentID8(encrypted [8]byte, derivation schema.Hash) [8]byte {
	keystream := Keccak256(derivation[:], []byte{encryptedPaymentIDTail})
	var out [8]byte
	for i := range out {
		out[i] = encrypted[i] ^ keystream[i]
	}
	return out
}

// RingCTAmount is a decoded amount plus the commitment mask that opens it.
type RingCTAmount struct {
	Amount uint64
	Mask   schema.Hash
}

// DecodeAmountLegacy recovers an RCTTypeSimple/Full-era (pre-Bulletproof2)
// encrypted amount: the shared scalar directly XORs an 8-byte
// little-endian amount, and the mask is the scalar itself.
func DecodeAmountLegacy(encryptedAmount [8]byte, derivation schema.Hash, index uint32) (RingCTAmount, error) {
	scalar, err := DerivationToScalar(derivation, index)
	if err != nil {
		return RingCTAmount{}, err
	}
	scalarBytes := scalar.Bytes()

	var amountBuf [8]byte
	for i := range amountBuf {
		amountBuf[i] = encryptedAmount[i] ^ scalarBytes[i]
	}

	var mask schema.Hash
	copy(mask[:], scalarBytes)
	return RingCTAmount{Amount: binary.LittleEndian.Uint64(amountBuf[:]), Mask: mask}, nil
}

// DecodeAmountBulletproof2 recovers a Bulletproof2-and-later encrypted
// amount, which uses domain-separated sub-hashes for the mask and the
// amount key instead of the raw derivation scalar.
func DecodeAmountBulletproof2(encryptedAmount [8]byte, derivation schema.Hash, index uint32) (RingCTAmount, error) {
	scalar, err := DerivationToScalar(derivation, index)
	if err != nil {
		return RingCTAmount{}, err
	}
	scalarBytes := scalar.Bytes()

	maskHash := Keccak256([]byte("commitment_mask"), scalarBytes)
	amountKeyHash := Keccak256([]byte("amount"), scalarBytes)

	var amountBuf [8]byte
	for i := range amountBuf {
		amountBuf[i] = encryptedAmount[i] ^ amountKeyHash[i]
	}

	return RingCTAmount{Amount: binary.LittleEndian.Uint64(amountBuf[:]), Mask: maskHash}, nil
}
