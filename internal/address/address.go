// Package address implements CryptoNote's block-wise base58 public
// address encoding: a network tag varint followed by the spend and view
// public keys and a 4-byte Keccak-256 checksum, encoded 8 raw bytes at a
// time into 11 base58 characters (the tail block uses a shorter, fixed
// width per its length). This is distinct from Bitcoin-style
// base58check, which encodes the whole payload as one big integer rather
// than per-block, so it cannot be built on top of a Bitcoin base58
// library.
package address

import (
	"github.com/cryptonote-lws/lws/internal/cryptoutil"
	"github.com/cryptonote-lws/lws/internal/errs"
	"github.com/cryptonote-lws/lws/internal/netparams"
	"github.com/cryptonote-lws/lws/internal/schema"
)

const b58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

const fullBlockSize = 8
const fullEncodedBlockSize = 11

// encodedBlockSizes[n] is how many base58 characters a raw block of n
// bytes (0 <= n <= fullBlockSize) encodes to.
var encodedBlockSizes = [fullBlockSize + 1]int{0, 2, 3, 5, 6, 7, 9, 10, 11}

var b58Digits [256]int8

func init() {
	for i := range b58Digits {
		b58Digits[i] = -1
	}
	for i, c := range b58Alphabet {
		b58Digits[byte(c)] = int8(i)
	}
}

// Address is a decoded CryptoNote public address.
type Address struct {
	Tag         uint64
	SpendPublic schema.Hash
	ViewPublic  schema.Hash
}

// Encode renders a public address as CryptoNote base58, per params' network
// tag.
func Encode(params *netparams.Params, spendPublic, viewPublic schema.Hash) string {
	payload := appendVarint(nil, params.PublicAddressBase58Prefix)
	payload = append(payload, spendPublic[:]...)
	payload = append(payload, viewPublic[:]...)
	checksum := cryptoutil.Keccak256(payload)
	payload = append(payload, checksum[:4]...)
	return encodeBlocks(payload)
}

// Decode parses a CryptoNote base58 public address and verifies its
// checksum and network tag against params.
func Decode(params *netparams.Params, s string) (Address, error) {
	raw, err := decodeBlocks(s)
	if err != nil {
		return Address{}, err
	}
	if len(raw) < 4 {
		return Address{}, errs.New(errs.KindBadAddress, "address: payload too short")
	}

	body, checksum := raw[:len(raw)-4], raw[len(raw)-4:]
	want := cryptoutil.Keccak256(body)
	for i := 0; i < 4; i++ {
		if want[i] != checksum[i] {
			return Address{}, errs.New(errs.KindBadAddress, "address: checksum mismatch")
		}
	}

	tag, n, err := readVarint(body)
	if err != nil {
		return Address{}, errs.New(errs.KindBadAddress, "address: malformed network tag")
	}
	if tag != params.PublicAddressBase58Prefix {
		return Address{}, errs.New(errs.KindBadAddress, "address: wrong network tag")
	}

	body = body[n:]
	if len(body) != 64 {
		return Address{}, errs.New(errs.KindBadAddress, "address: expected 64 bytes of key material")
	}

	var a Address
	a.Tag = tag
	copy(a.SpendPublic[:], body[0:32])
	copy(a.ViewPublic[:], body[32:64])
	return a, nil
}

func encodeBlocks(data []byte) string {
	var out []byte
	for len(data) > 0 {
		n := fullBlockSize
		if n > len(data) {
			n = len(data)
		}
		out = append(out, encodeBlock(data[:n])...)
		data = data[n:]
	}
	return string(out)
}

func encodeBlock(block []byte) []byte {
	width := encodedBlockSizes[len(block)]
	res := make([]byte, width)
	for i := range res {
		res[i] = b58Alphabet[0]
	}

	var num [8]byte
	copy(num[8-len(block):], block)
	n := beToUint64(num[:])

	i := width - 1
	for n > 0 && i >= 0 {
		res[i] = b58Alphabet[n%58]
		n /= 58
		i--
	}
	return res
}

func decodeBlocks(s string) ([]byte, error) {
	var out []byte
	for len(s) > 0 {
		width := fullEncodedBlockSize
		if width > len(s) {
			width = len(s)
		}
		blockSize, err := rawSizeForEncoded(width)
		if err != nil {
			return nil, err
		}
		block, err := decodeBlock(s[:width], blockSize)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
		s = s[width:]
	}
	return out, nil
}

func rawSizeForEncoded(encodedWidth int) (int, error) {
	for raw, width := range encodedBlockSizes {
		if width == encodedWidth {
			return raw, nil
		}
	}
	return 0, errs.New(errs.KindBadAddress, "address: invalid base58 block width")
}

func decodeBlock(s string, rawSize int) ([]byte, error) {
	var n uint64
	for i := 0; i < len(s); i++ {
		d := b58Digits[s[i]]
		if d < 0 {
			return nil, errs.New(errs.KindBadAddress, "address: invalid base58 character")
		}
		next := n*58 + uint64(d)
		if next < n {
			return nil, errs.New(errs.KindBadAddress, "address: base58 block overflow")
		}
		n = next
	}

	var buf [8]byte
	for i := 7; i >= 0; i-- {
		buf[i] = byte(n)
		n >>= 8
	}
	return buf[8-rawSize:], nil
}

func beToUint64(b [8]byte) uint64 {
	var n uint64
	for _, v := range b {
		n = n<<8 | uint64(v)
	}
	return n
}

func appendVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

func readVarint(buf []byte) (uint64, int, error) {
	var v uint64
	var shift uint
	for i, b := range buf {
		if shift >= 64 {
			return 0, 0, errs.New(errs.KindBadAddress, "address: varint too long")
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, errs.New(errs.KindBadAddress, "address: truncated varint")
}
