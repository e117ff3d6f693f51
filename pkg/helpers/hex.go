// Package helpers provides common utility functions used across the codebase.
package helpers

import (
	"encoding/hex"
	"fmt"
)

// HexToBytes decodes a plain (no "0x" prefix) hex string to bytes.
func HexToBytes(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

// BytesToHex encodes bytes as a plain lowercase hex string.
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// HexToFixed32 decodes a 64-character hex string into a 32-byte array,
// the shape every on-wire hash, public key, and view key uses.
func HexToFixed32(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("invalid hex: %w", err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// Fixed32ToHex encodes a 32-byte array as a 64-character lowercase hex string.
func Fixed32ToHex(b [32]byte) string {
	return hex.EncodeToString(b[:])
}

// PadLeft pads a byte slice with zeros on the left to reach the specified length.
func PadLeft(b []byte, length int) []byte {
	if len(b) >= length {
		return b
	}
	result := make([]byte, length)
	copy(result[length-len(b):], b)
	return result
}
