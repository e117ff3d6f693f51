// Package helpers provides common utility functions used across the codebase.
package helpers

import (
	"crypto/subtle"
)

// IsZeroBytes checks if all bytes in the slice are zero. Used to reject a
// degenerate all-zero view key before it reaches key derivation.
func IsZeroBytes(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// ConstantTimeCompare compares two byte slices in constant time.
// Returns true if they are equal, false otherwise. Used wherever a
// caller-supplied value is checked against a secret-derived one, so a
// mismatch can't be timed to leak how many leading bytes matched.
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
