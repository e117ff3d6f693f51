package schema

import (
	"bytes"
	"fmt"
)

func errSize(what string, want, got int) error {
	return fmt.Errorf("schema: %s: expected %d bytes, got %d", what, want, got)
}

// CompareAccountSortKey compares two encoded Account values by their id
// prefix, matching the accounts table's dup-comparator.
func CompareAccountSortKey(a, b []byte) int {
	return bytes.Compare(a[0:4], b[0:4])
}

// CompareOutputSortKey compares two encoded Output values by
// (link.height, link.tx_hash, meta.id), matching the outputs table's
// dup-comparator.
func CompareOutputSortKey(a, b []byte) int {
	return bytes.Compare(a[0:OutputSortPrefixSize], b[0:OutputSortPrefixSize])
}

// CompareSpendSortKey compares two encoded Spend values by
// (link.height, link.tx_hash, key_image).
func CompareSpendSortKey(a, b []byte) int {
	return bytes.Compare(a[0:SpendSortPrefixSize], b[0:SpendSortPrefixSize])
}

// CompareKeyImageSortKey compares two encoded KeyImage values by value.
func CompareKeyImageSortKey(a, b []byte) int {
	return bytes.Compare(a[0:32], b[0:32])
}

// CompareRequestSortKey compares two encoded RequestInfo values by
// address.spend_public.
func CompareRequestSortKey(a, b []byte) int {
	return bytes.Compare(a[0:32], b[0:32])
}

// CompareAccountByAddressSortKey compares two encoded AccountByAddress
// values by address.view_public.
func CompareAccountByAddressSortKey(a, b []byte) int {
	return bytes.Compare(a[0:32], b[0:32])
}

// CompareAccountLookupSortKey compares two encoded AccountLookup values
// (used as accounts_by_height's dup value) by id.
func CompareAccountLookupSortKey(a, b []byte) int {
	return bytes.Compare(a[0:4], b[0:4])
}

// CompareBlockInfoSortKey compares two encoded BlockInfo values by id.
func CompareBlockInfoSortKey(a, b []byte) int {
	return bytes.Compare(a[0:8], b[0:8])
}
