// Package store wraps github.com/erigontech/mdbx-go into the narrow
// transactional interface the rest of the backend depends on: open a single
// environment, run a write under a bounded retry loop, or hand out a
// read-only snapshot. Callers never see an *mdbx.Txn directly.
package store

import "github.com/erigontech/mdbx-go/mdbx"

// Table names, one per sub-database in §3.2. Every table is opened with
// mdbx.DupSort — primary key maps to many dup-sorted values.
const (
	TableBlocks             = "blocks"
	TableAccounts           = "accounts"
	TableAccountsByAddress  = "accounts_by_address"
	TableAccountsByHeight   = "accounts_by_height"
	TableOutputs            = "outputs"
	TableSpends             = "spends"
	TableImages             = "images"
	TableRequests           = "requests"
)

// tableNames lists every DBI opened by Open, in a fixed order so tests and
// admin tooling can enumerate them deterministically.
var tableNames = []string{
	TableBlocks,
	TableAccounts,
	TableAccountsByAddress,
	TableAccountsByHeight,
	TableOutputs,
	TableSpends,
	TableImages,
	TableRequests,
}

// dbiFlags is the creation flag set for each table. All are dup-sorted;
// none need IntegerKey because keys are compared as raw big-endian bytes.
const dbiFlags = mdbx.Create | mdbx.DupSort
