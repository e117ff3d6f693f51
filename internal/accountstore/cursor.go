package accountstore

import "github.com/erigontech/mdbx-go/mdbx"

// cursorLike is the subset of *mdbx.Cursor this package drives directly;
// narrowing the dependency surface to one method keeps every call site
// readable without re-deriving mdbx's cursor-op vocabulary each time.
type cursorLike interface {
	Get(key, val []byte, op mdbx.CursorOp) ([]byte, []byte, error)
}

// Cursor operation codes, aliased from mdbx's so every other file in this
// package reads as intent ("first dup", "next no-dup") rather than a bare
// mdbx constant.
const (
	opSet          = mdbx.Set
	opSetKey       = mdbx.SetKey
	opSetRange     = mdbx.SetRange
	opGetBoth      = mdbx.GetBoth
	opGetBothRange = mdbx.GetBothRange
	opFirst        = mdbx.First
	opFirstDup     = mdbx.FirstDup
	opLast         = mdbx.Last
	opLastDup      = mdbx.LastDup
	opNext         = mdbx.Next
	opNextDup      = mdbx.NextDup
	opNextNoDup    = mdbx.NextNoDup
	opPrev         = mdbx.Prev
	opPrevDup      = mdbx.PrevDup
	opPrevNoDup    = mdbx.PrevNoDup
)

func isNotFound(err error) bool {
	return mdbx.ErrorCode(err) == mdbx.NotFound
}
