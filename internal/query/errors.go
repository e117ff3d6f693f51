package query

import (
	"fmt"

	"github.com/cryptonote-lws/lws/internal/schema"
)

// errNoReceiveForSpend reports a Spend whose Source output was never
// recorded as a receive for the same account — invariant 5 broken, a
// store-level bug rather than anything a caller can recover from.
func errNoReceiveForSpend(sp schema.Spend) error {
	return fmt.Errorf("query: no receive recorded for spend source %+v", sp.Source)
}
