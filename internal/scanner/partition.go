package scanner

import (
	"sort"

	"github.com/cryptonote-lws/lws/internal/scanmatch"
)

// partition splits accounts across threadCount workers per §4.5: sort
// ascending by scan height, then carve off ceil(N/T)-sized groups from
// the newest end so each worker's accounts sit at similar heights. The
// union of the returned groups is exactly accounts and no two groups
// overlap.
func partition(accounts []scanmatch.AccountContext, threadCount int) [][]scanmatch.AccountContext {
	if threadCount < 1 {
		threadCount = 1
	}
	n := len(accounts)
	if n == 0 {
		return nil
	}

	sorted := make([]scanmatch.AccountContext, n)
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ScanHeight < sorted[j].ScanHeight })

	chunkSize := (n + threadCount - 1) / threadCount

	var groups [][]scanmatch.AccountContext
	end := n
	for end > 0 {
		start := end - chunkSize
		if start < 0 {
			start = 0
		}
		groups = append(groups, sorted[start:end])
		end = start
	}
	return groups
}
