// Package ringpicker draws ring-member offsets from the node's RingCT
// output distribution using the same Gamma(19.28, 1/1.61) age model real
// wallets use, so a scanner's own outgoing transactions are not
// distinguishable from the network by their decoy-selection shape.
package ringpicker

import (
	"math"
	"math/rand"
	"sort"

	"github.com/cryptonote-lws/lws/internal/errs"
	"github.com/cryptonote-lws/lws/internal/netparams"

	"gonum.org/v1/gonum/stat/distuv"
)

// maxDrawAttempts bounds retries when a drawn index falls outside the
// known output range.
const maxDrawAttempts = 100

// Picker draws ring-member global output indices against one snapshot of
// the chain's RingCT output distribution.
type Picker struct {
	params *netparams.Params

	// distribution[i] is the cumulative RingCT output count at block
	// startHeight+i.
	distribution []uint64
	startHeight  uint64

	outputsPerSecond float64

	gamma distuv.Gamma
	rng   *rand.Rand
}

// New builds a Picker from one get_output_distribution snapshot. rngSource
// seeds the picker's private RNG; callers typically pass a per-worker
// source so concurrent pickers never contend on a shared generator.
func New(params *netparams.Params, startHeight uint64, distribution []uint64, rngSource rand.Source) *Picker {
	p := &Picker{
		params:       params,
		distribution: distribution,
		startHeight:  startHeight,
		rng:          rand.New(rngSource),
	}
	p.gamma = distuv.Gamma{
		Alpha: params.GammaShape,
		Beta:  1.0 / params.GammaScale,
		Src:   p.rng,
	}
	p.outputsPerSecond = computeOutputsPerSecond(distribution, params.BlocksInAYear, params.DifficultyTarget)
	return p
}

func computeOutputsPerSecond(distribution []uint64, blocksInAYear, difficultyTarget uint64) float64 {
	if len(distribution) == 0 {
		return 0
	}
	window := uint64(len(distribution))
	if window > blocksInAYear {
		window = blocksInAYear
	}
	if window == 0 {
		return 0
	}

	last := distribution[len(distribution)-1]
	var base uint64
	if uint64(len(distribution)) > window {
		base = distribution[uint64(len(distribution))-window-1]
	}
	outputsInWindow := last - base
	seconds := float64(window * difficultyTarget)
	if seconds <= 0 {
		return 0
	}
	return float64(outputsInWindow) / seconds
}

// IsValid reports whether the distribution is long enough to draw from at
// all.
func (p *Picker) IsValid() bool {
	return uint64(len(p.distribution)) > p.params.DefaultSpendableAge
}

// SpendableUpperBound is the last cumulative output count considered
// mature enough to spend from.
func (p *Picker) SpendableUpperBound() uint64 {
	n := uint64(len(p.distribution))
	if n <= p.params.DefaultSpendableAge {
		return 0
	}
	return p.distribution[n-p.params.DefaultSpendableAge-1]
}

// Clone returns a Picker sharing this one's (immutable) distribution and
// derived statistics but with a fresh, independently seeded RNG — cheap
// because the distribution slice is shared, not copied.
func (p *Picker) Clone(rngSource rand.Source) *Picker {
	clone := &Picker{
		params:           p.params,
		distribution:     p.distribution,
		startHeight:      p.startHeight,
		outputsPerSecond: p.outputsPerSecond,
		rng:              rand.New(rngSource),
	}
	clone.gamma = distuv.Gamma{Alpha: p.gamma.Alpha, Beta: p.gamma.Beta, Src: clone.rng}
	return clone
}

// Pick draws one global RingCT output index to use as a ring member.
func (p *Picker) Pick() (uint64, error) {
	if !p.IsValid() {
		return 0, errs.New(errs.KindNotEnoughMixin, "ringpicker: distribution too short to draw from")
	}

	numOutputs := p.distribution[len(p.distribution)-1]
	if numOutputs == 0 {
		return 0, errs.New(errs.KindNotEnoughMixin, "ringpicker: zero known outputs")
	}

	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		age := p.drawAgeSeconds()
		if p.outputsPerSecond <= 0 {
			return 0, errs.New(errs.KindNotEnoughMixin, "ringpicker: zero output rate")
		}

		offset := uint64(age * p.outputsPerSecond)
		if offset >= numOutputs {
			continue
		}
		idx := numOutputs - 1 - offset
		if idx >= numOutputs {
			continue
		}
		return idx, nil
	}

	return 0, errs.New(errs.KindNotEnoughMixin, "ringpicker: exceeded draw attempts")
}

func (p *Picker) drawAgeSeconds() float64 {
	sampled := math.Exp(p.gamma.Rand())
	unlock := float64(p.params.DefaultUnlockTimeSeconds)

	if sampled > unlock {
		return sampled - unlock
	}
	window := float64(p.params.RecentSpendWindowSeconds)
	if window <= 0 {
		return 0
	}
	return p.rng.Float64() * window
}

// LocateBlock finds which block's output range contains the global
// output index idx, by binary search over the cumulative distribution,
// and returns idx's offset within that block's own output range (idx
// minus the outputs of every earlier block). Blocks that contributed zero outputs are skipped automatically
// because they occupy no span in the cumulative curve.
func (p *Picker) LocateBlock(idx uint64) (height uint64, offsetInBlock uint64, ok bool) {
	n := len(p.distribution)
	if n == 0 {
		return 0, 0, false
	}

	i := sort.Search(n, func(i int) bool { return p.distribution[i] > idx })
	if i >= n {
		return 0, 0, false
	}

	var base uint64
	if i > 0 {
		base = p.distribution[i-1]
	}
	blockCount := p.distribution[i] - base
	if blockCount == 0 {
		return 0, 0, false
	}

	offsetInBlock = idx - base
	height = p.startHeight + uint64(i)
	return height, offsetInBlock, true
}
