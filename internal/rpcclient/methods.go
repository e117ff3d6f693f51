package rpcclient

import (
	"context"

	"github.com/cryptonote-lws/lws/internal/errs"
)

// GetHashes fetches the block hashes from startHeight up to the chain tip,
// for cheap reorg detection before requesting full block bodies.
func (c *Client) GetHashes(ctx context.Context, startHeight uint64) (HashesResult, error) {
	var res HashesResult
	params := map[string]any{"start_height": startHeight}
	if err := c.call(ctx, "get_hashes_fast", params, &res); err != nil {
		return HashesResult{}, err
	}
	return res, nil
}

// GetBlocksFast fetches block bodies (decoded header, miner tx,
// transactions and their global output indices) from startHeight,
// bounded by the daemon's own page size.
func (c *Client) GetBlocksFast(ctx context.Context, startHeight uint64) (BlocksResult, error) {
	var res BlocksResult
	params := map[string]any{
		"start_height": startHeight,
		"prune":        false,
		"no_miner_tx":  false,
	}
	if err := c.callPlain(ctx, "get_blocks_fast", params, &res); err != nil {
		return BlocksResult{}, err
	}
	if res.Status != "" && res.Status != "OK" {
		return BlocksResult{}, errs.New(errs.KindBadDaemonResponse, "get_blocks_fast: status "+res.Status)
	}
	return res, nil
}

// GetOutputHistogram returns, for each requested amount, how many outputs
// of that amount exist on chain.
func (c *Client) GetOutputHistogram(ctx context.Context, amounts []uint64, unlocked bool, recentCutoff uint64) (HistogramResult, error) {
	var res HistogramResult
	params := map[string]any{
		"amounts":            amounts,
		"unlocked":           unlocked,
		"recent_cutoff":      recentCutoff,
		"min_count":          0,
		"max_count":          0,
	}
	if err := c.call(ctx, "get_output_histogram", params, &res); err != nil {
		return HistogramResult{}, err
	}
	if res.Status != "" && res.Status != "OK" {
		return HistogramResult{}, errs.New(errs.KindBadDaemonResponse, "get_output_histogram: status "+res.Status)
	}
	return res, nil
}

// GetOutputDistribution returns the cumulative output-count curve for each
// requested amount, used to map a gamma-sampled recency choice to a
// concrete global output index.
func (c *Client) GetOutputDistribution(ctx context.Context, amounts []uint64, cumulative bool, fromHeight, toHeight uint64) (DistributionResult, error) {
	var res DistributionResult
	params := map[string]any{
		"amounts":      amounts,
		"cumulative":   cumulative,
		"from_height":  fromHeight,
		"to_height":    toHeight,
		"binary":       false,
	}
	if err := c.call(ctx, "get_output_distribution", params, &res); err != nil {
		return DistributionResult{}, err
	}
	if res.Status != "" && res.Status != "OK" {
		return DistributionResult{}, errs.New(errs.KindBadDaemonResponse, "get_output_distribution: status "+res.Status)
	}
	return res, nil
}

// OutputRequest identifies one ring member to fetch by amount and global
// index.
type OutputRequest struct {
	Amount uint64 `json:"amount"`
	Index  uint64 `json:"index"`
}

// GetOuts fetches the public key, commitment and unlock state of a set of
// ring members, identified by (amount, global index) pairs.
func (c *Client) GetOuts(ctx context.Context, outputs []OutputRequest) (OutsResult, error) {
	var res OutsResult
	params := map[string]any{
		"outputs":  outputs,
		"get_txid": false,
	}
	if err := c.callPlain(ctx, "get_outs", params, &res); err != nil {
		return OutsResult{}, err
	}
	if res.Status != "" && res.Status != "OK" {
		return OutsResult{}, errs.New(errs.KindBadDaemonResponse, "get_outs: status "+res.Status)
	}
	return res, nil
}

// GetFeeEstimate returns the daemon's current base fee and priority
// multipliers.
func (c *Client) GetFeeEstimate(ctx context.Context, gracePeriodBlocks uint64) (FeeEstimate, error) {
	var res FeeEstimate
	params := map[string]any{"grace_blocks": gracePeriodBlocks}
	if err := c.call(ctx, "get_fee_estimate", params, &res); err != nil {
		return FeeEstimate{}, err
	}
	if res.Status != "" && res.Status != "OK" {
		return FeeEstimate{}, errs.New(errs.KindBadDaemonResponse, "get_fee_estimate: status "+res.Status)
	}
	return res, nil
}

// SendRawTransaction relays a signed transaction blob (hex-encoded) to the
// network via the daemon.
func (c *Client) SendRawTransaction(ctx context.Context, txBlobHex string, doNotRelay bool) (RelayResult, error) {
	var res RelayResult
	params := map[string]any{
		"tx_as_hex":    txBlobHex,
		"do_not_relay": doNotRelay,
	}
	if err := c.callPlain(ctx, "send_raw_transaction", params, &res); err != nil {
		return RelayResult{}, err
	}
	if !res.Accepted() {
		return res, errs.New(errs.KindTxRelayFailed, "daemon rejected transaction: "+res.Reason)
	}
	return res, nil
}
