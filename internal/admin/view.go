package admin

import (
	"github.com/cryptonote-lws/lws/internal/address"
	"github.com/cryptonote-lws/lws/internal/netparams"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/pkg/helpers"
)

// AccountView is list_accounts' per-account JSON shape; ViewKey is present
// only when the caller asked to show sensitive fields.
type AccountView struct {
	Address        string `json:"address"`
	ViewKey        string `json:"view_key,omitempty"`
	ScanHeight     uint64 `json:"scan_height"`
	StartHeight    uint64 `json:"start_height"`
	CreationTime   uint64 `json:"creation_timestamp"`
	LastAccessTime uint64 `json:"last_access_timestamp"`
}

func newAccountView(params *netparams.Params, acc schema.Account, showSensitive bool) AccountView {
	v := AccountView{
		Address:        address.Encode(params, acc.Address.SpendPublic, acc.Address.ViewPublic),
		ScanHeight:     uint64(acc.ScanHeight),
		StartHeight:    uint64(acc.StartHeight),
		CreationTime:   acc.CreationTime,
		LastAccessTime: acc.LastAccessTime,
	}
	if showSensitive {
		v.ViewKey = helpers.Fixed32ToHex(acc.ViewKey)
	}
	return v
}

// RequestView is list_requests' per-request JSON shape.
type RequestView struct {
	Address      string `json:"address"`
	ViewKey      string `json:"view_key,omitempty"`
	StartHeight  uint64 `json:"start_height,omitempty"`
	CreationTime uint64 `json:"creation_timestamp"`
}

func newRequestView(params *netparams.Params, info schema.RequestInfo, showSensitive bool) RequestView {
	v := RequestView{
		Address:      address.Encode(params, info.Address.SpendPublic, info.Address.ViewPublic),
		StartHeight:  uint64(info.StartHeight),
		CreationTime: info.CreationTime,
	}
	if showSensitive {
		v.ViewKey = helpers.Fixed32ToHex(info.ViewKey)
	}
	return v
}

// ListAccounts implements `list_accounts [status]`: every account in
// the given statuses, or in every status if statuses is empty.
func (s *Service) ListAccounts(showSensitive bool, statuses ...schema.AccountStatus) ([]AccountView, error) {
	var out []AccountView
	for acc, err := range s.store.GetAccounts(statuses...) {
		if err != nil {
			return nil, err
		}
		out = append(out, newAccountView(s.params, acc, showSensitive))
	}
	return out, nil
}

// ListRequests implements `list_requests <create|import>`.
func (s *Service) ListRequests(kind schema.RequestKind, showSensitive bool) ([]RequestView, error) {
	var out []RequestView
	for info, err := range s.store.GetRequests(kind) {
		if err != nil {
			return nil, err
		}
		out = append(out, newRequestView(s.params, info, showSensitive))
	}
	return out, nil
}

// DebugInfo is `debug_database`'s JSON shape: the store's chain-sync
// watermark plus a per-status account count.
type DebugInfo struct {
	ChainHeight   uint64         `json:"chain_height"`
	LastBlockHash string         `json:"last_block_hash"`
	AccountCounts map[string]int `json:"account_counts"`
}

// DebugDatabase implements `debug_database`: a snapshot of chain-sync
// progress and account counts by status, for operator sanity checks.
func (s *Service) DebugDatabase() (DebugInfo, error) {
	last, err := s.store.GetLastBlock()
	if err != nil {
		return DebugInfo{}, err
	}

	info := DebugInfo{
		ChainHeight:   uint64(last.ID),
		LastBlockHash: helpers.BytesToHex(last.Hash[:]),
		AccountCounts: map[string]int{},
	}

	for _, status := range []schema.AccountStatus{schema.StatusActive, schema.StatusInactive, schema.StatusHidden} {
		count := 0
		for _, err := range s.store.GetAccounts(status) {
			if err != nil {
				return DebugInfo{}, err
			}
			count++
		}
		info.AccountCounts[statusName(status)] = count
	}
	return info, nil
}

func statusName(status schema.AccountStatus) string {
	switch status {
	case schema.StatusActive:
		return "active"
	case schema.StatusInactive:
		return "inactive"
	case schema.StatusHidden:
		return "hidden"
	default:
		return "unknown"
	}
}
