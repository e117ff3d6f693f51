// Package admin wraps internal/accountstore with the create/approve/
// reject/rescan/rollback/change-status operations of §5 and §6.3,
// presenting them in terms a caller passes base58 addresses and hex
// keys to rather than raw schema structs — the shape both the CLI and
// (for completed requests) the REST boundary need.
package admin

import (
	"github.com/cryptonote-lws/lws/internal/accountstore"
	"github.com/cryptonote-lws/lws/internal/address"
	"github.com/cryptonote-lws/lws/internal/cryptoutil"
	"github.com/cryptonote-lws/lws/internal/errs"
	"github.com/cryptonote-lws/lws/internal/netparams"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/pkg/helpers"
)

// Service is the admin operation surface, bound to one store and network.
type Service struct {
	store  *accountstore.AccountStore
	params *netparams.Params
}

// New builds a Service.
func New(store *accountstore.AccountStore, params *netparams.Params) *Service {
	return &Service{store: store, params: params}
}

func (s *Service) decodeAddress(addr string) (schema.AccountAddress, error) {
	decoded, err := address.Decode(s.params, addr)
	if err != nil {
		return schema.AccountAddress{}, err
	}
	return schema.AccountAddress{ViewPublic: decoded.ViewPublic, SpendPublic: decoded.SpendPublic}, nil
}

func (s *Service) decodeAddresses(addrs []string) ([]schema.AccountAddress, error) {
	out := make([]schema.AccountAddress, 0, len(addrs))
	for _, a := range addrs {
		decoded, err := s.decodeAddress(a)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

// decodeViewKey parses a hex view key and checks it actually produces
// address's view public key, per §6.2's credentials schema.
func decodeViewKey(addr schema.AccountAddress, hexKey string) (schema.ViewKey, error) {
	raw, err := helpers.HexToFixed32(hexKey)
	if err != nil {
		return schema.ViewKey{}, errs.Wrap(errs.KindBadViewKey, err, "view key is not 64 hex characters")
	}
	var key schema.ViewKey
	copy(key[:], raw[:])

	pub, err := cryptoutil.SecretToPublic(key)
	if err != nil {
		return schema.ViewKey{}, errs.Wrap(errs.KindBadViewKey, err, "view key is not a valid scalar")
	}
	if pub != addr.ViewPublic {
		return schema.ViewKey{}, errs.New(errs.KindBadViewKey, "view key does not match address")
	}
	return key, nil
}

// AddAccount implements `add_account <address> <view key hex>`: an
// immediately Active account, scan_height = top(blocks).
func (s *Service) AddAccount(addr, viewKeyHex string, nowUnix uint64) (schema.Account, error) {
	address, err := s.decodeAddress(addr)
	if err != nil {
		return schema.Account{}, err
	}
	viewKey, err := decodeViewKey(address, viewKeyHex)
	if err != nil {
		return schema.Account{}, err
	}
	return s.store.AddAccount(address, viewKey, nowUnix)
}

// AcceptRequests approves pending Create or Import requests.
func (s *Service) AcceptRequests(kind schema.RequestKind, addrs []string, nowUnix uint64) ([]string, error) {
	decoded, err := s.decodeAddresses(addrs)
	if err != nil {
		return nil, err
	}
	accepted, err := s.store.AcceptRequests(kind, decoded, nowUnix)
	if err != nil {
		return nil, err
	}
	return encodeAddresses(s.params, accepted), nil
}

// RejectRequests discards pending Create or Import requests.
func (s *Service) RejectRequests(kind schema.RequestKind, addrs []string) ([]string, error) {
	decoded, err := s.decodeAddresses(addrs)
	if err != nil {
		return nil, err
	}
	rejected, err := s.store.RejectRequests(kind, decoded)
	if err != nil {
		return nil, err
	}
	return encodeAddresses(s.params, rejected), nil
}

// ModifyAccountStatus moves every named address to newStatus.
func (s *Service) ModifyAccountStatus(newStatus schema.AccountStatus, addrs []string) ([]string, error) {
	decoded, err := s.decodeAddresses(addrs)
	if err != nil {
		return nil, err
	}
	changed, err := s.store.ChangeStatus(newStatus, decoded)
	if err != nil {
		return nil, err
	}
	return encodeAddresses(s.params, changed), nil
}

// Rescan re-derives every named account's history from newStart.
func (s *Service) Rescan(newStart schema.BlockID, addrs []string) ([]string, error) {
	decoded, err := s.decodeAddresses(addrs)
	if err != nil {
		return nil, err
	}
	changed, err := s.store.Rescan(newStart, decoded)
	if err != nil {
		return nil, err
	}
	return encodeAddresses(s.params, changed), nil
}

// Rollback truncates the chain (and every account touching it) to height.
func (s *Service) Rollback(height schema.BlockID) error {
	return s.store.Rollback(height)
}

func encodeAddresses(params *netparams.Params, addrs []schema.AccountAddress) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = address.Encode(params, a.SpendPublic, a.ViewPublic)
	}
	return out
}
