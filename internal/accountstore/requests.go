package accountstore

import (
	"iter"

	"github.com/cryptonote-lws/lws/internal/errs"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/internal/store"
)

// MaxCreateQueue bounds the number of pending Create requests; exceeding it
// fails with errs.KindCreateQueueMax.
var MaxCreateQueue = 500

// CreationRequest queues a new-account request for admin approval. Per
// invariant 4, accounts_by_address also gets a StatusPending lookup entry
// for address so a repeated /login before approval resolves as the same
// pending request rather than racing CreationRequest again.
func (a *AccountStore) CreationRequest(address schema.AccountAddress, viewKey schema.ViewKey, flags schema.AccountFlags, nowUnix uint64) error {
	return a.db.TryWrite(func(w *store.Writer) error {
		if lookup, err := lookupByAddress(&w.Reader, address); err == nil {
			if lookup.Status == schema.StatusPending {
				return errs.New(errs.KindDuplicateRequest, "create request already pending")
			}
			return errs.New(errs.KindAccountExists, "address already registered")
		} else if !errs.Is(err, errs.KindAccountNotFound) {
			return err
		}

		count, err := countRequests(&w.Reader, schema.RequestCreate)
		if err != nil {
			return err
		}
		if count >= MaxCreateQueue {
			return errs.New(errs.KindCreateQueueMax, "pending create request queue is full")
		}

		info := schema.RequestInfo{
			Address:       address,
			ViewKey:       viewKey,
			CreationTime:  nowUnix,
			CreationFlags: flags,
		}
		if err := w.Put(store.TableRequests, []byte{byte(schema.RequestCreate)}, info.Encode()); err != nil {
			return err
		}
		return w.Put(store.TableAccountsByAddress, versionKey, pendingLookup(address).Encode())
	})
}

// pendingLookup builds the StatusPending accounts_by_address entry a
// queued Create request is indexed under.
func pendingLookup(address schema.AccountAddress) schema.AccountByAddress {
	return schema.AccountByAddress{Address: address, Lookup: schema.AccountLookup{Status: schema.StatusPending}}
}

// ImportRequest queues a request to import an existing view-only account
// starting its scan at startHeight.
func (a *AccountStore) ImportRequest(address schema.AccountAddress, viewKey schema.ViewKey, startHeight schema.BlockID, nowUnix uint64) error {
	return a.db.TryWrite(func(w *store.Writer) error {
		if exists, err := requestExists(&w.Reader, schema.RequestImport, address); err != nil {
			return err
		} else if exists {
			return errs.New(errs.KindDuplicateRequest, "import request already pending")
		}

		info := schema.RequestInfo{
			Address:      address,
			ViewKey:      viewKey,
			StartHeight:  startHeight,
			CreationTime: nowUnix,
		}
		return w.Put(store.TableRequests, []byte{byte(schema.RequestImport)}, info.Encode())
	})
}

func requestExists(r *store.Reader, kind schema.RequestKind, address schema.AccountAddress) (bool, error) {
	_, ok, err := lookupRequestInfo(r, kind, address)
	return ok, err
}

// lookupRequestInfo finds the pending request of kind for address, if any.
func lookupRequestInfo(r *store.Reader, kind schema.RequestKind, address schema.AccountAddress) (schema.RequestInfo, bool, error) {
	cur, err := r.Cursor(store.TableRequests)
	if err != nil {
		return schema.RequestInfo{}, false, err
	}
	defer cur.Close()

	search := schema.RequestInfo{Address: address}
	_, v, err := cur.Get([]byte{byte(kind)}, search.Encode(), opGetBothRange)
	if err != nil {
		if isNotFound(err) {
			return schema.RequestInfo{}, false, nil
		}
		return schema.RequestInfo{}, false, err
	}
	found, derr := schema.DecodeRequestInfo(v)
	if derr != nil {
		return schema.RequestInfo{}, false, derr
	}
	if found.Address != address {
		return schema.RequestInfo{}, false, nil
	}
	return found, true, nil
}

func countRequests(r *store.Reader, kind schema.RequestKind) (int, error) {
	cur, err := r.Cursor(store.TableRequests)
	if err != nil {
		return 0, err
	}
	defer cur.Close()

	_, v, err := cur.Get([]byte{byte(kind)}, nil, opSetKey)
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	count := 0
	for {
		count++
		_, v, err = cur.Get(nil, nil, opNextDup)
		if err != nil {
			if isNotFound(err) {
				break
			}
			return 0, err
		}
	}
	_ = v
	return count, nil
}

// AcceptRequests approves every pending request of kind matching one of
// addresses: Create requests become Active accounts; Import requests
// become Active accounts starting their scan at the requested height.
// Returns the addresses actually accepted.
func (a *AccountStore) AcceptRequests(kind schema.RequestKind, addresses []schema.AccountAddress, nowUnix uint64) ([]schema.AccountAddress, error) {
	var accepted []schema.AccountAddress

	err := a.db.TryWrite(func(w *store.Writer) error {
		top, err := topBlockHeight(&w.Reader)
		if err != nil {
			return err
		}

		for _, address := range addresses {
			info, ok, err := popRequest(w, kind, address)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}

			if kind == schema.RequestCreate {
				if err := w.Delete(store.TableAccountsByAddress, versionKey, pendingLookup(address).Encode()); err != nil {
					return err
				}
			}

			id, err := nextAccountID(&w.Reader)
			if err != nil {
				return err
			}

			startHeight := info.StartHeight
			if kind == schema.RequestCreate {
				startHeight = top
			}

			acc := schema.Account{
				ID:             id,
				LastAccessTime: nowUnix,
				Address:        address,
				ViewKey:        info.ViewKey,
				ScanHeight:     startHeight,
				StartHeight:    startHeight,
				CreationTime:   info.CreationTime,
				Flags:          info.CreationFlags,
			}

			if err := w.Put(store.TableAccounts, []byte{byte(schema.StatusActive)}, acc.Encode()); err != nil {
				return err
			}
			lookup := schema.AccountLookup{ID: id, Status: schema.StatusActive}
			aba := schema.AccountByAddress{Address: address, Lookup: lookup}
			if err := w.Put(store.TableAccountsByAddress, versionKey, aba.Encode()); err != nil {
				return err
			}
			heightKey := encodeBlockIDKey(startHeight)
			if err := w.Put(store.TableAccountsByHeight, heightKey, lookup.Encode()); err != nil {
				return err
			}

			accepted = append(accepted, address)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// RejectRequests discards every pending request of kind matching one of
// addresses. Returns the addresses actually rejected.
func (a *AccountStore) RejectRequests(kind schema.RequestKind, addresses []schema.AccountAddress) ([]schema.AccountAddress, error) {
	var rejected []schema.AccountAddress

	err := a.db.TryWrite(func(w *store.Writer) error {
		for _, address := range addresses {
			_, ok, err := popRequest(w, kind, address)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if kind == schema.RequestCreate {
				if err := w.Delete(store.TableAccountsByAddress, versionKey, pendingLookup(address).Encode()); err != nil {
					return err
				}
			}
			rejected = append(rejected, address)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// GetRequests streams every pending request of kind, ordered by address.
func (a *AccountStore) GetRequests(kind schema.RequestKind) iter.Seq2[schema.RequestInfo, error] {
	return func(yield func(schema.RequestInfo, error) bool) {
		_ = a.db.View(func(r *store.Reader) error {
			cur, err := r.Cursor(store.TableRequests)
			if err != nil {
				yield(schema.RequestInfo{}, err)
				return err
			}
			defer cur.Close()

			_, v, err := cur.Get([]byte{byte(kind)}, nil, opSetKey)
			if err != nil {
				if isNotFound(err) {
					return nil
				}
				yield(schema.RequestInfo{}, err)
				return err
			}
			for {
				info, derr := schema.DecodeRequestInfo(v)
				if !yield(info, derr) {
					return nil
				}
				_, v, err = cur.Get(nil, nil, opNextDup)
				if err != nil {
					if isNotFound(err) {
						return nil
					}
					yield(schema.RequestInfo{}, err)
					return err
				}
			}
		})
	}
}

func popRequest(w *store.Writer, kind schema.RequestKind, address schema.AccountAddress) (schema.RequestInfo, bool, error) {
	cur, err := w.Cursor(store.TableRequests)
	if err != nil {
		return schema.RequestInfo{}, false, err
	}
	defer cur.Close()

	search := schema.RequestInfo{Address: address}
	_, v, err := cur.Get([]byte{byte(kind)}, search.Encode(), opGetBothRange)
	if err != nil {
		if isNotFound(err) {
			return schema.RequestInfo{}, false, nil
		}
		return schema.RequestInfo{}, false, err
	}
	found, derr := schema.DecodeRequestInfo(v)
	if derr != nil {
		return schema.RequestInfo{}, false, derr
	}
	if found.Address != address {
		return schema.RequestInfo{}, false, nil
	}
	if err := w.Delete(store.TableRequests, []byte{byte(kind)}, v); err != nil {
		return schema.RequestInfo{}, false, err
	}
	return found, true, nil
}
