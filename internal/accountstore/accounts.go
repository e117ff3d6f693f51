package accountstore

import (
	"fmt"
	"iter"

	"github.com/cryptonote-lws/lws/internal/errs"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/internal/store"
)

// GetAccount looks up an account by its public address: first
// accounts_by_address keyed on view_public, then accounts keyed on
// (status, id).
func (a *AccountStore) GetAccount(address schema.AccountAddress) (schema.AccountStatus, schema.Account, error) {
	var status schema.AccountStatus
	var account schema.Account

	err := a.db.View(func(r *store.Reader) error {
		lookup, err := lookupByAddress(r, address)
		if err != nil {
			return err
		}
		status = lookup.Status

		if status == schema.StatusPending {
			info, ok, err := lookupRequestInfo(r, schema.RequestCreate, address)
			if err != nil {
				return err
			}
			if !ok {
				return errs.New(errs.KindAccountNotFound, "pending request missing for lookup entry")
			}
			account = schema.Account{
				Address:      address,
				ViewKey:      info.ViewKey,
				CreationTime: info.CreationTime,
				Flags:        info.CreationFlags,
			}
			return nil
		}

		acc, err := lookupAccountByStatusAndID(r, lookup.Status, lookup.ID)
		if err != nil {
			return err
		}
		account = acc
		return nil
	})
	if err != nil {
		return 0, schema.Account{}, err
	}
	return status, account, nil
}

func lookupByAddress(r *store.Reader, address schema.AccountAddress) (schema.AccountLookup, error) {
	cur, err := r.Cursor(store.TableAccountsByAddress)
	if err != nil {
		return schema.AccountLookup{}, err
	}
	defer cur.Close()

	search := schema.AccountByAddress{Address: schema.AccountAddress{ViewPublic: address.ViewPublic}}
	_, v, err := cur.Get(versionKey, search.Encode(), opGetBothRange)
	if err != nil {
		if isNotFound(err) {
			return schema.AccountLookup{}, errs.New(errs.KindAccountNotFound, "no account for address")
		}
		return schema.AccountLookup{}, err
	}

	found, err := schema.DecodeAccountByAddress(v)
	if err != nil {
		return schema.AccountLookup{}, err
	}
	if found.Address.ViewPublic != address.ViewPublic {
		return schema.AccountLookup{}, errs.New(errs.KindAccountNotFound, "no account for address")
	}
	return found.Lookup, nil
}

func lookupAccountByStatusAndID(r *store.Reader, status schema.AccountStatus, id schema.AccountID) (schema.Account, error) {
	cur, err := r.Cursor(store.TableAccounts)
	if err != nil {
		return schema.Account{}, err
	}
	defer cur.Close()

	statusKey := []byte{byte(status)}
	search := schema.Account{ID: id}
	_, v, err := cur.Get(statusKey, search.Encode(), opGetBothRange)
	if err != nil {
		if isNotFound(err) {
			return schema.Account{}, errs.New(errs.KindAccountNotFound, "account record missing for lookup entry")
		}
		return schema.Account{}, err
	}
	acc, err := schema.DecodeAccount(v)
	if err != nil {
		return schema.Account{}, err
	}
	if acc.ID != id {
		return schema.Account{}, errs.New(errs.KindAccountNotFound, "account record missing for lookup entry")
	}
	return acc, nil
}

// GetAccounts returns a lazy, ordered stream of the accounts in statuses,
// each paired with a decode or cursor error. If statuses is empty, every
// status is scanned in ascending order.
func (a *AccountStore) GetAccounts(statuses ...schema.AccountStatus) iter.Seq2[schema.Account, error] {
	if len(statuses) == 0 {
		statuses = []schema.AccountStatus{schema.StatusActive, schema.StatusInactive, schema.StatusHidden}
	}

	return func(yield func(schema.Account, error) bool) {
		_ = a.db.View(func(r *store.Reader) error {
			cur, err := r.Cursor(store.TableAccounts)
			if err != nil {
				if !yield(schema.Account{}, err) {
					return nil
				}
				return err
			}
			defer cur.Close()

			for _, status := range statuses {
				statusKey := []byte{byte(status)}
				_, v, err := cur.Get(statusKey, nil, opSetKey)
				if err != nil {
					if isNotFound(err) {
						continue
					}
					yield(schema.Account{}, err)
					return err
				}
				for {
					acc, derr := schema.DecodeAccount(v)
					if !yield(acc, derr) {
						return nil
					}
					_, v, err = cur.Get(nil, nil, opNextDup)
					if err != nil {
						if isNotFound(err) {
							break
						}
						yield(schema.Account{}, err)
						return err
					}
				}
			}
			return nil
		})
	}
}

// AddAccount registers a new Active account at the current chain tip.
func (a *AccountStore) AddAccount(address schema.AccountAddress, viewKey schema.ViewKey, nowUnix uint64) (schema.Account, error) {
	var created schema.Account

	err := a.db.TryWrite(func(w *store.Writer) error {
		if _, err := lookupByAddress(&w.Reader, address); err == nil {
			return errs.New(errs.KindAccountExists, "address already registered")
		} else if !errs.Is(err, errs.KindAccountNotFound) {
			return err
		}

		top, err := topBlockHeight(&w.Reader)
		if err != nil {
			return err
		}

		id, err := nextAccountID(&w.Reader)
		if err != nil {
			return err
		}

		acc := schema.Account{
			ID:             id,
			LastAccessTime: nowUnix,
			Address:        address,
			ViewKey:        viewKey,
			ScanHeight:     top,
			StartHeight:    top,
			CreationTime:   nowUnix,
		}

		if err := w.Put(store.TableAccounts, []byte{byte(schema.StatusActive)}, acc.Encode()); err != nil {
			return err
		}

		lookup := schema.AccountLookup{ID: id, Status: schema.StatusActive}
		aba := schema.AccountByAddress{Address: address, Lookup: lookup}
		if err := w.Put(store.TableAccountsByAddress, versionKey, aba.Encode()); err != nil {
			return err
		}

		heightKey := encodeBlockIDKey(top)
		if err := w.Put(store.TableAccountsByHeight, heightKey, lookup.Encode()); err != nil {
			return err
		}

		created = acc
		return nil
	})
	if err != nil {
		return schema.Account{}, err
	}
	return created, nil
}

// ChangeStatus moves every account in addresses to newStatus, returning the
// addresses actually changed (ones that existed).
func (a *AccountStore) ChangeStatus(newStatus schema.AccountStatus, addresses []schema.AccountAddress) ([]schema.AccountAddress, error) {
	var changed []schema.AccountAddress

	err := a.db.TryWrite(func(w *store.Writer) error {
		for _, address := range addresses {
			lookup, err := lookupByAddress(&w.Reader, address)
			if err != nil {
				if errs.Is(err, errs.KindAccountNotFound) {
					continue
				}
				return err
			}
			if lookup.Status == schema.StatusPending {
				// A Create request awaiting approval isn't a real account
				// yet; admin status changes don't apply to it.
				continue
			}
			if lookup.Status == newStatus {
				changed = append(changed, address)
				continue
			}

			acc, err := lookupAccountByStatusAndID(&w.Reader, lookup.Status, lookup.ID)
			if err != nil {
				return err
			}

			oldStatusKey := []byte{byte(lookup.Status)}
			if err := w.Delete(store.TableAccounts, oldStatusKey, acc.Encode()); err != nil {
				return err
			}
			newStatusKey := []byte{byte(newStatus)}
			if err := w.Put(store.TableAccounts, newStatusKey, acc.Encode()); err != nil {
				return err
			}

			newLookup := schema.AccountLookup{ID: lookup.ID, Status: newStatus}
			aba := schema.AccountByAddress{Address: address, Lookup: newLookup}
			oldAba := schema.AccountByAddress{Address: address, Lookup: lookup}
			if err := w.Delete(store.TableAccountsByAddress, versionKey, oldAba.Encode()); err != nil {
				return err
			}
			if err := w.Put(store.TableAccountsByAddress, versionKey, aba.Encode()); err != nil {
				return err
			}

			heightKey := encodeBlockIDKey(acc.ScanHeight)
			if err := w.Delete(store.TableAccountsByHeight, heightKey, lookup.Encode()); err != nil {
				return err
			}
			if err := w.Put(store.TableAccountsByHeight, heightKey, newLookup.Encode()); err != nil {
				return err
			}

			changed = append(changed, address)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

func topBlockHeight(r *store.Reader) (schema.BlockID, error) {
	cur, err := r.Cursor(store.TableBlocks)
	if err != nil {
		return 0, err
	}
	defer cur.Close()

	_, v, err := cur.Get(versionKey, nil, opSetKey)
	if err != nil {
		return 0, fmt.Errorf("accountstore: blocks table has no entries: %w", err)
	}
	_, v, err = cur.Get(nil, nil, opLastDup)
	if err != nil {
		return 0, err
	}
	info, err := schema.DecodeBlockInfo(v)
	if err != nil {
		return 0, err
	}
	return info.ID, nil
}

// nextAccountID scans the highest assigned id across every status and
// returns one past it. Account ids are never reused.
func nextAccountID(r *store.Reader) (schema.AccountID, error) {
	cur, err := r.Cursor(store.TableAccounts)
	if err != nil {
		return 0, err
	}
	defer cur.Close()

	var max schema.AccountID
	for _, status := range []schema.AccountStatus{schema.StatusActive, schema.StatusInactive, schema.StatusHidden} {
		_, v, err := cur.Get([]byte{byte(status)}, nil, opSetKey)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return 0, err
		}
		_, v, err = cur.Get(nil, nil, opLastDup)
		if err != nil {
			return 0, err
		}
		acc, err := schema.DecodeAccount(v)
		if err != nil {
			return 0, err
		}
		if acc.ID > max {
			max = acc.ID
		}
	}
	if max == 0 {
		return 1, nil
	}
	return max + 1, nil
}
