package accountstore

import (
	"iter"

	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/internal/store"
)

// GetSpends streams every Spend owned by accountID, ordered by
// (link.height, link.tx_hash, key_image).
func (a *AccountStore) GetSpends(accountID schema.AccountID) iter.Seq2[schema.Spend, error] {
	return func(yield func(schema.Spend, error) bool) {
		_ = a.db.View(func(r *store.Reader) error {
			cur, err := r.Cursor(store.TableSpends)
			if err != nil {
				yield(schema.Spend{}, err)
				return err
			}
			defer cur.Close()

			key := encodeAccountIDKey(accountID)
			_, v, err := cur.Get(key, nil, opSetKey)
			if err != nil {
				if isNotFound(err) {
					return nil
				}
				yield(schema.Spend{}, err)
				return err
			}
			for {
				sp, derr := schema.DecodeSpend(v)
				if !yield(sp, derr) {
					return nil
				}
				_, v, err = cur.Get(nil, nil, opNextDup)
				if err != nil {
					if isNotFound(err) {
						return nil
					}
					yield(schema.Spend{}, err)
					return err
				}
			}
		})
	}
}

// GetImages streams every KeyImage recorded against outputID.
func (a *AccountStore) GetImages(outputID schema.OutputID) iter.Seq2[schema.KeyImage, error] {
	return func(yield func(schema.KeyImage, error) bool) {
		_ = a.db.View(func(r *store.Reader) error {
			cur, err := r.Cursor(store.TableImages)
			if err != nil {
				yield(schema.KeyImage{}, err)
				return err
			}
			defer cur.Close()

			key := encodeOutputIDKey(outputID)
			_, v, err := cur.Get(key, nil, opSetKey)
			if err != nil {
				if isNotFound(err) {
					return nil
				}
				yield(schema.KeyImage{}, err)
				return err
			}
			for {
				ki, derr := schema.DecodeKeyImage(v)
				if !yield(ki, derr) {
					return nil
				}
				_, v, err = cur.Get(nil, nil, opNextDup)
				if err != nil {
					if isNotFound(err) {
						return nil
					}
					yield(schema.KeyImage{}, err)
					return err
				}
			}
		})
	}
}

// addSpend inserts a Spend for accountID and, per invariant 6, the matching
// KeyImage record under spend.Source in the same write transaction.
func addSpend(w *store.Writer, accountID schema.AccountID, sp schema.Spend) error {
	key := encodeAccountIDKey(accountID)
	if err := w.Put(store.TableSpends, key, sp.Encode()); err != nil {
		return err
	}

	ki := schema.KeyImage{Value: sp.KeyImage, Link: sp.Link}
	imgKey := encodeOutputIDKey(sp.Source)
	return w.Put(store.TableImages, imgKey, ki.Encode())
}

// deleteSpendsFrom removes every Spend (and its paired KeyImage) of
// accountID with link.height >= fromHeight.
func deleteSpendsFrom(w *store.Writer, accountID schema.AccountID, fromHeight schema.BlockID) (int, error) {
	cur, err := w.Cursor(store.TableSpends)
	if err != nil {
		return 0, err
	}
	defer cur.Close()

	key := encodeAccountIDKey(accountID)
	_, v, err := cur.Get(key, nil, opSetKey)
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, err
	}

	var removed int
	for {
		sp, derr := schema.DecodeSpend(v)
		if derr != nil {
			return removed, derr
		}
		atEnd := false
		if sp.Link.Height >= fromHeight {
			if err := w.Delete(store.TableSpends, key, v); err != nil {
				return removed, err
			}
			imgKey := encodeOutputIDKey(sp.Source)
			ki := schema.KeyImage{Value: sp.KeyImage, Link: sp.Link}
			if err := w.Delete(store.TableImages, imgKey, ki.Encode()); err != nil {
				return removed, err
			}
			removed++
		}
		_, v, err = cur.Get(nil, nil, opNextDup)
		if err != nil {
			if isNotFound(err) {
				atEnd = true
			} else {
				return removed, err
			}
		}
		if atEnd {
			return removed, nil
		}
	}
}
