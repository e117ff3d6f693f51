package query

import (
	"github.com/cryptonote-lws/lws/internal/accountstore"
	"github.com/cryptonote-lws/lws/internal/schema"
)

// UnspentOutput is one candidate output for `/get_unspent_outs`, carrying
// every key image the account has seen spend it — an empty list means
// the account itself has not spent it, though the node's own view of the
// chain is the final authority.
type UnspentOutput struct {
	Meta           schema.SpendMeta
	Link           schema.TxLink
	Timestamp      uint64
	UnlockTime     uint64
	PubKey         schema.Hash
	RctMask        schema.Hash
	SpentKeyImages []schema.Hash
}

// BuildUnspentOutputs filters account's outputs by dustThreshold and
// mixin, attaching any recorded key images, and returns the filtered
// set plus its total amount.
func BuildUnspentOutputs(store *accountstore.AccountStore, accountID schema.AccountID, dustThreshold uint64, mixin uint32) ([]UnspentOutput, uint64, error) {
	var result []UnspentOutput
	var total uint64

	for out, err := range store.GetOutputs(accountID) {
		if err != nil {
			return nil, 0, err
		}
		if out.Meta.Amount < dustThreshold || out.Meta.MixinCount < mixin {
			continue
		}

		var images []schema.Hash
		for ki, err := range store.GetImages(out.Meta.ID) {
			if err != nil {
				return nil, 0, err
			}
			images = append(images, ki.Value)
		}

		result = append(result, UnspentOutput{
			Meta:           out.Meta,
			Link:           out.Link,
			Timestamp:      out.Timestamp,
			UnlockTime:     out.UnlockTime,
			PubKey:         out.PubKey,
			RctMask:        out.RctMask,
			SpentKeyImages: images,
		})
		total += out.Meta.Amount
	}

	return result, total, nil
}
