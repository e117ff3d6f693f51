package scanner

import (
	"testing"

	"github.com/cryptonote-lws/lws/internal/rpcclient"
	"github.com/cryptonote-lws/lws/internal/schema"
	"github.com/cryptonote-lws/lws/pkg/helpers"
)

func hexOf(seed byte) string {
	var h [32]byte
	for i := range h {
		h[i] = seed + byte(i)
	}
	return helpers.Fixed32ToHex(h)
}

func TestConvertTxSkipsTransactionWithoutPublicKey(t *testing.T) {
	rtx := rpcclient.RPCTransaction{Version: 2}
	_, ok, err := convertTx(rtx, 10, 1000, schema.Hash{}, nil, false)
	if err != nil {
		t.Fatalf("convertTx() error = %v", err)
	}
	if ok {
		t.Error("ok = true, want false for a transaction with no tx_extra public key")
	}
}

func TestConvertTxPopulatesFields(t *testing.T) {
	var pub [32]byte
	for i := range pub {
		pub[i] = byte(i + 1)
	}
	extra := append([]byte{extraTagPubkey}, pub[:]...)

	keyImageHex := hexOf(5)
	outKeyHex := hexOf(9)

	rtx := rpcclient.RPCTransaction{
		Version:    2,
		UnlockTime: 0,
		Extra:      rpcclient.RPCExtra(extra),
		Vin: []rpcclient.RPCTxIn{
			{Key: &rpcclient.RPCToKeyInput{Amount: 0, KeyOffsets: []uint64{5, 3}, KeyImage: keyImageHex}},
		},
		Vout: []rpcclient.RPCTxOut{
			{Amount: 0, Target: rpcclient.RPCTxOutTarget{Key: outKeyHex}},
		},
		RctSignatures: &rpcclient.RPCRctSignatures{
			Type:     4,
			EcdhInfo: []rpcclient.RPCEcdhInfo{{Amount: "0102030405060708"}},
			OutPk:    []string{hexOf(2)},
		},
	}

	ptx, ok, err := convertTx(rtx, 42, 12345, schema.Hash{0xaa}, []uint64{99}, false)
	if err != nil {
		t.Fatalf("convertTx() error = %v", err)
	}
	if !ok {
		t.Fatal("ok = false, want true")
	}
	if ptx.TxPublicKey != pub {
		t.Errorf("TxPublicKey = %x, want %x", ptx.TxPublicKey, pub)
	}
	if len(ptx.Inputs) != 1 || len(ptx.Inputs[0].KeyOffsets) != 2 {
		t.Fatalf("Inputs = %+v", ptx.Inputs)
	}
	if len(ptx.Outputs) != 1 {
		t.Fatalf("Outputs = %+v", ptx.Outputs)
	}
	if !ptx.RCT.Present || !ptx.RCT.Bulletproof2OrLater {
		t.Errorf("RCT = %+v, want present and bulletproof2-or-later", ptx.RCT)
	}
	if len(ptx.GlobalOutputIndices) != 1 || ptx.GlobalOutputIndices[0] != 99 {
		t.Errorf("GlobalOutputIndices = %v", ptx.GlobalOutputIndices)
	}
}

func TestConvertTxSkipsRCTForCoinbase(t *testing.T) {
	var pub [32]byte
	extra := append([]byte{extraTagPubkey}, pub[:]...)

	rtx := rpcclient.RPCTransaction{
		Extra: rpcclient.RPCExtra(extra),
		Vin:   []rpcclient.RPCTxIn{{Gen: &rpcclient.RPCGenInput{Height: 1}}},
		Vout: []rpcclient.RPCTxOut{
			{Amount: 1000, Target: rpcclient.RPCTxOutTarget{Key: hexOf(3)}},
		},
		RctSignatures: &rpcclient.RPCRctSignatures{Type: 0},
	}

	ptx, ok, err := convertTx(rtx, 1, 1, schema.Hash{}, nil, true)
	if err != nil {
		t.Fatalf("convertTx() error = %v", err)
	}
	if !ok {
		t.Fatal("ok = false, want true")
	}
	if ptx.RCT.Present {
		t.Error("RCT.Present = true, want false for a coinbase transaction")
	}
	if len(ptx.Inputs) != 0 {
		t.Errorf("Inputs = %+v, want none for a txin_gen input", ptx.Inputs)
	}
}

func TestComputeBlockHashIsDeterministic(t *testing.T) {
	header := rpcclient.RPCBlockHeader{Timestamp: 100, PrevID: "abc"}
	minerHash := schema.Hash{1}
	txHashes := []schema.Hash{{2}, {3}}

	h1 := computeBlockHash(header, minerHash, txHashes)
	h2 := computeBlockHash(header, minerHash, txHashes)
	if h1 != h2 {
		t.Error("computeBlockHash() is not deterministic")
	}

	header.Timestamp = 101
	h3 := computeBlockHash(header, minerHash, txHashes)
	if h1 == h3 {
		t.Error("computeBlockHash() did not change with a different timestamp")
	}
}
