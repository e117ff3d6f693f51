package scanner

import "testing"

func buildExtraWithPubkey(pubKey [32]byte) []byte {
	out := []byte{extraTagPubkey}
	return append(out, pubKey[:]...)
}

func TestParseTxExtraFindsPublicKey(t *testing.T) {
	var pub [32]byte
	for i := range pub {
		pub[i] = byte(i + 1)
	}
	extra := buildExtraWithPubkey(pub)

	got, err := parseTxExtra(extra)
	if err != nil {
		t.Fatalf("parseTxExtra() error = %v", err)
	}
	if !got.hasPubKey {
		t.Fatal("hasPubKey = false, want true")
	}
	if got.pubKey != pub {
		t.Errorf("pubKey = %x, want %x", got.pubKey, pub)
	}
}

func TestParseTxExtraFindsEncryptedPaymentID(t *testing.T) {
	var pub [32]byte
	extra := buildExtraWithPubkey(pub)

	short := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	nonce := append([]byte{nonceTagEncryptedPaymentID}, short[:]...)
	extra = append(extra, extraTagNonce, byte(len(nonce)))
	extra = append(extra, nonce...)

	got, err := parseTxExtra(extra)
	if err != nil {
		t.Fatalf("parseTxExtra() error = %v", err)
	}
	if !got.hasShortPaymentID {
		t.Fatal("hasShortPaymentID = false, want true")
	}
	if got.shortPaymentID != short {
		t.Errorf("shortPaymentID = %x, want %x", got.shortPaymentID, short)
	}
}

func TestParseTxExtraFindsLongPaymentID(t *testing.T) {
	var pub [32]byte
	extra := buildExtraWithPubkey(pub)

	var long [32]byte
	for i := range long {
		long[i] = byte(i + 100)
	}
	nonce := append([]byte{nonceTagPaymentID}, long[:]...)
	extra = append(extra, extraTagNonce, byte(len(nonce)))
	extra = append(extra, nonce...)

	got, err := parseTxExtra(extra)
	if err != nil {
		t.Fatalf("parseTxExtra() error = %v", err)
	}
	if !got.hasLongPaymentID {
		t.Fatal("hasLongPaymentID = false, want true")
	}
	if got.longPaymentID != long {
		t.Errorf("longPaymentID = %x, want %x", got.longPaymentID, long)
	}
}

func TestParseTxExtraSkipsMergeMiningField(t *testing.T) {
	var pub [32]byte
	extra := buildExtraWithPubkey(pub)
	extra = append(extra, extraTagMergeMining, 3, 0xaa, 0xbb, 0xcc)

	got, err := parseTxExtra(extra)
	if err != nil {
		t.Fatalf("parseTxExtra() error = %v", err)
	}
	if !got.hasPubKey {
		t.Fatal("hasPubKey = false, want true")
	}
}

func TestParseTxExtraWithoutPubkeyReportsMissing(t *testing.T) {
	got, err := parseTxExtra([]byte{extraTagPadding, extraTagPadding})
	if err != nil {
		t.Fatalf("parseTxExtra() error = %v", err)
	}
	if got.hasPubKey {
		t.Error("hasPubKey = true, want false")
	}
}

func TestReadVarintRoundTrip(t *testing.T) {
	v, n, err := readVarint([]byte{0xe5, 0x8e, 0x26})
	if err != nil {
		t.Fatalf("readVarint() error = %v", err)
	}
	if n != 3 {
		t.Errorf("consumed = %d, want 3", n)
	}
	if v != 624485 {
		t.Errorf("value = %d, want 624485", v)
	}
}

func TestReadVarintTruncated(t *testing.T) {
	if _, _, err := readVarint([]byte{0x80, 0x80}); err == nil {
		t.Error("readVarint() on truncated input should error")
	}
}
