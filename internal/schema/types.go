// Package schema defines the fixed-width, little-endian on-disk record
// layouts of §3 and their MDBX dup-sort key prefixes. Every table's
// comparator sorts on a prefix of the value bytes; because MDBX compares
// dup values byte-lexicographically, each encoder below writes that sort
// prefix big-endian (numeric order == byte order) and the remainder of the
// struct little-endian, matching the in-memory layout. Decoders reverse
// exactly the prefix they reversed on the way in.
package schema

import "encoding/binary"

// BlockID is a block height.
type BlockID uint64

// Hash is a 32-byte blockchain hash.
type Hash [32]byte

// BlockInfo pairs a height with its hash. Encoded size: 40 bytes.
type BlockInfo struct {
	ID   BlockID
	Hash Hash
}

const BlockInfoSize = 8 + 32

// Encode writes the big-endian ID (sort prefix) followed by the hash.
func (b BlockInfo) Encode() []byte {
	buf := make([]byte, BlockInfoSize)
	binary.BigEndian.PutUint64(buf[0:8], uint64(b.ID))
	copy(buf[8:40], b.Hash[:])
	return buf
}

// DecodeBlockInfo reverses Encode.
func DecodeBlockInfo(buf []byte) (BlockInfo, error) {
	if len(buf) != BlockInfoSize {
		return BlockInfo{}, errSize("BlockInfo", BlockInfoSize, len(buf))
	}
	var b BlockInfo
	b.ID = BlockID(binary.BigEndian.Uint64(buf[0:8]))
	copy(b.Hash[:], buf[8:40])
	return b, nil
}

// AccountID is a 32-bit account handle.
type AccountID uint32

// AccountStatus classifies an account's visibility/activity state.
type AccountStatus uint8

const (
	StatusActive   AccountStatus = 0
	StatusInactive AccountStatus = 1
	StatusHidden   AccountStatus = 2

	// StatusPending marks an accounts_by_address lookup entry for a Create
	// request still awaiting admin approval (invariant 4). It never appears
	// as a key in the accounts table itself — only in the address index.
	StatusPending AccountStatus = 3
)

// AccountAddress is a public view/spend key pair. Encoded size: 64 bytes.
type AccountAddress struct {
	ViewPublic  Hash
	SpendPublic Hash
}

const AccountAddressSize = 64

func (a AccountAddress) encodeInto(buf []byte) {
	copy(buf[0:32], a.ViewPublic[:])
	copy(buf[32:64], a.SpendPublic[:])
}

func decodeAccountAddress(buf []byte) AccountAddress {
	var a AccountAddress
	copy(a.ViewPublic[:], buf[0:32])
	copy(a.SpendPublic[:], buf[32:64])
	return a
}

// ViewKey is a 32-byte secret scalar.
type ViewKey [32]byte

// AccountFlags holds bitset creation flags.
type AccountFlags uint32

// FlagGeneratedLocally marks an account whose keys the wallet generated
// itself at login time, rather than a pre-existing address the caller
// imported; `/login` echoes this bit back so the client knows whether it
// still needs to persist the keys it already had.
const FlagGeneratedLocally AccountFlags = 1 << 0

// Account is the full persisted account record. id is the comparator
// prefix. Encoded size: 4 (id, big-endian) + 8 + 64 + 32 + 8 + 8 + 8 + 4 +
// 12 (reserved) = 148 bytes.
type Account struct {
	ID             AccountID
	LastAccessTime uint64
	Address        AccountAddress
	ViewKey        ViewKey
	ScanHeight     BlockID
	StartHeight    BlockID
	CreationTime   uint64
	Flags          AccountFlags
	Reserved       [12]byte
}

const AccountSize = 4 + 8 + AccountAddressSize + 32 + 8 + 8 + 8 + 4 + 12

func (a Account) Encode() []byte {
	buf := make([]byte, AccountSize)
	binary.BigEndian.PutUint32(buf[0:4], uint32(a.ID))
	binary.LittleEndian.PutUint64(buf[4:12], a.LastAccessTime)
	a.Address.encodeInto(buf[12:76])
	copy(buf[76:108], a.ViewKey[:])
	binary.LittleEndian.PutUint64(buf[108:116], uint64(a.ScanHeight))
	binary.LittleEndian.PutUint64(buf[116:124], uint64(a.StartHeight))
	binary.LittleEndian.PutUint64(buf[124:132], a.CreationTime)
	binary.LittleEndian.PutUint32(buf[132:136], uint32(a.Flags))
	copy(buf[136:148], a.Reserved[:])
	return buf
}

func DecodeAccount(buf []byte) (Account, error) {
	if len(buf) != AccountSize {
		return Account{}, errSize("Account", AccountSize, len(buf))
	}
	var a Account
	a.ID = AccountID(binary.BigEndian.Uint32(buf[0:4]))
	a.LastAccessTime = binary.LittleEndian.Uint64(buf[4:12])
	a.Address = decodeAccountAddress(buf[12:76])
	copy(a.ViewKey[:], buf[76:108])
	a.ScanHeight = BlockID(binary.LittleEndian.Uint64(buf[108:116]))
	a.StartHeight = BlockID(binary.LittleEndian.Uint64(buf[116:124]))
	a.CreationTime = binary.LittleEndian.Uint64(buf[124:132])
	a.Flags = AccountFlags(binary.LittleEndian.Uint32(buf[132:136]))
	copy(a.Reserved[:], buf[136:148])
	return a, nil
}

// OutputID addresses a chain output. For RingCT outputs AmountHi is 0 and
// IndexLo is the global RingCT output index.
type OutputID struct {
	AmountHi uint64
	IndexLo  uint64
}

const OutputIDSize = 16

func (o OutputID) encodeLE(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], o.AmountHi)
	binary.LittleEndian.PutUint64(buf[8:16], o.IndexLo)
}

func (o OutputID) encodeBE(buf []byte) {
	binary.BigEndian.PutUint64(buf[0:8], o.AmountHi)
	binary.BigEndian.PutUint64(buf[8:16], o.IndexLo)
}

func decodeOutputIDLE(buf []byte) OutputID {
	return OutputID{
		AmountHi: binary.LittleEndian.Uint64(buf[0:8]),
		IndexLo:  binary.LittleEndian.Uint64(buf[8:16]),
	}
}

func decodeOutputIDBE(buf []byte) OutputID {
	return OutputID{
		AmountHi: binary.BigEndian.Uint64(buf[0:8]),
		IndexLo:  binary.BigEndian.Uint64(buf[8:16]),
	}
}

// TxLink locates a transaction by the height it was mined in and its hash.
type TxLink struct {
	Height BlockID
	TxHash Hash
}

const TxLinkSize = 8 + 32

func (l TxLink) encodeBE(buf []byte) {
	binary.BigEndian.PutUint64(buf[0:8], uint64(l.Height))
	copy(buf[8:40], l.TxHash[:])
}

func decodeTxLinkBE(buf []byte) TxLink {
	return TxLink{
		Height: BlockID(binary.BigEndian.Uint64(buf[0:8])),
		TxHash: hashFrom(buf[8:40]),
	}
}

func hashFrom(b []byte) Hash {
	var h Hash
	copy(h[:], b)
	return h
}

// SpendMeta records everything needed to re-derive and spend an output.
type SpendMeta struct {
	ID             OutputID
	Amount         uint64
	MixinCount     uint32
	OutIndexInTx   uint32
	TxPubkey       Hash
}

const SpendMetaSize = OutputIDSize + 8 + 4 + 4 + 32

func (m SpendMeta) encodeLE(buf []byte) {
	m.ID.encodeLE(buf[0:16])
	binary.LittleEndian.PutUint64(buf[16:24], m.Amount)
	binary.LittleEndian.PutUint32(buf[24:28], m.MixinCount)
	binary.LittleEndian.PutUint32(buf[28:32], m.OutIndexInTx)
	copy(buf[32:64], m.TxPubkey[:])
}

func decodeSpendMetaLE(buf []byte) SpendMeta {
	return SpendMeta{
		ID:           decodeOutputIDLE(buf[0:16]),
		Amount:       binary.LittleEndian.Uint64(buf[16:24]),
		MixinCount:   binary.LittleEndian.Uint32(buf[24:28]),
		OutIndexInTx: binary.LittleEndian.Uint32(buf[28:32]),
		TxPubkey:     hashFrom(buf[32:64]),
	}
}

// PaymentID holds either a long (32-byte, deprecated) or short (8-byte,
// encrypted) payment ID. Only one of the two is meaningful, selected by
// the owning Output's extra-packed flags.
type PaymentID struct {
	Long  Hash
	Short [8]byte
}

// Output is a received transfer, keyed by (account, link.height,
// link.tx_hash, meta.id) for sort purposes.
type Output struct {
	Link         TxLink
	Meta         SpendMeta
	Timestamp    uint64
	UnlockTime   uint64
	TxPrefixHash Hash
	PubKey       Hash
	RctMask      Hash
	Reserved     [7]byte
	ExtraPacked  uint8
	PaymentID    PaymentID
}

// ExtraPacked bit flags.
const (
	ExtraHasLongPaymentID  uint8 = 1 << 0
	ExtraHasShortPaymentID uint8 = 1 << 1
	ExtraIsCoinbase        uint8 = 1 << 2
)

const OutputSortPrefixSize = TxLinkSize + OutputIDSize // link.height, link.tx_hash, meta.id
const OutputSize = OutputSortPrefixSize + (SpendMetaSize - OutputIDSize) + 8 + 8 + 32 + 32 + 32 + 7 + 1 + 32 + 8

// Encode serializes an Output: the big-endian (height, tx_hash, out_id)
// sort prefix first, then the rest of SpendMeta and the remaining fields
// little-endian.
func (o Output) Encode() []byte {
	buf := make([]byte, OutputSize)
	off := 0
	o.Link.encodeBE(buf[off : off+TxLinkSize])
	off += TxLinkSize
	o.Meta.ID.encodeBE(buf[off : off+OutputIDSize])
	off += OutputIDSize

	binary.LittleEndian.PutUint64(buf[off:off+8], o.Meta.Amount)
	off += 8
	binary.LittleEndian.PutUint32(buf[off:off+4], o.Meta.MixinCount)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:off+4], o.Meta.OutIndexInTx)
	off += 4
	copy(buf[off:off+32], o.Meta.TxPubkey[:])
	off += 32

	binary.LittleEndian.PutUint64(buf[off:off+8], o.Timestamp)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:off+8], o.UnlockTime)
	off += 8
	copy(buf[off:off+32], o.TxPrefixHash[:])
	off += 32
	copy(buf[off:off+32], o.PubKey[:])
	off += 32
	copy(buf[off:off+32], o.RctMask[:])
	off += 32
	copy(buf[off:off+7], o.Reserved[:])
	off += 7
	buf[off] = o.ExtraPacked
	off += 1
	copy(buf[off:off+32], o.PaymentID.Long[:])
	off += 32
	copy(buf[off:off+8], o.PaymentID.Short[:])
	off += 8

	return buf
}

func DecodeOutput(buf []byte) (Output, error) {
	if len(buf) != OutputSize {
		return Output{}, errSize("Output", OutputSize, len(buf))
	}
	var o Output
	off := 0
	o.Link = decodeTxLinkBE(buf[off : off+TxLinkSize])
	off += TxLinkSize
	o.Meta.ID = decodeOutputIDBE(buf[off : off+OutputIDSize])
	off += OutputIDSize

	o.Meta.Amount = binary.LittleEndian.Uint64(buf[off : off+8])
	off += 8
	o.Meta.MixinCount = binary.LittleEndian.Uint32(buf[off : off+4])
	off += 4
	o.Meta.OutIndexInTx = binary.LittleEndian.Uint32(buf[off : off+4])
	off += 4
	o.Meta.TxPubkey = hashFrom(buf[off : off+32])
	off += 32

	o.Timestamp = binary.LittleEndian.Uint64(buf[off : off+8])
	off += 8
	o.UnlockTime = binary.LittleEndian.Uint64(buf[off : off+8])
	off += 8
	o.TxPrefixHash = hashFrom(buf[off : off+32])
	off += 32
	o.PubKey = hashFrom(buf[off : off+32])
	off += 32
	o.RctMask = hashFrom(buf[off : off+32])
	off += 32
	copy(o.Reserved[:], buf[off:off+7])
	off += 7
	o.ExtraPacked = buf[off]
	off += 1
	copy(o.PaymentID.Long[:], buf[off:off+32])
	off += 32
	copy(o.PaymentID.Short[:], buf[off:off+8])
	off += 8

	return o, nil
}

// Spend is an outgoing transfer, keyed by (account, link.height,
// link.tx_hash, key_image) for sort purposes.
type Spend struct {
	Link            TxLink
	KeyImage        Hash
	Source          OutputID
	Timestamp       uint64
	UnlockTime      uint64
	MixinCount      uint32
	Reserved        [3]byte
	PaymentIDLen    uint8
	PaymentIDLong   Hash
}

const SpendSortPrefixSize = TxLinkSize + 32 // link.height, link.tx_hash, key_image
const SpendSize = SpendSortPrefixSize + OutputIDSize + 8 + 8 + 4 + 3 + 1 + 32

func (s Spend) Encode() []byte {
	buf := make([]byte, SpendSize)
	off := 0
	s.Link.encodeBE(buf[off : off+TxLinkSize])
	off += TxLinkSize
	copy(buf[off:off+32], s.KeyImage[:])
	off += 32

	s.Source.encodeLE(buf[off : off+OutputIDSize])
	off += OutputIDSize
	binary.LittleEndian.PutUint64(buf[off:off+8], s.Timestamp)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:off+8], s.UnlockTime)
	off += 8
	binary.LittleEndian.PutUint32(buf[off:off+4], s.MixinCount)
	off += 4
	copy(buf[off:off+3], s.Reserved[:])
	off += 3
	buf[off] = s.PaymentIDLen
	off += 1
	copy(buf[off:off+32], s.PaymentIDLong[:])
	off += 32

	return buf
}

func DecodeSpend(buf []byte) (Spend, error) {
	if len(buf) != SpendSize {
		return Spend{}, errSize("Spend", SpendSize, len(buf))
	}
	var s Spend
	off := 0
	s.Link = decodeTxLinkBE(buf[off : off+TxLinkSize])
	off += TxLinkSize
	s.KeyImage = hashFrom(buf[off : off+32])
	off += 32

	s.Source = decodeOutputIDLE(buf[off : off+OutputIDSize])
	off += OutputIDSize
	s.Timestamp = binary.LittleEndian.Uint64(buf[off : off+8])
	off += 8
	s.UnlockTime = binary.LittleEndian.Uint64(buf[off : off+8])
	off += 8
	s.MixinCount = binary.LittleEndian.Uint32(buf[off : off+4])
	off += 4
	copy(s.Reserved[:], buf[off:off+3])
	off += 3
	s.PaymentIDLen = buf[off]
	off += 1
	s.PaymentIDLong = hashFrom(buf[off : off+32])
	off += 32

	return s, nil
}

// KeyImage links a spent key image back to the transaction that spent it.
// value is the comparator prefix.
type KeyImage struct {
	Value Hash
	Link  TxLink
}

const KeyImageSize = 32 + TxLinkSize

func (k KeyImage) Encode() []byte {
	buf := make([]byte, KeyImageSize)
	copy(buf[0:32], k.Value[:])
	k.Link.encodeBE(buf[32 : 32+TxLinkSize])
	return buf
}

func DecodeKeyImage(buf []byte) (KeyImage, error) {
	if len(buf) != KeyImageSize {
		return KeyImage{}, errSize("KeyImage", KeyImageSize, len(buf))
	}
	var k KeyImage
	copy(k.Value[:], buf[0:32])
	k.Link = decodeTxLinkBE(buf[32 : 32+TxLinkSize])
	return k, nil
}

// RequestKind distinguishes a pending account-creation request from an
// import of an existing view key.
type RequestKind uint8

const (
	RequestCreate RequestKind = 0
	RequestImport RequestKind = 1
)

// RequestInfo is a pending account request. address is the comparator
// prefix (sorted by address.spend_public per §3.2).
type RequestInfo struct {
	Address       AccountAddress
	ViewKey       ViewKey
	StartHeight   BlockID
	CreationTime  uint64
	CreationFlags AccountFlags
	Reserved      [12]byte
}

const RequestInfoSize = AccountAddressSize + 32 + 8 + 8 + 4 + 12

func (r RequestInfo) Encode() []byte {
	buf := make([]byte, RequestInfoSize)
	// sort prefix: address.spend_public goes first in big-endian form,
	// view_public follows; both logically belong to Address so the field
	// order on the wire is (spend_public, view_public) only for the
	// comparator prefix, reconstructed on decode.
	copy(buf[0:32], r.Address.SpendPublic[:])
	copy(buf[32:64], r.Address.ViewPublic[:])
	copy(buf[64:96], r.ViewKey[:])
	binary.LittleEndian.PutUint64(buf[96:104], uint64(r.StartHeight))
	binary.LittleEndian.PutUint64(buf[104:112], r.CreationTime)
	binary.LittleEndian.PutUint32(buf[112:116], uint32(r.CreationFlags))
	copy(buf[116:128], r.Reserved[:])
	return buf
}

func DecodeRequestInfo(buf []byte) (RequestInfo, error) {
	if len(buf) != RequestInfoSize {
		return RequestInfo{}, errSize("RequestInfo", RequestInfoSize, len(buf))
	}
	var r RequestInfo
	copy(r.Address.SpendPublic[:], buf[0:32])
	copy(r.Address.ViewPublic[:], buf[32:64])
	copy(r.ViewKey[:], buf[64:96])
	r.StartHeight = BlockID(binary.LittleEndian.Uint64(buf[96:104]))
	r.CreationTime = binary.LittleEndian.Uint64(buf[104:112])
	r.CreationFlags = AccountFlags(binary.LittleEndian.Uint32(buf[112:116]))
	copy(r.Reserved[:], buf[116:128])
	return r, nil
}

// AccountLookup is the small denormalized record accounts_by_address and
// accounts_by_height key off of.
type AccountLookup struct {
	ID       AccountID
	Status   AccountStatus
	Reserved [3]byte
}

const AccountLookupSize = 4 + 1 + 3

func (l AccountLookup) Encode() []byte {
	buf := make([]byte, AccountLookupSize)
	binary.BigEndian.PutUint32(buf[0:4], uint32(l.ID))
	buf[4] = byte(l.Status)
	copy(buf[5:8], l.Reserved[:])
	return buf
}

func DecodeAccountLookup(buf []byte) (AccountLookup, error) {
	if len(buf) != AccountLookupSize {
		return AccountLookup{}, errSize("AccountLookup", AccountLookupSize, len(buf))
	}
	var l AccountLookup
	l.ID = AccountID(binary.BigEndian.Uint32(buf[0:4]))
	l.Status = AccountStatus(buf[4])
	copy(l.Reserved[:], buf[5:8])
	return l, nil
}

// AccountByAddress maps a full address to its account lookup record.
// address.view_public is the comparator prefix.
type AccountByAddress struct {
	Address AccountAddress
	Lookup  AccountLookup
}

const AccountByAddressSize = AccountAddressSize + AccountLookupSize

func (a AccountByAddress) Encode() []byte {
	buf := make([]byte, AccountByAddressSize)
	copy(buf[0:32], a.Address.ViewPublic[:])
	copy(buf[32:64], a.Address.SpendPublic[:])
	copy(buf[64:72], a.Lookup.Encode())
	return buf
}

func DecodeAccountByAddress(buf []byte) (AccountByAddress, error) {
	if len(buf) != AccountByAddressSize {
		return AccountByAddress{}, errSize("AccountByAddress", AccountByAddressSize, len(buf))
	}
	var a AccountByAddress
	copy(a.Address.ViewPublic[:], buf[0:32])
	copy(a.Address.SpendPublic[:], buf[32:64])
	lookup, err := DecodeAccountLookup(buf[64:72])
	if err != nil {
		return AccountByAddress{}, err
	}
	a.Lookup = lookup
	return a, nil
}
