// Package netparams defines the hardcoded, per-network constants the
// chain-sync, scanner, and ring-picker components need: genesis hash,
// checkpoints, and the CryptoNote emission/gamma-distribution constants.
// All values are hardcoded here; there is no external configuration for
// network identity — the "explicit Network value" redesign this package
// replaces a looked-up global with.
package netparams

// Network identifies which CryptoNote network a backend instance is
// scanning against.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Devnet  Network = "devnet"
)

// Checkpoint pins a known-good block hash at a given height, used to reject
// daemons serving an incompatible or attacked chain during catch-up.
type Checkpoint struct {
	Height uint64
	Hash   [32]byte
}

// Params holds everything chain-sync, the ring picker, and address parsing
// need for one network.
type Params struct {
	Network Network
	Name    string

	// Decimals is the number of atomic-unit decimal places (12 for XMR).
	Decimals uint8

	// GenesisHash is the hash of block 0.
	GenesisHash [32]byte

	// Checkpoints is sorted ascending by Height.
	Checkpoints []Checkpoint

	// Address prefixes, varint-encoded network bytes distinguishing
	// standard/integrated/subaddress and main/test/dev net.
	PublicAddressBase58Prefix            uint64
	PublicIntegratedAddressBase58Prefix  uint64
	PublicSubaddressBase58Prefix         uint64

	// BlocksInAYear is used by the gamma ring-picker to convert a lookback
	// window into an estimated output count.
	BlocksInAYear uint64

	// DifficultyTarget is the target seconds between blocks.
	DifficultyTarget uint64

	// GammaShape and GammaScale parametrize the Gamma(19.28, 1/1.61)
	// distribution real ring signatures sample spend ages from.
	GammaShape float64
	GammaScale float64

	// RecentCutoffSeconds is a recent-output age cutoff in seconds. No
	// component reads it; the ring picker's recent-output fallback is
	// bounded by RecentSpendWindowSeconds.
	RecentCutoffSeconds uint64

	// DefaultSpendableAge is the confirmation depth (in blocks) an output
	// must clear before it is eligible as a ring member.
	DefaultSpendableAge uint64

	// DefaultUnlockTimeSeconds is subtracted from a drawn gamma age before
	// it is converted to an output index.
	DefaultUnlockTimeSeconds uint64

	// RecentSpendWindowSeconds bounds the uniform fallback draw used when
	// the gamma-sampled age undercuts DefaultUnlockTimeSeconds.
	RecentSpendWindowSeconds uint64
}

var registry = make(map[Network]*Params)

func register(p *Params) {
	registry[p.Network] = p
}

// Get returns the parameters for a network.
func Get(network Network) (*Params, bool) {
	p, ok := registry[network]
	return p, ok
}

// MustGet panics if the network is not registered; used at startup where
// the network comes from validated configuration.
func MustGet(network Network) *Params {
	p, ok := Get(network)
	if !ok {
		panic("netparams: unknown network " + string(network))
	}
	return p
}

func init() {
	register(&Params{
		Network:  Mainnet,
		Name:     "mainnet",
		Decimals: 12,
		GenesisHash: [32]byte{
			0x41, 0x80, 0x15, 0xbb, 0x9a, 0xe9, 0x82, 0xa1,
			0x97, 0x5d, 0x06, 0x55, 0x91, 0x04, 0xf6, 0x06,
			0x3d, 0x7e, 0x89, 0x32, 0x98, 0xa8, 0x34, 0x99,
			0x15, 0x31, 0x40, 0x29, 0x42, 0x55, 0xf4, 0x04,
		},
		PublicAddressBase58Prefix:           18,
		PublicIntegratedAddressBase58Prefix: 19,
		PublicSubaddressBase58Prefix:        42,
		BlocksInAYear:                       525960,
		DifficultyTarget:                    120,
		GammaShape:                          19.28,
		GammaScale:                          1.0 / 1.61,
		RecentCutoffSeconds:                 1800,
		DefaultSpendableAge:                 10,
		DefaultUnlockTimeSeconds:            1200,
		RecentSpendWindowSeconds:            1800,
	})

	register(&Params{
		Network:  Testnet,
		Name:     "testnet",
		Decimals: 12,
		GenesisHash: [32]byte{
			0x48, 0xca, 0x7c, 0xd3, 0xc8, 0xde, 0x5b, 0x6a,
			0x4d, 0x53, 0xd2, 0x86, 0x1f, 0xbd, 0xae, 0xdc,
			0xa1, 0x41, 0x55, 0x63, 0x76, 0xa2, 0x24, 0x9d,
			0xb6, 0xc1, 0x05, 0x4b, 0x03, 0x35, 0x32, 0xd3,
		},
		PublicAddressBase58Prefix:           53,
		PublicIntegratedAddressBase58Prefix: 54,
		PublicSubaddressBase58Prefix:        63,
		BlocksInAYear:                       525960,
		DifficultyTarget:                    120,
		GammaShape:                          19.28,
		GammaScale:                          1.0 / 1.61,
		RecentCutoffSeconds:                 1800,
		DefaultSpendableAge:                 10,
		DefaultUnlockTimeSeconds:            1200,
		RecentSpendWindowSeconds:            1800,
	})

	register(&Params{
		Network:  Devnet,
		Name:     "devnet",
		Decimals: 12,
		GenesisHash: [32]byte{
			0xdc, 0x45, 0x62, 0x30, 0xef, 0xf6, 0x9d, 0x17,
			0x55, 0x9b, 0x81, 0x8a, 0xda, 0xba, 0x20, 0x03,
			0xda, 0xfc, 0x20, 0x10, 0x5d, 0x33, 0xa3, 0xfd,
			0x9c, 0xef, 0x46, 0x6f, 0x07, 0x68, 0xf3, 0x84,
		},
		PublicAddressBase58Prefix:           24,
		PublicIntegratedAddressBase58Prefix: 25,
		PublicSubaddressBase58Prefix:        36,
		BlocksInAYear:                       525960,
		DifficultyTarget:                    120,
		GammaShape:                          19.28,
		GammaScale:                          1.0 / 1.61,
		RecentCutoffSeconds:                 1800,
		DefaultSpendableAge:                 10,
		DefaultUnlockTimeSeconds:            1200,
		RecentSpendWindowSeconds:            1800,
	})
}
