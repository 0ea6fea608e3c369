package crypto

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeccak256Empty(t *testing.T) {
	want := common.HexToHash("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
	assert.Equal(t, want, Keccak256())
	assert.Equal(t, want, Keccak256(nil, []byte{}))
}

func TestKeccak256MatchesGeth(t *testing.T) {
	inputs := [][]byte{
		{0x00},
		[]byte("hook-address-miner"),
		make([]byte, 200),
	}
	for _, in := range inputs {
		assert.Equal(t, common.BytesToHash(gethcrypto.Keccak256(in)), Keccak256(in))
	}
}

func TestCreate2AddressVectors(t *testing.T) {
	// EIP-1014 examples plus the zero-hash conformance vector.
	tests := []struct {
		name     string
		deployer string
		salt     string
		initCode []byte
		hash     *common.Hash
		want     string
	}{
		{
			name:     "eip1014 example 0",
			deployer: "0x0000000000000000000000000000000000000000",
			salt:     "0x0000000000000000000000000000000000000000000000000000000000000000",
			initCode: []byte{0x00},
			want:     "0x4D1A2e2bB4F88F0250f26Ffff098B0b30B26BF38",
		},
		{
			name:     "eip1014 example 1",
			deployer: "0xdeadbeef00000000000000000000000000000000",
			salt:     "0x0000000000000000000000000000000000000000000000000000000000000000",
			initCode: []byte{0x00},
			want:     "0xB928f69Bb1D91Cd65274e3c79d8986362984fDA3",
		},
		{
			name:     "eip1014 example 3",
			deployer: "0x0000000000000000000000000000000000000000",
			salt:     "0x0000000000000000000000000000000000000000000000000000000000000000",
			initCode: []byte{0xde, 0xad, 0xbe, 0xef},
			want:     "0x70f2b2914A2a4b783FaEFb75f459A580616Fcb5e",
		},
		{
			name:     "eip1014 example 4",
			deployer: "0x00000000000000000000000000000000deadbeef",
			salt:     "0x00000000000000000000000000000000000000000000000000000000cafebabe",
			initCode: []byte{0xde, 0xad, 0xbe, 0xef},
			want:     "0x60f3f640a8508fC6a86d45DF051962668E1e8AC7",
		},
		{
			name:     "deployer one, zero hash, zero salt",
			deployer: "0x0000000000000000000000000000000000000001",
			salt:     "0x0000000000000000000000000000000000000000000000000000000000000000",
			hash:     &common.Hash{},
			want:     "0xe07D489D16f827aE3ef19663fD167C7755cD767b",
		},
		{
			name:     "deterministic deployer, zero hash, zero salt",
			deployer: "0x4e59b44847b379578588920ca78fbf26c0b4956c",
			salt:     "0x0000000000000000000000000000000000000000000000000000000000000000",
			hash:     &common.Hash{},
			want:     "0x778a4590f20dB0c23cB7c1beFC8dA04549f2aa95",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var initCodeHash common.Hash
			if tt.hash != nil {
				initCodeHash = *tt.hash
			} else {
				initCodeHash = Keccak256(tt.initCode)
			}
			salt := common.HexToHash(tt.salt)
			addr := Create2Address(common.HexToAddress(tt.deployer), salt, initCodeHash)
			assert.Equal(t, tt.want, ChecksumAddress(addr))
		})
	}
}

func TestCreate2AddressDeterministic(t *testing.T) {
	deployer := common.HexToAddress("0x4e59b44847b379578588920ca78fbf26c0b4956c")
	salt := common.HexToHash("0x01")
	initCodeHash := Keccak256([]byte("code"))

	first := Create2Address(deployer, salt, initCodeHash)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Create2Address(deployer, salt, initCodeHash))
	}
}

func TestDeriverMatchesGeth(t *testing.T) {
	deployer := common.HexToAddress("0x4e59b44847b379578588920ca78fbf26c0b4956c")
	initCodeHash := InitCodeHash([]byte{0x60, 0x80, 0x60, 0x40}, []byte{0x2a})
	d := NewDeriver(deployer, initCodeHash)

	for i := 0; i < 64; i++ {
		var salt [32]byte
		salt[31] = byte(i)
		salt[0] = byte(255 - i)
		want := gethcrypto.CreateAddress2(deployer, salt, initCodeHash[:])
		assert.Equal(t, want, d.Derive(&salt), "salt %d", i)
	}
}

func TestDeriverInPlace(t *testing.T) {
	deployer := common.HexToAddress("0x0000000000000000000000000000000000000001")
	d := NewDeriver(deployer, common.Hash{})

	slot := d.SaltSlot()
	require.Len(t, slot, Create2SaltLen)
	for i := range slot {
		slot[i] = 0
	}
	assert.Equal(t, "0xe07D489D16f827aE3ef19663fD167C7755cD767b", ChecksumAddress(d.DeriveInPlace()))
}

func TestInitCodeHash(t *testing.T) {
	code := []byte{0x60, 0x80, 0x60, 0x40}
	args := common.LeftPadBytes([]byte{0x2a}, 32)

	want := common.HexToHash("0x93617d35e7046b6416849f66d18101d4b6abe45b5c13a7a15a041168e765e425")
	assert.Equal(t, want, InitCodeHash(code, args))
	assert.Equal(t, Keccak256(code), InitCodeHash(code, nil))
}

func TestDecodeHex(t *testing.T) {
	b, err := DecodeHex("0xdeadBEEF")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)

	_, err = DecodeHex("0xabc")
	assert.Error(t, err)

	_, err = DecodeHex("zz")
	assert.Error(t, err)
}

func TestDecodeFixedHex(t *testing.T) {
	b, err := DecodeFixedHex(" 0X4e59b44847b379578588920ca78fbf26c0b4956c ", common.AddressLength)
	require.NoError(t, err)
	assert.Len(t, b, common.AddressLength)

	_, err = DecodeFixedHex("0x4e59b44847b379578588920ca78fbf26c0b495", common.AddressLength)
	assert.Error(t, err)

	_, err = DecodeFixedHex("0x"+"zz"+"59b44847b379578588920ca78fbf26c0b4956c", common.AddressLength)
	assert.Error(t, err)
}

func TestLowerHex(t *testing.T) {
	addr := common.HexToAddress("0x4D1A2e2bB4F88F0250f26Ffff098B0b30B26BF38")
	assert.Equal(t, "4d1a2e2bb4f88f0250f26ffff098b0b30b26bf38", LowerHex(addr))
}

func BenchmarkDeriver(b *testing.B) {
	d := NewDeriver(common.HexToAddress("0x4e59b44847b379578588920ca78fbf26c0b4956c"), common.Hash{})
	var salt [32]byte
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		salt[31] = byte(i)
		_ = d.Derive(&salt)
	}
}
