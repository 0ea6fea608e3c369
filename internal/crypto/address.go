package crypto

import (
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

const (
	// CREATE2 input layout: 0xff (1) + deployer (20) + salt (32) + initcodeHash (32) = 85
	Create2PrefixLen = 1 + common.AddressLength
	Create2SaltLen   = 32
	Create2SuffixLen = common.HashLength
	Create2InputLen  = Create2PrefixLen + Create2SaltLen + Create2SuffixLen

	create2Marker = 0xff
)

// Keccak256 calculates the legacy keccak256 hash of the concatenated inputs.
func Keccak256(data ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		_, _ = h.Write(b)
	}
	var out common.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// InitCodeHash returns keccak256(creationCode ++ constructorArgs), the value
// CREATE2 commits to for a contract with ABI-encoded constructor arguments.
func InitCodeHash(creationCode, constructorArgs []byte) common.Hash {
	return Keccak256(creationCode, constructorArgs)
}

// Create2Address calculates the address a deployer creates for salt and initCodeHash:
// keccak256(0xff ++ deployer ++ salt ++ initCodeHash)[12:].
func Create2Address(deployer common.Address, salt [32]byte, initCodeHash common.Hash) common.Address {
	d := NewDeriver(deployer, initCodeHash)
	return d.Derive(&salt)
}

// Deriver computes CREATE2 addresses for a fixed deployer and init code hash.
// It owns its hasher and buffers, so it is not safe for concurrent use; give
// each worker its own.
type Deriver struct {
	hasher hash.Hash
	input  [Create2InputLen]byte
	sum    [32]byte
}

// NewDeriver pre-primes the 85-byte CREATE2 input with the constant prefix and suffix.
func NewDeriver(deployer common.Address, initCodeHash common.Hash) *Deriver {
	d := &Deriver{hasher: sha3.NewLegacyKeccak256()}
	d.input[0] = create2Marker
	copy(d.input[1:Create2PrefixLen], deployer[:])
	copy(d.input[Create2PrefixLen+Create2SaltLen:], initCodeHash[:])
	return d
}

// SaltSlot exposes the salt window of the input buffer so callers can write
// the next candidate in place before calling DeriveInPlace.
func (d *Deriver) SaltSlot() []byte {
	return d.input[Create2PrefixLen : Create2PrefixLen+Create2SaltLen]
}

// Derive copies salt into the input buffer and returns the derived address.
func (d *Deriver) Derive(salt *[32]byte) common.Address {
	copy(d.SaltSlot(), salt[:])
	return d.DeriveInPlace()
}

// DeriveInPlace hashes the input buffer as it currently stands.
func (d *Deriver) DeriveInPlace() common.Address {
	d.hasher.Reset()
	d.hasher.Write(d.input[:])
	sum := d.hasher.Sum(d.sum[:0])
	var addr common.Address
	copy(addr[:], sum[12:32])
	return addr
}

// ChecksumAddress renders a 20-byte address in EIP-55 mixed case.
func ChecksumAddress(addr common.Address) string {
	return addr.Hex()
}

// LowerHex renders an address as lowercase hex without the 0x prefix.
func LowerHex(addr common.Address) string {
	return hex.EncodeToString(addr[:])
}

// StripHexPrefix removes a leading 0x or 0X and surrounding whitespace.
func StripHexPrefix(s string) string {
	h := strings.TrimSpace(s)
	if len(h) >= 2 && (h[0:2] == "0x" || h[0:2] == "0X") {
		h = h[2:]
	}
	return h
}

// DecodeHex decodes a hex string with or without 0x. Odd-length input is rejected.
func DecodeHex(s string) ([]byte, error) {
	h := StripHexPrefix(s)
	if len(h)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even length")
	}
	return hex.DecodeString(h)
}

// DecodeFixedHex decodes a hex string that must be exactly size bytes long.
func DecodeFixedHex(s string, size int) ([]byte, error) {
	h := StripHexPrefix(s)
	if len(h) != size*2 {
		return nil, fmt.Errorf("invalid length: got %d hex chars, want %d", len(h), size*2)
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}
