// Package matcher decides whether a derived address satisfies a mining
// configuration: an optional hex prefix and an exact hook permission mask.
package matcher

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/screa/hook-address-miner/pkg/hooks"
	"github.com/screa/hook-address-miner/pkg/types"
)

const lowerHexDigits = "0123456789abcdef"

// Matcher is a compiled match predicate. It holds no mutable state and is
// safe for concurrent use.
type Matcher struct {
	prefix string
	flags  hooks.Permissions
}

// New compiles the predicate for cfg. Without case sensitivity the prefix is
// lower-cased; with it the prefix is kept verbatim and compared against the
// lowercase rendering of the address.
func New(cfg *types.MiningConfig) *Matcher {
	prefix := cfg.VanityPrefix
	if !cfg.CaseSensitive {
		prefix = strings.ToLower(prefix)
	}
	return &Matcher{
		prefix: prefix,
		flags:  cfg.Permissions & hooks.Mask,
	}
}

// Matches reports whether addr satisfies cfg.
func Matches(addr common.Address, cfg *types.MiningConfig) bool {
	return New(cfg).Matches(addr)
}

// Matches reports whether addr carries the permission mask and the prefix.
func (m *Matcher) Matches(addr common.Address) bool {
	return m.MatchesPermissions(addr) && m.MatchesPrefix(addr)
}

// MatchesPermissions compares all 14 low bits of addr against the mask.
func (m *Matcher) MatchesPermissions(addr common.Address) bool {
	return hooks.FromAddress(addr) == m.flags
}

// MatchesPrefix compares the leading hex characters of addr against the prefix.
func (m *Matcher) MatchesPrefix(addr common.Address) bool {
	for i := 0; i < len(m.prefix); i++ {
		b := addr[i/2]
		if i%2 == 0 {
			b >>= 4
		}
		if lowerHexDigits[b&0x0f] != m.prefix[i] {
			return false
		}
	}
	return true
}

// Prefix returns the normalised prefix the matcher compares against.
func (m *Matcher) Prefix() string {
	return m.prefix
}

// Permissions returns the required permission mask.
func (m *Matcher) Permissions() hooks.Permissions {
	return m.flags
}

// Difficulty returns the expected number of candidates per match,
// 16 per prefix character times 2^14 for the permission bits.
func (m *Matcher) Difficulty() float64 {
	d := float64(uint32(1) << hooks.FlagCount)
	for range m.prefix {
		d *= 16
	}
	return d
}
