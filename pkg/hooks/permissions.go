// Package hooks models the 14 hook permission flags that a pool manager
// reads from the low bits of a hook contract's address.
package hooks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Permissions is the 14-bit hook permission mask. Bit 13 is
// beforeInitialize and bit 0 is afterRemoveLiquidityReturnDelta.
type Permissions uint16

// Flag bits, highest-order flag first.
const (
	BeforeInitialize Permissions = 1 << (13 - iota)
	AfterInitialize
	BeforeAddLiquidity
	BeforeRemoveLiquidity
	AfterAddLiquidity
	AfterRemoveLiquidity
	BeforeSwap
	AfterSwap
	BeforeDonate
	AfterDonate
	BeforeSwapReturnDelta
	AfterSwapReturnDelta
	AfterAddLiquidityReturnDelta
	AfterRemoveLiquidityReturnDelta
)

const (
	// FlagCount is the number of permission flags.
	FlagCount = 14

	// Mask covers every permission bit.
	Mask Permissions = 1<<FlagCount - 1

	// None requires every permission bit to be zero.
	None Permissions = 0
)

// ErrUnknownFlag is returned when a flag name is not in the table.
var ErrUnknownFlag = errors.New("unknown hook flag")

// Flag names one permission bit.
type Flag struct {
	Name  string
	Short string
	Bit   Permissions
}

// Flags is the canonical bit table in protocol order.
var Flags = [FlagCount]Flag{
	{"beforeInitialize", "beforeInitialize", BeforeInitialize},
	{"afterInitialize", "afterInitialize", AfterInitialize},
	{"beforeAddLiquidity", "beforeAddLiquidity", BeforeAddLiquidity},
	{"beforeRemoveLiquidity", "beforeRemoveLiquidity", BeforeRemoveLiquidity},
	{"afterAddLiquidity", "afterAddLiquidity", AfterAddLiquidity},
	{"afterRemoveLiquidity", "afterRemoveLiquidity", AfterRemoveLiquidity},
	{"beforeSwap", "beforeSwap", BeforeSwap},
	{"afterSwap", "afterSwap", AfterSwap},
	{"beforeDonate", "beforeDonate", BeforeDonate},
	{"afterDonate", "afterDonate", AfterDonate},
	{"beforeSwapReturnDelta", "beforeSwapRD", BeforeSwapReturnDelta},
	{"afterSwapReturnDelta", "afterSwapRD", AfterSwapReturnDelta},
	{"afterAddLiquidityReturnDelta", "afterAddLiquidityRD", AfterAddLiquidityReturnDelta},
	{"afterRemoveLiquidityReturnDelta", "afterRemoveLiquidityRD", AfterRemoveLiquidityReturnDelta},
}

// BitIndex returns the position of the flag's bit within the address (0..13).
func (f Flag) BitIndex() int {
	for i := 0; i < FlagCount; i++ {
		if f.Bit == 1<<i {
			return i
		}
	}
	return -1
}

// FromAddress extracts the permission bits encoded in the address.
func FromAddress(addr common.Address) Permissions {
	low := uint16(addr[common.AddressLength-2])<<8 | uint16(addr[common.AddressLength-1])
	return Permissions(low) & Mask
}

// FromBools builds a mask from 14 booleans in protocol order.
func FromBools(values [FlagCount]bool) Permissions {
	var p Permissions
	for i, v := range values {
		if v {
			p |= Flags[i].Bit
		}
	}
	return p
}

// Bools returns the mask as 14 booleans in protocol order.
func (p Permissions) Bools() [FlagCount]bool {
	var out [FlagCount]bool
	for i, f := range Flags {
		out[i] = p.Has(f.Bit)
	}
	return out
}

// Has reports whether every bit of flag is set.
func (p Permissions) Has(flag Permissions) bool {
	return p&flag == flag
}

// With returns p with flag set to enabled.
func (p Permissions) With(flag Permissions, enabled bool) Permissions {
	if enabled {
		return p | flag
	}
	return p &^ flag
}

// Valid reports whether p uses only the 14 permission bits.
func (p Permissions) Valid() bool {
	return p&^Mask == 0
}

// Names returns the enabled flag names in protocol order.
func (p Permissions) Names() []string {
	var names []string
	for _, f := range Flags {
		if p.Has(f.Bit) {
			names = append(names, f.Name)
		}
	}
	return names
}

// String renders the enabled flags joined by '|', or "none".
func (p Permissions) String() string {
	names := p.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Hex renders the mask as a 4-digit hex literal.
func (p Permissions) Hex() string {
	return fmt.Sprintf("0x%04x", uint16(p))
}

// Lookup finds a flag by its full or short name, ignoring case.
func Lookup(name string) (Flag, bool) {
	n := strings.TrimSpace(name)
	for _, f := range Flags {
		if strings.EqualFold(f.Name, n) || strings.EqualFold(f.Short, n) {
			return f, true
		}
	}
	return Flag{}, false
}

// Parse builds a mask from flag names. "all" enables every flag and
// "none" contributes nothing.
func Parse(names []string) (Permissions, error) {
	var p Permissions
	for _, name := range names {
		n := strings.TrimSpace(name)
		switch strings.ToLower(n) {
		case "":
			continue
		case "all":
			p |= Mask
			continue
		case "none":
			continue
		}
		f, ok := Lookup(n)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, n)
		}
		p |= f.Bit
	}
	return p, nil
}
