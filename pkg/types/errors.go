package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/screa/hook-address-miner/pkg/hooks"
)

// Errors
var (
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidLength      = errors.New("invalid field length")
	ErrInvalidPrefix      = errors.New("invalid vanity prefix")
	ErrInvalidPermissions = errors.New("permission mask exceeds 14 bits")
)

// ConfigError reports a configuration rejected before any worker starts.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewMiningConfig builds a MiningConfig from raw byte slices, rejecting
// fields that are not exactly 32 and 20 bytes wide.
func NewMiningConfig(initCodeHash, deployer []byte, prefix string, caseSensitive bool, perms hooks.Permissions) (*MiningConfig, error) {
	if len(initCodeHash) != common.HashLength {
		return nil, &ConfigError{
			Field:  "initCodeHash",
			Reason: fmt.Sprintf("got %d bytes, want %d", len(initCodeHash), common.HashLength),
			Err:    ErrInvalidLength,
		}
	}
	if len(deployer) != common.AddressLength {
		return nil, &ConfigError{
			Field:  "deployerAddress",
			Reason: fmt.Sprintf("got %d bytes, want %d", len(deployer), common.AddressLength),
			Err:    ErrInvalidLength,
		}
	}
	cfg := &MiningConfig{
		InitCodeHash:  common.BytesToHash(initCodeHash),
		Deployer:      common.BytesToAddress(deployer),
		VanityPrefix:  prefix,
		CaseSensitive: caseSensitive,
		Permissions:   perms,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields whose width is not enforced by their type.
func (c *MiningConfig) Validate() error {
	if len(c.VanityPrefix) > 2*common.AddressLength {
		return &ConfigError{
			Field:  "vanityPrefix",
			Reason: fmt.Sprintf("%d characters exceeds the %d of an address", len(c.VanityPrefix), 2*common.AddressLength),
			Err:    ErrInvalidPrefix,
		}
	}
	if i := strings.IndexFunc(c.VanityPrefix, func(r rune) bool { return !isHexRune(r) }); i >= 0 {
		return &ConfigError{
			Field:  "vanityPrefix",
			Reason: fmt.Sprintf("non-hex character %q at position %d", c.VanityPrefix[i], i),
			Err:    ErrInvalidPrefix,
		}
	}
	if !c.Permissions.Valid() {
		return &ConfigError{
			Field:  "permissionFlags",
			Reason: fmt.Sprintf("mask %s has bits above bit 13", c.Permissions.Hex()),
			Err:    ErrInvalidPermissions,
		}
	}
	return nil
}

func isHexRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
