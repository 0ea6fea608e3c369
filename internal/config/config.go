package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/screa/hook-address-miner/internal/crypto"
	"github.com/screa/hook-address-miner/pkg/hooks"
	"github.com/screa/hook-address-miner/pkg/types"
)

// DefaultDeployer is the deterministic deployment proxy used by forge scripts.
const DefaultDeployer = "0x4e59b44847b379578588920ca78fbf26c0b4956c"

// Errors
var (
	ErrNoInitCode          = errors.New("must specify one of --init-code-hash, --bytecode or --bytecode-file")
	ErrConflictingInitCode = errors.New("--init-code-hash, --bytecode and --bytecode-file are mutually exclusive")
	ErrConflictingFlags    = errors.New("--hooks and --flags are mutually exclusive")
	ErrArgsWithoutBytecode = errors.New("--constructor-args requires --bytecode or --bytecode-file")
)

// Config holds the application configuration
type Config struct {
	Workers         int
	MaxWorkers      int
	MaxAttempts     uint64
	InitCodeHash    string
	Bytecode        string
	BytecodeFile    string
	ConstructorArgs string
	Deployer        string
	Prefix          string
	CaseSensitive   bool
	Hooks           []string
	Flags           string
	Seed            string
	Verbose         bool
	LogFile         string
	LogInterval     int // Logging interval in seconds
	MetricsAddr     string
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Workers:     runtime.NumCPU(),
		Deployer:    DefaultDeployer,
		LogInterval: 5, // Default 5 seconds
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	sources := 0
	for _, s := range []string{c.InitCodeHash, c.Bytecode, c.BytecodeFile} {
		if s != "" {
			sources++
		}
	}
	if sources == 0 {
		return ErrNoInitCode
	}
	if sources > 1 {
		return ErrConflictingInitCode
	}
	if c.ConstructorArgs != "" && c.InitCodeHash != "" {
		return ErrArgsWithoutBytecode
	}
	if len(c.Hooks) > 0 && c.Flags != "" {
		return ErrConflictingFlags
	}
	if c.LogInterval <= 0 {
		return fmt.Errorf("log interval must be positive, got %d", c.LogInterval)
	}
	return nil
}

// GetTargetDescription returns a human-readable description of the target
func (c *Config) GetTargetDescription() string {
	perms, err := c.GetPermissions()
	if err != nil {
		return "invalid hooks"
	}
	desc := "hooks: " + perms.String() + " (" + perms.Hex() + ")"
	if p := crypto.StripHexPrefix(c.Prefix); p != "" {
		mode := "case-insensitive"
		if c.CaseSensitive {
			mode = "case-sensitive"
		}
		desc += ", prefix: " + p + " (" + mode + ")"
	}
	return desc
}

// PrefixNeverMatches reports whether a case-sensitive prefix contains
// uppercase letters, which a lowercase-rendered address cannot carry.
func (c *Config) PrefixNeverMatches() bool {
	p := crypto.StripHexPrefix(c.Prefix)
	return c.CaseSensitive && strings.ToLower(p) != p
}

// GetInitCodeHash returns the hash given directly or computed from the bytecode
func (c *Config) GetInitCodeHash() (common.Hash, error) {
	if c.InitCodeHash != "" {
		b, err := crypto.DecodeFixedHex(c.InitCodeHash, common.HashLength)
		if err != nil {
			return common.Hash{}, fmt.Errorf("init code hash: %w", err)
		}
		return common.BytesToHash(b), nil
	}

	code, err := c.GetBytecode()
	if err != nil {
		return common.Hash{}, err
	}
	var args []byte
	if c.ConstructorArgs != "" {
		args, err = crypto.DecodeHex(c.ConstructorArgs)
		if err != nil {
			return common.Hash{}, fmt.Errorf("constructor args: %w", err)
		}
	}
	return crypto.InitCodeHash(code, args), nil
}

// GetBytecode returns the creation code to hash
func (c *Config) GetBytecode() ([]byte, error) {
	if c.BytecodeFile != "" {
		return readBytecodeFromFile(c.BytecodeFile)
	}
	if c.Bytecode != "" {
		b, err := crypto.DecodeHex(c.Bytecode)
		if err != nil {
			return nil, fmt.Errorf("bytecode: %w", err)
		}
		return b, nil
	}
	return nil, ErrNoInitCode
}

// readBytecodeFromFile reads hex bytecode from a file
func readBytecodeFromFile(filename string) ([]byte, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	b, err := crypto.DecodeHex(string(content))
	if err != nil {
		return nil, fmt.Errorf("bytecode file %s: %w", filename, err)
	}
	return b, nil
}

// GetDeployer decodes the CREATE2 deployer address
func (c *Config) GetDeployer() ([]byte, error) {
	b, err := crypto.DecodeFixedHex(c.Deployer, common.AddressLength)
	if err != nil {
		return nil, fmt.Errorf("deployer: %w", err)
	}
	return b, nil
}

// GetPermissions resolves --hooks names or the raw --flags mask
func (c *Config) GetPermissions() (hooks.Permissions, error) {
	if c.Flags != "" {
		v, err := strconv.ParseUint(c.Flags, 0, 16)
		if err != nil {
			return 0, fmt.Errorf("flags: %w", err)
		}
		p := hooks.Permissions(v)
		if !p.Valid() {
			return 0, fmt.Errorf("flags: %s has bits above bit 13", p.Hex())
		}
		return p, nil
	}
	var names []string
	for _, h := range c.Hooks {
		names = append(names, strings.Split(h, ",")...)
	}
	return hooks.Parse(names)
}

// GetSeed parses --seed as 0x-prefixed hex or decimal. Nil means random.
func (c *Config) GetSeed() (*uint256.Int, error) {
	s := strings.TrimSpace(c.Seed)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		h := crypto.StripHexPrefix(s)
		if len(h)%2 != 0 {
			h = "0" + h
		}
		b, err := crypto.DecodeHex(h)
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		if len(b) > 32 {
			return nil, fmt.Errorf("seed: %d bytes exceeds 32", len(b))
		}
		return new(uint256.Int).SetBytes(b), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return v, nil
}

// MiningConfig converts the CLI configuration into the core's immutable config
func (c *Config) MiningConfig() (*types.MiningConfig, error) {
	hash, err := c.GetInitCodeHash()
	if err != nil {
		return nil, err
	}
	deployer, err := c.GetDeployer()
	if err != nil {
		return nil, err
	}
	perms, err := c.GetPermissions()
	if err != nil {
		return nil, err
	}
	return types.NewMiningConfig(hash[:], deployer, crypto.StripHexPrefix(c.Prefix), c.CaseSensitive, perms)
}

// PerWorkerLimit splits MaxAttempts across the workers, rounding up.
func (c *Config) PerWorkerLimit() uint64 {
	if c.MaxAttempts == 0 || c.Workers <= 0 {
		return 0
	}
	w := uint64(c.Workers)
	return (c.MaxAttempts + w - 1) / w
}
