package types

import (
	"encoding/hex"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/screa/hook-address-miner/pkg/hooks"
)

// MiningConfig is the validated, immutable input of a mining session.
// It is shared read-only by every worker.
type MiningConfig struct {
	InitCodeHash  common.Hash
	Deployer      common.Address
	VanityPrefix  string // hex characters without 0x; empty means no prefix constraint
	CaseSensitive bool
	Permissions   hooks.Permissions
}

// Outcome is the terminal state of a session.
type Outcome int

const (
	OutcomeMatched Outcome = iota
	OutcomeStopped
	OutcomeExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeStopped:
		return "stopped"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Result represents a mining result
type Result struct {
	Outcome     Outcome
	Salt        [32]byte       // zero unless Outcome is OutcomeMatched
	Address     common.Address // zero unless Outcome is OutcomeMatched
	Permissions hooks.Permissions
	WorkerID    int
	Attempts    uint64
	Duration    time.Duration
}

// Matched reports whether the session found a salt.
func (r Result) Matched() bool {
	return r.Outcome == OutcomeMatched
}

// SaltHex returns the salt as 0x-prefixed hex.
func (r Result) SaltHex() string {
	return "0x" + hex.EncodeToString(r.Salt[:])
}

// AddressHex returns the EIP-55 checksummed address.
func (r Result) AddressHex() string {
	return r.Address.Hex()
}

// Rate returns attempts per second over the session duration.
func (r Result) Rate() float64 {
	if r.Duration.Seconds() <= 0 {
		return 0
	}
	return float64(r.Attempts) / r.Duration.Seconds()
}

// WorkerResult represents a winning candidate reported by a single worker
type WorkerResult struct {
	WorkerID int
	Salt     [32]byte
	Address  common.Address
	Attempts uint64 // candidates this worker evaluated, including the winner
}

// Progress is an aggregate snapshot of a running session.
type Progress struct {
	Attempts uint64
	Elapsed  time.Duration
	Workers  int
}

// Rate returns attempts per second.
func (p Progress) Rate() float64 {
	if p.Elapsed.Seconds() <= 0 {
		return 0
	}
	return float64(p.Attempts) / p.Elapsed.Seconds()
}

// EventKind distinguishes session events.
type EventKind int

const (
	EventProgress EventKind = iota
	EventResult
)

// Event is one item of a session's progress/result stream.
type Event struct {
	Kind     EventKind
	Progress Progress
	Result   *Result // set only for EventResult
}
