package worker

import (
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/screa/hook-address-miner/internal/crypto"
	"github.com/screa/hook-address-miner/pkg/matcher"
	"github.com/screa/hook-address-miner/pkg/partition"
	"github.com/screa/hook-address-miner/pkg/types"
)

const (
	DefaultProgressBatch    = 4096
	DefaultProgressInterval = 250 * time.Millisecond

	// clock is read once every timeCheckEvery candidates
	timeCheckEvery = 256
)

// State is a worker lifecycle state.
type State int32

const (
	Idle State = iota
	Running
	Matched
	Stopped
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Matched:
		return "matched"
	case Stopped:
		return "stopped"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Predicate decides whether a derived address is a winner.
type Predicate interface {
	Matches(addr common.Address) bool
}

// Options tune a worker. Zero values pick the defaults.
type Options struct {
	Limit            uint64        // candidates to test before giving up; 0 = unbounded
	ProgressBatch    uint64        // publish the counter at least every this many candidates
	ProgressInterval time.Duration // or once this much time has passed
	Predicate        Predicate     // replaces the matcher compiled from the config
}

// Worker iterates one salt range, deriving and testing addresses
type Worker struct {
	id      int
	rng     partition.Range
	deriver *crypto.Deriver
	pred    Predicate
	opts    Options

	// written only by the worker goroutine, read by the session
	attempts atomic.Uint64
	state    atomic.Int32
}

// NewWorker creates a new worker instance
func NewWorker(id int, rng partition.Range, cfg *types.MiningConfig, opts Options) *Worker {
	if opts.ProgressBatch == 0 {
		opts.ProgressBatch = DefaultProgressBatch
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	pred := opts.Predicate
	if pred == nil {
		pred = matcher.New(cfg)
	}
	return &Worker{
		id:      id,
		rng:     rng,
		deriver: crypto.NewDeriver(cfg.Deployer, cfg.InitCodeHash),
		pred:    pred,
		opts:    opts,
	}
}

// ID returns the worker index.
func (w *Worker) ID() int {
	return w.id
}

// Range returns the stride assigned to the worker.
func (w *Worker) Range() partition.Range {
	return w.rng
}

// State returns the current lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Attempts returns the last published candidate count. It may lag the
// true count by up to one progress batch while the worker is running.
func (w *Worker) Attempts() uint64 {
	return w.attempts.Load()
}

// Run tests candidates until one matches, stop is set, or the range is
// exhausted, and returns the terminal state. stop is checked before every
// candidate. onMatch is called at most once, from the worker goroutine,
// before Run returns. A worker runs only once; later calls return the
// current state.
func (w *Worker) Run(stop *atomic.Bool, onMatch func(types.WorkerResult)) State {
	if !w.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return w.State()
	}

	slot := w.deriver.SaltSlot()
	cur := w.rng.Cursor(w.opts.Limit)
	batch := w.opts.ProgressBatch
	interval := w.opts.ProgressInterval
	lastPublish := time.Now()

	var n uint64
	for {
		if stop.Load() {
			return w.finish(n, Stopped)
		}
		if !cur.Next(slot) {
			return w.finish(n, Exhausted)
		}

		addr := w.deriver.DeriveInPlace()
		n++

		if w.pred.Matches(addr) {
			res := types.WorkerResult{
				WorkerID: w.id,
				Address:  addr,
				Attempts: n,
			}
			copy(res.Salt[:], slot)
			w.attempts.Store(n)
			w.state.Store(int32(Matched))
			if onMatch != nil {
				onMatch(res)
			}
			return Matched
		}

		if n%batch == 0 {
			w.attempts.Store(n)
			lastPublish = time.Now()
		} else if n%timeCheckEvery == 0 {
			if now := time.Now(); now.Sub(lastPublish) >= interval {
				w.attempts.Store(n)
				lastPublish = now
			}
		}
	}
}

func (w *Worker) finish(n uint64, s State) State {
	w.attempts.Store(n)
	w.state.Store(int32(s))
	return s
}
