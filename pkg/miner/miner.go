package miner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/screa/hook-address-miner/pkg/hooks"
	"github.com/screa/hook-address-miner/pkg/partition"
	"github.com/screa/hook-address-miner/pkg/types"
	"github.com/screa/hook-address-miner/pkg/worker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxWorkers       = 1024
	DefaultProgressInterval = time.Second

	eventBuffer = 16
)

// Options configures a session.
type Options struct {
	Workers          int
	MaxWorkers       int          // upper bound for Workers; 0 = DefaultMaxWorkers
	Seed             *uint256.Int // nil draws a random seed
	Limit            uint64       // candidates per worker; 0 = unbounded
	ProgressInterval time.Duration
	Logger           *zap.Logger
	Metrics          *Metrics
	Predicate        worker.Predicate // replaces the config's matcher in every worker
}

// Session mines one configuration with a fixed set of workers. It is
// terminal once its result is produced and cannot be restarted.
type Session struct {
	id      uuid.UUID
	config  *types.MiningConfig
	seed    uint256.Int
	opts    Options
	logger  *zap.Logger
	metrics *Metrics
	workers []*worker.Worker
	start   time.Time

	// the only state shared with workers
	stop   atomic.Bool
	winner atomic.Pointer[types.WorkerResult]

	stopRequested atomic.Bool
	events        chan types.Event
	result        chan types.Result
	done          chan struct{}
	final         types.Result
	once          sync.Once
}

// Start validates cfg and opts, partitions the salt space and launches the
// workers. Invalid input is rejected before any worker starts.
func Start(cfg *types.MiningConfig, opts Options) (*Session, error) {
	if cfg == nil {
		return nil, &types.ConfigError{Field: "config", Reason: "missing", Err: types.ErrInvalidLength}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	if opts.Workers < 1 || opts.Workers > maxWorkers {
		return nil, &types.ConfigError{
			Field:  "workerCount",
			Reason: fmt.Sprintf("%d not in [1, %d]", opts.Workers, maxWorkers),
			Err:    types.ErrInvalidWorkerCount,
		}
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}

	s := &Session{
		id:      uuid.New(),
		config:  cfg,
		opts:    opts,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		events:  make(chan types.Event, eventBuffer),
		result:  make(chan types.Result, 1),
		done:    make(chan struct{}),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.With(zap.String("session", s.id.String()))

	if opts.Seed != nil {
		s.seed.Set(opts.Seed)
	} else {
		seed, err := partition.RandomSeed()
		if err != nil {
			return nil, err
		}
		s.seed.Set(seed)
	}

	ranges, err := partition.Partition(&s.seed, opts.Workers)
	if err != nil {
		return nil, &types.ConfigError{Field: "workerCount", Reason: err.Error(), Err: types.ErrInvalidWorkerCount}
	}
	wopts := worker.Options{
		Limit:            opts.Limit,
		ProgressInterval: opts.ProgressInterval / 4,
		Predicate:        opts.Predicate,
	}
	s.workers = make([]*worker.Worker, len(ranges))
	for i, r := range ranges {
		s.workers[i] = worker.NewWorker(i, r, cfg, wopts)
	}

	s.run()
	return s, nil
}

func (s *Session) run() {
	s.start = time.Now()
	s.logger.Info("mining session started",
		zap.Int("workers", len(s.workers)),
		zap.String("deployer", s.config.Deployer.Hex()),
		zap.String("initCodeHash", s.config.InitCodeHash.Hex()),
		zap.String("prefix", s.config.VanityPrefix),
		zap.Bool("caseSensitive", s.config.CaseSensitive),
		zap.String("hooks", s.config.Permissions.String()),
		zap.String("seed", s.seed.Hex()),
	)
	if s.metrics != nil {
		s.metrics.ActiveWorkers.Add(float64(len(s.workers)))
	}

	var g errgroup.Group
	for _, w := range s.workers {
		g.Go(func() error {
			state := w.Run(&s.stop, s.claim)
			s.logger.Debug("worker finished",
				zap.Int("worker", w.ID()),
				zap.String("state", state.String()),
				zap.Uint64("attempts", w.Attempts()))
			return nil
		})
	}

	finished := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(finished)
	}()
	go s.supervise(finished)
}

// claim is the arbitration point: the first reported match wins and
// cancels every other worker. Later matches are discarded.
func (s *Session) claim(res types.WorkerResult) {
	if s.winner.CompareAndSwap(nil, &res) {
		s.stop.Store(true)
		return
	}
	s.logger.Debug("discarding late match", zap.Int("worker", res.WorkerID))
}

func (s *Session) supervise(finished <-chan struct{}) {
	ticker := time.NewTicker(s.opts.ProgressInterval)
	defer ticker.Stop()

	var reported uint64
	for {
		select {
		case <-ticker.C:
			p := s.Progress()
			s.record(p.Attempts - reported)
			reported = p.Attempts
			if s.metrics != nil {
				s.metrics.HashRate.Set(p.Rate())
			}
			s.logger.Debug("progress",
				zap.Uint64("attempts", p.Attempts),
				zap.Float64("rate", p.Rate()),
				zap.Duration("elapsed", p.Elapsed))
			// keep the last slot free for the result event
			if len(s.events) < cap(s.events)-1 {
				s.events <- types.Event{Kind: types.EventProgress, Progress: p}
			}
		case <-finished:
			res := s.conclude()
			s.record(res.Attempts - reported)
			if s.metrics != nil {
				s.metrics.ActiveWorkers.Sub(float64(len(s.workers)))
				s.metrics.Sessions.WithLabelValues(res.Outcome.String()).Inc()
			}
			s.final = res
			s.result <- res
			s.events <- types.Event{
				Kind:     types.EventResult,
				Progress: types.Progress{Attempts: res.Attempts, Elapsed: res.Duration, Workers: len(s.workers)},
				Result:   &res,
			}
			close(s.events)
			close(s.done)
			return
		}
	}
}

func (s *Session) record(delta uint64) {
	if s.metrics != nil && delta > 0 {
		s.metrics.Attempts.Add(float64(delta))
	}
}

func (s *Session) conclude() types.Result {
	res := types.Result{
		Outcome:  types.OutcomeExhausted,
		WorkerID: -1,
		Attempts: s.totalAttempts(),
		Duration: time.Since(s.start),
	}
	if win := s.winner.Load(); win != nil {
		res.Outcome = types.OutcomeMatched
		res.Salt = win.Salt
		res.Address = win.Address
		res.Permissions = hooks.FromAddress(win.Address)
		res.WorkerID = win.WorkerID
		s.logger.Info("match found",
			zap.String("salt", res.SaltHex()),
			zap.String("address", res.AddressHex()),
			zap.Int("worker", res.WorkerID),
			zap.Uint64("attempts", res.Attempts),
			zap.Duration("duration", res.Duration))
		return res
	}
	if s.stopRequested.Load() {
		res.Outcome = types.OutcomeStopped
	}
	s.logger.Info("mining session ended without match",
		zap.String("outcome", res.Outcome.String()),
		zap.Uint64("attempts", res.Attempts),
		zap.Duration("duration", res.Duration))
	return res
}

func (s *Session) totalAttempts() uint64 {
	var total uint64
	for _, w := range s.workers {
		total += w.Attempts()
	}
	return total
}

// ID returns the session handle.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Config returns the immutable configuration being mined.
func (s *Session) Config() *types.MiningConfig {
	return s.config
}

// Seed returns the seed the salt space was partitioned from.
func (s *Session) Seed() *uint256.Int {
	return s.seed.Clone()
}

// Workers returns the worker count.
func (s *Session) Workers() int {
	return len(s.workers)
}

// Stop asks every worker to stop at its next candidate. It does not wait;
// use Wait or Result for the outcome. Calling Stop on a finished session
// has no effect.
func (s *Session) Stop() {
	s.once.Do(func() {
		s.stopRequested.Store(true)
		s.stop.Store(true)
		s.logger.Info("stop requested")
	})
}

// Progress aggregates the per-worker counters. Counters are read without
// locking and may trail the workers slightly.
func (s *Session) Progress() types.Progress {
	select {
	case <-s.done:
		return types.Progress{Attempts: s.final.Attempts, Elapsed: s.final.Duration, Workers: len(s.workers)}
	default:
	}
	return types.Progress{
		Attempts: s.totalAttempts(),
		Elapsed:  time.Since(s.start),
		Workers:  len(s.workers),
	}
}

// Events streams progress snapshots followed by exactly one result event,
// then closes. Progress events are dropped rather than block a slow reader.
func (s *Session) Events() <-chan types.Event {
	return s.events
}

// Result delivers the session's single result.
func (s *Session) Result() <-chan types.Result {
	return s.result
}

// Done is closed once the result is available.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session ends or ctx is done.
func (s *Session) Wait(ctx context.Context) (types.Result, error) {
	select {
	case <-s.done:
		return s.final, nil
	case <-ctx.Done():
		return types.Result{}, ctx.Err()
	}
}
