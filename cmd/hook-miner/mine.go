package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pterm/pterm"
	logpkg "github.com/screa/hook-address-miner/internal/logger"
	"github.com/screa/hook-address-miner/pkg/matcher"
	minerpkg "github.com/screa/hook-address-miner/pkg/miner"
	"github.com/screa/hook-address-miner/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runMiner(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	miningCfg, err := cfg.MiningConfig()
	if err != nil {
		return err
	}
	seed, err := cfg.GetSeed()
	if err != nil {
		return err
	}

	logger := logpkg.New(logpkg.Options{Verbose: cfg.Verbose, File: cfg.LogFile})
	defer func() { _ = logger.Sync() }()

	logger.Info("starting hook address miner",
		zap.Int("workers", cfg.Workers),
		zap.String("target", cfg.GetTargetDescription()),
		zap.String("deployer", miningCfg.Deployer.Hex()),
		zap.String("initCodeHash", miningCfg.InitCodeHash.Hex()),
		zap.Float64("expectedAttempts", matcher.New(miningCfg).Difficulty()))
	if cfg.PrefixNeverMatches() {
		logger.Warn("case-sensitive prefix contains uppercase letters; derived addresses are lowercase hex and will never match",
			zap.String("prefix", miningCfg.VanityPrefix))
	}

	reg := prometheus.NewRegistry()
	metrics := minerpkg.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	m := minerpkg.NewMiner(logger, metrics)
	id, err := m.Start(miningCfg, minerpkg.Options{
		Workers:          cfg.Workers,
		MaxWorkers:       cfg.MaxWorkers,
		Seed:             seed,
		Limit:            cfg.PerWorkerLimit(),
		ProgressInterval: time.Duration(cfg.LogInterval) * time.Second,
	})
	if err != nil {
		return err
	}
	events, err := m.Events(id)
	if err != nil {
		return err
	}

	// Set up signal handling for Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				res, err := m.Wait(context.Background(), id)
				if err != nil {
					return err
				}
				return report(res)
			}
			if ev.Kind == types.EventProgress {
				logger.Info("progress",
					zap.Uint64("attempts", ev.Progress.Attempts),
					zap.String("rate", fmt.Sprintf("%.2f hashes/sec", ev.Progress.Rate())),
					zap.Duration("elapsed", ev.Progress.Elapsed.Round(time.Second)))
			}
		case <-sigChan:
			logger.Info("received interrupt signal, stopping workers")
			if err := m.Stop(id); err != nil {
				return err
			}
		}
	}
}

func report(res types.Result) error {
	switch res.Outcome {
	case types.OutcomeMatched:
		pterm.Success.Println("Found match!")
		return pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
			{"Field", "Value"},
			{"Salt", res.SaltHex()},
			{"Address", res.AddressHex()},
			{"Hooks", res.Permissions.String()},
			{"Flags", res.Permissions.Hex()},
			{"Worker", fmt.Sprint(res.WorkerID)},
			{"Attempts", fmt.Sprint(res.Attempts)},
			{"Duration", res.Duration.Round(time.Millisecond).String()},
			{"Rate", fmt.Sprintf("%.2f hashes/sec", res.Rate())},
		}).Render()
	case types.OutcomeStopped:
		pterm.Warning.Printfln("Mining stopped by user after %d attempts.", res.Attempts)
	case types.OutcomeExhausted:
		pterm.Warning.Printfln("No match found within %d attempts.", res.Attempts)
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}
