package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/screa/hook-address-miner/internal/config"
	"github.com/spf13/cobra"
)

var cfg = config.NewConfig()

func main() {
	var rootCmd = &cobra.Command{
		Use:   "hook-miner",
		Short: "CREATE2 salt miner for hook addresses",
		Long: `A command line utility for mining CREATE2 salts whose derived address
encodes a given set of hook permission flags in its lowest 14 bits,
optionally starting with a vanity hex prefix.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMiner,
	}

	flags := rootCmd.Flags()
	flags.IntVarP(&cfg.Workers, "workers", "w", runtime.NumCPU(), "Number of worker goroutines")
	flags.IntVar(&cfg.MaxWorkers, "max-workers", 0, "Upper bound accepted for --workers (default 1024)")
	flags.Uint64Var(&cfg.MaxAttempts, "max-attempts", 0, "Give up after this many candidates in total (0 = unbounded)")
	flags.StringVarP(&cfg.InitCodeHash, "init-code-hash", "H", "", "Keccak256 of the contract init code (32-byte hex)")
	flags.StringVarP(&cfg.Bytecode, "bytecode", "B", "", "Contract creation code (hex)")
	flags.StringVarP(&cfg.BytecodeFile, "bytecode-file", "F", "", "File containing contract creation code (hex)")
	flags.StringVarP(&cfg.ConstructorArgs, "constructor-args", "a", "", "ABI-encoded constructor arguments appended to the creation code (hex)")
	flags.StringVarP(&cfg.Deployer, "deployer", "d", config.DefaultDeployer, "CREATE2 deployer address")
	flags.StringVarP(&cfg.Prefix, "prefix", "p", "", "Vanity address prefix (hex)")
	flags.BoolVarP(&cfg.CaseSensitive, "case-sensitive", "c", false, "Compare the prefix without lower-casing it")
	flags.StringSliceVarP(&cfg.Hooks, "hooks", "k", nil, "Enabled hook flags by name, comma separated (see 'hook-miner flags')")
	flags.StringVar(&cfg.Flags, "flags", "", "Enabled hook flags as a raw 14-bit mask, e.g. 0x00c0")
	flags.StringVar(&cfg.Seed, "seed", "", "Starting salt (decimal or 0x hex); random when empty")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	flags.StringVarP(&cfg.LogFile, "log-file", "l", "", "Rotated JSON log file (default: console)")
	flags.IntVarP(&cfg.LogInterval, "log-interval", "i", 5, "Progress logging interval in seconds")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	rootCmd.AddCommand(newDeriveCmd(), newDecodeCmd(), newFlagsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
