package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pterm/pterm"
	"github.com/screa/hook-address-miner/internal/config"
	"github.com/screa/hook-address-miner/internal/crypto"
	"github.com/screa/hook-address-miner/pkg/hooks"
	"github.com/spf13/cobra"
)

func newDeriveCmd() *cobra.Command {
	c := config.NewConfig()
	var salt string
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Compute the CREATE2 address for a salt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.Validate(); err != nil {
				return err
			}
			hash, err := c.GetInitCodeHash()
			if err != nil {
				return err
			}
			deployer, err := c.GetDeployer()
			if err != nil {
				return err
			}
			saltBytes, err := crypto.DecodeHex(salt)
			if err != nil {
				return fmt.Errorf("salt: %w", err)
			}
			if len(saltBytes) > crypto.Create2SaltLen {
				return fmt.Errorf("salt: %d bytes exceeds %d", len(saltBytes), crypto.Create2SaltLen)
			}

			addr := crypto.Create2Address(common.BytesToAddress(deployer), common.BytesToHash(saltBytes), hash)
			perms := hooks.FromAddress(addr)
			fmt.Fprintf(cmd.OutOrStdout(), "Address: %s\nHooks:   %s (%s)\n", crypto.ChecksumAddress(addr), perms, perms.Hex())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&salt, "salt", "s", "", "Salt (hex, left-padded to 32 bytes)")
	f.StringVarP(&c.InitCodeHash, "init-code-hash", "H", "", "Keccak256 of the contract init code (32-byte hex)")
	f.StringVarP(&c.Bytecode, "bytecode", "B", "", "Contract creation code (hex)")
	f.StringVarP(&c.BytecodeFile, "bytecode-file", "F", "", "File containing contract creation code (hex)")
	f.StringVarP(&c.ConstructorArgs, "constructor-args", "a", "", "ABI-encoded constructor arguments (hex)")
	f.StringVarP(&c.Deployer, "deployer", "d", config.DefaultDeployer, "CREATE2 deployer address")
	_ = cmd.MarkFlagRequired("salt")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <address>",
		Short: "Show the hook flags encoded in an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := crypto.DecodeFixedHex(args[0], common.AddressLength)
			if err != nil {
				return fmt.Errorf("address: %w", err)
			}
			perms := hooks.FromAddress(common.BytesToAddress(b))
			data := pterm.TableData{{"Bit", "Flag", "Enabled"}}
			for _, f := range hooks.Flags {
				data = append(data, []string{fmt.Sprint(f.BitIndex()), f.Name, fmt.Sprint(perms.Has(f.Bit))})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Flags: %s\n", perms.Hex())
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

func newFlagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flags",
		Short: "List hook flag names and their address bits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := pterm.TableData{{"Bit", "Mask", "Name", "Short"}}
			for _, f := range hooks.Flags {
				data = append(data, []string{fmt.Sprint(f.BitIndex()), f.Bit.Hex(), f.Name, f.Short})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}
