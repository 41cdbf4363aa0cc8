package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/certledger/business/core/certificate"
	"github.com/ardanlabs/certledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/certledger/foundation/blockchain/state"
	"github.com/ardanlabs/certledger/foundation/blockchain/storage/disk"
	"github.com/spf13/cobra"
)

var (
	checkDBPath      string
	checkGenesisPath string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the integrity of a ledger on disk without a running node",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		st, err := checkLedger(ctx, checkDBPath, checkGenesisPath)
		if err != nil {
			return err
		}

		printStats(st)

		if !st.IntegrityValid {
			return errors.New("ledger failed the integrity check")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkDBPath, "db", "zblock/blocks", "Path to the ledger block files.")
	checkCmd.Flags().StringVarP(&checkGenesisPath, "genesis", "g", "zblock/genesis.json", "Path to the genesis file.")
}

// checkLedger opens the ledger read only and summarizes it. The summary
// carries the first integrity violation found.
func checkLedger(ctx context.Context, dbPath string, genesisPath string) (certificate.Stats, error) {
	gen, err := genesis.Load(genesisPath)
	if err != nil {
		return certificate.Stats{}, fmt.Errorf("loading genesis: %w", err)
	}

	if _, err := os.Stat(dbPath); err != nil {
		return certificate.Stats{}, fmt.Errorf("opening ledger: %w", err)
	}

	strg, err := disk.New(dbPath)
	if err != nil {
		return certificate.Stats{}, fmt.Errorf("opening ledger: %w", err)
	}

	st, err := state.New(state.Config{
		Genesis: gen,
		Storage: strg,
	})
	if err != nil {
		return certificate.Stats{}, err
	}
	defer st.Shutdown()

	core := certificate.NewCore(certificate.Config{
		Ledger: st,
	})

	return core.Stats(ctx)
}
