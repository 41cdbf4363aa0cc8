package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ardanlabs/certledger/business/core/certificate"
	"github.com/spf13/cobra"
)

var (
	blocksFrom uint64
	blocksTo   uint64
)

// blocksCmd represents the blocks command
var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "List the blocks of the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		path := fmt.Sprintf("/v1/ledger/blocks?from=%d&to=%d", blocksFrom, blocksTo)

		var blocks []certificate.Block
		if err := send(ctx, http.MethodGet, path, nil, &blocks); err != nil {
			return err
		}

		return printBlocks(blocks)
	},
}

func init() {
	rootCmd.AddCommand(blocksCmd)
	blocksCmd.Flags().Uint64Var(&blocksFrom, "from", 1, "First block number to list.")
	blocksCmd.Flags().Uint64Var(&blocksTo, "to", 0, "Last block number to list, 0 for the head.")
}
