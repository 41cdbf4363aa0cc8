package cmd

import (
	"context"
	"net/http"

	"github.com/ardanlabs/certledger/business/core/certificate"
	"github.com/spf13/cobra"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the summary of the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		var st certificate.Stats
		if err := send(ctx, http.MethodGet, "/v1/ledger/stats", nil, &st); err != nil {
			return err
		}

		printStats(st)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
