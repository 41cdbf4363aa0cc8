package cmd

import (
	"context"
	"net/http"

	"github.com/ardanlabs/certledger/business/core/certificate"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	sealHash string
	sealFile string
)

// sealCmd represents the seal command
var sealCmd = &cobra.Command{
	Use:   "seal",
	Short: "Seal a certificate hash into the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := payloadHash(sealHash, sealFile)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		spinner, _ := pterm.DefaultSpinner.Start("sealing " + hash)

		req := struct {
			PayloadHash string `json:"payload_hash"`
		}{
			PayloadHash: hash,
		}

		var ref certificate.BlockRef
		if err := send(ctx, http.MethodPost, "/v1/certificates/seal", req, &ref); err != nil {
			spinner.Fail(err)
			return err
		}
		spinner.Success("sealed")

		printBlockRef(hash, ref)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sealCmd)
	sealCmd.Flags().StringVar(&sealHash, "hash", "", "Payload hash to seal.")
	sealCmd.Flags().StringVarP(&sealFile, "file", "f", "", "Certificate file to hash and seal.")
}
