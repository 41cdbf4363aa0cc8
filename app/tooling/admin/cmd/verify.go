package cmd

import (
	"context"
	"net/http"

	"github.com/ardanlabs/certledger/business/core/certificate"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	verifyHash      string
	verifyFile      string
	verifyIntegrity bool
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a certificate hash against the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := payloadHash(verifyHash, verifyFile)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		path := "/v1/certificates/verify/" + hash
		if verifyIntegrity {
			path += "?integrity=true"
		}

		var v certificate.Verification
		if err := send(ctx, http.MethodGet, path, nil, &v); err != nil {
			return err
		}

		printVerification(v)

		if v.Receipt != nil {
			signer, err := certificate.CheckReceipt(v)
			if err != nil {
				pterm.Warning.Printfln("receipt does not check out: %s", err)
				return nil
			}
			pterm.Info.Printfln("receipt signed by %s", signer)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyHash, "hash", "", "Payload hash to verify.")
	verifyCmd.Flags().StringVarP(&verifyFile, "file", "f", "", "Certificate file to hash and verify.")
	verifyCmd.Flags().BoolVarP(&verifyIntegrity, "integrity", "i", false, "Also check the integrity of the whole ledger.")
}
