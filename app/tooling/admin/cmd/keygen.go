package cmd

import (
	"os"
	"path/filepath"

	"github.com/ardanlabs/certledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var keyPath string

// keygenCmd represents the keygen command
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the key a node signs verification receipts with",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(filepath.Dir(keyPath), 0755); err != nil {
			return err
		}

		privateKey, err := crypto.GenerateKey()
		if err != nil {
			return err
		}

		if err := crypto.SaveECDSA(keyPath, privateKey); err != nil {
			return err
		}

		pterm.Success.Printfln("key written to %s", keyPath)
		pterm.Info.Printfln("signer %s", signature.Address(privateKey))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVarP(&keyPath, "key", "k", "zblock/node.ecdsa", "Path to write the private key.")
}
