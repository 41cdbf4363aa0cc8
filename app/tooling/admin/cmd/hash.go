package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ardanlabs/certledger/foundation/blockchain/signature"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// hashCmd represents the hash command
var hashCmd = &cobra.Command{
	Use:   "hash <file>",
	Short: "Print the payload hash of a certificate file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := hashFile(args[0])
		if err != nil {
			return err
		}

		pterm.Println(hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

// hashFile returns the payload hash of the file content.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return signature.HashContent(f)
}

// payloadHash resolves the payload hash from either the hash or the file
// flag. Exactly one of them must be set.
func payloadHash(hash string, file string) (string, error) {
	switch {
	case hash != "" && file != "":
		return "", errors.New("only one of --hash or --file can be provided")

	case hash != "":
		return strings.ToLower(strings.TrimSpace(hash)), nil

	case file != "":
		h, err := hashFile(file)
		if err != nil {
			return "", fmt.Errorf("hashing %s: %w", file, err)
		}
		return h, nil
	}

	return "", errors.New("one of --hash or --file is required")
}
