package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-plume/go-plume/lib/config"
	"github.com/go-plume/go-plume/lib/keys"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [key]",
	Short: "Show every encoding of a key",
	Long: `inspect re-encodes a key between hex and the checksummed bech32
forms. With no argument it inspects the configured identity key; otherwise
the argument may be hex, nsec or npub.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			sk, err := loadIdentity(config.Load())
			if err != nil {
				return err
			}
			printSecret(sk)
			return nil
		}

		arg := strings.TrimSpace(args[0])
		switch {
		case strings.HasPrefix(arg, keys.SecretKeyPrefix+"1"):
			sk, err := keys.SecretKeyFromBech32(arg)
			if err != nil {
				return err
			}
			printSecret(sk)
		case strings.HasPrefix(arg, keys.PublicKeyPrefix+"1"):
			pk, err := keys.PublicKeyFromBech32(arg)
			if err != nil {
				return err
			}
			printPublic(pk)
		default:
			// Bare hex is ambiguous; treat it as a secret key, which also
			// yields the public side.
			sk, err := keys.SecretKeyFromHex(arg)
			if err != nil {
				return err
			}
			printSecret(sk)
		}
		return nil
	},
}

func printSecret(sk *keys.SecretKey) {
	fmt.Printf("secret (hex):    %s\n", sk.Hex())
	fmt.Printf("secret (bech32): %s\n", sk.Bech32())
	printPublic(sk.Public())
}

func printPublic(pk *keys.PublicKey) {
	fmt.Printf("public (hex):    %s\n", pk.Hex())
	fmt.Printf("public (bech32): %s\n", pk.Bech32())
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
