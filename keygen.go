package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/go-plume/go-plume/lib/config"
	"github.com/go-plume/go-plume/lib/keys"
)

var keygenForce bool

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new identity key",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		path := cfg.Identity.KeyFile
		if _, err := os.Stat(path); err == nil && !keygenForce {
			return oops.Errorf("key file %s already exists, use --force to overwrite", path)
		}

		sk, err := keys.GenerateSecretKey()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return oops.Wrapf(err, "failed to create key directory")
		}
		if err := os.WriteFile(path, []byte(sk.Hex()+"\n"), 0o600); err != nil {
			return oops.Wrapf(err, "failed to write key file")
		}
		log.WithField("path", path).Info("wrote new identity key")

		fmt.Printf("public key:  %s\n", sk.Public().Hex())
		fmt.Printf("             %s\n", sk.Public().Bech32())
		fmt.Printf("secret key:  %s\n", sk.Bech32())
		fmt.Printf("stored at:   %s\n", path)
		return nil
	},
}

func init() {
	keygenCmd.Flags().BoolVar(&keygenForce, "force", false, "overwrite an existing key file")
	rootCmd.AddCommand(keygenCmd)
}

// loadIdentity reads the configured key file. The file holds one line of
// hex; nsec-encoded content is accepted too.
func loadIdentity(cfg *config.Config) (*keys.SecretKey, error) {
	data, err := os.ReadFile(cfg.Identity.KeyFile)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to read key file %s (run 'plume keygen' first?)", cfg.Identity.KeyFile)
	}
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, keys.SecretKeyPrefix+"1") {
		return keys.SecretKeyFromBech32(raw)
	}
	return keys.SecretKeyFromHex(raw)
}
