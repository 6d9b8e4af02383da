package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/polybridge/clob-bridge/internal/auth"
	"github.com/polybridge/clob-bridge/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var deriveAPICredsCmd = &cobra.Command{
	Use:   "derive-api-creds",
	Short: "Derive CLOB API credentials from the configured wallet key",
	Long: `Uses CLOB_PRIVATE_KEY to create or derive the venue's API credential set
via L1 (wallet signature) authentication. The venue issues one credential
set per wallet and nonce, so running this twice returns the same
credentials.

The credentials are printed in .env form - save them if you want to reuse
them elsewhere:
  CLOB_API_KEY=...
  CLOB_SECRET=...
  CLOB_PASSPHRASE=...`,
	RunE: runDeriveAPICreds,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(deriveAPICredsCmd)
}

func runDeriveAPICreds(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	session, err := auth.NewSession(&auth.SessionConfig{
		Host:          cfg.CLOBHost,
		ChainID:       cfg.ChainID,
		PrivateKey:    cfg.PrivateKey,
		SignatureType: types.ParseSignatureType(cfg.SignatureType),
		FunderAddress: cfg.FunderAddress,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Host:        %s\n", session.Host())
	fmt.Printf("EOA Address: %s\n", session.Address())
	if session.MakerAddress() != session.Address() {
		fmt.Printf("Funder:      %s\n", session.MakerAddress())
	}
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	creds, err := session.DeriveCredentials(ctx)
	if err != nil {
		return fmt.Errorf("derive credentials: %w", err)
	}

	fmt.Printf("CLOB_API_KEY=%s\n", creds.Key)
	fmt.Printf("CLOB_SECRET=%s\n", creds.Secret)
	fmt.Printf("CLOB_PASSPHRASE=%s\n", creds.Passphrase)

	return nil
}
