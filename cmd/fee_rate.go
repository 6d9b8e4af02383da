package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/polybridge/clob-bridge/internal/feerate"
)

//nolint:gochecknoglobals // Cobra boilerplate
var feeRateCmd = &cobra.Command{
	Use:   "fee-rate <token-id>",
	Short: "Resolve the taker fee rate for an instrument",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeeRate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(feeRateCmd)
}

func runFeeRate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	tokenID := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	bps, err := feerate.NewClient(cfg.CLOBHost).FetchFeeRate(ctx, tokenID)
	if err != nil {
		return fmt.Errorf("fetch fee rate for %s: %w", tokenID, err)
	}

	fmt.Printf("token_id=%s fee_rate_bps=%d\n", tokenID, bps)

	return nil
}
