package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/polybridge/clob-bridge/internal/auth"
	"github.com/polybridge/clob-bridge/internal/bridge"
	"github.com/polybridge/clob-bridge/internal/feerate"
	"github.com/polybridge/clob-bridge/internal/order"
	"github.com/polybridge/clob-bridge/pkg/config"
	"github.com/polybridge/clob-bridge/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var postOrderCmd = &cobra.Command{
	Use:   "post-order",
	Short: "Build, sign, and submit one order from flags",
	Long: `Builds and submits a single order using the wallet configured in the
environment (CLOB_PRIVATE_KEY and friends).

Amount is USDC for BUY orders and shares for SELL orders. Omitting --price
submits a marketable order. Omitting --fee-rate-bps resolves the fee rate
from the venue, which is what you want unless you already know it.

With --dry-run the order is built and signed but not submitted; the signed
order JSON is printed instead.`,
	RunE: runPostOrder,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(postOrderCmd)

	postOrderCmd.Flags().String("token", "", "ERC-1155 token id of the outcome to trade (required)")
	postOrderCmd.Flags().String("side", "BUY", "Order side: BUY or SELL")
	postOrderCmd.Flags().Float64("amount", 0, "Order amount: USDC for BUY, shares for SELL (required)")
	postOrderCmd.Flags().Float64("price", -1, "Limit price in (0, 1]; omit for a marketable order")
	postOrderCmd.Flags().String("order-type", "FOK", "Time in force: FOK, FAK, GTC, or GTD")
	postOrderCmd.Flags().Int("fee-rate-bps", -1, "Taker fee rate override in basis points; omit to resolve from the venue")
	postOrderCmd.Flags().Bool("neg-risk", false, "Trade against the neg-risk exchange contract (multi-outcome markets)")
	postOrderCmd.Flags().Int64("expiration", 0, "Unix expiration timestamp, required for GTD orders")
	postOrderCmd.Flags().Bool("dry-run", false, "Build and sign only; print the order instead of submitting")

	_ = postOrderCmd.MarkFlagRequired("token")
	_ = postOrderCmd.MarkFlagRequired("amount")
}

func runPostOrder(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	token, _ := cmd.Flags().GetString("token")
	side, _ := cmd.Flags().GetString("side")
	amount, _ := cmd.Flags().GetFloat64("amount")
	price, _ := cmd.Flags().GetFloat64("price")
	orderType, _ := cmd.Flags().GetString("order-type")
	feeRateBps, _ := cmd.Flags().GetInt("fee-rate-bps")
	negRisk, _ := cmd.Flags().GetBool("neg-risk")
	expiration, _ := cmd.Flags().GetInt64("expiration")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if dryRun {
		return dryRunOrder(ctx, cfg, logger, token, side, amount, price, orderType, feeRateBps, negRisk, expiration)
	}

	task := &bridge.Task{
		Action: bridge.ActionPostOrder,
		Payload: bridge.Payload{
			OrderType: orderType,
			Order: bridge.OrderPayload{
				TokenID:    token,
				Side:       side,
				Amount:     amount,
				NegRisk:    negRisk,
				Expiration: expiration,
			},
		},
	}
	if price >= 0 {
		task.Payload.Order.Price = price
	}
	if feeRateBps >= 0 {
		task.Payload.Order.FeeRateBps = float64(feeRateBps)
	}
	applyConfigDefaults(task, cfg)

	pipeline := bridge.NewPipeline(cfg.FeeRateTTL, nil, logger)

	result, err := pipeline.Run(ctx, task)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	return nil
}

// dryRunOrder resolves the fee rate (unless overridden), builds and signs
// the order, and prints it without submitting.
func dryRunOrder(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
	token, side string,
	amount, price float64,
	orderType string,
	feeRateBps int,
	negRisk bool,
	expiration int64,
) error {
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

	bps := feeRateBps
	if bps < 0 {
		bps, err = feerate.NewClient(session.Host()).FetchFeeRate(ctx, token)
		if err != nil {
			return &types.FeeRateUnavailableError{TokenID: token, Cause: err}
		}
	}

	intent := &order.Intent{
		TokenID:    token,
		Side:       types.ParseSide(side),
		Amount:     amount,
		NegRisk:    negRisk,
		Expiration: expiration,
	}
	if price >= 0 {
		intent.Price = &price
	}

	signedOrder, err := order.NewBuilder(session, logger).Build(intent, types.ParseOrderType(orderType), bps)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(order.ToJSON(signedOrder)); err != nil {
		return fmt.Errorf("write order: %w", err)
	}

	return nil
}
