package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/polybridge/clob-bridge/internal/auth"
	"github.com/polybridge/clob-bridge/internal/orderfeed"
	"github.com/polybridge/clob-bridge/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var watchOrderCmd = &cobra.Command{
	Use:   "watch-order <order-id>",
	Short: "Wait for a lifecycle event for one order on the user channel",
	Long: `Authenticates with the configured wallet, subscribes to the venue's user
WebSocket channel, and blocks until an order event (placement, update, or
cancellation) arrives for the given order id. The event is printed as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatchOrder,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(watchOrderCmd)
	watchOrderCmd.Flags().Duration("timeout", 60*time.Second, "How long to wait for an event")
}

func runWatchOrder(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	orderID := args[0]
	timeout, _ := cmd.Flags().GetDuration("timeout")

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

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	creds, err := session.DeriveCredentials(ctx)
	if err != nil {
		return fmt.Errorf("derive credentials: %w", err)
	}

	feed := orderfeed.New(orderfeed.Config{
		URL:         cfg.WSUserURL,
		Credentials: creds,
		Logger:      logger,
	})
	defer func() {
		_ = feed.Close()
	}()

	if err := feed.Connect(ctx); err != nil {
		return err
	}

	event, err := feed.WaitFor(ctx, orderID)
	if err != nil {
		return fmt.Errorf("watch order %s: %w", orderID, err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(event); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	return nil
}
