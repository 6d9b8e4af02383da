package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polybridge/clob-bridge/internal/app"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge as an HTTP service",
	Long: `Starts a long-lived HTTP server exposing the order pipeline:

  POST /api/v1/order  - run one order task (same JSON contract as stdin mode)
  GET  /metrics       - Prometheus metrics
  GET  /health        - liveness
  GET  /ready         - readiness

Wallet sessions and fee rate caches are reused across requests. With
STORAGE_MODE=postgres every completed submission is written to the audit
log.`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	if err := application.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
