package cmd

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/polybridge/clob-bridge/internal/bridge"
	"github.com/polybridge/clob-bridge/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Run one order task from stdin",
	Long: `Reads a single JSON task from stdin, runs the order pipeline, and writes
the result JSON to stdout. Payload fields left empty fall back to the
CLOB_* environment configuration, so a caller that only varies the order can
keep wallet and venue settings in the environment.

Exit status is non-zero for anything that prevented a venue verdict (bad
input, bad configuration, unresolvable fee rate, auth or transport failure);
the venue rejecting the order is a normal {"success": false} result.`,
	RunE: runBridge,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(bridgeCmd)
}

func runBridge(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	task, err := bridge.DecodeTask(os.Stdin)
	if err != nil {
		return err
	}
	applyConfigDefaults(task, cfg)

	pipeline := bridge.NewPipeline(cfg.FeeRateTTL, nil, logger)

	result, err := pipeline.Run(context.Background(), task)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	return nil
}

// applyConfigDefaults fills payload fields the task left empty from the
// environment configuration. Values present in the task always win.
func applyConfigDefaults(task *bridge.Task, cfg *config.Config) {
	p := &task.Payload

	if p.Host == "" {
		p.Host = cfg.CLOBHost
	}
	if p.ChainID == 0 {
		p.ChainID = cfg.ChainID
	}
	if p.PrivateKey == "" {
		p.PrivateKey = cfg.PrivateKey
	}
	if p.SignatureType == nil {
		p.SignatureType = cfg.SignatureType
	}
	if p.FunderAddress == "" {
		p.FunderAddress = cfg.FunderAddress
	}
}
