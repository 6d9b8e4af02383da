package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/polybridge/clob-bridge/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "clob-bridge",
	Short: "Polymarket CLOB order bridge",
	Long: `Bridges a trading agent to the Polymarket CLOB: given a wallet key and
an order intent, it authenticates, resolves the instrument's taker fee rate,
builds and signs the canonical exchange order, submits it, and normalizes
the venue's response into a single success/failure verdict.

With no subcommand it reads one JSON task from stdin and writes the result
JSON to stdout, so it can sit directly on a pipe.`,
	RunE:         runBridge,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfigAndLogger is the shared command preamble: .env (if present),
// environment config, and a stderr logger.
func loadConfigAndLogger() (*config.Config, *zap.Logger, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	return cfg, logger, nil
}
