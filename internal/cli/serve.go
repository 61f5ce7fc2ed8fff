package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/apex-citadels/citadel/internal/daemon"
)

func init() {
	serveCmd.Flags().StringP("config", "c", "", "Path to config.toml (default: <data dir>/config.toml)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the economy daemon",
	Long: `Run the economy daemon: load the persisted ledger (crediting offline
generation), tick passive accrual, autosave, and serve the HTTP API and
websocket event feed until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr, "citadel: ", log.LstdFlags)

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		logger.Printf("warning: %v, using defaults", err)
	}

	d, err := daemon.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return d.Run(ctx)
}
