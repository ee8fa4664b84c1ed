package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/colorcodebot/colorcodebot/internal/conf"
	"github.com/colorcodebot/colorcodebot/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	cfg    *conf.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "colorcodebot",
	Short: "Telegram bot that replies to code with syntax-highlighted images",
	Long: `colorcodebot watches private chats and group code blocks, decides which
syntax each snippet is written in, and replies with highlighted images
rendered by silicon.

Run without arguments to start the bot.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env file; a missing file is fine
		_ = godotenv.Load()

		var err error
		cfg, err = conf.LoadFromEnv()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err = logging.New(cfg.Log.JSON, cfg.Log.Debug)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, guessCmd, mcpCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
