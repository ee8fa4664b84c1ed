package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/colorcodebot/colorcodebot/internal/data"
	"github.com/colorcodebot/colorcodebot/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the syntax tools over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		repos, err := data.NewRepositories(nil, cfg.Store.DBPath, classifierOptions(cfg),
			cfg.Render.SiliconPath, cfg.ToRetryPolicy(), logger)
		if err != nil {
			return fmt.Errorf("failed to create repositories: %w", err)
		}
		defer repos.Close()

		srv := mcpserver.NewServer(newResolver(cfg, repos.Classifier, repos.Config), repos.Config, cfg.Tables, version, logger)
		return srv.Run(ctx)
	},
}
