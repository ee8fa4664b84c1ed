package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/colorcodebot/colorcodebot/internal/biz"
	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
	"github.com/colorcodebot/colorcodebot/internal/biz/usecase"
	"github.com/colorcodebot/colorcodebot/internal/conf"
	"github.com/colorcodebot/colorcodebot/internal/data"
	"github.com/colorcodebot/colorcodebot/internal/server"
	"github.com/colorcodebot/colorcodebot/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot, err := data.NewTelegramBot(cfg.Telegram.APIKey, logger)
	if err != nil {
		return err
	}

	me, err := bot.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}
	logger.Info("authorized", zap.String("username", me.Username))

	// Initialize repository layer
	repos, err := data.NewRepositories(bot, cfg.Store.DBPath, classifierOptions(cfg),
		cfg.Render.SiliconPath, cfg.ToRetryPolicy(), logger)
	if err != nil {
		return fmt.Errorf("failed to create repositories: %w", err)
	}
	defer repos.Close()
	logger.Info("config store ready", zap.String("db_path", cfg.Store.DBPath))

	// Initialize usecase layer
	ucs, err := biz.NewUsecases(biz.Options{
		Tables:   cfg.Tables,
		Texts:    cfg.Locale.ToKeyboardTexts(),
		Resolver: cfg.ToResolverConfig(),
		Render:   cfg.ToRenderConfig(),
	}, repos.Config, repos.Gateway, repos.Classifier, repos.Renderer, logger)
	if err != nil {
		return err
	}

	// Initialize service layer
	scheduler := service.NewDeletionScheduler(repos.Gateway, cfg.Server.PromptTTL, logger)
	botSvc := service.NewBotService(
		ucs.Resolver,
		ucs.Consent,
		ucs.Permission,
		ucs.Keyboards,
		ucs.Render,
		repos.Gateway,
		repos.Config,
		cfg.Tables,
		cfg.Locale,
		scheduler,
		me.Username,
		logger.Named("bot"),
	)

	// Initialize server
	srv := server.NewTelegramServer(bot, botSvc, scheduler, cfg.Server.Workers, logger)

	logger.Info("starting colorcodebot", zap.String("version", version))
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("shut down")
	return nil
}

func classifierOptions(cfg *conf.Config) data.ClassifierOptions {
	return data.ClassifierOptions{
		Backend: cfg.Classifier.Backend,
		APIKey:  cfg.Classifier.APIKey,
		BaseURL: cfg.Classifier.BaseURL,
		Model:   cfg.Classifier.Model,
		Labels:  cfg.Tables.Labels(),
	}
}

func newResolver(cfg *conf.Config, classifier repo.Classifier, configRepo repo.ConfigRepo) *usecase.ResolverUsecase {
	return usecase.NewResolverUsecase(cfg.Tables, classifier, configRepo, cfg.ToResolverConfig(), logger.Named("resolver"))
}
