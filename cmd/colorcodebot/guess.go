package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/usecase"
	"github.com/colorcodebot/colorcodebot/internal/data"
)

var (
	guessMarkup string
	guessChatID int64
)

var guessCmd = &cobra.Command{
	Use:   "guess",
	Short: "Resolve the syntax of a snippet read from stdin",
	Long: `Runs the same resolution pipeline the bot uses on a snippet read from
stdin and prints the decision.

Example:
  echo '{"a": 1}' | colorcodebot guess
  colorcodebot guess --markup python3 < script.py`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := data.NewRepositories(nil, cfg.Store.DBPath, classifierOptions(cfg),
			cfg.Render.SiliconPath, cfg.ToRetryPolicy(), logger)
		if err != nil {
			return fmt.Errorf("failed to create repositories: %w", err)
		}
		defer repos.Close()

		resolver := newResolver(cfg, repos.Classifier, repos.Config)
		return runGuess(cmd.Context(), resolver, cfg.Tables, cmd.InOrStdin(), cmd.OutOrStdout(), guessMarkup, guessChatID)
	},
}

func init() {
	guessCmd.Flags().StringVar(&guessMarkup, "markup", "", "explicit language tag, as on a fenced code block")
	guessCmd.Flags().Int64Var(&guessChatID, "chat", 0, "chat id whose default syntax applies last")
}

func runGuess(ctx context.Context, resolver *usecase.ResolverUsecase, tables *domain.AliasTables, in io.Reader, out io.Writer, markup string, chatID int64) error {
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read snippet: %w", err)
	}
	text := strings.TrimRight(string(raw), "\n")
	if strings.TrimSpace(text) == "" {
		return errors.New("empty snippet")
	}

	res := resolver.Resolve(ctx, usecase.ResolveRequest{
		Text:           text,
		ChatID:         domain.ChatID(chatID),
		IsGroup:        chatID < 0,
		MarkupLanguage: markup,
	})

	if !res.Resolved() {
		fmt.Fprintf(out, "syntax: unresolved\n")
	} else {
		fmt.Fprintf(out, "syntax: %s (%s)\n", res.Syntax, tables.DisplayName(res.Syntax))
	}
	fmt.Fprintf(out, "strategy: %s\n", res.Strategy)
	if res.Label != "" {
		fmt.Fprintf(out, "label: %s\nconfidence: %.2f\n", res.Label, res.Confidence)
	}
	return nil
}
