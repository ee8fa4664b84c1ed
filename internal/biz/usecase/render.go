package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
)

// ErrMissingSnippet is returned when a render is requested without the
// original snippet message to reply to
var ErrMissingSnippet = errors.New("render requested without a snippet")

// RenderConfig contains render settings
type RenderConfig struct {
	DarkTheme       string
	LightTheme      string
	BackgroundImage string
	Folder          string // parent for per-render temp dirs, os.TempDir when empty
}

// DefaultRenderConfig is the default render configuration
var DefaultRenderConfig = RenderConfig{
	DarkTheme:  "Coldark-Dark",
	LightTheme: "Coldark-Cold",
}

// Artifact is the outcome of rendering and delivering one theme
type Artifact struct {
	Theme   string
	Message *domain.Message // delivered image message, nil on failure
	Err     error
}

// RenderUsecase renders a snippet and delivers the images
type RenderUsecase struct {
	renderer  repo.Renderer
	gateway   repo.Gateway
	keyboards *KeyboardUsecase
	cfg       RenderConfig
	log       *zap.Logger
}

// NewRenderUsecase creates a new render usecase
func NewRenderUsecase(renderer repo.Renderer, gateway repo.Gateway, keyboards *KeyboardUsecase, cfg RenderConfig, log *zap.Logger) *RenderUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &RenderUsecase{
		renderer:  renderer,
		gateway:   gateway,
		keyboards: keyboards,
		cfg:       cfg,
		log:       log,
	}
}

// Themes returns the themes rendered for a chat: dark only in groups,
// dark and light in private chats
func (uc *RenderUsecase) Themes(private bool) []string {
	if private {
		return []string{uc.cfg.DarkTheme, uc.cfg.LightTheme}
	}
	return []string{uc.cfg.DarkTheme}
}

// Render renders text as syntax once per theme and replies to snippet with
// each image. A failing theme is logged and does not stop the others.
func (uc *RenderUsecase) Render(ctx context.Context, snippet *domain.Message, text string, syntax domain.SyntaxID) ([]Artifact, error) {
	if snippet == nil {
		return nil, ErrMissingSnippet
	}

	dir, err := os.MkdirTemp(uc.cfg.Folder, "ccb-")
	if err != nil {
		return nil, fmt.Errorf("create render dir: %w", err)
	}
	defer os.RemoveAll(dir)

	private := snippet.IsPrivate()
	log := uc.log.With(
		zap.Int64("chat_id", int64(snippet.Chat.ID)),
		zap.Int64("user_id", int64(snippet.SenderID())),
		zap.String("syntax", string(syntax)))

	themes := uc.Themes(private)
	artifacts := make([]Artifact, 0, len(themes))
	for _, theme := range themes {
		msg, err := uc.renderOne(ctx, snippet, text, syntax, theme, dir, private)
		if err != nil {
			log.Error("render failed", zap.String("theme", theme), zap.Error(err))
		}
		artifacts = append(artifacts, Artifact{Theme: theme, Message: msg, Err: err})
	}
	return artifacts, nil
}

func (uc *RenderUsecase) renderOne(ctx context.Context, snippet *domain.Message, text string, syntax domain.SyntaxID, theme, dir string, private bool) (*domain.Message, error) {
	path, err := uc.renderer.Render(ctx, repo.RenderRequest{
		Text:            text,
		Syntax:          syntax,
		Theme:           theme,
		BackgroundImage: uc.cfg.BackgroundImage,
		Folder:          dir,
	})
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	msg, err := uc.gateway.SendImage(ctx, snippet.Chat.ID, path, snippet.ID)
	if err != nil {
		return nil, fmt.Errorf("send image: %w", err)
	}

	kb := uc.keyboards.ImageKeyboard(msg.PhotoFileID, private && msg.IsPhoto())
	if err := uc.gateway.EditKeyboard(ctx, msg.Chat.ID, msg.ID, kb); err != nil {
		return msg, fmt.Errorf("attach keyboard: %w", err)
	}
	return msg, nil
}

// Delivered counts artifacts that reached the chat
func Delivered(artifacts []Artifact) int {
	n := 0
	for _, a := range artifacts {
		if a.Message != nil {
			n++
		}
	}
	return n
}
