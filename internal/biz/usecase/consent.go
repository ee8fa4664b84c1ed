package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
)

// ConsentUsecase decides whether an incoming message is processed at all
type ConsentUsecase struct {
	configRepo repo.ConfigRepo
	log        *zap.Logger
}

// NewConsentUsecase creates a new consent usecase
func NewConsentUsecase(configRepo repo.ConfigRepo, log *zap.Logger) *ConsentUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConsentUsecase{configRepo: configRepo, log: log}
}

// ShouldProcess applies the chat mode and the sender's override
func (uc *ConsentUsecase) ShouldProcess(ctx context.Context, msg *domain.Message) (bool, error) {
	if msg.IsPrivate() {
		return true, nil
	}

	cfg, err := uc.configRepo.GetChatConfig(ctx, msg.Chat.ID)
	if err != nil {
		return false, fmt.Errorf("get chat config: %w", err)
	}
	override, err := uc.configRepo.GetOverride(ctx, msg.Chat.ID, msg.SenderID())
	if err != nil {
		return false, fmt.Errorf("get override: %w", err)
	}

	return domain.ShouldProcess(cfg, override, false), nil
}

// Extract isolates the snippet text. Private chats use the whole message;
// groups use only code and pre spans with more than one word.
func (uc *ConsentUsecase) Extract(msg *domain.Message) (string, bool) {
	if msg.IsPrivate() {
		if strings.TrimSpace(msg.Text) == "" {
			return "", false
		}
		return msg.Text, true
	}
	return msg.CodeContent()
}

// Admit combines ShouldProcess and Extract
func (uc *ConsentUsecase) Admit(ctx context.Context, msg *domain.Message) (string, bool, error) {
	ok, err := uc.ShouldProcess(ctx, msg)
	if err != nil || !ok {
		return "", false, err
	}
	text, ok := uc.Extract(msg)
	return text, ok, nil
}

// SetOverride records a user's /watchme or /ignoreme request
func (uc *ConsentUsecase) SetOverride(ctx context.Context, chatID domain.ChatID, userID domain.UserID, override domain.Override) error {
	uc.log.Info("setting user override",
		zap.Int64("chat_id", int64(chatID)),
		zap.Int64("user_id", int64(userID)),
		zap.String("override", string(override)))
	return uc.configRepo.SetOverride(ctx, chatID, userID, override)
}
