package repo

import (
	"context"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
)

// ConfigRepo is the per-chat configuration repository interface.
// Backed by three independent key-value tables: chat -> default syntax,
// chat -> ignore mode, "chatId:userId" -> watch/ignore override.
type ConfigRepo interface {
	// GetChatConfig returns the chat configuration, defaults when absent
	GetChatConfig(ctx context.Context, chatID domain.ChatID) (domain.ChatConfig, error)

	// SetDefaultSyntax sets the chat default syntax
	SetDefaultSyntax(ctx context.Context, chatID domain.ChatID, syntax domain.SyntaxID) error

	// ClearDefaultSyntax removes the chat default syntax
	ClearDefaultSyntax(ctx context.Context, chatID domain.ChatID) error

	// ToggleIgnoreMode flips the chat mode atomically and returns the new mode
	ToggleIgnoreMode(ctx context.Context, chatID domain.ChatID) (domain.Mode, error)

	// GetOverride returns the user's override in a chat, OverrideAbsent when unset
	GetOverride(ctx context.Context, chatID domain.ChatID, userID domain.UserID) (domain.Override, error)

	// SetOverride records the user's explicit watch/ignore request
	SetOverride(ctx context.Context, chatID domain.ChatID, userID domain.UserID, override domain.Override) error

	Close() error
}
