package domain

import (
	"fmt"
	"strings"
)

// ChatID is the transport chat identifier
type ChatID int64

// UserID is the transport user identifier
type UserID int64

// ChatType represents the chat type
type ChatType string

const (
	ChatTypePrivate    ChatType = "private"
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
	ChatTypeChannel    ChatType = "channel"
)

// IsPrivate reports whether the chat is one-to-one
func (t ChatType) IsPrivate() bool {
	return t == ChatTypePrivate
}

// Chat is a chat reference (value object)
type Chat struct {
	ID   ChatID
	Type ChatType
}

// IsPrivate reports whether the chat is one-to-one
func (c Chat) IsPrivate() bool {
	return c.Type.IsPrivate()
}

// Mode is the chat-level processing mode
type Mode string

const (
	ModeWatch  Mode = "watch"
	ModeIgnore Mode = "ignore"
)

// ChatConfig is the persisted per-chat configuration.
// A missing record is equivalent to the zero value with ModeWatch.
type ChatConfig struct {
	ChatID        ChatID
	DefaultSyntax SyntaxID // empty means no default
	Mode          Mode
}

// NewChatConfig returns the default configuration for a chat
func NewChatConfig(chatID ChatID) ChatConfig {
	return ChatConfig{ChatID: chatID, Mode: ModeWatch}
}

// HasDefault reports whether a default syntax is configured
func (c ChatConfig) HasDefault() bool {
	return c.DefaultSyntax != ""
}

// IsIgnoring reports whether the chat is in ignore mode
func (c ChatConfig) IsIgnoring() bool {
	return c.Mode == ModeIgnore
}

// Override is a user's explicit watch/ignore request within a chat
type Override string

const (
	OverrideAbsent Override = ""
	OverrideWatch  Override = "watch"
	OverrideIgnore Override = "ignore"
)

// ParseOverride parses a stored override value; unknown values read as absent
func ParseOverride(s string) Override {
	switch Override(strings.TrimSpace(s)) {
	case OverrideWatch:
		return OverrideWatch
	case OverrideIgnore:
		return OverrideIgnore
	default:
		return OverrideAbsent
	}
}

// OverrideKey builds the composite "chatId:userId" key of the override table
func OverrideKey(chatID ChatID, userID UserID) string {
	return fmt.Sprintf("%d:%d", chatID, userID)
}

// ShouldProcess decides whether a snippet from a user is eligible for processing.
//
// Private chats always process. In groups the default for an absent override
// follows the chat mode: ignore-mode chats need an explicit watch request,
// watch-mode chats process unless the user asked to be ignored.
func ShouldProcess(cfg ChatConfig, override Override, private bool) bool {
	if private {
		return true
	}
	if cfg.IsIgnoring() {
		return override == OverrideWatch
	}
	return override != OverrideIgnore
}

// MemberRole is a chat membership status reported by the transport
type MemberRole string

const (
	RoleCreator       MemberRole = "creator"
	RoleAdministrator MemberRole = "administrator"
	RoleMember        MemberRole = "member"
	RoleRestricted    MemberRole = "restricted"
	RoleLeft          MemberRole = "left"
	RoleKicked        MemberRole = "kicked"
)

// CanModerate reports whether the role may change group-wide settings
func (r MemberRole) CanModerate() bool {
	return r == RoleCreator || r == RoleAdministrator
}
