package repo

import (
	"context"
	"errors"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
)

// Gateway errors. Implementations wrap transport errors with these so callers
// can use errors.Is.
var (
	// ErrTransientNetwork means the transport could not be reached; safe to retry
	ErrTransientNetwork = errors.New("transient network error")
	// ErrPermission means the transport refused the operation
	ErrPermission = errors.New("permission denied")
	// ErrNotFound means the target message, chat or file no longer exists
	ErrNotFound = errors.New("not found")
)

// IsTransient reports whether err is worth retrying
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientNetwork)
}

// ParseMode selects the transport text formatting
type ParseMode string

const (
	ParseModeNone       ParseMode = ""
	ParseModeMarkdownV2 ParseMode = "MarkdownV2"
)

// OutgoingText describes a text message to send
type OutgoingText struct {
	ChatID         domain.ChatID
	Text           string
	ParseMode      ParseMode
	ReplyTo        int // message id, zero for none
	Keyboard       *domain.Keyboard
	ForceReply     bool
	Placeholder    string // input field placeholder when ForceReply is set
	DisablePreview bool
}

// InlineAnswer describes the answer to an inline query. With an empty
// CachedPhotoFileID the answer carries no results.
type InlineAnswer struct {
	QueryID           string
	ResultID          string
	CachedPhotoFileID string
	Title             string
	Personal          bool
	SwitchPrivateText string
	SwitchPrivateArg  string
}

// Gateway is the messaging transport interface
type Gateway interface {
	// SendText sends a text message
	SendText(ctx context.Context, msg OutgoingText) (*domain.Message, error)

	// SendImage uploads the image at path as a reply, as a photo when possible
	SendImage(ctx context.Context, chatID domain.ChatID, path string, replyTo int) (*domain.Message, error)

	// EditKeyboard replaces the inline keyboard of a message
	EditKeyboard(ctx context.Context, chatID domain.ChatID, messageID int, kb *domain.Keyboard) error

	// EditText replaces the text and keyboard of a message
	EditText(ctx context.Context, chatID domain.ChatID, messageID int, text string, mode ParseMode, kb *domain.Keyboard) error

	// DeleteMessage deletes a message
	DeleteMessage(ctx context.Context, chatID domain.ChatID, messageID int) error

	// AnswerCallback acknowledges a button press
	AnswerCallback(ctx context.Context, callbackID string) error

	// AnswerInlineQuery answers an inline query
	AnswerInlineQuery(ctx context.Context, answer InlineAnswer) error

	// GetChatMemberRole returns the user's membership status in a chat
	GetChatMemberRole(ctx context.Context, chatID domain.ChatID, userID domain.UserID) (domain.MemberRole, error)

	// GetFileInfo describes a stored file
	GetFileInfo(ctx context.Context, fileID string) (string, error)
}
