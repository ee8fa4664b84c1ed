package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoapi"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
)

// MaxPhotoSize is the largest image sent as a photo; bigger ones go as documents
const MaxPhotoSize = 300000

// NewTelegramBot creates a telego bot that logs through zap
func NewTelegramBot(token string, log *zap.Logger) (*telego.Bot, error) {
	if log == nil {
		log = zap.NewNop()
	}
	bot, err := telego.NewBot(token, telego.WithLogger(log.Named("telego").Sugar()))
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return bot, nil
}

// telegramRepo implements the messaging gateway on the Telegram Bot API
type telegramRepo struct {
	bot *telego.Bot
	log *zap.Logger
}

// NewTelegramRepo creates a new Telegram gateway
func NewTelegramRepo(bot *telego.Bot, log *zap.Logger) repo.Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &telegramRepo{bot: bot, log: log}
}

// SendText sends a text message
func (r *telegramRepo) SendText(ctx context.Context, out repo.OutgoingText) (*domain.Message, error) {
	params := &telego.SendMessageParams{
		ChatID:    tu.ID(int64(out.ChatID)),
		Text:      out.Text,
		ParseMode: string(out.ParseMode),
	}
	if out.ReplyTo != 0 {
		params.ReplyParameters = replyTo(out.ReplyTo)
	}
	if out.DisablePreview {
		params.LinkPreviewOptions = &telego.LinkPreviewOptions{IsDisabled: true}
	}
	switch {
	case out.ForceReply:
		params.ReplyMarkup = &telego.ForceReply{
			ForceReply:            true,
			InputFieldPlaceholder: out.Placeholder,
		}
	case out.Keyboard != nil:
		params.ReplyMarkup = toInlineKeyboard(out.Keyboard)
	}

	msg, err := r.bot.SendMessage(ctx, params)
	if err != nil {
		return nil, classifyError(err)
	}
	return toDomainMessage(msg), nil
}

// SendImage uploads an image as a photo when it is small enough, otherwise
// as a document. A rejected photo is retried as a document.
func (r *telegramRepo) SendImage(ctx context.Context, chatID domain.ChatID, path string, replyToID int) (*domain.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}

	id := tu.ID(int64(chatID))
	if err := r.bot.SendChatAction(ctx, &telego.SendChatActionParams{
		ChatID: id,
		Action: telego.ChatActionUploadPhoto,
	}); err != nil {
		r.log.Debug("chat action failed", zap.Int64("chat_id", int64(chatID)), zap.Error(err))
	}

	if info.Size() < MaxPhotoSize {
		msg, err := r.bot.SendPhoto(ctx, &telego.SendPhotoParams{
			ChatID:          id,
			Photo:           tu.File(f),
			ReplyParameters: replyTo(replyToID),
		})
		if err == nil {
			return toDomainMessage(msg), nil
		}
		var apiErr *telegoapi.Error
		if !errors.As(err, &apiErr) {
			return nil, classifyError(err)
		}
		r.log.Warn("photo rejected, sending as document",
			zap.Int64("chat_id", int64(chatID)),
			zap.Int("error_code", apiErr.ErrorCode),
			zap.String("description", apiErr.Description))
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind image: %w", err)
		}
	}

	msg, err := r.bot.SendDocument(ctx, &telego.SendDocumentParams{
		ChatID:          id,
		Document:        tu.File(f),
		ReplyParameters: replyTo(replyToID),
	})
	if err != nil {
		return nil, classifyError(err)
	}
	return toDomainMessage(msg), nil
}

// EditKeyboard replaces the inline keyboard of a message
func (r *telegramRepo) EditKeyboard(ctx context.Context, chatID domain.ChatID, messageID int, kb *domain.Keyboard) error {
	_, err := r.bot.EditMessageReplyMarkup(ctx, &telego.EditMessageReplyMarkupParams{
		ChatID:      tu.ID(int64(chatID)),
		MessageID:   messageID,
		ReplyMarkup: toInlineKeyboard(kb),
	})
	return classifyError(err)
}

// EditText replaces the text and keyboard of a message
func (r *telegramRepo) EditText(ctx context.Context, chatID domain.ChatID, messageID int, text string, mode repo.ParseMode, kb *domain.Keyboard) error {
	_, err := r.bot.EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:      tu.ID(int64(chatID)),
		MessageID:   messageID,
		Text:        text,
		ParseMode:   string(mode),
		ReplyMarkup: toInlineKeyboard(kb),
	})
	return classifyError(err)
}

// DeleteMessage deletes a message
func (r *telegramRepo) DeleteMessage(ctx context.Context, chatID domain.ChatID, messageID int) error {
	err := r.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    tu.ID(int64(chatID)),
		MessageID: messageID,
	})
	return classifyError(err)
}

// AnswerCallback acknowledges a button press
func (r *telegramRepo) AnswerCallback(ctx context.Context, callbackID string) error {
	err := r.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
	})
	return classifyError(err)
}

// AnswerInlineQuery answers with a single cached photo, or with no results
// and a button that opens a private chat
func (r *telegramRepo) AnswerInlineQuery(ctx context.Context, answer repo.InlineAnswer) error {
	params := &telego.AnswerInlineQueryParams{
		InlineQueryID: answer.QueryID,
		Results:       []telego.InlineQueryResult{},
		IsPersonal:    answer.Personal,
	}
	if answer.CachedPhotoFileID != "" {
		params.Results = append(params.Results, &telego.InlineQueryResultCachedPhoto{
			Type:        telego.ResultTypePhoto,
			ID:          answer.ResultID,
			PhotoFileID: answer.CachedPhotoFileID,
			Title:       answer.Title,
		})
	}
	if answer.SwitchPrivateText != "" {
		params.Button = &telego.InlineQueryResultsButton{
			Text:           answer.SwitchPrivateText,
			StartParameter: answer.SwitchPrivateArg,
		}
	}
	return classifyError(r.bot.AnswerInlineQuery(ctx, params))
}

// GetChatMemberRole returns the user's membership status in a chat
func (r *telegramRepo) GetChatMemberRole(ctx context.Context, chatID domain.ChatID, userID domain.UserID) (domain.MemberRole, error) {
	member, err := r.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: tu.ID(int64(chatID)),
		UserID: int64(userID),
	})
	if err != nil {
		return "", classifyError(err)
	}
	return domain.MemberRole(member.MemberStatus()), nil
}

// GetFileInfo describes a stored file
func (r *telegramRepo) GetFileInfo(ctx context.Context, fileID string) (string, error) {
	file, err := r.bot.GetFile(ctx, &telego.GetFileParams{FileID: fileID})
	if err != nil {
		return "", classifyError(err)
	}
	return fmt.Sprintf("file_id=%s unique_id=%s size=%d path=%s",
		file.FileID, file.FileUniqueID, file.FileSize, file.FilePath), nil
}

// classifyError maps transport errors onto the gateway sentinels
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *telegoapi.Error
	if errors.As(err, &apiErr) {
		desc := strings.ToLower(apiErr.Description)
		switch {
		case apiErr.ErrorCode == 403:
			return fmt.Errorf("%w: %w", repo.ErrPermission, err)
		case apiErr.ErrorCode == 400 && strings.Contains(desc, "not found"):
			return fmt.Errorf("%w: %w", repo.ErrNotFound, err)
		case apiErr.ErrorCode == 400 && strings.Contains(desc, "can't be"):
			return fmt.Errorf("%w: %w", repo.ErrPermission, err)
		case apiErr.ErrorCode >= 500:
			return fmt.Errorf("%w: %w", repo.ErrTransientNetwork, err)
		}
		return err
	}

	// Anything that never produced an API response is a connectivity problem
	return fmt.Errorf("%w: %w", repo.ErrTransientNetwork, err)
}

func replyTo(messageID int) *telego.ReplyParameters {
	if messageID == 0 {
		return nil
	}
	return &telego.ReplyParameters{MessageID: messageID, AllowSendingWithoutReply: true}
}

func toInlineKeyboard(kb *domain.Keyboard) *telego.InlineKeyboardMarkup {
	if kb == nil {
		return nil
	}
	markup := &telego.InlineKeyboardMarkup{
		InlineKeyboard: make([][]telego.InlineKeyboardButton, 0, len(kb.Rows)),
	}
	for _, row := range kb.Rows {
		buttons := make([]telego.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			button := telego.InlineKeyboardButton{Text: b.Text}
			if b.SwitchInlineQuery != "" {
				query := b.SwitchInlineQuery
				button.SwitchInlineQuery = &query
			} else {
				button.CallbackData = b.CallbackData
			}
			buttons = append(buttons, button)
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, buttons)
	}
	return markup
}

func fromInlineKeyboard(markup *telego.InlineKeyboardMarkup) *domain.Keyboard {
	if markup == nil || len(markup.InlineKeyboard) == 0 {
		return nil
	}
	kb := &domain.Keyboard{Rows: make([][]domain.Button, 0, len(markup.InlineKeyboard))}
	for _, row := range markup.InlineKeyboard {
		buttons := make([]domain.Button, 0, len(row))
		for _, b := range row {
			button := domain.Button{Text: b.Text, CallbackData: b.CallbackData}
			if b.SwitchInlineQuery != nil {
				button.SwitchInlineQuery = *b.SwitchInlineQuery
			}
			buttons = append(buttons, button)
		}
		kb.Rows = append(kb.Rows, buttons)
	}
	return kb
}

func toDomainUser(u *telego.User) *domain.User {
	if u == nil {
		return nil
	}
	return &domain.User{
		ID:        domain.UserID(u.ID),
		FirstName: u.FirstName,
		Username:  u.Username,
	}
}

func toDomainMessage(m *telego.Message) *domain.Message {
	if m == nil {
		return nil
	}
	msg := &domain.Message{
		ID: m.MessageID,
		Chat: domain.Chat{
			ID:   domain.ChatID(m.Chat.ID),
			Type: domain.ChatType(m.Chat.Type),
		},
		From:     toDomainUser(m.From),
		Text:     m.Text,
		ReplyTo:  toDomainMessage(m.ReplyToMessage),
		Keyboard: fromInlineKeyboard(m.ReplyMarkup),
	}
	for _, e := range m.Entities {
		msg.Entities = append(msg.Entities, domain.Entity{
			Type:     e.Type,
			Offset:   e.Offset,
			Length:   e.Length,
			Language: e.Language,
		})
	}
	if n := len(m.Photo); n > 0 {
		msg.PhotoFileID = m.Photo[n-1].FileID
	}
	return msg
}

// EventFromUpdate converts a transport update into an inbound event. Updates
// the bot does not handle report false.
func EventFromUpdate(u telego.Update) (domain.Event, bool) {
	ev := domain.Event{UpdateID: u.UpdateID}
	switch {
	case u.Message != nil:
		ev.Kind = domain.EventMessage
		ev.Message = toDomainMessage(u.Message)
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		ev.Kind = domain.EventCallback
		ev.Callback = &domain.CallbackQuery{
			ID:   cq.ID,
			From: *toDomainUser(&cq.From),
			Data: cq.Data,
		}
		if m, ok := cq.Message.(*telego.Message); ok {
			ev.Callback.Message = toDomainMessage(m)
		}
	case u.InlineQuery != nil:
		iq := u.InlineQuery
		ev.Kind = domain.EventInlineQuery
		ev.Inline = &domain.InlineQuery{
			ID:    iq.ID,
			From:  *toDomainUser(&iq.From),
			Query: iq.Query,
		}
	default:
		return domain.Event{}, false
	}
	return ev, true
}
