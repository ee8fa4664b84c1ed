package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
	"github.com/colorcodebot/colorcodebot/internal/biz/usecase"
	"github.com/colorcodebot/colorcodebot/internal/conf"
)

// switchPrivateArg is the start parameter sent when a user switches from
// inline mode to the private chat
const switchPrivateArg = "x"

// BotService implements the bot's handlers on top of the usecases
type BotService struct {
	resolver   *usecase.ResolverUsecase
	consent    *usecase.ConsentUsecase
	permission *usecase.PermissionUsecase
	keyboards  *usecase.KeyboardUsecase
	render     *usecase.RenderUsecase

	gateway    repo.Gateway
	configRepo repo.ConfigRepo
	tables     *domain.AliasTables
	locale     *conf.Locale
	scheduler  *DeletionScheduler

	botUsername string // commands addressed to other bots are ignored
	log         *zap.Logger
}

// NewBotService creates a new bot service
func NewBotService(
	resolver *usecase.ResolverUsecase,
	consent *usecase.ConsentUsecase,
	permission *usecase.PermissionUsecase,
	keyboards *usecase.KeyboardUsecase,
	render *usecase.RenderUsecase,
	gateway repo.Gateway,
	configRepo repo.ConfigRepo,
	tables *domain.AliasTables,
	locale *conf.Locale,
	scheduler *DeletionScheduler,
	botUsername string,
	log *zap.Logger,
) *BotService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BotService{
		resolver:    resolver,
		consent:     consent,
		permission:  permission,
		keyboards:   keyboards,
		render:      render,
		gateway:     gateway,
		configRepo:  configRepo,
		tables:      tables,
		locale:      locale,
		scheduler:   scheduler,
		botUsername: botUsername,
		log:         log,
	}
}

func messageFields(msg *domain.Message) []zap.Field {
	return []zap.Field{
		zap.Int64("chat_id", int64(msg.Chat.ID)),
		zap.Int64("user_id", int64(msg.SenderID())),
		zap.String("user_first_name", msg.SenderName()),
	}
}

func callbackFields(cb *domain.CallbackQuery) []zap.Field {
	fields := []zap.Field{
		zap.Int64("user_id", int64(cb.From.ID)),
		zap.String("user_first_name", cb.From.FirstName),
	}
	if cb.Message != nil {
		fields = append(fields, zap.Int64("chat_id", int64(cb.Message.Chat.ID)))
	}
	return fields
}

// isGone reports errors for messages that were already deleted or became
// inaccessible; these are expected races
func isGone(err error) bool {
	return errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrPermission)
}

// knownSyntax reports whether syntax is one the keyboards offer
func (s *BotService) knownSyntax(syntax domain.SyntaxID) bool {
	for _, ns := range s.tables.Display {
		if ns.Syntax == syntax {
			return true
		}
	}
	return false
}

// Welcome introduces the bot and asks for a snippet
func (s *BotService) Welcome(ctx context.Context, msg *domain.Message) error {
	s.log.Info("introducing myself", messageFields(msg)...)
	_, err := s.gateway.SendText(ctx, repo.OutgoingText{
		ChatID:      msg.Chat.ID,
		Text:        s.locale.Welcome,
		ParseMode:   repo.ParseModeMarkdownV2,
		ReplyTo:     msg.ID,
		ForceReply:  true,
		Placeholder: s.locale.InputPlaceholder,
	})
	if err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}
	return nil
}

// ManageGroupOptions shows the chat settings panel to moderators. Others
// get no response.
func (s *BotService) ManageGroupOptions(ctx context.Context, msg *domain.Message) error {
	allowed, err := s.permission.CanModerate(ctx, msg.SenderID(), msg.Chat)
	if err != nil {
		return err
	}
	s.log.Info("user requesting group options for viewing or changing",
		append(messageFields(msg), zap.Bool("user_is_admin", allowed))...)
	if !allowed {
		return nil
	}

	text, err := s.currentConfigText(ctx, msg.Chat.ID)
	if err != nil {
		return err
	}
	kb, err := s.keyboards.For(domain.Full(domain.KeyboardGroupOptions))
	if err != nil {
		return err
	}
	if _, err := s.gateway.SendText(ctx, repo.OutgoingText{
		ChatID:    msg.Chat.ID,
		Text:      text,
		ParseMode: repo.ParseModeMarkdownV2,
		Keyboard:  kb,
	}); err != nil {
		return fmt.Errorf("send group options: %w", err)
	}
	return nil
}

func (s *BotService) currentConfigText(ctx context.Context, chatID domain.ChatID) (string, error) {
	cfg, err := s.configRepo.GetChatConfig(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("get chat config: %w", err)
	}
	return s.locale.FormatCurrentConfig(cfg), nil
}

// IgnoreUser records the sender's request to be ignored in this chat
func (s *BotService) IgnoreUser(ctx context.Context, msg *domain.Message) error {
	s.log.Info("ignoring group user", messageFields(msg)...)
	return s.consent.SetOverride(ctx, msg.Chat.ID, msg.SenderID(), domain.OverrideIgnore)
}

// WatchUser records the sender's request to be watched in this chat
func (s *BotService) WatchUser(ctx context.Context, msg *domain.Message) error {
	s.log.Info("watching group user", messageFields(msg)...)
	return s.consent.SetOverride(ctx, msg.Chat.ID, msg.SenderID(), domain.OverrideWatch)
}

// IntakeSnippet resolves the syntax of an incoming snippet. A resolved
// snippet is rendered right away under a minimized picker for corrections;
// otherwise the full picker is shown. Either prompt is deleted after the
// scheduler delay.
func (s *BotService) IntakeSnippet(ctx context.Context, msg *domain.Message) error {
	text, ok, err := s.consent.Admit(ctx, msg)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Debug("snippet not admitted", messageFields(msg)...)
		return nil
	}

	res := s.resolver.Resolve(ctx, usecase.ResolveRequest{
		Text:           text,
		ChatID:         msg.Chat.ID,
		IsGroup:        !msg.IsPrivate(),
		MarkupLanguage: msg.MarkupLanguage(),
	})
	s.log.Info("receiving code", append(messageFields(msg),
		zap.String("syntax", string(res.Syntax)),
		zap.String("strategy", string(res.Strategy)),
		zap.Float64("confidence", res.Confidence))...)

	out := repo.OutgoingText{
		ChatID:         msg.Chat.ID,
		Text:           s.locale.QueryExt,
		ParseMode:      repo.ParseModeMarkdownV2,
		ReplyTo:        msg.ID,
		DisablePreview: true,
	}
	state := domain.Full(domain.KeyboardSyntax)
	if res.Resolved() {
		out.Text = s.locale.FormatGuessedSyntax(res.Syntax)
		state = domain.Minimized(domain.KeyboardSyntax)
	}
	kb, err := s.keyboards.For(state)
	if err != nil {
		return err
	}
	out.Keyboard = kb

	prompt, err := s.gateway.SendText(ctx, out)
	if err != nil {
		return fmt.Errorf("send syntax prompt: %w", err)
	}
	if s.scheduler != nil {
		s.scheduler.Schedule(prompt.Chat.ID, prompt.ID)
	}

	if !res.Resolved() {
		return nil
	}
	return s.colorize(ctx, msg, text, res.Syntax)
}

func (s *BotService) colorize(ctx context.Context, snippet *domain.Message, text string, syntax domain.SyntaxID) error {
	if snippet == nil {
		return usecase.ErrMissingSnippet
	}
	s.log.Info("colorizing code", append(messageFields(snippet), zap.String("syntax", string(syntax)))...)
	artifacts, err := s.render.Render(ctx, snippet, text, syntax)
	if err != nil {
		return err
	}
	if usecase.Delivered(artifacts) == 0 {
		s.log.Warn("no image delivered", messageFields(snippet)...)
	}
	return nil
}

// SetSnippetSyntax handles a syntax chosen from the picker: the picker is
// minimized and the snippet it replies to is rendered
func (s *BotService) SetSnippetSyntax(ctx context.Context, cb *domain.CallbackQuery, p domain.CallbackPayload) error {
	if !s.knownSyntax(p.Ext) {
		s.log.Warn("ignoring unknown syntax", append(callbackFields(cb), zap.String("syntax", string(p.Ext)))...)
		return nil
	}
	prompt := cb.Message
	if prompt == nil {
		return usecase.ErrMissingSnippet
	}

	applied, err := s.applyKeyboard(ctx, prompt, p)
	if err != nil {
		return err
	}
	if !applied {
		return s.answer(ctx, cb)
	}

	snippet := prompt.ReplyTo
	if snippet == nil {
		return usecase.ErrMissingSnippet
	}
	text, ok := s.consent.Extract(snippet)
	if ok {
		if err := s.colorize(ctx, snippet, text, p.Ext); err != nil {
			return err
		}
	} else {
		s.log.Info("snippet has no code left", messageFields(snippet)...)
	}
	return s.answer(ctx, cb)
}

// RestoreKeyboard swaps a minimized keyboard back to its full layout
func (s *BotService) RestoreKeyboard(ctx context.Context, cb *domain.CallbackQuery, p domain.CallbackPayload) error {
	if cb.Message == nil {
		return nil
	}
	if _, err := s.applyKeyboard(ctx, cb.Message, p); err != nil {
		return err
	}
	return s.answer(ctx, cb)
}

func (s *BotService) answer(ctx context.Context, cb *domain.CallbackQuery) error {
	if err := s.gateway.AnswerCallback(ctx, cb.ID); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

// applyKeyboard attaches the keyboard the action leads to. When the message
// still shows its keyboard, the action must be valid from that state; stale
// taps report false and leave the message alone.
func (s *BotService) applyKeyboard(ctx context.Context, msg *domain.Message, p domain.CallbackPayload) (bool, error) {
	state, ok := domain.TargetState(p)
	if !ok {
		return false, fmt.Errorf("%w: %q", domain.ErrInvalidTransition, p.Action)
	}
	if current, known := domain.StateOf(msg.Keyboard); known {
		next, err := current.Apply(p)
		if err != nil {
			s.log.Info("ignoring stale keyboard action",
				zap.Int64("chat_id", int64(msg.Chat.ID)),
				zap.Int("message_id", msg.ID),
				zap.String("action", string(p.Action)),
				zap.String("layout", string(current.Layout)),
				zap.Error(err))
			return false, nil
		}
		state = next
	}

	kb, err := s.keyboards.For(state)
	if err != nil {
		return false, err
	}
	if err := s.gateway.EditKeyboard(ctx, msg.Chat.ID, msg.ID, kb); err != nil {
		if isGone(err) {
			s.log.Info("keyboard message is gone", zap.Int64("chat_id", int64(msg.Chat.ID)), zap.Error(err))
			return true, nil
		}
		return false, fmt.Errorf("edit keyboard: %w", err)
	}
	return true, nil
}

// BrowseGroupSyntax shows the default syntax browser to moderators
func (s *BotService) BrowseGroupSyntax(ctx context.Context, cb *domain.CallbackQuery, p domain.CallbackPayload) error {
	if cb.Message == nil {
		return nil
	}
	allowed, err := s.permission.CanModerate(ctx, cb.From.ID, cb.Message.Chat)
	if err != nil {
		return err
	}
	s.log.Info("user browsing group syntax", append(callbackFields(cb), zap.Bool("user_is_admin", allowed))...)
	if !allowed {
		return nil
	}
	_, err = s.applyKeyboard(ctx, cb.Message, p)
	return err
}

// SetGroupSyntax sets or clears the chat default syntax
func (s *BotService) SetGroupSyntax(ctx context.Context, cb *domain.CallbackQuery, p domain.CallbackPayload) error {
	if cb.Message == nil {
		return nil
	}
	if p.Ext != "" && !s.knownSyntax(p.Ext) {
		s.log.Warn("ignoring unknown syntax", append(callbackFields(cb), zap.String("syntax", string(p.Ext)))...)
		return nil
	}
	chatID := cb.Message.Chat.ID
	allowed, err := s.permission.CanModerate(ctx, cb.From.ID, cb.Message.Chat)
	if err != nil {
		return err
	}
	s.log.Info("user trying to set group default syntax", append(callbackFields(cb),
		zap.String("syntax", string(p.Ext)),
		zap.Bool("user_is_admin", allowed))...)
	if !allowed {
		return nil
	}

	if p.Ext != "" {
		err = s.configRepo.SetDefaultSyntax(ctx, chatID, p.Ext)
	} else {
		err = s.configRepo.ClearDefaultSyntax(ctx, chatID)
	}
	if err != nil {
		return fmt.Errorf("set default syntax: %w", err)
	}
	return s.showGroupOptions(ctx, cb.Message, p)
}

// ToggleGroupWatch flips the chat between watch and ignore mode
func (s *BotService) ToggleGroupWatch(ctx context.Context, cb *domain.CallbackQuery, p domain.CallbackPayload) error {
	if cb.Message == nil {
		return nil
	}
	allowed, err := s.permission.CanModerate(ctx, cb.From.ID, cb.Message.Chat)
	if err != nil {
		return err
	}
	s.log.Info("user trying to toggle group watch mode", append(callbackFields(cb), zap.Bool("user_is_admin", allowed))...)
	if !allowed {
		return nil
	}

	mode, err := s.configRepo.ToggleIgnoreMode(ctx, cb.Message.Chat.ID)
	if err != nil {
		return fmt.Errorf("toggle watch mode: %w", err)
	}
	s.log.Info("group watch mode changed", append(callbackFields(cb), zap.String("mode", string(mode)))...)
	return s.showGroupOptions(ctx, cb.Message, p)
}

// showGroupOptions rewrites the settings panel with the current config
func (s *BotService) showGroupOptions(ctx context.Context, panel *domain.Message, p domain.CallbackPayload) error {
	state, ok := domain.TargetState(p)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTransition, p.Action)
	}
	kb, err := s.keyboards.For(state)
	if err != nil {
		return err
	}
	text, err := s.currentConfigText(ctx, panel.Chat.ID)
	if err != nil {
		return err
	}
	if err := s.gateway.EditText(ctx, panel.Chat.ID, panel.ID, text, repo.ParseModeMarkdownV2, kb); err != nil {
		if isGone(err) {
			s.log.Info("settings panel is gone", zap.Int64("chat_id", int64(panel.Chat.ID)), zap.Error(err))
			return nil
		}
		return fmt.Errorf("edit group options: %w", err)
	}
	return nil
}

// Begone deletes the message carrying the keyboard when the actor owns the
// snippet it answers, or may moderate the chat
func (s *BotService) Begone(ctx context.Context, cb *domain.CallbackQuery) error {
	msg := cb.Message
	if msg == nil {
		return nil
	}
	allowed, err := s.permission.CanDelete(ctx, cb.From.ID, msg)
	if err != nil {
		return err
	}
	s.log.Info("got deletion request", append(callbackFields(cb), zap.Bool("allowed", allowed))...)
	if !allowed {
		return nil
	}

	if err := s.gateway.DeleteMessage(ctx, msg.Chat.ID, msg.ID); err != nil {
		if isGone(err) {
			s.log.Info("failed to delete message (it's probably gone already)",
				zap.Int64("chat_id", int64(msg.Chat.ID)), zap.Error(err))
			return nil
		}
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// SendPhotoElsewhere answers an "img <file_id>" inline query with the
// cached image
func (s *BotService) SendPhotoElsewhere(ctx context.Context, q *domain.InlineQuery) error {
	fileID := strings.TrimSpace(strings.TrimPrefix(q.Query, usecase.InlineImagePrefix))
	if fileID == "" {
		return s.SwitchFromInline(ctx, q)
	}
	info, err := s.gateway.GetFileInfo(ctx, fileID)
	if err != nil {
		return fmt.Errorf("get file info: %w", err)
	}
	s.log.Info("creating inline query result",
		zap.Int64("user_id", int64(q.From.ID)),
		zap.String("file_id", fileID),
		zap.String("file_info", info))

	if err := s.gateway.AnswerInlineQuery(ctx, repo.InlineAnswer{
		QueryID:           q.ID,
		ResultID:          uuid.NewString(),
		CachedPhotoFileID: fileID,
		Title:             s.locale.SendImageTitle,
		Personal:          true,
	}); err != nil {
		return fmt.Errorf("answer inline query: %w", err)
	}
	return nil
}

// SwitchFromInline answers other inline queries with a button that opens
// the private chat
func (s *BotService) SwitchFromInline(ctx context.Context, q *domain.InlineQuery) error {
	s.log.Info("receiving inline query",
		zap.Int64("user_id", int64(q.From.ID)),
		zap.String("user_first_name", q.From.FirstName),
		zap.String("query", q.Query))
	if err := s.gateway.AnswerInlineQuery(ctx, repo.InlineAnswer{
		QueryID:           q.ID,
		SwitchPrivateText: s.locale.SwitchToDirect,
		SwitchPrivateArg:  switchPrivateArg,
	}); err != nil {
		return fmt.Errorf("answer inline query: %w", err)
	}
	return nil
}
