package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/usecase"
)

// Bot commands
const (
	CommandStart    = "start"
	CommandHelp     = "help"
	CommandSettings = "settings"
	CommandIgnoreMe = "ignoreme"
	CommandWatchMe  = "watchme"
)

// Dispatch routes an inbound event to its handler. Events no handler
// matches are dropped.
func (s *BotService) Dispatch(ctx context.Context, ev domain.Event) error {
	switch ev.Kind {
	case domain.EventMessage:
		if ev.Message == nil {
			return nil
		}
		return s.routeMessage(ctx, ev.Message)
	case domain.EventCallback:
		if ev.Callback == nil {
			return nil
		}
		return s.routeCallback(ctx, ev.Callback)
	case domain.EventInlineQuery:
		if ev.Inline == nil {
			return nil
		}
		return s.routeInline(ctx, ev.Inline)
	}
	s.log.Debug("unhandled event", zap.Stringer("kind", ev.Kind), zap.Int("update_id", ev.UpdateID))
	return nil
}

func (s *BotService) routeMessage(ctx context.Context, msg *domain.Message) error {
	if strings.TrimSpace(msg.Text) == "" {
		return nil
	}
	if cmd, target, ok := msg.Command(); ok {
		if target != "" && s.botUsername != "" && !strings.EqualFold(target, s.botUsername) {
			s.log.Debug("ignoring command for another bot",
				append(messageFields(msg), zap.String("command", cmd), zap.String("target", target))...)
			return nil
		}
		switch cmd {
		case CommandStart, CommandHelp:
			return s.Welcome(ctx, msg)
		case CommandSettings:
			return s.ManageGroupOptions(ctx, msg)
		case CommandIgnoreMe:
			return s.IgnoreUser(ctx, msg)
		case CommandWatchMe:
			return s.WatchUser(ctx, msg)
		}
	}
	return s.IntakeSnippet(ctx, msg)
}

func (s *BotService) routeCallback(ctx context.Context, cb *domain.CallbackQuery) error {
	p, ok := domain.DecodeCallback(cb.Data)
	if !ok {
		s.log.Debug("ignoring callback", append(callbackFields(cb), zap.String("data", cb.Data))...)
		return nil
	}

	switch p.Action {
	case domain.ActionRestore:
		return s.RestoreKeyboard(ctx, cb, p)
	case domain.ActionSetExt:
		return s.SetSnippetSyntax(ctx, cb, p)
	case domain.ActionSetDefaultExt:
		return s.SetGroupSyntax(ctx, cb, p)
	case domain.ActionBrowseGroupSyntax:
		return s.BrowseGroupSyntax(ctx, cb, p)
	case domain.ActionToggleWatchMode:
		return s.ToggleGroupWatch(ctx, cb, p)
	case domain.ActionBegone:
		return s.Begone(ctx, cb)
	}
	return nil
}

func (s *BotService) routeInline(ctx context.Context, q *domain.InlineQuery) error {
	if strings.HasPrefix(q.Query, usecase.InlineImagePrefix) {
		return s.SendPhotoElsewhere(ctx, q)
	}
	return s.SwitchFromInline(ctx, q)
}
