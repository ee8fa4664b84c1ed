package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
)

// PermissionUsecase evaluates who may change group settings or delete messages
type PermissionUsecase struct {
	gateway repo.Gateway
	log     *zap.Logger
}

// NewPermissionUsecase creates a new permission usecase
func NewPermissionUsecase(gateway repo.Gateway, log *zap.Logger) *PermissionUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &PermissionUsecase{gateway: gateway, log: log}
}

// CanModerate is always true in private chats. In groups the actor must be an
// administrator or the creator; the role is queried on every call.
func (uc *PermissionUsecase) CanModerate(ctx context.Context, actor domain.UserID, chat domain.Chat) (bool, error) {
	if chat.IsPrivate() {
		return true, nil
	}
	role, err := uc.gateway.GetChatMemberRole(ctx, chat.ID, actor)
	if err != nil {
		return false, fmt.Errorf("get chat member: %w", err)
	}
	return role.CanModerate(), nil
}

// CanDelete reports whether actor may delete msg: the message must reply to
// the actor's own message, or the actor must pass CanModerate. A missing
// reply chain falls back to CanModerate.
func (uc *PermissionUsecase) CanDelete(ctx context.Context, actor domain.UserID, msg *domain.Message) (bool, error) {
	if msg == nil {
		return false, nil
	}
	if reply := msg.ReplyTo; reply != nil && reply.From != nil {
		if reply.From.ID == actor {
			uc.log.Debug("deletion by snippet owner",
				zap.Int64("user_id", int64(actor)),
				zap.Int64("chat_id", int64(msg.Chat.ID)))
			return true, nil
		}
	}
	return uc.CanModerate(ctx, actor, msg.Chat)
}
