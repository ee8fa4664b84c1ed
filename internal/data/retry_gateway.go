package data

import (
	"context"

	"go.uber.org/zap"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
	"github.com/colorcodebot/colorcodebot/internal/retryutil"
)

// retryingGateway retries transient failures of every gateway call
type retryingGateway struct {
	inner  repo.Gateway
	policy retryutil.Policy
	log    *zap.Logger
}

// NewRetryingGateway wraps inner with the bounded retry policy. Only
// errors matching repo.IsTransient are retried unless the policy says otherwise.
func NewRetryingGateway(inner repo.Gateway, policy retryutil.Policy, log *zap.Logger) repo.Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	if policy.Retryable == nil {
		policy.Retryable = repo.IsTransient
	}
	return &retryingGateway{inner: inner, policy: policy, log: log}
}

func (g *retryingGateway) policyFor(method string) retryutil.Policy {
	p := g.policy
	next := p.OnRetry
	p.OnRetry = func(attempt int, err error) {
		g.log.Warn("gateway call failed, retrying",
			zap.String("method", method),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.Attempts),
			zap.Duration("delay", p.Delay),
			zap.Error(err))
		if next != nil {
			next(attempt, err)
		}
	}
	return p
}

func (g *retryingGateway) SendText(ctx context.Context, msg repo.OutgoingText) (*domain.Message, error) {
	return retryutil.DoValue(ctx, g.policyFor("SendText"), func(ctx context.Context) (*domain.Message, error) {
		return g.inner.SendText(ctx, msg)
	})
}

func (g *retryingGateway) SendImage(ctx context.Context, chatID domain.ChatID, path string, replyTo int) (*domain.Message, error) {
	return retryutil.DoValue(ctx, g.policyFor("SendImage"), func(ctx context.Context) (*domain.Message, error) {
		return g.inner.SendImage(ctx, chatID, path, replyTo)
	})
}

func (g *retryingGateway) EditKeyboard(ctx context.Context, chatID domain.ChatID, messageID int, kb *domain.Keyboard) error {
	return retryutil.Do(ctx, g.policyFor("EditKeyboard"), func(ctx context.Context) error {
		return g.inner.EditKeyboard(ctx, chatID, messageID, kb)
	})
}

func (g *retryingGateway) EditText(ctx context.Context, chatID domain.ChatID, messageID int, text string, mode repo.ParseMode, kb *domain.Keyboard) error {
	return retryutil.Do(ctx, g.policyFor("EditText"), func(ctx context.Context) error {
		return g.inner.EditText(ctx, chatID, messageID, text, mode, kb)
	})
}

func (g *retryingGateway) DeleteMessage(ctx context.Context, chatID domain.ChatID, messageID int) error {
	return retryutil.Do(ctx, g.policyFor("DeleteMessage"), func(ctx context.Context) error {
		return g.inner.DeleteMessage(ctx, chatID, messageID)
	})
}

func (g *retryingGateway) AnswerCallback(ctx context.Context, callbackID string) error {
	return retryutil.Do(ctx, g.policyFor("AnswerCallback"), func(ctx context.Context) error {
		return g.inner.AnswerCallback(ctx, callbackID)
	})
}

func (g *retryingGateway) AnswerInlineQuery(ctx context.Context, answer repo.InlineAnswer) error {
	return retryutil.Do(ctx, g.policyFor("AnswerInlineQuery"), func(ctx context.Context) error {
		return g.inner.AnswerInlineQuery(ctx, answer)
	})
}

func (g *retryingGateway) GetChatMemberRole(ctx context.Context, chatID domain.ChatID, userID domain.UserID) (domain.MemberRole, error) {
	return retryutil.DoValue(ctx, g.policyFor("GetChatMemberRole"), func(ctx context.Context) (domain.MemberRole, error) {
		return g.inner.GetChatMemberRole(ctx, chatID, userID)
	})
}

func (g *retryingGateway) GetFileInfo(ctx context.Context, fileID string) (string, error) {
	return retryutil.DoValue(ctx, g.policyFor("GetFileInfo"), func(ctx context.Context) (string, error) {
		return g.inner.GetFileInfo(ctx, fileID)
	})
}
