package data

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
	"github.com/colorcodebot/colorcodebot/internal/retryutil"
)

// flakyGateway fails the first failures calls of every method with err
type flakyGateway struct {
	failures int
	err      error
	calls    map[string]int
}

func newFlakyGateway(failures int, err error) *flakyGateway {
	return &flakyGateway{failures: failures, err: err, calls: make(map[string]int)}
}

func (f *flakyGateway) hit(method string) error {
	f.calls[method]++
	if f.calls[method] <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyGateway) SendText(ctx context.Context, msg repo.OutgoingText) (*domain.Message, error) {
	if err := f.hit("SendText"); err != nil {
		return nil, err
	}
	return &domain.Message{ID: 1, Chat: domain.Chat{ID: msg.ChatID}, Text: msg.Text}, nil
}

func (f *flakyGateway) SendImage(ctx context.Context, chatID domain.ChatID, path string, replyTo int) (*domain.Message, error) {
	if err := f.hit("SendImage"); err != nil {
		return nil, err
	}
	return &domain.Message{ID: 2, Chat: domain.Chat{ID: chatID}}, nil
}

func (f *flakyGateway) EditKeyboard(ctx context.Context, chatID domain.ChatID, messageID int, kb *domain.Keyboard) error {
	return f.hit("EditKeyboard")
}

func (f *flakyGateway) EditText(ctx context.Context, chatID domain.ChatID, messageID int, text string, mode repo.ParseMode, kb *domain.Keyboard) error {
	return f.hit("EditText")
}

func (f *flakyGateway) DeleteMessage(ctx context.Context, chatID domain.ChatID, messageID int) error {
	return f.hit("DeleteMessage")
}

func (f *flakyGateway) AnswerCallback(ctx context.Context, callbackID string) error {
	return f.hit("AnswerCallback")
}

func (f *flakyGateway) AnswerInlineQuery(ctx context.Context, answer repo.InlineAnswer) error {
	return f.hit("AnswerInlineQuery")
}

func (f *flakyGateway) GetChatMemberRole(ctx context.Context, chatID domain.ChatID, userID domain.UserID) (domain.MemberRole, error) {
	if err := f.hit("GetChatMemberRole"); err != nil {
		return "", err
	}
	return domain.RoleAdministrator, nil
}

func (f *flakyGateway) GetFileInfo(ctx context.Context, fileID string) (string, error) {
	if err := f.hit("GetFileInfo"); err != nil {
		return "", err
	}
	return "file_id=" + fileID, nil
}

func fastPolicy() retryutil.Policy {
	return retryutil.Policy{Attempts: 6, Delay: time.Millisecond}
}

func TestRetryingGateway_RetriesTransient(t *testing.T) {
	inner := newFlakyGateway(2, fmt.Errorf("%w: dial tcp", repo.ErrTransientNetwork))
	gw := NewRetryingGateway(inner, fastPolicy(), nil)
	ctx := context.Background()

	msg, err := gw.SendText(ctx, repo.OutgoingText{ChatID: 1, Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, 3, inner.calls["SendText"])

	role, err := gw.GetChatMemberRole(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdministrator, role)

	require.NoError(t, gw.DeleteMessage(ctx, 1, 2))
	require.NoError(t, gw.EditKeyboard(ctx, 1, 2, nil))
	require.NoError(t, gw.EditText(ctx, 1, 2, "x", repo.ParseModeNone, nil))
	require.NoError(t, gw.AnswerCallback(ctx, "cb"))
	require.NoError(t, gw.AnswerInlineQuery(ctx, repo.InlineAnswer{QueryID: "q"}))
	_, err = gw.SendImage(ctx, 1, "/tmp/x.png", 3)
	require.NoError(t, err)
	info, err := gw.GetFileInfo(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "file_id=abc", info)

	for method, n := range inner.calls {
		assert.Equal(t, 3, n, method)
	}
}

func TestRetryingGateway_PermissionNotRetried(t *testing.T) {
	inner := newFlakyGateway(10, fmt.Errorf("%w: bot was kicked", repo.ErrPermission))
	gw := NewRetryingGateway(inner, fastPolicy(), nil)

	err := gw.DeleteMessage(context.Background(), 1, 2)

	assert.ErrorIs(t, err, repo.ErrPermission)
	assert.Equal(t, 1, inner.calls["DeleteMessage"])
}

func TestRetryingGateway_Exhausted(t *testing.T) {
	inner := newFlakyGateway(100, fmt.Errorf("%w: timeout", repo.ErrTransientNetwork))
	var retried []int
	policy := fastPolicy()
	policy.OnRetry = func(attempt int, err error) { retried = append(retried, attempt) }
	gw := NewRetryingGateway(inner, policy, nil)

	err := gw.AnswerCallback(context.Background(), "cb")

	assert.True(t, errors.Is(err, repo.ErrTransientNetwork))
	assert.Equal(t, 6, inner.calls["AnswerCallback"])
	assert.Equal(t, []int{1, 2, 3, 4, 5}, retried)
}
