package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
)

type fakeConfigRepo struct {
	mu        sync.Mutex
	defaults  map[domain.ChatID]domain.SyntaxID
	ignoring  map[domain.ChatID]bool
	overrides map[string]domain.Override
	err       error
	reads     int
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{
		defaults:  make(map[domain.ChatID]domain.SyntaxID),
		ignoring:  make(map[domain.ChatID]bool),
		overrides: make(map[string]domain.Override),
	}
}

func (f *fakeConfigRepo) GetChatConfig(ctx context.Context, chatID domain.ChatID) (domain.ChatConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return domain.ChatConfig{}, f.err
	}
	cfg := domain.NewChatConfig(chatID)
	cfg.DefaultSyntax = f.defaults[chatID]
	if f.ignoring[chatID] {
		cfg.Mode = domain.ModeIgnore
	}
	return cfg, nil
}

func (f *fakeConfigRepo) SetDefaultSyntax(ctx context.Context, chatID domain.ChatID, syntax domain.SyntaxID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defaults[chatID] = syntax
	return nil
}

func (f *fakeConfigRepo) ClearDefaultSyntax(ctx context.Context, chatID domain.ChatID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.defaults, chatID)
	return nil
}

func (f *fakeConfigRepo) ToggleIgnoreMode(ctx context.Context, chatID domain.ChatID) (domain.Mode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ignoring[chatID] = !f.ignoring[chatID]
	if f.ignoring[chatID] {
		return domain.ModeIgnore, nil
	}
	return domain.ModeWatch, nil
}

func (f *fakeConfigRepo) GetOverride(ctx context.Context, chatID domain.ChatID, userID domain.UserID) (domain.Override, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return domain.OverrideAbsent, f.err
	}
	return f.overrides[domain.OverrideKey(chatID, userID)], nil
}

func (f *fakeConfigRepo) SetOverride(ctx context.Context, chatID domain.ChatID, userID domain.UserID, override domain.Override) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides[domain.OverrideKey(chatID, userID)] = override
	return nil
}

func (f *fakeConfigRepo) Close() error { return nil }

type fakeClassifier struct {
	result repo.Classification
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (repo.Classification, error) {
	f.calls++
	if f.err != nil {
		return repo.Classification{}, f.err
	}
	return f.result, nil
}

type blockingClassifier struct{}

func (blockingClassifier) Classify(ctx context.Context, text string) (repo.Classification, error) {
	<-ctx.Done()
	return repo.Classification{}, ctx.Err()
}

type fakeRenderer struct {
	mu     sync.Mutex
	failOn map[string]bool
	themes []string
}

func (f *fakeRenderer) Render(ctx context.Context, req repo.RenderRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.themes = append(f.themes, req.Theme)
	if f.failOn[req.Theme] {
		return "", fmt.Errorf("silicon exited for %s", req.Theme)
	}
	return filepath.Join(req.Folder, req.Theme+".png"), nil
}

type editedKeyboard struct {
	ChatID    domain.ChatID
	MessageID int
	Keyboard  *domain.Keyboard
}

type fakeGateway struct {
	mu        sync.Mutex
	nextID    int
	roles     map[domain.UserID]domain.MemberRole
	roleErr   error
	roleCalls int
	asDoc     bool
	sendErr   error
	images    []string
	edits     []editedKeyboard
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{nextID: 100, roles: make(map[domain.UserID]domain.MemberRole)}
}

func (f *fakeGateway) SendText(ctx context.Context, msg repo.OutgoingText) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return &domain.Message{ID: f.nextID, Chat: domain.Chat{ID: msg.ChatID}, Text: msg.Text}, nil
}

func (f *fakeGateway) SendImage(ctx context.Context, chatID domain.ChatID, path string, replyTo int) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	f.images = append(f.images, path)
	msg := &domain.Message{ID: f.nextID, Chat: domain.Chat{ID: chatID}}
	if !f.asDoc {
		msg.PhotoFileID = fmt.Sprintf("photo-%d", f.nextID)
	}
	return msg, nil
}

func (f *fakeGateway) EditKeyboard(ctx context.Context, chatID domain.ChatID, messageID int, kb *domain.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, editedKeyboard{ChatID: chatID, MessageID: messageID, Keyboard: kb})
	return nil
}

func (f *fakeGateway) EditText(ctx context.Context, chatID domain.ChatID, messageID int, text string, mode repo.ParseMode, kb *domain.Keyboard) error {
	return nil
}

func (f *fakeGateway) DeleteMessage(ctx context.Context, chatID domain.ChatID, messageID int) error {
	return nil
}

func (f *fakeGateway) AnswerCallback(ctx context.Context, callbackID string) error { return nil }

func (f *fakeGateway) AnswerInlineQuery(ctx context.Context, answer repo.InlineAnswer) error {
	return nil
}

func (f *fakeGateway) GetChatMemberRole(ctx context.Context, chatID domain.ChatID, userID domain.UserID) (domain.MemberRole, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleCalls++
	if f.roleErr != nil {
		return "", f.roleErr
	}
	if role, ok := f.roles[userID]; ok {
		return role, nil
	}
	return domain.RoleMember, nil
}

func (f *fakeGateway) GetFileInfo(ctx context.Context, fileID string) (string, error) {
	return fileID, nil
}

func testTables() *domain.AliasTables {
	return &domain.AliasTables{
		Display: []domain.NamedSyntax{
			{Name: "Python", Syntax: "py"},
			{Name: "JSON", Syntax: "json"},
			{Name: "Go", Syntax: "go"},
			{Name: "PHP", Syntax: "php"},
		},
		ClassifierLabels: map[string]domain.SyntaxID{
			"Python": "py",
			"JSON":   "json",
			"Go":     "go",
		},
		Markup: map[string]domain.SyntaxID{
			"python":  "py",
			"python3": "py",
			"json":    "json",
		},
		Prefixes: domain.PrefixRules{
			{Prefix: "{", Syntax: "json"},
			{Prefix: "<?php", Syntax: "php"},
			{Prefix: "<", Syntax: "xml"},
		},
	}
}

var (
	privateChat = domain.Chat{ID: 42, Type: domain.ChatTypePrivate}
	groupChat   = domain.Chat{ID: -1001, Type: domain.ChatTypeSupergroup}
)
