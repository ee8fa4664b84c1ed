package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
)

type memConfigRepo struct {
	mu        sync.Mutex
	defaults  map[domain.ChatID]domain.SyntaxID
	ignoring  map[domain.ChatID]bool
	overrides map[string]domain.Override
}

func newMemConfigRepo() *memConfigRepo {
	return &memConfigRepo{
		defaults:  make(map[domain.ChatID]domain.SyntaxID),
		ignoring:  make(map[domain.ChatID]bool),
		overrides: make(map[string]domain.Override),
	}
}

func (m *memConfigRepo) GetChatConfig(ctx context.Context, chatID domain.ChatID) (domain.ChatConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := domain.NewChatConfig(chatID)
	cfg.DefaultSyntax = m.defaults[chatID]
	if m.ignoring[chatID] {
		cfg.Mode = domain.ModeIgnore
	}
	return cfg, nil
}

func (m *memConfigRepo) SetDefaultSyntax(ctx context.Context, chatID domain.ChatID, syntax domain.SyntaxID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaults[chatID] = syntax
	return nil
}

func (m *memConfigRepo) ClearDefaultSyntax(ctx context.Context, chatID domain.ChatID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.defaults, chatID)
	return nil
}

func (m *memConfigRepo) ToggleIgnoreMode(ctx context.Context, chatID domain.ChatID) (domain.Mode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ignoring[chatID] = !m.ignoring[chatID]
	if m.ignoring[chatID] {
		return domain.ModeIgnore, nil
	}
	return domain.ModeWatch, nil
}

func (m *memConfigRepo) GetOverride(ctx context.Context, chatID domain.ChatID, userID domain.UserID) (domain.Override, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overrides[domain.OverrideKey(chatID, userID)], nil
}

func (m *memConfigRepo) SetOverride(ctx context.Context, chatID domain.ChatID, userID domain.UserID, override domain.Override) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[domain.OverrideKey(chatID, userID)] = override
	return nil
}

func (m *memConfigRepo) Close() error { return nil }

type stubClassifier struct {
	mu     sync.Mutex
	result repo.Classification
	err    error
	calls  int
}

func (s *stubClassifier) Classify(ctx context.Context, text string) (repo.Classification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return repo.Classification{}, s.err
	}
	return s.result, nil
}

func (s *stubClassifier) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubRenderer struct {
	mu     sync.Mutex
	themes []string
	texts  []string
	syntax []domain.SyntaxID
}

func (s *stubRenderer) Render(ctx context.Context, req repo.RenderRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.themes = append(s.themes, req.Theme)
	s.texts = append(s.texts, req.Text)
	s.syntax = append(s.syntax, req.Syntax)
	return req.Folder + "/" + req.Theme + ".png", nil
}

type keyboardEdit struct {
	ChatID    domain.ChatID
	MessageID int
	Keyboard  *domain.Keyboard
}

type textEdit struct {
	ChatID    domain.ChatID
	MessageID int
	Text      string
	Keyboard  *domain.Keyboard
}

type deletion struct {
	ChatID    domain.ChatID
	MessageID int
}

// recordingGateway records every call for assertions
type recordingGateway struct {
	mu        sync.Mutex
	nextID    int
	roles     map[domain.UserID]domain.MemberRole
	deleteErr error
	fileErr   error

	texts     []repo.OutgoingText
	images    []int // reply-to ids
	kbEdits   []keyboardEdit
	textEdits []textEdit
	deletes   []deletion
	answered  []string
	inline    []repo.InlineAnswer
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{nextID: 500, roles: make(map[domain.UserID]domain.MemberRole)}
}

func (g *recordingGateway) SendText(ctx context.Context, msg repo.OutgoingText) (*domain.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	g.texts = append(g.texts, msg)
	return &domain.Message{ID: g.nextID, Chat: domain.Chat{ID: msg.ChatID}, Text: msg.Text}, nil
}

func (g *recordingGateway) SendImage(ctx context.Context, chatID domain.ChatID, path string, replyTo int) (*domain.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	g.images = append(g.images, replyTo)
	return &domain.Message{ID: g.nextID, Chat: domain.Chat{ID: chatID}, PhotoFileID: fmt.Sprintf("file-%d", g.nextID)}, nil
}

func (g *recordingGateway) EditKeyboard(ctx context.Context, chatID domain.ChatID, messageID int, kb *domain.Keyboard) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.kbEdits = append(g.kbEdits, keyboardEdit{ChatID: chatID, MessageID: messageID, Keyboard: kb})
	return nil
}

func (g *recordingGateway) EditText(ctx context.Context, chatID domain.ChatID, messageID int, text string, mode repo.ParseMode, kb *domain.Keyboard) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.textEdits = append(g.textEdits, textEdit{ChatID: chatID, MessageID: messageID, Text: text, Keyboard: kb})
	return nil
}

func (g *recordingGateway) DeleteMessage(ctx context.Context, chatID domain.ChatID, messageID int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.deletes = append(g.deletes, deletion{ChatID: chatID, MessageID: messageID})
	return nil
}

func (g *recordingGateway) AnswerCallback(ctx context.Context, callbackID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.answered = append(g.answered, callbackID)
	return nil
}

func (g *recordingGateway) AnswerInlineQuery(ctx context.Context, answer repo.InlineAnswer) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inline = append(g.inline, answer)
	return nil
}

func (g *recordingGateway) GetChatMemberRole(ctx context.Context, chatID domain.ChatID, userID domain.UserID) (domain.MemberRole, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if role, ok := g.roles[userID]; ok {
		return role, nil
	}
	return domain.RoleMember, nil
}

func (g *recordingGateway) GetFileInfo(ctx context.Context, fileID string) (string, error) {
	if g.fileErr != nil {
		return "", g.fileErr
	}
	return "path=photos/" + fileID + ".jpg", nil
}

func (g *recordingGateway) Deletes() []deletion {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]deletion(nil), g.deletes...)
}
