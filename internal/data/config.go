package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// configRepo implements the chat config repository on three SQLite key-value tables
type configRepo struct {
	db *sql.DB
}

// NewConfigRepo opens (or creates) the config database
func NewConfigRepo(dbPath string) (repo.ConfigRepo, error) {
	if dbPath != ":memory:" {
		// Ensure directory exists
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serializes writers and keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS group_syntax (
			key INTEGER PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS group_in_ignore_mode (
			key INTEGER PRIMARY KEY,
			value INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS group_user_current_watchme_request (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}

	return &configRepo{db: db}, nil
}

// GetChatConfig reads the default syntax and mode of a chat
func (r *configRepo) GetChatConfig(ctx context.Context, chatID domain.ChatID) (domain.ChatConfig, error) {
	cfg := domain.NewChatConfig(chatID)

	var syntax string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM group_syntax WHERE key = ?`, int64(chatID)).Scan(&syntax)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return cfg, fmt.Errorf("failed to query group syntax: %w", err)
	default:
		cfg.DefaultSyntax = domain.SyntaxID(syntax)
	}

	var ignoring bool
	err = r.db.QueryRowContext(ctx, `SELECT value FROM group_in_ignore_mode WHERE key = ?`, int64(chatID)).Scan(&ignoring)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return cfg, fmt.Errorf("failed to query ignore mode: %w", err)
	case ignoring:
		cfg.Mode = domain.ModeIgnore
	}

	return cfg, nil
}

// SetDefaultSyntax sets the chat default syntax. An empty syntax clears it.
func (r *configRepo) SetDefaultSyntax(ctx context.Context, chatID domain.ChatID, syntax domain.SyntaxID) error {
	if syntax == "" {
		return r.ClearDefaultSyntax(ctx, chatID)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_syntax (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, int64(chatID), string(syntax))
	if err != nil {
		return fmt.Errorf("failed to save group syntax: %w", err)
	}
	return nil
}

// ClearDefaultSyntax removes the chat default syntax
func (r *configRepo) ClearDefaultSyntax(ctx context.Context, chatID domain.ChatID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM group_syntax WHERE key = ?`, int64(chatID))
	if err != nil {
		return fmt.Errorf("failed to delete group syntax: %w", err)
	}
	return nil
}

// ToggleIgnoreMode flips the chat mode in a single statement
func (r *configRepo) ToggleIgnoreMode(ctx context.Context, chatID domain.ChatID) (domain.Mode, error) {
	var ignoring bool
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO group_in_ignore_mode (key, value) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET value = NOT value
		RETURNING value
	`, int64(chatID)).Scan(&ignoring)
	if err != nil {
		return "", fmt.Errorf("failed to toggle ignore mode: %w", err)
	}
	if ignoring {
		return domain.ModeIgnore, nil
	}
	return domain.ModeWatch, nil
}

// GetOverride reads a user's watch/ignore request
func (r *configRepo) GetOverride(ctx context.Context, chatID domain.ChatID, userID domain.UserID) (domain.Override, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM group_user_current_watchme_request WHERE key = ?
	`, domain.OverrideKey(chatID, userID)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.OverrideAbsent, nil
	}
	if err != nil {
		return domain.OverrideAbsent, fmt.Errorf("failed to query override: %w", err)
	}
	return domain.ParseOverride(value), nil
}

// SetOverride records a user's watch/ignore request
func (r *configRepo) SetOverride(ctx context.Context, chatID domain.ChatID, userID domain.UserID, override domain.Override) error {
	key := domain.OverrideKey(chatID, userID)
	if override == domain.OverrideAbsent {
		_, err := r.db.ExecContext(ctx, `DELETE FROM group_user_current_watchme_request WHERE key = ?`, key)
		if err != nil {
			return fmt.Errorf("failed to delete override: %w", err)
		}
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_user_current_watchme_request (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, string(override))
	if err != nil {
		return fmt.Errorf("failed to save override: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *configRepo) Close() error {
	return r.db.Close()
}
