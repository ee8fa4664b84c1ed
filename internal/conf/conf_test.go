package conf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
)

func TestLoadFromMap_Defaults(t *testing.T) {
	cfg, err := LoadFromMap(map[string]string{"CONFIG_DIR": t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, 0.12, cfg.Resolver.ProbabilityMin)
	assert.Equal(t, 5*time.Second, cfg.Resolver.ClassifierTimeout)
	assert.Equal(t, "chroma", cfg.Classifier.Backend)
	assert.Equal(t, "silicon", cfg.Render.SiliconPath)
	assert.Equal(t, "Coldark-Dark", cfg.Render.DarkTheme)
	assert.Equal(t, "Coldark-Cold", cfg.Render.LightTheme)
	assert.Equal(t, 30*time.Second, cfg.Server.PromptTTL)
	assert.Equal(t, 6, cfg.Server.RetryAttempts)
	assert.Equal(t, 3*time.Second, cfg.Server.RetryDelay)
	assert.Equal(t, 8, cfg.Server.Workers)
	assert.True(t, cfg.Log.JSON)
	assert.False(t, cfg.Log.Debug)
	assert.Equal(t, "ccb.sqlite", filepath.Base(cfg.Store.DBPath))

	assert.Equal(t, DefaultTables(), cfg.Tables)
	assert.Equal(t, DefaultLocale(), cfg.Locale)

	require.NoError(t, cfg.Validate())
	var cerr *ConfigError
	require.True(t, errors.As(cfg.ValidateServe(), &cerr))
	assert.Equal(t, "TG_API_KEY", cerr.Field)
}

func TestLoadFromMap_Overrides(t *testing.T) {
	cfg, err := LoadFromMap(map[string]string{
		"CONFIG_DIR":         t.TempDir(),
		"TG_API_KEY":         "123:abc",
		"DB_PATH":            "/data/ccb.sqlite",
		"PROBABILITY_MIN":    "0.3",
		"CLASSIFIER_TIMEOUT": "250ms",
		"PROMPT_TTL":         "1m",
		"RETRY_ATTEMPTS":     "2",
		"WORKERS":            "1",
		"LOG_JSON":           "false",
		"DEBUG":              "true",
	})
	require.NoError(t, err)

	assert.Equal(t, "/data/ccb.sqlite", cfg.Store.DBPath)
	assert.Equal(t, 0.3, cfg.ToResolverConfig().ProbabilityMin)
	assert.Equal(t, 250*time.Millisecond, cfg.ToResolverConfig().ClassifierTimeout)
	assert.Equal(t, time.Minute, cfg.Server.PromptTTL)
	assert.Equal(t, 2, cfg.ToRetryPolicy().Attempts)
	assert.False(t, cfg.Log.JSON)
	assert.True(t, cfg.Log.Debug)
	assert.NoError(t, cfg.ValidateServe())
}

func TestLoadFromMap_BadValue(t *testing.T) {
	_, err := LoadFromMap(map[string]string{"CONFIG_DIR": t.TempDir(), "WORKERS": "many"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadFromMap(map[string]string{"CONFIG_DIR": t.TempDir()})
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"threshold too high", func(c *Config) { c.Resolver.ProbabilityMin = 1.5 }, "PROBABILITY_MIN"},
		{"unknown classifier", func(c *Config) { c.Classifier.Backend = "guesslang" }, "CLASSIFIER"},
		{"openai without key", func(c *Config) { c.Classifier.Backend = "openai" }, "OPENAI_API_KEY"},
		{"no attempts", func(c *Config) { c.Server.RetryAttempts = 0 }, "RETRY_ATTEMPTS"},
		{"no workers", func(c *Config) { c.Server.Workers = 0 }, "WORKERS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.edit(cfg)
			var cerr *ConfigError
			require.True(t, errors.As(cfg.Validate(), &cerr))
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadTables_FromFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SyntaxesFile, "Zig: zig\nAda: adb\nGo: go\n")
	writeFile(t, dir, ClassifierFile, "Zig: zig\n")
	writeFile(t, dir, PrefixesFile, "- prefix: \"<?php\"\n  syntax: php\n- prefix: \"<\"\n  syntax: xml\n")

	tables, err := LoadTables(dir)
	require.NoError(t, err)

	// file order is kept
	assert.Equal(t, []domain.NamedSyntax{
		{Name: "Zig", Syntax: "zig"},
		{Name: "Ada", Syntax: "adb"},
		{Name: "Go", Syntax: "go"},
	}, tables.Display)
	assert.Equal(t, map[string]domain.SyntaxID{"Zig": "zig"}, tables.ClassifierLabels)
	// markup.yml missing
	assert.Equal(t, DefaultTables().Markup, tables.Markup)

	rule, ok := tables.Prefixes.Match("<?php echo 1;")
	require.True(t, ok)
	assert.Equal(t, domain.SyntaxID("php"), rule.Syntax)
}

func TestLoadTables_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SyntaxesFile, "- not\n- a mapping\n")
	_, err := LoadTables(dir)
	assert.Error(t, err)

	dir = t.TempDir()
	writeFile(t, dir, PrefixesFile, "- prefix: \"{\"\n")
	_, err = LoadTables(dir)
	assert.Error(t, err)
}

func TestDefaultPrefixOrder(t *testing.T) {
	rules := DefaultTables().Prefixes

	tests := map[string]domain.SyntaxID{
		"<?php echo 1;":        "php",
		"<svg/>":               "xml",
		"[[bin]]\nname = 'x'":  "toml",
		"[core]\nbare = false": "ini",
		"---\nname: x":         "yaml",
		"--- a\n+++ b":         "diff",
		"-- comment":           "lua",
		`\documentclass{x}`:    "tex",
		"USING: kernel ;":      "factor",
	}
	for text, want := range tests {
		rule, ok := rules.Match(text)
		require.True(t, ok, text)
		assert.Equal(t, want, rule.Syntax, text)
	}
}

func TestLocale(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, LocaleFile, "query ext: \"Syntax?\"\n")

	locale, err := LoadLocale(dir)
	require.NoError(t, err)

	assert.Equal(t, "Syntax?", locale.QueryExt)
	assert.Equal(t, DefaultLocale().Welcome, locale.Welcome)

	text := locale.FormatCurrentConfig(domain.ChatConfig{ChatID: -1, Mode: domain.ModeWatch})
	assert.Equal(t, "*Default syntax:* `None`\n*Mode:* `watch`", text)

	text = locale.FormatCurrentConfig(domain.ChatConfig{ChatID: -1, DefaultSyntax: "c++", Mode: domain.ModeIgnore})
	assert.Contains(t, text, "`c\\+\\+`")
	assert.Contains(t, text, "`ignore`")

	assert.Equal(t, "Syntax?\n\nI guessed `py`\\. Tap below to pick another\\.", locale.FormatGuessedSyntax("py"))

	texts := locale.ToKeyboardTexts()
	assert.Equal(t, "Pick syntax", texts.Minimized)
	assert.Equal(t, "🗑️", texts.Dismiss)
}

func TestEscapeMarkdownV2(t *testing.T) {
	assert.Equal(t, `a\_b\.c\!`, EscapeMarkdownV2("a_b.c!"))
	assert.Equal(t, " ", EscapeMarkdownV2(" "))
}
