package conf

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/usecase"
)

// LocaleFile is the user-facing strings file in the config directory
const LocaleFile = "english.yml"

// Locale contains the user-facing strings. Entries marked MarkdownV2 are sent
// with that parse mode and must already be escaped.
type Locale struct {
	Welcome             string `yaml:"welcome"`                 // MarkdownV2
	InputPlaceholder    string `yaml:"input field placeholder"` // plain
	CurrentConfig       string `yaml:"current config"`          // MarkdownV2, {default_syntax} {ignore_mode}
	SelectDefaultSyntax string `yaml:"select default syntax"`
	ToggleWatchMode     string `yaml:"toggle watch mode"`
	SwitchToDirect      string `yaml:"switch to direct"`
	QueryExt            string `yaml:"query ext"`      // MarkdownV2
	GuessedSyntax       string `yaml:"guessed syntax"` // MarkdownV2, {syntax}
	SyntaxPicker        string `yaml:"syntax picker"`
	SendToChat          string `yaml:"send to chat"`
	None                string `yaml:"none"`
	SendImageTitle      string `yaml:"send image title"`
}

// LoadLocale loads the locale from dir, filling missing entries with defaults
func LoadLocale(dir string) (*Locale, error) {
	path := filepath.Join(dir, LocaleFile)
	data, err := readOptional(path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return DefaultLocale(), nil
	}

	var locale Locale
	if err := yaml.Unmarshal(data, &locale); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// Fill in defaults for empty values
	locale.fillDefaults()

	return &locale, nil
}

// fillDefaults fills in default values for empty fields
func (l *Locale) fillDefaults() {
	defaults := DefaultLocale()

	if l.Welcome == "" {
		l.Welcome = defaults.Welcome
	}
	if l.InputPlaceholder == "" {
		l.InputPlaceholder = defaults.InputPlaceholder
	}
	if l.CurrentConfig == "" {
		l.CurrentConfig = defaults.CurrentConfig
	}
	if l.SelectDefaultSyntax == "" {
		l.SelectDefaultSyntax = defaults.SelectDefaultSyntax
	}
	if l.ToggleWatchMode == "" {
		l.ToggleWatchMode = defaults.ToggleWatchMode
	}
	if l.SwitchToDirect == "" {
		l.SwitchToDirect = defaults.SwitchToDirect
	}
	if l.QueryExt == "" {
		l.QueryExt = defaults.QueryExt
	}
	if l.GuessedSyntax == "" {
		l.GuessedSyntax = defaults.GuessedSyntax
	}
	if l.SyntaxPicker == "" {
		l.SyntaxPicker = defaults.SyntaxPicker
	}
	if l.SendToChat == "" {
		l.SendToChat = defaults.SendToChat
	}
	if l.None == "" {
		l.None = defaults.None
	}
	if l.SendImageTitle == "" {
		l.SendImageTitle = defaults.SendImageTitle
	}
}

// FormatCurrentConfig renders the group settings text
func (l *Locale) FormatCurrentConfig(cfg domain.ChatConfig) string {
	syntax := l.None
	if cfg.HasDefault() {
		syntax = string(cfg.DefaultSyntax)
	}
	result := l.CurrentConfig
	result = strings.ReplaceAll(result, "{default_syntax}", EscapeMarkdownV2(syntax))
	result = strings.ReplaceAll(result, "{ignore_mode}", EscapeMarkdownV2(string(cfg.Mode)))
	return result
}

// FormatGuessedSyntax renders the prompt shown when a syntax was resolved
// automatically
func (l *Locale) FormatGuessedSyntax(syntax domain.SyntaxID) string {
	guessed := strings.ReplaceAll(l.GuessedSyntax, "{syntax}", EscapeMarkdownV2(string(syntax)))
	return l.QueryExt + "\n\n" + guessed
}

// ToKeyboardTexts converts to keyboard labels
func (l *Locale) ToKeyboardTexts() usecase.KeyboardTexts {
	texts := usecase.DefaultKeyboardTexts
	texts.SelectDefaultSyntax = l.SelectDefaultSyntax
	texts.ToggleWatchMode = l.ToggleWatchMode
	texts.SendToChat = l.SendToChat
	texts.None = l.None
	texts.Minimized = l.SyntaxPicker
	return texts
}

var markdownV2Escapes = map[byte]bool{
	'\\': true,
	'_':  true,
	'*':  true,
	'[':  true,
	']':  true,
	'(':  true,
	')':  true,
	'~':  true,
	'`':  true,
	'>':  true,
	'#':  true,
	'+':  true,
	'-':  true,
	'=':  true,
	'|':  true,
	'{':  true,
	'}':  true,
	'.':  true,
	'!':  true,
}

// EscapeMarkdownV2 escapes text for a MarkdownV2 message
func EscapeMarkdownV2(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 8)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if markdownV2Escapes[ch] {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// DefaultLocale returns the built-in English strings
func DefaultLocale() *Locale {
	return &Locale{
		Welcome: `Hi\! Send me some code and I'll reply with a highlighted image of it\.

In groups, I only look at text formatted as code\. Group admins can use /settings to pick a default syntax or to stop me watching the group\. Anyone can use /ignoreme and /watchme to opt out or in\.`,
		InputPlaceholder:    "Paste some code",
		CurrentConfig:       "*Default syntax:* `{default_syntax}`\n*Mode:* `{ignore_mode}`",
		SelectDefaultSyntax: "Select default syntax",
		ToggleWatchMode:     "Toggle watch/ignore mode",
		SwitchToDirect:      "Talk to me directly",
		QueryExt:            "Which syntax should I use?",
		GuessedSyntax:       "I guessed `{syntax}`\\. Tap below to pick another\\.",
		SyntaxPicker:        "Pick syntax",
		SendToChat:          "Send to chat",
		None:                "None",
		SendImageTitle:      "Send Image",
	}
}
