package domain

import (
	"strings"
	"unicode/utf16"
)

// Entity types used by the bot
const (
	EntityCode       = "code"
	EntityPre        = "pre"
	EntityBotCommand = "bot_command"
)

// User represents a chat participant
type User struct {
	ID        UserID
	FirstName string
	Username  string
}

// Entity is a formatted span of message text. Offset and Length are in
// UTF-16 code units, as the transport reports them.
type Entity struct {
	Type     string
	Offset   int
	Length   int
	Language string // set on pre entities by the authoring client
}

// Message represents a message entity
type Message struct {
	ID          int
	Chat        Chat
	From        *User
	Text        string
	Entities    []Entity
	ReplyTo     *Message
	PhotoFileID string    // largest photo size, empty when not a photo
	Keyboard    *Keyboard // inline keyboard currently attached, if any
}

// IsPrivate reports whether the message was sent in a private chat
func (m *Message) IsPrivate() bool {
	return m.Chat.IsPrivate()
}

// SenderID returns the sender's id, or zero when unknown
func (m *Message) SenderID() UserID {
	if m.From == nil {
		return 0
	}
	return m.From.ID
}

// SenderName returns the sender's first name
func (m *Message) SenderName() string {
	if m.From == nil {
		return ""
	}
	return m.From.FirstName
}

// IsPhoto reports whether the message carries a photo
func (m *Message) IsPhoto() bool {
	return m.PhotoFileID != ""
}

// EntityText returns the text covered by e
func (m *Message) EntityText(e Entity) string {
	units := utf16.Encode([]rune(m.Text))
	start, end := e.Offset, e.Offset+e.Length
	if start < 0 || start > len(units) {
		return ""
	}
	if end > len(units) {
		end = len(units)
	}
	if end <= start {
		return ""
	}
	return string(utf16.Decode(units[start:end]))
}

// CodeContent joins every code and pre span with a blank line. It rejects
// messages without such spans and spans that amount to a single word.
func (m *Message) CodeContent() (string, bool) {
	var parts []string
	for _, e := range m.Entities {
		if e.Type == EntityCode || e.Type == EntityPre {
			parts = append(parts, m.EntityText(e))
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	content := strings.Join(parts, "\n\n")
	if len(strings.Fields(content)) < 2 {
		return "", false
	}
	return content, true
}

// MarkupLanguage returns the language tag of the first pre entity
func (m *Message) MarkupLanguage() string {
	for _, e := range m.Entities {
		if e.Type == EntityPre {
			return e.Language
		}
	}
	return ""
}

// Command returns the bot command the message starts with, lowercased and
// without the leading slash. target is the "@botname" suffix, without the
// "@", when the command is addressed to a specific bot.
func (m *Message) Command() (cmd, target string, ok bool) {
	text := strings.TrimSpace(m.Text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	fields := strings.Fields(text)
	cmd = strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd, target = cmd[:at], cmd[at+1:]
	}
	if cmd == "" {
		return "", "", false
	}
	return strings.ToLower(cmd), target, true
}
