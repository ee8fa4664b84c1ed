package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityText_UTF16(t *testing.T) {
	// "😀" is two UTF-16 code units
	msg := &Message{Text: "😀 run ls -la"}

	assert.Equal(t, "ls -la", msg.EntityText(Entity{Type: EntityCode, Offset: 7, Length: 6}))
	assert.Equal(t, "", msg.EntityText(Entity{Type: EntityCode, Offset: 50, Length: 2}))
	assert.Equal(t, "la", msg.EntityText(Entity{Type: EntityCode, Offset: 11, Length: 10}))
}

func TestCodeContent(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		entities []Entity
		want     string
		ok       bool
	}{
		{
			name: "no entities",
			text: "def f(): pass",
		},
		{
			name:     "single word",
			text:     "try fmt",
			entities: []Entity{{Type: EntityCode, Offset: 4, Length: 3}},
		},
		{
			name:     "bold is not code",
			text:     "make it bold please",
			entities: []Entity{{Type: "bold", Offset: 0, Length: 19}},
		},
		{
			name:     "pre block",
			text:     "x = 1\ny = 2",
			entities: []Entity{{Type: EntityPre, Offset: 0, Length: 11, Language: "python"}},
			want:     "x = 1\ny = 2",
			ok:       true,
		},
		{
			name: "spans joined",
			text: "a b and c d",
			entities: []Entity{
				{Type: EntityCode, Offset: 0, Length: 3},
				{Type: EntityCode, Offset: 8, Length: 3},
			},
			want: "a b\n\nc d",
			ok:   true,
		},
		{
			name: "two single words make two fields",
			text: "foo and bar",
			entities: []Entity{
				{Type: EntityCode, Offset: 0, Length: 3},
				{Type: EntityCode, Offset: 8, Length: 3},
			},
			want: "foo\n\nbar",
			ok:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &Message{Text: tt.text, Entities: tt.entities}
			got, ok := msg.CodeContent()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarkupLanguage(t *testing.T) {
	msg := &Message{Entities: []Entity{
		{Type: EntityCode},
		{Type: EntityPre, Language: "python3"},
		{Type: EntityPre, Language: "go"},
	}}
	assert.Equal(t, "python3", msg.MarkupLanguage())
	assert.Equal(t, "", (&Message{}).MarkupLanguage())
}

func TestCommand(t *testing.T) {
	tests := []struct {
		text   string
		want   string
		target string
		ok     bool
	}{
		{"/start", "start", "", true},
		{"/Settings", "settings", "", true},
		{"/watchme@ColorCodeBot", "watchme", "ColorCodeBot", true},
		{"/settings@otherbot now", "settings", "otherbot", true},
		{"  /help me", "help", "", true},
		{"/", "", "", false},
		{"/@bot", "", "", false},
		{"start", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, target, ok := (&Message{Text: tt.text}).Command()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.target, target)
		})
	}
}

func TestSender(t *testing.T) {
	msg := &Message{}
	assert.Zero(t, msg.SenderID())
	assert.Empty(t, msg.SenderName())

	msg.From = &User{ID: 3, FirstName: "Grace"}
	assert.Equal(t, UserID(3), msg.SenderID())
	assert.Equal(t, "Grace", msg.SenderName())
}
