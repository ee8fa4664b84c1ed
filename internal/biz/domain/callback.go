package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MaxCallbackDataLen is the transport limit for inline button data, in bytes
const MaxCallbackDataLen = 64

// Action is the discriminant of a callback payload
type Action string

const (
	ActionBegone            Action = "begone"
	ActionSetExt            Action = "set ext"
	ActionSetDefaultExt     Action = "set default ext"
	ActionBrowseGroupSyntax Action = "browse group syntax"
	ActionToggleWatchMode   Action = "toggle watch mode"
	ActionRestore           Action = "restore"
)

// Known reports whether the action is one the bot handles
func (a Action) Known() bool {
	switch a {
	case ActionBegone, ActionSetExt, ActionSetDefaultExt,
		ActionBrowseGroupSyntax, ActionToggleWatchMode, ActionRestore:
		return true
	}
	return false
}

// ErrCallbackTooLarge is returned when an encoded payload exceeds MaxCallbackDataLen
var ErrCallbackTooLarge = errors.New("callback payload exceeds transport limit")

// CallbackPayload is the structured data attached to an inline button
type CallbackPayload struct {
	Action Action       `json:"action"`
	Ext    SyntaxID     `json:"ext,omitempty"`
	KbName KeyboardName `json:"kb_name,omitempty"`
}

// Encode serializes the payload for an inline button
func (p CallbackPayload) Encode() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode callback: %w", err)
	}
	if len(data) > MaxCallbackDataLen {
		return "", fmt.Errorf("%w: %d bytes for %q", ErrCallbackTooLarge, len(data), p.Action)
	}
	return string(data), nil
}

// DecodeCallback parses button data. Malformed data and unknown actions
// report false so the caller can ignore them.
func DecodeCallback(data string) (CallbackPayload, bool) {
	data = strings.TrimSpace(data)
	if data == "" {
		return CallbackPayload{}, false
	}
	var p CallbackPayload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return CallbackPayload{}, false
	}
	if !p.Action.Known() {
		return CallbackPayload{}, false
	}
	return p, true
}
