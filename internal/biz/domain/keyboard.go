package domain

import "errors"

// KeyboardName names one of the full keyboard layouts
type KeyboardName string

const (
	KeyboardSyntax       KeyboardName = "syntax"
	KeyboardGroupOptions KeyboardName = "group options"
	KeyboardGroupSyntax  KeyboardName = "group syntax"
)

// Known reports whether the name refers to a full layout
func (n KeyboardName) Known() bool {
	switch n {
	case KeyboardSyntax, KeyboardGroupOptions, KeyboardGroupSyntax:
		return true
	}
	return false
}

// Button is an inline keyboard button. Exactly one of CallbackData and
// SwitchInlineQuery is set.
type Button struct {
	Text              string
	CallbackData      string
	SwitchInlineQuery string
}

// Keyboard is an inline keyboard laid out in rows
type Keyboard struct {
	Rows [][]Button
}

// NewKeyboard lays buttons out left to right, rowWidth per row
func NewKeyboard(rowWidth int, buttons ...Button) *Keyboard {
	if rowWidth <= 0 {
		rowWidth = 1
	}
	kb := &Keyboard{}
	for i := 0; i < len(buttons); i += rowWidth {
		end := i + rowWidth
		if end > len(buttons) {
			end = len(buttons)
		}
		row := make([]Button, end-i)
		copy(row, buttons[i:end])
		kb.Rows = append(kb.Rows, row)
	}
	return kb
}

// Buttons returns the buttons in reading order
func (k *Keyboard) Buttons() []Button {
	if k == nil {
		return nil
	}
	var out []Button
	for _, row := range k.Rows {
		out = append(out, row...)
	}
	return out
}

// Phase is the lifecycle phase of a message's keyboard
type Phase int

const (
	PhaseFull Phase = iota + 1
	PhaseMinimized
	PhaseDismissed
)

// UIState is the keyboard state materialized on a message
type UIState struct {
	Phase  Phase
	Layout KeyboardName // layout shown when full, or restored from minimized
}

// Full returns the state showing the named layout
func Full(name KeyboardName) UIState {
	return UIState{Phase: PhaseFull, Layout: name}
}

// Minimized returns the placeholder state that restores the named layout
func Minimized(name KeyboardName) UIState {
	return UIState{Phase: PhaseMinimized, Layout: name}
}

// Dismissed is the terminal state: the message is deleted
var Dismissed = UIState{Phase: PhaseDismissed}

var (
	ErrDismissed         = errors.New("message already dismissed")
	ErrInvalidTransition = errors.New("invalid keyboard transition")
)

// TargetState returns the state an action leads to, independent of the
// current state. Actions that do not change the keyboard report false.
func TargetState(p CallbackPayload) (UIState, bool) {
	switch p.Action {
	case ActionBegone:
		return Dismissed, true
	case ActionSetExt:
		return Minimized(KeyboardSyntax), true
	case ActionRestore:
		if !p.KbName.Known() {
			return UIState{}, false
		}
		return Full(p.KbName), true
	case ActionBrowseGroupSyntax:
		return Full(KeyboardGroupSyntax), true
	case ActionSetDefaultExt, ActionToggleWatchMode:
		return Full(KeyboardGroupOptions), true
	}
	return UIState{}, false
}

// StateOf reads the state a keyboard materializes from its callback
// payloads. Keyboards that match no layout, like the one under a rendered
// image, report false.
func StateOf(kb *Keyboard) (UIState, bool) {
	var restore KeyboardName
	for _, b := range kb.Buttons() {
		p, ok := DecodeCallback(b.CallbackData)
		if !ok {
			continue
		}
		switch p.Action {
		case ActionSetExt:
			return Full(KeyboardSyntax), true
		case ActionSetDefaultExt:
			return Full(KeyboardGroupSyntax), true
		case ActionBrowseGroupSyntax, ActionToggleWatchMode:
			return Full(KeyboardGroupOptions), true
		case ActionRestore:
			restore = p.KbName
		}
	}
	if restore.Known() {
		return Minimized(restore), true
	}
	return UIState{}, false
}

// Apply moves from s to the state produced by p
func (s UIState) Apply(p CallbackPayload) (UIState, error) {
	if s.Phase == PhaseDismissed {
		return s, ErrDismissed
	}
	next, ok := TargetState(p)
	if !ok {
		return s, ErrInvalidTransition
	}
	switch p.Action {
	case ActionRestore:
		if s.Phase != PhaseMinimized {
			return s, ErrInvalidTransition
		}
	case ActionSetExt:
		if s.Phase != PhaseFull || s.Layout != KeyboardSyntax {
			return s, ErrInvalidTransition
		}
	case ActionBrowseGroupSyntax, ActionToggleWatchMode:
		if s.Phase != PhaseFull || s.Layout != KeyboardGroupOptions {
			return s, ErrInvalidTransition
		}
	case ActionSetDefaultExt:
		if s.Phase != PhaseFull || s.Layout != KeyboardGroupSyntax {
			return s, ErrInvalidTransition
		}
	}
	return next, nil
}
