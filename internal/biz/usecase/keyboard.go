package usecase

import (
	"fmt"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
)

const keyboardRowWidth = 3

// KeyboardTexts holds the button labels
type KeyboardTexts struct {
	SelectDefaultSyntax string
	ToggleWatchMode     string
	SendToChat          string
	None                string
	Dismiss             string
	Minimized           string
}

// DefaultKeyboardTexts are the labels used when the locale file omits them
var DefaultKeyboardTexts = KeyboardTexts{
	SelectDefaultSyntax: "Select default syntax",
	ToggleWatchMode:     "Toggle watch mode",
	SendToChat:          "Send to chat",
	None:                "None",
	Dismiss:             "🗑️",
	Minimized:           ". . .",
}

// KeyboardUsecase maps named layouts to button sets. It holds no per-message
// state: the keyboard attached to a message is the state.
type KeyboardUsecase struct {
	texts   KeyboardTexts
	layouts map[domain.KeyboardName]*domain.Keyboard
	begone  string
}

// NewKeyboardUsecase builds every layout up front so oversized callback
// payloads are reported at startup.
func NewKeyboardUsecase(syntaxes []domain.NamedSyntax, texts KeyboardTexts) (*KeyboardUsecase, error) {
	uc := &KeyboardUsecase{
		texts:   texts,
		layouts: make(map[domain.KeyboardName]*domain.Keyboard, 3),
	}

	begone, err := domain.CallbackPayload{Action: domain.ActionBegone}.Encode()
	if err != nil {
		return nil, err
	}
	uc.begone = begone
	dismiss := domain.Button{Text: texts.Dismiss, CallbackData: begone}

	// syntax picker
	var picker []domain.Button
	for _, s := range syntaxes {
		b, err := callbackButton(s.Name, domain.CallbackPayload{Action: domain.ActionSetExt, Ext: s.Syntax})
		if err != nil {
			return nil, err
		}
		picker = append(picker, b)
	}
	picker = append(picker, dismiss)
	uc.layouts[domain.KeyboardSyntax] = domain.NewKeyboard(keyboardRowWidth, picker...)

	// group syntax browser
	var browser []domain.Button
	for _, s := range syntaxes {
		b, err := callbackButton(s.Name, domain.CallbackPayload{Action: domain.ActionSetDefaultExt, Ext: s.Syntax})
		if err != nil {
			return nil, err
		}
		browser = append(browser, b)
	}
	none, err := callbackButton(texts.None, domain.CallbackPayload{Action: domain.ActionSetDefaultExt})
	if err != nil {
		return nil, err
	}
	browser = append(browser, none, dismiss)
	uc.layouts[domain.KeyboardGroupSyntax] = domain.NewKeyboard(keyboardRowWidth, browser...)

	// group options
	browse, err := callbackButton(texts.SelectDefaultSyntax, domain.CallbackPayload{Action: domain.ActionBrowseGroupSyntax})
	if err != nil {
		return nil, err
	}
	toggle, err := callbackButton(texts.ToggleWatchMode, domain.CallbackPayload{Action: domain.ActionToggleWatchMode})
	if err != nil {
		return nil, err
	}
	uc.layouts[domain.KeyboardGroupOptions] = &domain.Keyboard{Rows: [][]domain.Button{
		{browse},
		{toggle},
		{dismiss},
	}}

	return uc, nil
}

func callbackButton(text string, p domain.CallbackPayload) (domain.Button, error) {
	data, err := p.Encode()
	if err != nil {
		return domain.Button{}, fmt.Errorf("button %q: %w", text, err)
	}
	return domain.Button{Text: text, CallbackData: data}, nil
}

// Layout returns the named full layout
func (uc *KeyboardUsecase) Layout(name domain.KeyboardName) (*domain.Keyboard, bool) {
	kb, ok := uc.layouts[name]
	return kb, ok
}

// Minimized returns the placeholder that restores the named layout
func (uc *KeyboardUsecase) Minimized(name domain.KeyboardName) (*domain.Keyboard, error) {
	restore, err := callbackButton(uc.texts.Minimized, domain.CallbackPayload{Action: domain.ActionRestore, KbName: name})
	if err != nil {
		return nil, err
	}
	return domain.NewKeyboard(2, restore, uc.Dismiss()), nil
}

// For returns the keyboard materializing state. Dismissed has none.
func (uc *KeyboardUsecase) For(state domain.UIState) (*domain.Keyboard, error) {
	switch state.Phase {
	case domain.PhaseFull:
		kb, ok := uc.Layout(state.Layout)
		if !ok {
			return nil, fmt.Errorf("%w: unknown layout %q", domain.ErrInvalidTransition, state.Layout)
		}
		return kb, nil
	case domain.PhaseMinimized:
		return uc.Minimized(state.Layout)
	case domain.PhaseDismissed:
		return nil, domain.ErrDismissed
	}
	return nil, domain.ErrInvalidTransition
}

// ImageKeyboard is attached to a delivered image. The re-share button is
// only offered when shareable is set and the image was sent as a photo.
func (uc *KeyboardUsecase) ImageKeyboard(photoFileID string, shareable bool) *domain.Keyboard {
	var buttons []domain.Button
	if shareable && photoFileID != "" {
		buttons = append(buttons, domain.Button{
			Text:              uc.texts.SendToChat,
			SwitchInlineQuery: InlineImagePrefix + photoFileID,
		})
	}
	buttons = append(buttons, uc.Dismiss())
	return domain.NewKeyboard(len(buttons), buttons...)
}

// Dismiss returns the dismiss button
func (uc *KeyboardUsecase) Dismiss() domain.Button {
	return domain.Button{Text: uc.texts.Dismiss, CallbackData: uc.begone}
}

// InlineImagePrefix marks inline queries that deliver a cached image
const InlineImagePrefix = "img "
