package domain

import "strings"

// SyntaxID identifies a highlighting grammar understood by the renderer (e.g. "py", "json")
type SyntaxID string

// NamedSyntax pairs a display name with its syntax (value object)
type NamedSyntax struct {
	Name   string
	Syntax SyntaxID
}

// PrefixRule maps a literal leading string to a syntax
type PrefixRule struct {
	Prefix string
	Syntax SyntaxID
}

// PrefixRules is an ordered table. The first matching rule wins, so longer
// prefixes must be declared before shorter overlapping ones ("<?php" before "<").
type PrefixRules []PrefixRule

// Match returns the first rule whose prefix starts text
func (r PrefixRules) Match(text string) (PrefixRule, bool) {
	for _, rule := range r {
		if rule.Prefix != "" && strings.HasPrefix(text, rule.Prefix) {
			return rule, true
		}
	}
	return PrefixRule{}, false
}

// AliasTables holds the static syntax mappings
type AliasTables struct {
	// Display is the ordered display-name table used for keyboards
	Display []NamedSyntax
	// ClassifierLabels maps classifier output labels to syntaxes
	ClassifierLabels map[string]SyntaxID
	// Markup maps explicit code-block language tags to syntaxes
	Markup map[string]SyntaxID
	// Prefixes is the ordered heuristic table
	Prefixes PrefixRules
}

// FromLabel maps a classifier label to a syntax
func (t *AliasTables) FromLabel(label string) (SyntaxID, bool) {
	return lookupAlias(t.ClassifierLabels, label)
}

// FromMarkup maps an explicit markup language tag to a syntax
func (t *AliasTables) FromMarkup(lang string) (SyntaxID, bool) {
	return lookupAlias(t.Markup, lang)
}

// Labels returns the classifier labels in no particular order
func (t *AliasTables) Labels() []string {
	labels := make([]string, 0, len(t.ClassifierLabels))
	for label := range t.ClassifierLabels {
		labels = append(labels, label)
	}
	return labels
}

// DisplayName returns the display name for a syntax, or the syntax itself
func (t *AliasTables) DisplayName(syntax SyntaxID) string {
	for _, ns := range t.Display {
		if ns.Syntax == syntax {
			return ns.Name
		}
	}
	return string(syntax)
}

func lookupAlias(table map[string]SyntaxID, key string) (SyntaxID, bool) {
	key = strings.TrimSpace(key)
	if key == "" || table == nil {
		return "", false
	}
	if syntax, ok := table[key]; ok && syntax != "" {
		return syntax, true
	}
	// Clients are inconsistent about tag casing
	for k, syntax := range table {
		if strings.EqualFold(k, key) && syntax != "" {
			return syntax, true
		}
	}
	return "", false
}
