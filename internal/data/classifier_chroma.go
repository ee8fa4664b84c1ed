package data

import (
	"context"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
)

// chromaClassifier guesses languages with the content analysers that ship
// with chroma's lexers. It runs in process and needs no network.
//
// Only a handful of lexers score anything above zero (Go, Bash shebangs, C
// and C++ includes, MySQL backtick names), so most snippets come back
// unavailable and resolution moves on to the prefix rules. Use the openai
// backend for broad coverage.
type chromaClassifier struct {
	lexers []chroma.Lexer
}

// NewChromaClassifier creates a classifier over the registered lexers whose
// names appear in labels. Empty labels means every lexer.
func NewChromaClassifier(labels []string) repo.Classifier {
	allowed := make(map[string]bool, len(labels))
	for _, l := range labels {
		allowed[strings.ToLower(l)] = true
	}

	var candidates []chroma.Lexer
	for _, lexer := range lexers.GlobalLexerRegistry.Lexers {
		if len(allowed) > 0 && !allowed[strings.ToLower(lexer.Config().Name)] {
			continue
		}
		candidates = append(candidates, lexer)
	}
	return &chromaClassifier{lexers: candidates}
}

// Classify returns the lexer whose analyser scores text highest. Labels are
// chroma lexer names, e.g. "Go" or "Bash".
func (c *chromaClassifier) Classify(ctx context.Context, text string) (repo.Classification, error) {
	if strings.TrimSpace(text) == "" {
		return repo.Classification{}, repo.ErrClassifierUnavailable
	}
	if err := ctx.Err(); err != nil {
		return repo.Classification{}, err
	}

	var (
		best  repo.Classification
		found bool
	)
	for _, lexer := range c.lexers {
		if err := ctx.Err(); err != nil {
			return repo.Classification{}, err
		}
		score := float64(lexer.AnalyseText(text))
		if score <= 0 {
			continue
		}
		if score > 1 {
			score = 1
		}
		if !found || score > best.Confidence {
			best = repo.Classification{Label: lexer.Config().Name, Confidence: score}
			found = true
		}
	}

	if !found {
		return repo.Classification{}, repo.ErrClassifierUnavailable
	}
	return best, nil
}
