package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
)

// Strategy names the resolution stage that produced a syntax
type Strategy string

const (
	StrategyExplicit    Strategy = "explicit"
	StrategyClassifier  Strategy = "classifier"
	StrategyPrefix      Strategy = "prefix"
	StrategyChatDefault Strategy = "chat default"
	StrategyUnresolved  Strategy = "unresolved"
)

// ResolverConfig contains resolver tuning
type ResolverConfig struct {
	// ProbabilityMin is the lowest classifier confidence accepted. It is kept
	// low on purpose: every guess comes with a correction keyboard.
	ProbabilityMin float64
	// ClassifierTimeout bounds a single classifier call
	ClassifierTimeout time.Duration
}

// DefaultResolverConfig is the default resolver configuration
var DefaultResolverConfig = ResolverConfig{
	ProbabilityMin:    0.12,
	ClassifierTimeout: 5 * time.Second,
}

// ResolveRequest represents a resolve request
type ResolveRequest struct {
	Text           string
	ChatID         domain.ChatID
	IsGroup        bool   // only tags the decision log
	MarkupLanguage string // explicit language tag from the transport, if any
}

// Resolution is the outcome of the resolver
type Resolution struct {
	Syntax     domain.SyntaxID
	Strategy   Strategy
	Label      string  // classifier label, when the classifier ran
	Confidence float64 // classifier confidence, when the classifier ran
}

// Resolved reports whether a syntax was found
func (r Resolution) Resolved() bool {
	return r.Syntax != ""
}

// ResolverUsecase decides which syntax a snippet should be rendered as
type ResolverUsecase struct {
	tables     *domain.AliasTables
	classifier repo.Classifier
	configRepo repo.ConfigRepo
	cfg        ResolverConfig
	log        *zap.Logger
}

// NewResolverUsecase creates a new resolver usecase.
// classifier and configRepo may be nil; the matching stages are then skipped.
func NewResolverUsecase(
	tables *domain.AliasTables,
	classifier repo.Classifier,
	configRepo repo.ConfigRepo,
	cfg ResolverConfig,
	log *zap.Logger,
) *ResolverUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResolverUsecase{
		tables:     tables,
		classifier: classifier,
		configRepo: configRepo,
		cfg:        cfg,
		log:        log,
	}
}

// Resolve runs the stages in order: explicit markup, classifier, prefix
// rules, chat default. The first stage to produce a syntax wins.
func (uc *ResolverUsecase) Resolve(ctx context.Context, req ResolveRequest) Resolution {
	log := uc.log.With(zap.Int64("chat_id", int64(req.ChatID)), zap.Bool("is_group", req.IsGroup))

	// 1. Explicit markup
	if req.MarkupLanguage != "" {
		if syntax, ok := uc.tables.FromMarkup(req.MarkupLanguage); ok {
			log.Info("specified syntax",
				zap.String("markup_language", req.MarkupLanguage),
				zap.String("syntax", string(syntax)))
			return Resolution{Syntax: syntax, Strategy: StrategyExplicit}
		}
	}

	// 2. Statistical guess
	res := Resolution{Strategy: StrategyUnresolved}
	if syntax, ok := uc.guess(ctx, req.Text, &res, log); ok {
		res.Syntax = syntax
		res.Strategy = StrategyClassifier
		return res
	}

	// 3. Heuristic prefix rules
	if rule, ok := uc.tables.Prefixes.Match(req.Text); ok {
		log.Info("simple-guessed syntax",
			zap.String("prefix", rule.Prefix),
			zap.String("syntax", string(rule.Syntax)))
		res.Syntax = rule.Syntax
		res.Strategy = StrategyPrefix
		return res
	}

	// 4. Chat default
	if uc.configRepo != nil && req.ChatID != 0 {
		cfg, err := uc.configRepo.GetChatConfig(ctx, req.ChatID)
		if err != nil {
			log.Warn("failed to read chat config", zap.Error(err))
		} else if cfg.HasDefault() {
			log.Info("using chat default syntax", zap.String("syntax", string(cfg.DefaultSyntax)))
			res.Syntax = cfg.DefaultSyntax
			res.Strategy = StrategyChatDefault
			return res
		}
	}

	log.Info("syntax unresolved")
	return res
}

// guess consults the classifier. Errors and timeouts count as no result.
func (uc *ResolverUsecase) guess(ctx context.Context, text string, res *Resolution, log *zap.Logger) (domain.SyntaxID, bool) {
	if uc.classifier == nil {
		return "", false
	}

	cctx := ctx
	if uc.cfg.ClassifierTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, uc.cfg.ClassifierTimeout)
		defer cancel()
	}

	guess, err := uc.classifier.Classify(cctx, text)
	if err != nil {
		log.Info("classifier gave no result", zap.Error(err))
		return "", false
	}

	res.Label = guess.Label
	res.Confidence = guess.Confidence
	syntax, mapped := uc.tables.FromLabel(guess.Label)

	log.Info("guessed syntax",
		zap.Float64("probability_min", uc.cfg.ProbabilityMin),
		zap.Float64("probability", guess.Confidence),
		zap.String("label", guess.Label),
		zap.String("syntax", string(syntax)))

	if !mapped || guess.Confidence < uc.cfg.ProbabilityMin {
		return "", false
	}
	return syntax, true
}
