package data

import (
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	"go.uber.org/zap"

	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
	"github.com/colorcodebot/colorcodebot/internal/retryutil"
)

// Classifier backends
const (
	ClassifierChroma = "chroma"
	ClassifierOpenAI = "openai"
	ClassifierNone   = "none"
)

// Repositories contains all repositories
type Repositories struct {
	Config     repo.ConfigRepo
	Gateway    repo.Gateway
	Classifier repo.Classifier // nil when disabled
	Renderer   repo.Renderer
}

// ClassifierOptions selects and configures the classifier backend
type ClassifierOptions struct {
	Backend string
	APIKey  string
	BaseURL string
	Model   string
	Labels  []string
}

// NewClassifier builds the configured classifier. "none" returns nil.
func NewClassifier(opts ClassifierOptions) (repo.Classifier, error) {
	switch strings.ToLower(opts.Backend) {
	case "", ClassifierChroma:
		return NewChromaClassifier(opts.Labels), nil
	case ClassifierOpenAI:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("openai classifier requires an API key")
		}
		return NewOpenAIClassifier(opts.APIKey, opts.BaseURL, opts.Model, opts.Labels), nil
	case ClassifierNone:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown classifier %q", opts.Backend)
}

// NewRepositories creates all repositories. bot may be nil for tools that
// never talk to the chat transport; Gateway is then nil too.
func NewRepositories(
	bot *telego.Bot,
	dbPath string,
	classifier ClassifierOptions,
	siliconPath string,
	policy retryutil.Policy,
	log *zap.Logger,
) (*Repositories, error) {
	if log == nil {
		log = zap.NewNop()
	}

	configRepo, err := NewConfigRepo(dbPath)
	if err != nil {
		return nil, err
	}

	cls, err := NewClassifier(classifier)
	if err != nil {
		configRepo.Close()
		return nil, err
	}

	repos := &Repositories{
		Config:     configRepo,
		Classifier: cls,
		Renderer:   NewSiliconRenderer(siliconPath, nil),
	}
	if bot != nil {
		repos.Gateway = NewRetryingGateway(NewTelegramRepo(bot, log.Named("telegram")), policy, log.Named("retry"))
	}
	return repos, nil
}

// Close releases the repositories
func (r *Repositories) Close() error {
	return r.Config.Close()
}
