package biz

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
	"github.com/colorcodebot/colorcodebot/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Resolver   *usecase.ResolverUsecase
	Consent    *usecase.ConsentUsecase
	Permission *usecase.PermissionUsecase
	Keyboards  *usecase.KeyboardUsecase
	Render     *usecase.RenderUsecase
}

// Options carries the settings the usecases are built from
type Options struct {
	Tables   *domain.AliasTables
	Texts    usecase.KeyboardTexts
	Resolver usecase.ResolverConfig
	Render   usecase.RenderConfig
}

// NewUsecases builds every usecase over the given repositories
func NewUsecases(
	opts Options,
	configRepo repo.ConfigRepo,
	gateway repo.Gateway,
	classifier repo.Classifier,
	renderer repo.Renderer,
	log *zap.Logger,
) (*Usecases, error) {
	if log == nil {
		log = zap.NewNop()
	}

	keyboards, err := usecase.NewKeyboardUsecase(opts.Tables.Display, opts.Texts)
	if err != nil {
		return nil, fmt.Errorf("failed to build keyboards: %w", err)
	}

	return &Usecases{
		Resolver:   usecase.NewResolverUsecase(opts.Tables, classifier, configRepo, opts.Resolver, log.Named("resolver")),
		Consent:    usecase.NewConsentUsecase(configRepo, log.Named("consent")),
		Permission: usecase.NewPermissionUsecase(gateway, log.Named("permission")),
		Keyboards:  keyboards,
		Render:     usecase.NewRenderUsecase(renderer, gateway, keyboards, opts.Render, log.Named("render")),
	}, nil
}
