//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"signalkit/internal"
	"signalkit/internal/controllers"
	"signalkit/internal/cookies"
	"signalkit/internal/models"
	"signalkit/internal/persistence"
	"signalkit/internal/providers"
	"signalkit/internal/security"
	"signalkit/internal/services"
	"signalkit/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		models.NewOptionStore,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewRateLimiter,

		cookies.NewJar,
		security.NewNonceProvider,
		services.NewSettingsService,
		services.NewAnalyticsService,
		services.NewDisplayRulesService,
		services.NewRendererService,

		persistence.NewZstdCompressor,
		persistence.NewFileManager,
		persistence.NewScheduler,

		controllers.NewBannerController,
		controllers.NewAjaxController,
		controllers.NewAdminController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
