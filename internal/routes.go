package internal

import (
	"net/http"

	"signalkit/internal/controllers"
	"signalkit/internal/providers"
	"signalkit/internal/structures"
)

func InitRoutes(
	bannerController *controllers.BannerController,
	ajaxController *controllers.AjaxController,
	adminController *controllers.AdminController,
	limiter *providers.RateLimiter,
	conf *structures.Config,
	logger providers.Logger,
) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/banners", http.HandlerFunc(bannerController.Banners))

	routers.Get("/ajax/nonce", limiter.Middleware(http.HandlerFunc(ajaxController.Nonce)))
	routers.Post("/ajax/track_click", limiter.Middleware(http.HandlerFunc(ajaxController.TrackClick)))
	routers.Post("/ajax/track_dismissal", limiter.Middleware(http.HandlerFunc(ajaxController.TrackDismissal)))

	admin := func(h http.HandlerFunc) http.Handler {
		return providers.AdminAuthMiddleware(conf, logger, h)
	}
	routers.Get("/admin/settings", admin(adminController.GetSettings))
	routers.Post("/admin/settings/update", admin(adminController.UpdateSettings))
	routers.Post("/admin/settings/reset", admin(adminController.ResetSettings))
	routers.Get("/admin/analytics", admin(adminController.GetAnalytics))
	routers.Post("/admin/analytics/reset", admin(adminController.ResetAnalytics))

	return routers
}
