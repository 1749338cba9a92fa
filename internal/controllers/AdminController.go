package controllers

import (
	"net/http"

	json "github.com/goccy/go-json"

	"signalkit/internal/models"
	"signalkit/internal/providers"
	"signalkit/internal/services"
)

const settingsCacheKey = "settings"

type AdminController struct {
	logger    providers.Logger
	settings  services.SettingsServiceInterface
	analytics services.AnalyticsServiceInterface
	cache     providers.CacheProviderInterface
}

func NewAdminController(logger providers.Logger, settings services.SettingsServiceInterface, analytics services.AnalyticsServiceInterface, cache providers.CacheProviderInterface) *AdminController {
	return &AdminController{
		logger:    logger,
		settings:  settings,
		analytics: analytics,
		cache:     cache,
	}
}

func (ac *AdminController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *AdminController) GetSettings(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, settingsCacheKey, func() (any, error) {
		return ac.settings.Load(), nil
	})
}

// UpdateSettings saves the url-encoded settings form. Every field is
// sanitized on its own; a bad value never rejects the whole form.
func (ac *AdminController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request")
		return
	}

	settings := ac.settings.Sanitize(r.PostForm)
	if err := ac.settings.Save(settings); err != nil {
		ac.logger.Errorf(providers.TypePost, "Unable to save settings: %s", err)
		writeFailure(w, http.StatusInternalServerError, "Unable to save settings")
		return
	}
	ac.cache.Del(settingsCacheKey)
	ac.logger.Infof(providers.TypePost, "Settings updated")

	writeJSON(w, http.StatusOK, settings)
}

func (ac *AdminController) ResetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := ac.settings.Reset()
	if err != nil {
		ac.logger.Errorf(providers.TypePost, "Unable to reset settings: %s", err)
		writeFailure(w, http.StatusInternalServerError, "Unable to reset settings")
		return
	}
	ac.cache.Del(settingsCacheKey)
	ac.logger.Infof(providers.TypePost, "Settings reset to defaults")

	writeJSON(w, http.StatusOK, settings)
}

// GetAnalytics answers ?banner=follow|preferred|all; "all" is the default.
// Counters change on every tracked request, so the report is never cached.
func (ac *AdminController) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	selector := bannerSelector(r)
	if selector == models.BannerAll {
		writeJSON(w, http.StatusOK, ac.analytics.GetAll())
		return
	}

	t, ok := models.ParseBannerType(selector)
	if !ok {
		writeFailure(w, http.StatusBadRequest, "Invalid banner type")
		return
	}
	writeJSON(w, http.StatusOK, ac.analytics.Get(t))
}

func (ac *AdminController) ResetAnalytics(w http.ResponseWriter, r *http.Request) {
	selector := bannerSelector(r)
	if err := ac.analytics.Reset(selector); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid banner type")
		return
	}
	ac.logger.Infof(providers.TypePost, "Analytics reset for %s", selector)

	writeJSON(w, http.StatusOK, ajaxResponse{Success: true, Message: "Analytics reset", BannerType: selector})
}

func bannerSelector(r *http.Request) string {
	selector := r.URL.Query().Get("banner")
	if selector == "" {
		return models.BannerAll
	}
	return selector
}
