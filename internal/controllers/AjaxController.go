package controllers

import (
	"net/http"
	"strings"

	"signalkit/internal/cookies"
	"signalkit/internal/models"
	"signalkit/internal/providers"
	"signalkit/internal/security"
	"signalkit/internal/services"
)

type AjaxController struct {
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	settings  services.SettingsServiceInterface
	analytics services.AnalyticsServiceInterface
	nonces    security.NonceProviderInterface
	jar       *cookies.Jar
}

func NewAjaxController(
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	settings services.SettingsServiceInterface,
	analytics services.AnalyticsServiceInterface,
	nonces security.NonceProviderInterface,
	jar *cookies.Jar,
) *AjaxController {
	return &AjaxController{
		logger:    logger,
		metrics:   metrics,
		settings:  settings,
		analytics: analytics,
		nonces:    nonces,
		jar:       jar,
	}
}

// Nonce hands out an anti-forgery token for pages served from a cache that
// did not call /banners.
func (ac *AjaxController) Nonce(w http.ResponseWriter, r *http.Request) {
	nonce, err := ac.nonces.Issue(w, r)
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Unable to issue nonce: %s", err)
		writeFailure(w, http.StatusInternalServerError, "Unable to issue token")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, struct {
		Nonce string `json:"nonce"`
	}{Nonce: nonce})
}

// authorize parses the form, checks the token and the banner type. On
// failure it has already written the response.
func (ac *AjaxController) authorize(w http.ResponseWriter, r *http.Request) (models.BannerType, bool) {
	if err := parseForm(w, r); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request")
		return "", false
	}
	if !ac.nonces.Verify(r) {
		ac.logger.Warnf(providers.TypePost, "Rejected %s: invalid security token", r.URL.Path)
		writeFailure(w, http.StatusForbidden, "Invalid security token")
		return "", false
	}
	t, ok := models.ParseBannerType(strings.TrimSpace(r.PostFormValue("banner_type")))
	if !ok {
		writeFailure(w, http.StatusBadRequest, "Invalid banner type")
		return "", false
	}
	return t, true
}

func (ac *AjaxController) TrackClick(w http.ResponseWriter, r *http.Request) {
	t, ok := ac.authorize(w, r)
	if !ok {
		return
	}

	if err := ac.analytics.TrackClick(t); err != nil {
		ac.logger.Errorf(providers.TypePost, "Unable to track click for %s: %s", t, err)
		writeFailure(w, http.StatusInternalServerError, "Unable to track click")
		return
	}
	ac.metrics.IncBannerEvent(string(t), "click")

	writeJSON(w, http.StatusOK, ajaxResponse{Success: true, Message: "Click tracked", BannerType: string(t)})
}

func (ac *AjaxController) TrackDismissal(w http.ResponseWriter, r *http.Request) {
	t, ok := ac.authorize(w, r)
	if !ok {
		return
	}

	banner := ac.settings.Load().Banner(t)
	if !banner.Dismissible {
		writeFailure(w, http.StatusBadRequest, "Banner is not dismissible")
		return
	}

	days := dismissDays(r.PostFormValue("duration"), banner.DismissDuration)
	expiry, err := ac.jar.SetDismissal(w, r, t, days)
	if err != nil {
		ac.logger.Errorf(providers.TypePost, "Unable to set dismissal cookie for %s: %s", t, err)
		writeFailure(w, http.StatusInternalServerError, "Unable to dismiss banner")
		return
	}

	if err := ac.analytics.TrackDismissal(t); err != nil {
		ac.logger.Errorf(providers.TypePost, "Unable to track dismissal for %s: %s", t, err)
	}
	ac.metrics.IncBannerEvent(string(t), "dismissal")
	ac.logger.Debugf(providers.TypePost, "Dismissed %s for %d days until %d", t, days, expiry)

	writeJSON(w, http.StatusOK, ajaxResponse{Success: true, Message: "Banner dismissed", BannerType: string(t)})
}

// dismissDays clamps the client-supplied duration and falls back to the
// configured one when it is missing or not a positive number.
func dismissDays(raw string, configured int) int {
	n, ok := models.ParseDecimal(raw)
	if !ok || n < 1 {
		n = configured
	}
	return models.DismissDurationRange.Clamp(n)
}
