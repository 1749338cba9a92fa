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

type BannerController struct {
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	settings  services.SettingsServiceInterface
	rules     services.DisplayRulesServiceInterface
	renderer  services.RendererServiceInterface
	analytics services.AnalyticsServiceInterface
	nonces    security.NonceProviderInterface
	jar       *cookies.Jar
}

type bannerEntry struct {
	Type    string                  `json:"type"`
	HTML    string                  `json:"html"`
	Payload *services.BannerPayload `json:"payload"`
}

type bannersResponse struct {
	Nonce   string        `json:"nonce"`
	Banners []bannerEntry `json:"banners"`
}

func NewBannerController(
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	settings services.SettingsServiceInterface,
	rules services.DisplayRulesServiceInterface,
	renderer services.RendererServiceInterface,
	analytics services.AnalyticsServiceInterface,
	nonces security.NonceProviderInterface,
	jar *cookies.Jar,
) *BannerController {
	return &BannerController{
		logger:    logger,
		metrics:   metrics,
		settings:  settings,
		rules:     rules,
		renderer:  renderer,
		analytics: analytics,
		nonces:    nonces,
		jar:       jar,
	}
}

// requestContext builds the rule input from the query string, falling back
// to User-Agent sniffing when the host page does not say which device it
// rendered for.
func requestContext(r *http.Request) *models.RequestContext {
	q := r.URL.Query()
	postID, _ := models.ParseDecimal(q.Get("post_id"))

	ctx := &models.RequestContext{
		PageType: models.ParsePageType(q.Get("page_type")),
		PostID:   postID,
		Cookies:  make(map[string]string),
	}

	switch strings.ToLower(q.Get("device")) {
	case "mobile":
		ctx.IsMobile = true
	case "desktop":
		ctx.IsMobile = false
	default:
		ctx.IsMobile = models.IsMobileRequest(r)
	}

	for _, c := range r.Cookies() {
		if strings.HasPrefix(c.Name, cookies.Prefix) {
			ctx.Cookies[c.Name] = c.Value
		}
	}
	return ctx
}

func (bc *BannerController) Banners(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)
	settings := bc.settings.Load()

	nonce, err := bc.nonces.Issue(w, r)
	if err != nil {
		bc.logger.Errorf(providers.TypeGet, "Unable to issue nonce: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	resp := bannersResponse{Nonce: nonce, Banners: make([]bannerEntry, 0, len(models.BannerTypes))}
	for _, t := range models.BannerTypes {
		decision := bc.rules.Evaluate(t, settings, ctx)
		for _, name := range decision.StaleCookies {
			bc.logger.Debugf(providers.TypeGet, "Deleting stale cookie %s", name)
			bc.jar.Delete(w, r, name)
		}
		if !decision.Show {
			bc.metrics.IncBannerHidden(string(t), decision.Reason)
			continue
		}

		payload, err := bc.renderer.Render(t, settings, ctx)
		if err != nil {
			bc.logger.Warnf(providers.TypeGet, "Skipping %s banner: %s", t, err)
			continue
		}
		html, err := bc.renderer.RenderHTML(payload)
		if err != nil {
			bc.logger.Errorf(providers.TypeGet, "Unable to render %s banner: %s", t, err)
			continue
		}

		bc.jar.SetFrequency(w, r, t, settings.Banner(t).Frequency)
		if err := bc.analytics.TrackImpression(t); err != nil {
			bc.logger.Errorf(providers.TypeGet, "Unable to track impression for %s: %s", t, err)
		}
		bc.metrics.IncBannerEvent(string(t), "impression")

		resp.Banners = append(resp.Banners, bannerEntry{Type: string(t), HTML: html, Payload: payload})
	}

	w.Header().Set("Cache-Control", "no-store")
	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		for _, b := range resp.Banners {
			_, _ = w.Write([]byte(b.HTML))
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
