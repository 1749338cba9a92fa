package internal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalkit/internal/controllers"
	"signalkit/internal/cookies"
	"signalkit/internal/models"
	"signalkit/internal/providers"
	"signalkit/internal/security"
	"signalkit/internal/services"
	"signalkit/internal/structures"
	"signalkit/internal/testutil"
)

const adminToken = "admin-token-0123456789"

func newTestMux(t *testing.T, rateLimit structures.RateLimitConfig) (*http.ServeMux, services.AnalyticsServiceInterface) {
	t.Helper()
	conf := &structures.Config{
		Site:      structures.SiteConfig{Name: "Example", Secret: "0123456789abcdef0123456789abcdef"},
		Admin:     structures.AdminConfig{Token: adminToken},
		RateLimit: rateLimit,
	}
	store := models.NewOptionStore()
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}

	settings := services.NewSettingsService(store, logger)
	analytics := services.NewAnalyticsService(store)
	renderer, err := services.NewRendererService(conf)
	require.NoError(t, err)
	nonces := security.NewNonceProvider(conf)
	jar := cookies.NewJar(conf)

	limiter := providers.NewRateLimiter(conf, logger)
	t.Cleanup(limiter.Stop)

	router := InitRoutes(
		controllers.NewBannerController(logger, metrics, settings, services.NewDisplayRulesService(conf), renderer, analytics, nonces, jar),
		controllers.NewAjaxController(logger, metrics, settings, analytics, nonces, jar),
		controllers.NewAdminController(logger, settings, analytics, testutil.NewMockCache()),
		limiter,
		conf,
		logger,
	)

	mux := http.NewServeMux()
	for _, r := range router.GetRoutes() {
		mux.Handle(r.Url, r.Handler)
	}
	return mux, analytics
}

func TestInitRoutes_RegistersAllRoutes(t *testing.T) {
	conf := &structures.Config{Admin: structures.AdminConfig{Token: adminToken}}
	router := InitRoutes(&controllers.BannerController{}, &controllers.AjaxController{}, &controllers.AdminController{}, providers.NewRateLimiter(conf, &testutil.MockLogger{}), conf, &testutil.MockLogger{})

	urls := make([]string, 0)
	for _, r := range router.GetRoutes() {
		urls = append(urls, r.Url)
	}
	assert.ElementsMatch(t, []string{
		"/banners",
		"/ajax/nonce",
		"/ajax/track_click",
		"/ajax/track_dismissal",
		"/admin/settings",
		"/admin/settings/update",
		"/admin/settings/reset",
		"/admin/analytics",
		"/admin/analytics/reset",
	}, urls)
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	mux, _ := newTestMux(t, structures.RateLimitConfig{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/banners", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ajax/track_click", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
}

func TestInitRoutes_AdminRequiresToken(t *testing.T) {
	mux, _ := newTestMux(t, structures.RateLimitConfig{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/settings", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestInitRoutes_RateLimitsTracking(t *testing.T) {
	mux, _ := newTestMux(t, structures.RateLimitConfig{Enabled: true, PerMinute: 1, Burst: 1})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/ajax/track_click", strings.NewReader("banner_type=follow"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "203.0.113.7:4000"
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusForbidden, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

// A visitor sees the banner, dismisses it, and does not see it again.
func TestInitRoutes_DismissalRoundTrip(t *testing.T) {
	mux, analytics := newTestMux(t, structures.RateLimitConfig{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/banners?page_type=homepage", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var first struct {
		Nonce   string `json:"nonce"`
		Banners []struct {
			Type string `json:"type"`
		} `json:"banners"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	require.Len(t, first.Banners, 1)

	var sid *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == security.SessionCookieName {
			sid = c
		}
	}
	require.NotNil(t, sid)

	form := url.Values{"banner_type": {"follow"}, "duration": {"7"}, "nonce": {first.Nonce}}
	req := httptest.NewRequest(http.MethodPost, "/ajax/track_dismissal", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(sid)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var dismissed *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == cookies.DismissedName(models.BannerFollow) {
			dismissed = c
		}
	}
	require.NotNil(t, dismissed)

	req = httptest.NewRequest(http.MethodGet, "/banners?page_type=homepage", nil)
	req.AddCookie(dismissed)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Contains(t, rr.Body.String(), `"banners":[]`)

	view := analytics.Get(models.BannerFollow)
	assert.Equal(t, 1, view.Impressions)
	assert.Equal(t, 1, view.Dismissals)
}
