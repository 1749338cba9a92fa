package controllers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"signalkit/internal/cookies"
	"signalkit/internal/models"
	"signalkit/internal/security"
	"signalkit/internal/services"
	"signalkit/internal/structures"
	"signalkit/internal/testutil"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	conf      *structures.Config
	store     models.OptionStoreInterface
	logger    *testutil.MockLogger
	metrics   *testutil.MockMetrics
	cache     *testutil.MockCache
	settings  services.SettingsServiceInterface
	analytics services.AnalyticsServiceInterface
	nonces    security.NonceProviderInterface
	jar       *cookies.Jar
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conf := &structures.Config{
		Site: structures.SiteConfig{Name: "Example News", Secret: testSecret, CookiePath: "/"},
	}
	store := models.NewOptionStore()
	logger := &testutil.MockLogger{}
	return &fixture{
		conf:      conf,
		store:     store,
		logger:    logger,
		metrics:   &testutil.MockMetrics{},
		cache:     testutil.NewMockCache(),
		settings:  services.NewSettingsService(store, logger),
		analytics: services.NewAnalyticsService(store),
		nonces:    security.NewNonceProvider(conf),
		jar:       cookies.NewJar(conf),
	}
}

func (f *fixture) bannerController(t *testing.T) *BannerController {
	t.Helper()
	renderer, err := services.NewRendererService(f.conf)
	require.NoError(t, err)
	return NewBannerController(f.logger, f.metrics, f.settings, services.NewDisplayRulesService(f.conf), renderer, f.analytics, f.nonces, f.jar)
}

func (f *fixture) ajaxController() *AjaxController {
	return NewAjaxController(f.logger, f.metrics, f.settings, f.analytics, f.nonces, f.jar)
}

func (f *fixture) adminController() *AdminController {
	return NewAdminController(f.logger, f.settings, f.analytics, f.cache)
}

// saveSettings stores defaults modified by edit.
func (f *fixture) saveSettings(t *testing.T, edit func(s *models.Settings)) {
	t.Helper()
	s := models.DefaultSettings()
	s.Follow.TargetURL = "https://news.google.com/publications/abc"
	s.Preferred.TargetURL = "https://www.google.com/preferences/source?q=example.com"
	if edit != nil {
		edit(&s)
	}
	require.NoError(t, f.settings.Save(&s))
}

// session issues a nonce and returns it with the session cookie.
func (f *fixture) session(t *testing.T) (string, *http.Cookie) {
	t.Helper()
	rr := httptest.NewRecorder()
	token, err := f.nonces.Issue(rr, httptest.NewRequest(http.MethodGet, "/ajax/nonce", nil))
	require.NoError(t, err)
	sid := findCookie(rr.Result().Cookies(), security.SessionCookieName)
	require.NotNil(t, sid)
	return token, sid
}

func formRequest(target string, form url.Values, cookies ...*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func findCookie(list []*http.Cookie, name string) *http.Cookie {
	for _, c := range list {
		if c.Name == name {
			return c
		}
	}
	return nil
}
