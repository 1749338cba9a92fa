package services

import (
	"time"

	"signalkit/internal/cookies"
	"signalkit/internal/models"
	"signalkit/internal/structures"
)

// Reasons a banner is hidden, in evaluation order.
const (
	ReasonShown       = "shown"
	ReasonDisabled    = "disabled"
	ReasonDismissed   = "dismissed"
	ReasonDevice      = "device"
	ReasonPageType    = "page_type"
	ReasonFrequency   = "frequency"
	ReasonAlternation = "alternation"
	ReasonNoSettings  = "no_settings"
)

// Decision is the outcome of evaluating the display rules for one banner.
// StaleCookies lists cookies that failed verification; the caller deletes
// them.
type Decision struct {
	Show         bool
	Reason       string
	StaleCookies []string
}

type DisplayRulesServiceInterface interface {
	Evaluate(t models.BannerType, settings *models.Settings, ctx *models.RequestContext) Decision
	ShouldDisplay(t models.BannerType, settings *models.Settings, ctx *models.RequestContext) bool
}

type DisplayRulesService struct {
	secret []byte
	now    func() time.Time
}

func NewDisplayRulesService(conf *structures.Config) DisplayRulesServiceInterface {
	return &DisplayRulesService{
		secret: []byte(conf.Site.Secret),
		now:    time.Now,
	}
}

func (ds *DisplayRulesService) ShouldDisplay(t models.BannerType, settings *models.Settings, ctx *models.RequestContext) bool {
	return ds.Evaluate(t, settings, ctx).Show
}

func (ds *DisplayRulesService) Evaluate(t models.BannerType, settings *models.Settings, ctx *models.RequestContext) Decision {
	if settings == nil || ctx == nil {
		return Decision{Reason: ReasonNoSettings}
	}
	banner := settings.Banner(t)
	if banner == nil {
		return Decision{Reason: ReasonNoSettings}
	}

	if !banner.Enabled {
		return Decision{Reason: ReasonDisabled}
	}

	var stale []string
	if value, ok := ctx.Cookie(cookies.DismissedName(t)); ok {
		d, err := cookies.DecodeAndVerify(value, t, ds.secret, ds.now())
		if err == nil && d.Valid {
			return Decision{Reason: ReasonDismissed}
		}
		stale = append(stale, cookies.DismissedName(t))
	}

	hide := func(reason string) Decision {
		return Decision{Reason: reason, StaleCookies: stale}
	}

	if !deviceAllowed(banner, ctx) {
		return hide(ReasonDevice)
	}
	if !pageTypeAllowed(banner, ctx) {
		return hide(ReasonPageType)
	}
	if !frequencyAllowed(t, banner, ctx) {
		return hide(ReasonFrequency)
	}
	if !alternationAllowed(t, settings, ctx) {
		return hide(ReasonAlternation)
	}

	return Decision{Show: true, Reason: ReasonShown, StaleCookies: stale}
}

// deviceAllowed treats a profile with both device flags off as enabled
// everywhere.
func deviceAllowed(b *models.BannerSettings, ctx *models.RequestContext) bool {
	if !b.MobileEnabled && !b.DesktopEnabled {
		return true
	}
	if ctx.IsMobile {
		return b.MobileEnabled
	}
	return b.DesktopEnabled
}

// pageTypeAllowed treats a profile with no page flags as enabled on every
// page. Unknown pages always pass.
func pageTypeAllowed(b *models.BannerSettings, ctx *models.RequestContext) bool {
	if !b.ShowOnPosts && !b.ShowOnPages && !b.ShowOnHomepage && !b.ShowOnArchive {
		return true
	}
	switch ctx.PageType {
	case models.PageHomepage:
		return b.ShowOnHomepage
	case models.PageSinglePost:
		return b.ShowOnPosts
	case models.PagePage:
		return b.ShowOnPages
	case models.PageArchive:
		return b.ShowOnArchive
	}
	return true
}

func frequencyAllowed(t models.BannerType, b *models.BannerSettings, ctx *models.RequestContext) bool {
	name := cookies.FrequencyName(t, b.Frequency)
	if name == "" {
		return true
	}
	_, seen := ctx.Cookie(name)
	return !seen
}

// alternationAllowed splits single posts between the two profiles when both
// are enabled: even post ids get follow, odd ones preferred.
func alternationAllowed(t models.BannerType, s *models.Settings, ctx *models.RequestContext) bool {
	if ctx.PageType != models.PageSinglePost || !s.Follow.Enabled || !s.Preferred.Enabled {
		return true
	}
	showFollow := ctx.PostID%2 == 0
	if t == models.BannerFollow {
		return showFollow
	}
	return !showFollow
}
