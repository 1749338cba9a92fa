package services

import (
	"html"
	"net/url"
	"strings"

	"github.com/gookit/validate"
	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cast"

	"signalkit/internal/models"
	"signalkit/internal/providers"
)

const SettingsOptionKey = "signalkit_settings"

type SettingsServiceInterface interface {
	Load() *models.Settings
	Save(settings *models.Settings) error
	Sanitize(form url.Values) *models.Settings
	Reset() (*models.Settings, error)
}

type SettingsService struct {
	store  models.OptionStoreInterface
	logger providers.Logger
	policy *bluemonday.Policy
}

func NewSettingsService(store models.OptionStoreInterface, logger providers.Logger) SettingsServiceInterface {
	return &SettingsService{
		store:  store,
		logger: logger,
		policy: bluemonday.StrictPolicy(),
	}
}

// Load reads the settings record, falling back to defaults for missing
// fields or an unreadable record.
func (ss *SettingsService) Load() *models.Settings {
	settings := models.DefaultSettings()
	if _, ok := ss.store.Get(SettingsOptionKey); ok {
		if !models.GetOption(ss.store, SettingsOptionKey, &settings) {
			ss.logger.Warnf(providers.TypeApp, "Stored settings are unreadable, using defaults")
			settings = models.DefaultSettings()
		}
	}
	settings.Normalize()
	return &settings
}

func (ss *SettingsService) Save(settings *models.Settings) error {
	settings.Normalize()
	return models.SetOption(ss.store, SettingsOptionKey, settings)
}

func (ss *SettingsService) Reset() (*models.Settings, error) {
	settings := models.DefaultSettings()
	if err := ss.Save(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Sanitize converts the flat settings form into a settings record. Every
// field is coerced on its own: bad URLs and colors become empty, bad
// numbers and enum values fall back to the default, and missing fields
// keep their default.
func (ss *SettingsService) Sanitize(form url.Values) *models.Settings {
	def := models.DefaultSettings()
	settings := &models.Settings{
		Follow:    ss.sanitizeBanner(form, "follow_", def.Follow),
		Preferred: ss.sanitizeBanner(form, "preferred_", def.Preferred),
	}
	settings.Follow.ShowEducational = false
	settings.Follow.EducationalText = ""
	settings.Follow.EducationalURL = ""
	return settings
}

func (ss *SettingsService) sanitizeBanner(form url.Values, prefix string, def models.BannerSettings) models.BannerSettings {
	f := formReader{form: form, prefix: prefix, ss: ss}
	return models.BannerSettings{
		Enabled:   f.boolean("enabled", def.Enabled),
		TargetURL: f.url("target_url", def.TargetURL),

		Headline:    f.text("headline", def.Headline),
		Description: f.text("description", def.Description),
		ButtonText:  f.text("button_text", def.ButtonText),

		EducationalText: f.text("educational_text", def.EducationalText),
		EducationalURL:  f.url("educational_url", def.EducationalURL),
		ShowEducational: f.boolean("show_educational", def.ShowEducational),

		PrimaryColor:   f.color("primary_color", def.PrimaryColor),
		SecondaryColor: f.color("secondary_color", def.SecondaryColor),
		AccentColor:    f.color("accent_color", def.AccentColor),
		TextColor:      f.color("text_color", def.TextColor),

		Position:            f.enum("position", def.Position, models.Positions),
		MobilePosition:      f.enum("mobile_position", def.MobilePosition, models.MobilePositions),
		MobileStackOrder:    f.intRange("mobile_stack_order", def.MobileStackOrder, models.StackOrderRange),
		BannerWidth:         f.intRange("banner_width", def.BannerWidth, models.WidthRange),
		BannerPadding:       f.intRange("banner_padding", def.BannerPadding, models.PaddingRange),
		BorderRadius:        f.intRange("border_radius", def.BorderRadius, models.BorderRadiusRange),
		FontSizeTitle:       f.intRange("font_size_title", def.FontSizeTitle, models.FontSizeTitleRange),
		FontSizeDescription: f.intRange("font_size_description", def.FontSizeDescription, models.FontSizeDescriptionRange),
		FontSizeButton:      f.intRange("font_size_button", def.FontSizeButton, models.FontSizeButtonRange),
		Animation:           f.enum("animation", def.Animation, models.Animations),

		MobileEnabled:  f.boolean("mobile_enabled", def.MobileEnabled),
		DesktopEnabled: f.boolean("desktop_enabled", def.DesktopEnabled),

		ShowOnPosts:    f.boolean("show_on_posts", def.ShowOnPosts),
		ShowOnPages:    f.boolean("show_on_pages", def.ShowOnPages),
		ShowOnHomepage: f.boolean("show_on_homepage", def.ShowOnHomepage),
		ShowOnArchive:  f.boolean("show_on_archive", def.ShowOnArchive),

		Frequency:       models.Frequency(f.enum("frequency", string(def.Frequency), models.Frequencies)),
		Dismissible:     f.boolean("dismissible", def.Dismissible),
		DismissDuration: f.intRange("dismiss_duration", def.DismissDuration, models.DismissDurationRange),
	}
}

// SanitizeText strips markup and control whitespace from a single-line
// text value. The result is plain text; escaping happens at render time.
func (ss *SettingsService) SanitizeText(raw string) string {
	clean := html.UnescapeString(ss.policy.Sanitize(raw))
	return strings.Join(strings.Fields(clean), " ")
}

// SanitizeURL returns raw when it is an absolute http(s) URL and "" otherwise.
func SanitizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !validate.IsFullURL(raw) {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

type formReader struct {
	form   url.Values
	prefix string
	ss     *SettingsService
}

func (f formReader) value(name string) (string, bool) {
	vals, ok := f.form[f.prefix+name]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[len(vals)-1], true
}

func (f formReader) text(name, def string) string {
	v, ok := f.value(name)
	if !ok {
		return def
	}
	return f.ss.SanitizeText(v)
}

func (f formReader) url(name, def string) string {
	v, ok := f.value(name)
	if !ok {
		return def
	}
	return SanitizeURL(v)
}

func (f formReader) color(name, def string) string {
	v, ok := f.value(name)
	if !ok {
		return def
	}
	return models.NormalizeHexColor(v)
}

func (f formReader) boolean(name string, def bool) bool {
	v, ok := f.value(name)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "yes":
		return true
	case "off", "no", "":
		return false
	}
	b, err := cast.ToBoolE(strings.TrimSpace(v))
	if err != nil {
		return false
	}
	return b
}

func (f formReader) intRange(name string, def int, r models.IntRange) int {
	v, ok := f.value(name)
	if !ok {
		return def
	}
	n, ok := models.ParseDecimal(v)
	if !ok {
		return def
	}
	return r.Clamp(n)
}

func (f formReader) enum(name, def string, allowed []string) string {
	v, ok := f.value(name)
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return def
}
