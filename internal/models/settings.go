package models

import (
	"regexp"
	"slices"
	"strings"
)

type BannerType string

const (
	BannerFollow    BannerType = "follow"
	BannerPreferred BannerType = "preferred"

	// BannerAll selects both profiles in analytics queries.
	BannerAll = "all"
)

// BannerTypes lists the profiles in their canonical order.
var BannerTypes = []BannerType{BannerFollow, BannerPreferred}

func ParseBannerType(s string) (BannerType, bool) {
	switch BannerType(s) {
	case BannerFollow, BannerPreferred:
		return BannerType(s), true
	}
	return "", false
}

type Frequency string

const (
	FrequencyAlways         Frequency = "always"
	FrequencyOncePerSession Frequency = "once_per_session"
	FrequencyOncePerDay     Frequency = "once_per_day"
)

var Frequencies = []string{string(FrequencyAlways), string(FrequencyOncePerSession), string(FrequencyOncePerDay)}

var Positions = []string{"bottom_left", "bottom_right", "bottom_center", "top_left", "top_right", "top_center"}

var MobilePositions = []string{"top", "bottom"}

var Animations = []string{"none", "slide", "fade"}

// IntRange is an inclusive bound for a numeric setting.
type IntRange struct {
	Min int
	Max int
}

func (r IntRange) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

var (
	WidthRange               = IntRange{Min: 280, Max: 500}
	PaddingRange             = IntRange{Min: 8, Max: 32}
	BorderRadiusRange        = IntRange{Min: 0, Max: 32}
	FontSizeTitleRange       = IntRange{Min: 12, Max: 24}
	FontSizeDescriptionRange = IntRange{Min: 10, Max: 20}
	FontSizeButtonRange      = IntRange{Min: 10, Max: 18}
	StackOrderRange          = IntRange{Min: 1, Max: 2}
	DismissDurationRange     = IntRange{Min: 1, Max: 365}
)

var hexColorRe = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// NormalizeHexColor returns the color as "#rrggbb" or "" when it is not a
// six-digit hex value.
func NormalizeHexColor(s string) string {
	s = strings.TrimSpace(s)
	if !hexColorRe.MatchString(s) {
		return ""
	}
	return "#" + strings.ToLower(strings.TrimPrefix(s, "#"))
}

type BannerSettings struct {
	Enabled   bool   `json:"enabled"`
	TargetURL string `json:"target_url"`

	Headline    string `json:"headline"`
	Description string `json:"description"`
	ButtonText  string `json:"button_text"`

	// Educational link, rendered for the preferred profile only.
	EducationalText string `json:"educational_text"`
	EducationalURL  string `json:"educational_url"`
	ShowEducational bool   `json:"show_educational"`

	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	AccentColor    string `json:"accent_color"`
	TextColor      string `json:"text_color"`

	Position            string `json:"position"`
	MobilePosition      string `json:"mobile_position"`
	MobileStackOrder    int    `json:"mobile_stack_order"`
	BannerWidth         int    `json:"banner_width"`
	BannerPadding       int    `json:"banner_padding"`
	BorderRadius        int    `json:"border_radius"`
	FontSizeTitle       int    `json:"font_size_title"`
	FontSizeDescription int    `json:"font_size_description"`
	FontSizeButton      int    `json:"font_size_button"`
	Animation           string `json:"animation"`

	MobileEnabled  bool `json:"mobile_enabled"`
	DesktopEnabled bool `json:"desktop_enabled"`

	ShowOnPosts    bool `json:"show_on_posts"`
	ShowOnPages    bool `json:"show_on_pages"`
	ShowOnHomepage bool `json:"show_on_homepage"`
	ShowOnArchive  bool `json:"show_on_archive"`

	Frequency       Frequency `json:"frequency"`
	Dismissible     bool      `json:"dismissible"`
	DismissDuration int       `json:"dismiss_duration"`
}

// Normalize clamps numeric fields and replaces out-of-set enum and color
// values with the given defaults. Applied to every record read back from
// storage.
func (b *BannerSettings) Normalize(def BannerSettings) {
	b.PrimaryColor = NormalizeHexColor(b.PrimaryColor)
	b.SecondaryColor = NormalizeHexColor(b.SecondaryColor)
	b.AccentColor = NormalizeHexColor(b.AccentColor)
	b.TextColor = NormalizeHexColor(b.TextColor)

	b.Position = oneOf(b.Position, Positions, def.Position)
	b.MobilePosition = oneOf(b.MobilePosition, MobilePositions, def.MobilePosition)
	b.Animation = oneOf(b.Animation, Animations, def.Animation)
	b.Frequency = Frequency(oneOf(string(b.Frequency), Frequencies, string(def.Frequency)))

	b.MobileStackOrder = StackOrderRange.Clamp(b.MobileStackOrder)
	b.BannerWidth = WidthRange.Clamp(b.BannerWidth)
	b.BannerPadding = PaddingRange.Clamp(b.BannerPadding)
	b.BorderRadius = BorderRadiusRange.Clamp(b.BorderRadius)
	b.FontSizeTitle = FontSizeTitleRange.Clamp(b.FontSizeTitle)
	b.FontSizeDescription = FontSizeDescriptionRange.Clamp(b.FontSizeDescription)
	b.FontSizeButton = FontSizeButtonRange.Clamp(b.FontSizeButton)
	b.DismissDuration = DismissDurationRange.Clamp(b.DismissDuration)
}

func oneOf(v string, allowed []string, def string) string {
	if slices.Contains(allowed, v) {
		return v
	}
	return def
}

type Settings struct {
	Follow    BannerSettings `json:"follow"`
	Preferred BannerSettings `json:"preferred"`
}

// Banner returns the profile for t, or nil for an unknown type.
func (s *Settings) Banner(t BannerType) *BannerSettings {
	switch t {
	case BannerFollow:
		return &s.Follow
	case BannerPreferred:
		return &s.Preferred
	}
	return nil
}

func (s *Settings) Normalize() {
	def := DefaultSettings()
	s.Follow.Normalize(def.Follow)
	s.Preferred.Normalize(def.Preferred)
	// The educational link is a preferred-only feature.
	s.Follow.ShowEducational = false
}

func DefaultSettings() Settings {
	return Settings{
		Follow: BannerSettings{
			Enabled:             true,
			Headline:            "Follow [site_name] on Google News",
			Description:         "Get our latest stories in your Google News feed.",
			ButtonText:          "Follow",
			PrimaryColor:        "#4285f4",
			SecondaryColor:      "#ffffff",
			AccentColor:         "#34a853",
			TextColor:           "#202124",
			Position:            "bottom_right",
			MobilePosition:      "bottom",
			MobileStackOrder:    1,
			BannerWidth:         360,
			BannerPadding:       16,
			BorderRadius:        8,
			FontSizeTitle:       16,
			FontSizeDescription: 14,
			FontSizeButton:      14,
			Animation:           "slide",
			MobileEnabled:       true,
			DesktopEnabled:      true,
			ShowOnPosts:         true,
			ShowOnHomepage:      true,
			Frequency:           FrequencyOncePerDay,
			Dismissible:         true,
			DismissDuration:     7,
		},
		Preferred: BannerSettings{
			Enabled:             false,
			Headline:            "Add [site_name] as a preferred source",
			Description:         "See more of our coverage in Google Top Stories.",
			ButtonText:          "Add as preferred",
			EducationalText:     "What is a preferred source?",
			ShowEducational:     true,
			PrimaryColor:        "#1a73e8",
			SecondaryColor:      "#ffffff",
			AccentColor:         "#fbbc04",
			TextColor:           "#202124",
			Position:            "bottom_left",
			MobilePosition:      "bottom",
			MobileStackOrder:    2,
			BannerWidth:         360,
			BannerPadding:       16,
			BorderRadius:        8,
			FontSizeTitle:       16,
			FontSizeDescription: 14,
			FontSizeButton:      14,
			Animation:           "slide",
			MobileEnabled:       true,
			DesktopEnabled:      true,
			ShowOnPosts:         true,
			ShowOnHomepage:      true,
			Frequency:           FrequencyOncePerSession,
			Dismissible:         true,
			DismissDuration:     30,
		},
	}
}
