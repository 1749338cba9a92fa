package services

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"signalkit/internal/models"
	"signalkit/internal/structures"
)

const siteNameToken = "[site_name]"

var ErrMissingContext = errors.New("banner render skipped: missing settings or request context")

// CSSVar is one custom property on the banner root element.
type CSSVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type BannerPayload struct {
	BannerType      string   `json:"banner_type"`
	Headline        string   `json:"headline"`
	Description     string   `json:"description"`
	ButtonText      string   `json:"button_text"`
	TargetURL       string   `json:"target_url"`
	ShowButton      bool     `json:"show_button"`
	Dismissible     bool     `json:"dismissible"`
	DismissDuration int      `json:"dismiss_duration"`
	ShowEducational bool     `json:"show_educational"`
	EducationalText string   `json:"educational_text,omitempty"`
	EducationalURL  string   `json:"educational_url,omitempty"`
	Mobile          bool     `json:"mobile"`
	Position        string   `json:"position"`
	StackOrder      int      `json:"stack_order"`
	Animation       string   `json:"animation"`
	CSSVars         []CSSVar `json:"css_vars"`
}

type RendererServiceInterface interface {
	Render(t models.BannerType, settings *models.Settings, ctx *models.RequestContext) (*BannerPayload, error)
	RenderHTML(p *BannerPayload) (string, error)
}

type RendererService struct {
	siteName string
	tmpl     *template.Template
}

func NewRendererService(conf *structures.Config) (RendererServiceInterface, error) {
	tmpl, err := template.New("banner").Parse(bannerTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse banner template: %w", err)
	}
	return &RendererService{
		siteName: conf.Site.Name,
		tmpl:     tmpl,
	}, nil
}

func (rs *RendererService) Render(t models.BannerType, settings *models.Settings, ctx *models.RequestContext) (*BannerPayload, error) {
	if settings == nil || ctx == nil {
		return nil, ErrMissingContext
	}
	b := settings.Banner(t)
	if b == nil {
		return nil, fmt.Errorf("%w: unknown banner type %q", ErrMissingContext, t)
	}

	targetURL := SanitizeURL(b.TargetURL)
	p := &BannerPayload{
		BannerType:      string(t),
		Headline:        rs.substitute(b.Headline),
		Description:     rs.substitute(b.Description),
		ButtonText:      b.ButtonText,
		TargetURL:       targetURL,
		ShowButton:      targetURL != "",
		Dismissible:     b.Dismissible,
		DismissDuration: models.DismissDurationRange.Clamp(b.DismissDuration),
		Mobile:          ctx.IsMobile,
		Position:        b.Position,
		StackOrder:      models.StackOrderRange.Clamp(b.MobileStackOrder),
		Animation:       b.Animation,
		CSSVars:         cssVars(b),
	}
	if ctx.IsMobile {
		p.Position = b.MobilePosition
	}

	if t == models.BannerPreferred && b.ShowEducational {
		if eduURL := SanitizeURL(b.EducationalURL); eduURL != "" {
			p.ShowEducational = true
			p.EducationalText = b.EducationalText
			p.EducationalURL = eduURL
		}
	}

	return p, nil
}

func (rs *RendererService) RenderHTML(p *BannerPayload) (string, error) {
	if p == nil {
		return "", ErrMissingContext
	}
	var buf bytes.Buffer
	if err := rs.tmpl.Execute(&buf, templateData{BannerPayload: p, Style: styleAttr(p.CSSVars)}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (rs *RendererService) substitute(s string) string {
	return strings.ReplaceAll(s, siteNameToken, rs.siteName)
}

// cssVars clamps every numeric input and drops empty colors so the theme
// stylesheet defaults apply.
func cssVars(b *models.BannerSettings) []CSSVar {
	vars := make([]CSSVar, 0, 10)
	for _, c := range []struct{ name, value string }{
		{"--signalkit-primary", b.PrimaryColor},
		{"--signalkit-secondary", b.SecondaryColor},
		{"--signalkit-accent", b.AccentColor},
		{"--signalkit-text", b.TextColor},
	} {
		if v := models.NormalizeHexColor(c.value); v != "" {
			vars = append(vars, CSSVar{Name: c.name, Value: v})
		}
	}
	return append(vars,
		CSSVar{Name: "--signalkit-width", Value: px(models.WidthRange.Clamp(b.BannerWidth))},
		CSSVar{Name: "--signalkit-padding", Value: px(models.PaddingRange.Clamp(b.BannerPadding))},
		CSSVar{Name: "--signalkit-radius", Value: px(models.BorderRadiusRange.Clamp(b.BorderRadius))},
		CSSVar{Name: "--signalkit-font-title", Value: px(models.FontSizeTitleRange.Clamp(b.FontSizeTitle))},
		CSSVar{Name: "--signalkit-font-description", Value: px(models.FontSizeDescriptionRange.Clamp(b.FontSizeDescription))},
		CSSVar{Name: "--signalkit-font-button", Value: px(models.FontSizeButtonRange.Clamp(b.FontSizeButton))},
	)
}

func px(n int) string {
	return fmt.Sprintf("%dpx", n)
}

// styleAttr is marked safe: names are constants and values are validated
// hex colors or clamped integers.
func styleAttr(vars []CSSVar) template.CSS {
	parts := make([]string, 0, len(vars))
	for _, v := range vars {
		parts = append(parts, v.Name+": "+v.Value)
	}
	return template.CSS(strings.Join(parts, "; "))
}

type templateData struct {
	*BannerPayload
	Style template.CSS
}

const bannerTemplate = `<div class="signalkit-banner signalkit-banner--{{.BannerType}} signalkit-pos--{{.Position}} signalkit-anim--{{.Animation}}{{if .Mobile}} signalkit-banner--mobile{{end}}" data-banner-type="{{.BannerType}}" data-stack-order="{{.StackOrder}}"{{if .Dismissible}} data-dismiss-duration="{{.DismissDuration}}"{{end}} style="{{.Style}}" role="complementary">
<div class="signalkit-content">
<p class="signalkit-headline">{{.Headline}}</p>
{{- if .Description}}
<p class="signalkit-description">{{.Description}}</p>
{{- end}}
{{- if .ShowEducational}}
<a class="signalkit-educational" href="{{.EducationalURL}}" target="_blank" rel="noopener noreferrer">{{.EducationalText}}</a>
{{- end}}
</div>
{{- if .ShowButton}}
<a class="signalkit-button" href="{{.TargetURL}}" target="_blank" rel="noopener noreferrer" data-action="click">{{.ButtonText}}</a>
{{- else}}
<span class="signalkit-button signalkit-button--placeholder" aria-disabled="true">{{.ButtonText}}</span>
{{- end}}
{{- if .Dismissible}}
<button type="button" class="signalkit-dismiss" data-action="dismiss" aria-label="Dismiss">&times;</button>
{{- end}}
</div>`
