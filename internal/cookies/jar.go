package cookies

import (
	"net/http"
	"strings"
	"time"

	"signalkit/internal/models"
	"signalkit/internal/structures"
)

const dailyLifetime = 24 * time.Hour

// Jar writes and clears the banner cookies with the attributes shared by
// every SignalKit cookie.
type Jar struct {
	path   string
	domain string
	secret []byte
	now    func() time.Time
}

func NewJar(conf *structures.Config) *Jar {
	path := conf.Site.CookiePath
	if path == "" {
		path = "/"
	}
	return &Jar{
		path:   path,
		domain: conf.Site.CookieDomain,
		secret: []byte(conf.Site.Secret),
		now:    time.Now,
	}
}

// SetDismissal writes a signed dismissal cookie for t that expires after
// days and returns the expiry timestamp.
func (j *Jar) SetDismissal(w http.ResponseWriter, r *http.Request, t models.BannerType, days int) (int64, error) {
	lifetime := time.Duration(days) * 24 * time.Hour
	expires := j.now().Add(lifetime)
	expiry := expires.Unix()

	value, err := EncodeDismissal(expiry, SignDismissal(t, expiry, j.secret))
	if err != nil {
		return 0, err
	}

	c := j.cookie(r, DismissedName(t), value)
	c.Expires = expires
	c.MaxAge = int(lifetime.Seconds())
	http.SetCookie(w, c)
	return expiry, nil
}

// SetFrequency marks t as shown for the window of f. FrequencyAlways
// writes nothing.
func (j *Jar) SetFrequency(w http.ResponseWriter, r *http.Request, t models.BannerType, f models.Frequency) {
	switch f {
	case models.FrequencyOncePerSession:
		http.SetCookie(w, j.cookie(r, SessionName(t), "1"))
	case models.FrequencyOncePerDay:
		c := j.cookie(r, DailyName(t), "1")
		c.Expires = j.now().Add(dailyLifetime)
		c.MaxAge = int(dailyLifetime.Seconds())
		http.SetCookie(w, c)
	}
}

func (j *Jar) Delete(w http.ResponseWriter, r *http.Request, name string) {
	c := j.cookie(r, name, "")
	c.Expires = time.Unix(0, 0)
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// Verify checks a dismissal cookie value with the jar's secret and clock.
func (j *Jar) Verify(value string, t models.BannerType) (Dismissal, error) {
	return DecodeAndVerify(value, t, j.secret, j.now())
}

func (j *Jar) cookie(r *http.Request, name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     j.path,
		Domain:   j.domain,
		HttpOnly: true,
		Secure:   IsSecure(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// IsSecure reports whether r reached the site over TLS, directly or through
// a terminating proxy.
func IsSecure(r *http.Request) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
