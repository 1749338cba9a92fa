package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"signalkit/internal/cookies"
	"signalkit/internal/structures"
)

const (
	SessionCookieName = "signalkit_sid"
	FormField         = "nonce"
	HeaderName        = "X-SignalKit-Nonce"

	// A token is valid for the tick it was issued in and the one after.
	tickLength = 12 * time.Hour
	action     = "signalkit_nonce"
)

type NonceProviderInterface interface {
	Issue(w http.ResponseWriter, r *http.Request) (string, error)
	Verify(r *http.Request) bool
}

// NonceProvider issues per-session tokens for the public POST endpoints.
// The session id lives in an HttpOnly cookie; the token is an HMAC over
// the id and the current time tick.
type NonceProvider struct {
	secret []byte
	path   string
	domain string
	now    func() time.Time
}

func NewNonceProvider(conf *structures.Config) NonceProviderInterface {
	path := conf.Site.CookiePath
	if path == "" {
		path = "/"
	}
	return &NonceProvider{
		secret: []byte(conf.Site.Secret),
		path:   path,
		domain: conf.Site.CookieDomain,
		now:    time.Now,
	}
}

// Issue returns a token for the caller's session, starting a new session
// when the request has none.
func (n *NonceProvider) Issue(w http.ResponseWriter, r *http.Request) (string, error) {
	sid, ok := sessionID(r)
	if !ok {
		id, err := uuid.NewRandom()
		if err != nil {
			return "", err
		}
		sid = id.String()
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    sid,
			Path:     n.path,
			Domain:   n.domain,
			HttpOnly: true,
			Secure:   cookies.IsSecure(r),
			SameSite: http.SameSiteLaxMode,
		})
	}
	return n.token(sid, n.tick()), nil
}

// Verify reads the token from the form field or header and checks it
// against the session cookie.
func (n *NonceProvider) Verify(r *http.Request) bool {
	sid, ok := sessionID(r)
	if !ok {
		return false
	}
	given := r.Header.Get(HeaderName)
	if given == "" {
		given = r.FormValue(FormField)
	}
	if given == "" {
		return false
	}

	tick := n.tick()
	for _, t := range []int64{tick, tick - 1} {
		if hmac.Equal([]byte(given), []byte(n.token(sid, t))) {
			return true
		}
	}
	return false
}

func (n *NonceProvider) tick() int64 {
	return n.now().Unix() / int64(tickLength.Seconds())
}

func (n *NonceProvider) token(sid string, tick int64) string {
	mac := hmac.New(sha256.New, n.secret)
	mac.Write([]byte(action + "|" + sid + "|" + strconv.FormatInt(tick, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

func sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}
