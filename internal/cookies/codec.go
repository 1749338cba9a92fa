package cookies

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"signalkit/internal/models"
)

// Prefix is shared by every cookie SignalKit reads or writes.
const Prefix = "signalkit_"

const (
	dismissedPrefix = "signalkit_dismissed_"
	sessionPrefix   = "signalkit_session_"
	dailyPrefix     = "signalkit_daily_"
)

var (
	ErrMalformed    = errors.New("dismissal cookie is malformed")
	ErrMissingField = errors.New("dismissal cookie is missing a required field")
	ErrSignature    = errors.New("dismissal cookie signature mismatch")
	ErrExpired      = errors.New("dismissal cookie expired")
)

func DismissedName(t models.BannerType) string { return dismissedPrefix + string(t) }
func SessionName(t models.BannerType) string   { return sessionPrefix + string(t) }
func DailyName(t models.BannerType) string     { return dailyPrefix + string(t) }

// FrequencyName returns the marker cookie for a frequency gate, or "" for
// FrequencyAlways which uses no cookie.
func FrequencyName(t models.BannerType, f models.Frequency) string {
	switch f {
	case models.FrequencyOncePerSession:
		return SessionName(t)
	case models.FrequencyOncePerDay:
		return DailyName(t)
	}
	return ""
}

type dismissalPayload struct {
	Dismissed *bool   `json:"dismissed"`
	Expiry    *int64  `json:"expiry"`
	Signature *string `json:"signature"`
}

// Dismissal is the verified content of a dismissal cookie.
type Dismissal struct {
	Valid  bool
	Expiry int64
}

// SignDismissal returns hex(HMAC-SHA256(secret, bannerType || expiry)).
func SignDismissal(t models.BannerType, expiry int64, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(string(t) + strconv.FormatInt(expiry, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

func EncodeDismissal(expiry int64, signature string) (string, error) {
	dismissed := true
	raw, err := json.Marshal(dismissalPayload{
		Dismissed: &dismissed,
		Expiry:    &expiry,
		Signature: &signature,
	})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeAndVerify parses a dismissal cookie value and checks it against
// bannerType and secret. Any non-nil error means the cookie must be treated
// as absent and deleted.
func DecodeAndVerify(value string, t models.BannerType, secret []byte, now time.Time) (Dismissal, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return Dismissal{}, ErrMalformed
	}

	var payload dismissalPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Dismissal{}, ErrMalformed
	}
	if payload.Dismissed == nil || !*payload.Dismissed || payload.Expiry == nil || payload.Signature == nil {
		return Dismissal{}, ErrMissingField
	}

	expected := SignDismissal(t, *payload.Expiry, secret)
	if !hmac.Equal([]byte(expected), []byte(*payload.Signature)) {
		return Dismissal{}, ErrSignature
	}
	if now.Unix() > *payload.Expiry {
		return Dismissal{}, ErrExpired
	}

	return Dismissal{Valid: true, Expiry: *payload.Expiry}, nil
}
