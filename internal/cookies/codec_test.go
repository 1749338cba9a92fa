package cookies

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalkit/internal/models"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func signedCookie(t *testing.T, bt models.BannerType, expiry int64) string {
	t.Helper()
	value, err := EncodeDismissal(expiry, SignDismissal(bt, expiry, testSecret))
	require.NoError(t, err)
	return value
}

func TestCookieNames(t *testing.T) {
	assert.Equal(t, "signalkit_dismissed_follow", DismissedName(models.BannerFollow))
	assert.Equal(t, "signalkit_session_preferred", SessionName(models.BannerPreferred))
	assert.Equal(t, "signalkit_daily_follow", DailyName(models.BannerFollow))
}

func TestFrequencyName(t *testing.T) {
	assert.Equal(t, "", FrequencyName(models.BannerFollow, models.FrequencyAlways))
	assert.Equal(t, "signalkit_session_follow", FrequencyName(models.BannerFollow, models.FrequencyOncePerSession))
	assert.Equal(t, "signalkit_daily_follow", FrequencyName(models.BannerFollow, models.FrequencyOncePerDay))
}

func TestSignDismissal_Deterministic(t *testing.T) {
	a := SignDismissal(models.BannerFollow, 1700000000, testSecret)
	b := SignDismissal(models.BannerFollow, 1700000000, testSecret)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	assert.NotEqual(t, a, SignDismissal(models.BannerPreferred, 1700000000, testSecret))
	assert.NotEqual(t, a, SignDismissal(models.BannerFollow, 1700000001, testSecret))
	assert.NotEqual(t, a, SignDismissal(models.BannerFollow, 1700000000, []byte("another-secret-value")))
}

func TestDecodeAndVerify_RoundTrip(t *testing.T) {
	now := time.Now()
	expiry := now.Add(7 * 24 * time.Hour).Unix()

	d, err := DecodeAndVerify(signedCookie(t, models.BannerFollow, expiry), models.BannerFollow, testSecret, now)
	require.NoError(t, err)
	assert.True(t, d.Valid)
	assert.Equal(t, expiry, d.Expiry)
}

func TestDecodeAndVerify_ExpiryMovedToPast(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour).Unix()

	// Re-signed with the past expiry: signature is fine, expiry is not.
	_, err := DecodeAndVerify(signedCookie(t, models.BannerFollow, past), models.BannerFollow, testSecret, now)
	assert.ErrorIs(t, err, ErrExpired)

	// Expiry rewritten without re-signing.
	sig := SignDismissal(models.BannerFollow, now.Add(time.Hour).Unix(), testSecret)
	forged, err := EncodeDismissal(past, sig)
	require.NoError(t, err)
	_, err = DecodeAndVerify(forged, models.BannerFollow, testSecret, now)
	assert.ErrorIs(t, err, ErrSignature)
}

func TestDecodeAndVerify_ExpiryBoundary(t *testing.T) {
	now := time.Unix(1700000000, 0)
	d, err := DecodeAndVerify(signedCookie(t, models.BannerFollow, now.Unix()), models.BannerFollow, testSecret, now)
	require.NoError(t, err)
	assert.True(t, d.Valid)
}

func TestDecodeAndVerify_WrongBannerType(t *testing.T) {
	now := time.Now()
	value := signedCookie(t, models.BannerFollow, now.Add(time.Hour).Unix())
	_, err := DecodeAndVerify(value, models.BannerPreferred, testSecret, now)
	assert.ErrorIs(t, err, ErrSignature)
}

func TestDecodeAndVerify_WrongSecret(t *testing.T) {
	now := time.Now()
	value := signedCookie(t, models.BannerFollow, now.Add(time.Hour).Unix())
	_, err := DecodeAndVerify(value, models.BannerFollow, []byte("not-the-right-secret!"), now)
	assert.ErrorIs(t, err, ErrSignature)
}

func TestDecodeAndVerify_Malformed(t *testing.T) {
	now := time.Now()
	tests := []string{
		"",
		"%%%not-base64%%%",
		base64.StdEncoding.EncodeToString([]byte("not json")),
		base64.StdEncoding.EncodeToString([]byte("[1,2,3]")),
	}
	for _, value := range tests {
		d, err := DecodeAndVerify(value, models.BannerFollow, testSecret, now)
		assert.Error(t, err, value)
		assert.False(t, d.Valid)
	}
}

func TestDecodeAndVerify_MissingFields(t *testing.T) {
	now := time.Now()
	tests := []string{
		`{}`,
		`{"expiry":9999999999,"signature":"abc"}`,
		`{"dismissed":false,"expiry":9999999999,"signature":"abc"}`,
		`{"dismissed":true,"signature":"abc"}`,
		`{"dismissed":true,"expiry":9999999999}`,
	}
	for _, raw := range tests {
		value := base64.StdEncoding.EncodeToString([]byte(raw))
		_, err := DecodeAndVerify(value, models.BannerFollow, testSecret, now)
		assert.ErrorIs(t, err, ErrMissingField, raw)
	}
}

func TestDecodeAndVerify_AnyTamperedByteIsRejected(t *testing.T) {
	now := time.Now()
	value := signedCookie(t, models.BannerFollow, now.Add(24*time.Hour).Unix())
	raw, err := base64.StdEncoding.DecodeString(value)
	require.NoError(t, err)

	for i := range raw {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[i] ^= 0x01

		d, err := DecodeAndVerify(base64.StdEncoding.EncodeToString(tampered), models.BannerFollow, testSecret, now)
		assert.Error(t, err, "byte %d (%q) tampered", i, raw[i])
		assert.False(t, d.Valid)
	}
}
