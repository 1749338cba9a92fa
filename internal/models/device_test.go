package models

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMobileUserAgent(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want bool
	}{
		{"empty", "", false},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148", true},
		{"android tablet", "Mozilla/5.0 (Linux; Android 13; SM-X700) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", true},
		{"kindle", "Mozilla/5.0 (Linux; U; en-US) AppleWebKit/528.5+ (KHTML, like Gecko) Version/4.0 Kindle/3.0", true},
		{"opera mini", "Opera/9.80 (J2ME/MIDP; Opera Mini/9.80)", true},
		{"desktop chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", false},
		{"desktop safari", "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 Version/17.0 Safari/605.1.15", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMobileUserAgent(tt.ua))
		})
	}
}

func TestIsMobileRequest_ClientHintWins(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("User-Agent", "Mozilla/5.0 (iPhone) Mobile/15E148")
	r.Header.Set("Sec-CH-UA-Mobile", "?0")
	assert.False(t, IsMobileRequest(r))

	r.Header.Set("Sec-CH-UA-Mobile", "?1")
	assert.True(t, IsMobileRequest(r))

	r.Header.Del("Sec-CH-UA-Mobile")
	assert.True(t, IsMobileRequest(r))
}

func TestParsePageType(t *testing.T) {
	assert.Equal(t, PageHomepage, ParsePageType("front_page"))
	assert.Equal(t, PageSinglePost, ParsePageType("single"))
	assert.Equal(t, PageArchive, ParsePageType("category"))
	assert.Equal(t, PagePage, ParsePageType("page"))
	assert.Equal(t, PageUnknown, ParsePageType("search"))
	assert.Equal(t, PageUnknown, ParsePageType(""))
}
