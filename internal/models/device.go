package models

import (
	"net/http"
	"strings"
)

var mobileTokens = []string{
	"Mobile",
	"Android",
	"Silk/",
	"Kindle",
	"BlackBerry",
	"Opera Mini",
	"Opera Mobi",
}

// IsMobileRequest sniffs the client hint and the User-Agent the way
// WordPress' wp_is_mobile does. Tablets that advertise a desktop UA count
// as desktop.
func IsMobileRequest(r *http.Request) bool {
	if hint := r.Header.Get("Sec-CH-UA-Mobile"); hint != "" {
		return hint == "?1"
	}
	return IsMobileUserAgent(r.UserAgent())
}

func IsMobileUserAgent(ua string) bool {
	if ua == "" {
		return false
	}
	for _, token := range mobileTokens {
		if strings.Contains(ua, token) {
			return true
		}
	}
	return false
}
