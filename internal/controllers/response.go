package controllers

import (
	"net/http"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// ajaxResponse is the envelope of every public POST endpoint.
type ajaxResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	BannerType string `json:"bannerType,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ajaxResponse{Success: false, Message: message})
}

// parseForm caps the body size before reading url-encoded fields.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	return r.ParseForm()
}
