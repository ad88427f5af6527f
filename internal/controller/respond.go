package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
	"github.com/unclebandit/campaign-admin/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeAuthExpired(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"message":  "Session expired. Please login again.",
		"redirect": appErrors.LoginRoute,
	})
}

// statusFor maps a service error to the gateway's HTTP status.
func statusFor(err error) int {
	var (
		vErr   *appErrors.ValidationError
		apiErr *appErrors.APIError
		bad    *appErrors.ErrMalformedResponse
		nf     *appErrors.ErrBatchRunNotFound
	)
	switch {
	case appErrors.IsAuthExpired(err):
		return http.StatusUnauthorized
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	case errors.As(err, &bad):
		return http.StatusBadGateway
	}
	return http.StatusBadGateway
}

// writeFailure answers with notices, or the login redirect on auth expiry.
func writeFailure(w http.ResponseWriter, err error, notices []model.Notice, extra map[string]any) {
	if appErrors.IsAuthExpired(err) {
		writeAuthExpired(w)
		return
	}
	body := map[string]any{"notices": notices}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, statusFor(err), body)
}
