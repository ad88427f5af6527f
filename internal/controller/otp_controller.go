package controller

import (
	"encoding/json"
	"net/http"

	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
	"github.com/unclebandit/campaign-admin/internal/model"
)

type OTPController struct {
	Workspaces *Workspaces
}

func (c *OTPController) Status(w http.ResponseWriter, r *http.Request) {
	ws := c.Workspaces.Get(tokenFrom(r))
	writeJSON(w, http.StatusOK, ws.Gate.Status())
}

func (c *OTPController) Send(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	token := tokenFrom(r)
	ws := c.Workspaces.Get(token)
	notices, err := ws.Gate.RequestOTP(r.Context(), ws.Context(), body.Email)
	c.respond(w, token, ws, notices, err)
}

func (c *OTPController) Verify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OTP string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	token := tokenFrom(r)
	ws := c.Workspaces.Get(token)
	ws.Gate.EnterCode(body.OTP)
	notices, err := ws.Gate.Verify(r.Context())
	c.respond(w, token, ws, notices, err)
}

func (c *OTPController) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	ws := c.Workspaces.Get(tokenFrom(r))
	ws.Gate.ChangeEmail()
	writeJSON(w, http.StatusOK, map[string]any{"status": ws.Gate.Status()})
}

func (c *OTPController) respond(w http.ResponseWriter, token string, ws *Workspace, notices []model.Notice, err error) {
	if err != nil {
		if appErrors.IsAuthExpired(err) {
			c.Workspaces.Drop(token)
		}
		writeFailure(w, err, notices, map[string]any{"status": ws.Gate.Status()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notices": notices, "status": ws.Gate.Status()})
}

// RequireEditMode guards mutating routes behind the OTP gate.
func (c *OTPController) RequireEditMode(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !c.Workspaces.Get(tokenFrom(r)).Gate.EditMode() {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"notices": []model.Notice{model.ErrorNotice("Edit mode is locked. Verify an OTP first.")},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
