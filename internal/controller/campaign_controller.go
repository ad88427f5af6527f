// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
	"github.com/unclebandit/campaign-admin/internal/model"
	"github.com/unclebandit/campaign-admin/internal/service"
)

type CampaignController struct {
	Workspaces *Workspaces
	Logger     *zap.Logger
}

// CalculatePlan refreshes the plan preview for the caller's form.
func (c *CampaignController) CalculatePlan(w http.ResponseWriter, r *http.Request) {
	var in service.PlanInputs
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	token := tokenFrom(r)
	ws := c.Workspaces.Get(token)
	res, err := ws.Preview.Recalculate(r.Context(), in)
	if err != nil {
		if appErrors.IsAuthExpired(err) {
			c.Workspaces.Drop(token)
		}
		writeFailure(w, err, res.Notices, map[string]any{"plan": res.Plan})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CreateBatch fans the plan on display out into campaign creates.
func (c *CampaignController) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var form service.BatchForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	token := tokenFrom(r)
	ws := c.Workspaces.Get(token)
	plan, err := ws.Preview.PlanFor(form)
	if err != nil {
		writeFailure(w, err, []model.Notice{model.ErrorNotice(err.Error())}, nil)
		return
	}
	res, err := ws.Scheduler.Submit(r.Context(), form, plan)
	if err != nil {
		if appErrors.IsAuthExpired(err) {
			c.Workspaces.Drop(token)
		}
		writeFailure(w, err, res.Notices, map[string]any{
			"successCount": res.SuccessCount,
			"failCount":    res.FailCount,
		})
		return
	}

	status := http.StatusOK
	if res.SuccessCount == 0 {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, res)
}

func (c *CampaignController) ListCsvFiles(w http.ResponseWriter, r *http.Request) {
	token := tokenFrom(r)
	client := c.Workspaces.Client.WithSession(c.Workspaces.Get(token).Session)
	files, err := client.ListCsvFiles(r.Context())
	c.respondList(w, token, files, err, "Failed to fetch CSV files")
}

func (c *CampaignController) ListCompanyAccounts(w http.ResponseWriter, r *http.Request) {
	token := tokenFrom(r)
	client := c.Workspaces.Client.WithSession(c.Workspaces.Get(token).Session)
	accounts, err := client.ListCompanyAccounts(r.Context())
	c.respondList(w, token, accounts, err, "Failed to fetch company accounts")
}

func (c *CampaignController) ListTemplates(w http.ResponseWriter, r *http.Request) {
	token := tokenFrom(r)
	client := c.Workspaces.Client.WithSession(c.Workspaces.Get(token).Session)
	templates, err := client.ListTemplates(r.Context(), chi.URLParam(r, "id"))
	c.respondList(w, token, templates, err, "Failed to fetch templates")
}

func (c *CampaignController) respondList(w http.ResponseWriter, token string, data any, err error, fallback string) {
	if err != nil {
		if appErrors.IsAuthExpired(err) {
			c.Workspaces.Drop(token)
		}
		c.Logger.Warn("list request failed", zap.Error(err))
		writeFailure(w, err, []model.Notice{model.ErrorNotice(appErrors.UserMessage(err, fallback))}, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}
