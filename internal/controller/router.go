package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/unclebandit/campaign-admin/internal/handler"
)

// RouterDeps is everything the gateway routes need. Batches may be nil
// when no ledger database is configured.
type RouterDeps struct {
	Campaigns        *CampaignController
	OTP              *OTPController
	Batches          *handler.BatchHandler
	OTPSendPerMinute int
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireBearer)

		// Campaign routes
		r.Get("/csv-files", d.Campaigns.ListCsvFiles)
		r.Get("/company-accounts", d.Campaigns.ListCompanyAccounts)
		r.Get("/company-accounts/{id}/templates", d.Campaigns.ListTemplates)
		r.Post("/campaigns/plan", d.Campaigns.CalculatePlan)
		r.Post("/campaigns/batch", d.Campaigns.CreateBatch)

		// Edit gate
		r.Get("/otp/status", d.OTP.Status)
		r.With(RateLimit(d.OTPSendPerMinute)).Post("/otp/send", d.OTP.Send)
		r.Post("/otp/verify", d.OTP.Verify)
		r.Post("/otp/change-email", d.OTP.ChangeEmail)

		if d.Batches != nil {
			r.Get("/batches", d.Batches.ListBatches)
			r.Get("/batches/{id}", d.Batches.GetBatchWithStats)
			r.With(d.OTP.RequireEditMode).Delete("/batches/{id}", d.Batches.DeleteBatch)
		}
	})
	return r
}
