// internal/service/batch_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
	"github.com/unclebandit/campaign-admin/internal/model"
)

const DefaultIntervalHours = 24

// CampaignsRoute is where a successful submission navigates.
const CampaignsRoute = "/campaigns"

var allowedIntervals = map[int]bool{1: true, 6: true, 12: true, 24: true, 48: true, 72: true}

// BatchForm is the create-campaign form at submit time.
type BatchForm struct {
	SelectedCsv   string                   `json:"csvFileId"`
	Companies     []model.CompanySelection `json:"companies"`
	ScheduledDate string                   `json:"scheduledDate"`
	BatchSize     int                      `json:"batchSize"`
	IntervalHours int                      `json:"intervalHours"`
	EmailLimit    string                   `json:"emailLimit"`
}

// BatchResult summarises one submission.
type BatchResult struct {
	RunID        string          `json:"runId,omitempty"`
	SuccessCount int             `json:"successCount"`
	FailCount    int             `json:"failCount"`
	Cancelled    bool            `json:"cancelled"`
	AuthExpired  bool            `json:"authExpired"`
	Navigate     string          `json:"navigate,omitempty"`
	Notices      []model.Notice  `json:"notices"`
	Run          *model.BatchRun `json:"-"`
}

// BatchScheduler expands a plan into campaign create calls.
type BatchScheduler struct {
	API       CampaignAPI
	Publisher RunPublisher
	Location  *time.Location
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewBatchScheduler(api CampaignAPI, publisher RunPublisher, logger *zap.Logger) *BatchScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchScheduler{
		API:       api,
		Publisher: publisher,
		Location:  time.UTC,
		Logger:    logger.Named("batch"),
		Now:       time.Now,
	}
}

// Validate runs the submit checks in order and returns the first failure.
func Validate(form BatchForm, plan *model.CampaignPlan) error {
	if strings.TrimSpace(form.SelectedCsv) == "" {
		return appErrors.NewValidation("csvFileId", "Please select a CSV file")
	}
	if len(form.Companies) == 0 {
		return appErrors.NewValidation("companies", "Please select at least one company")
	}
	templates := 0
	for _, c := range form.Companies {
		templates += len(c.TemplateIDs)
	}
	if templates == 0 {
		return appErrors.NewValidation("templateIds", "Please select at least one template")
	}
	if strings.TrimSpace(form.ScheduledDate) == "" {
		return appErrors.NewValidation("scheduledDate", "Please select a scheduled date")
	}
	if plan.NumberOfCampaigns() == 0 {
		return appErrors.NewValidation("plan", "No campaigns to create. Please check your settings.")
	}
	if form.IntervalHours != 0 && !allowedIntervals[form.IntervalHours] {
		return appErrors.NewValidation("intervalHours", "Interval must be 1, 6, 12, 24, 48 or 72 hours")
	}
	return nil
}

// Expand builds the create calls in submission order:
// company, then template, then plan index.
func Expand(form BatchForm, plan *model.CampaignPlan, base time.Time) []model.CreateCampaignRequest {
	interval := form.IntervalHours
	if interval == 0 {
		interval = DefaultIntervalHours
	}
	batchSize := form.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}

	n := plan.NumberOfCampaigns()
	var reqs []model.CreateCampaignRequest
	for _, company := range form.Companies {
		for _, templateID := range company.TemplateIDs {
			for i := 0; i < n; i++ {
				at := base.Add(time.Duration(i*interval) * time.Hour)
				reqs = append(reqs, model.CreateCampaignRequest{
					CsvFileID:        form.SelectedCsv,
					CompanyAccountID: company.CompanyAccountID,
					TemplateID:       templateID,
					BatchSize:        batchSize,
					ScheduledDate:    FormatISO(at),
					CampaignName:     strings.TrimSpace(plan.Campaigns[i].CampaignName),
				})
			}
		}
	}
	return reqs
}

// Submit validates the form and issues every create call one after
// another. A failed create is counted and the loop moves on. The loop
// stops early when ctx is done or the session expires.
func (s *BatchScheduler) Submit(ctx context.Context, form BatchForm, plan *model.CampaignPlan) (*BatchResult, error) {
	if err := Validate(form, plan); err != nil {
		return &BatchResult{Notices: []model.Notice{model.ErrorNotice(err.Error())}}, err
	}

	base, err := ParseScheduledDate(form.ScheduledDate, s.Location)
	if err != nil {
		verr := appErrors.NewValidation("scheduledDate", "Invalid scheduled date")
		return &BatchResult{Notices: []model.Notice{model.ErrorNotice(verr.Error())}}, verr
	}

	interval := form.IntervalHours
	if interval == 0 {
		interval = DefaultIntervalHours
	}
	reqs := Expand(form, plan, base)
	perTemplate := plan.NumberOfCampaigns()

	run := &model.BatchRun{
		ID:            uuid.NewString(),
		CsvFileID:     form.SelectedCsv,
		BatchSize:     reqs[0].BatchSize,
		IntervalHours: interval,
		ScheduledBase: base.UTC(),
		StartedAt:     s.Now().UTC(),
	}
	log := s.Logger.With(zap.String("run_id", run.ID), zap.Int("planned", len(reqs)))
	log.Info("starting batch creation")

	result := &BatchResult{RunID: run.ID, Run: run}
	var authErr error

	for seq, req := range reqs {
		if ctx.Err() != nil {
			result.Cancelled = true
			log.Warn("batch creation cancelled", zap.Int("attempted", seq))
			break
		}

		item := model.BatchItem{
			RunID:            run.ID,
			Seq:              seq,
			CompanyAccountID: req.CompanyAccountID,
			TemplateID:       req.TemplateID,
			PlanIndex:        seq % perTemplate,
			ScheduledDate:    req.ScheduledDate,
			CampaignName:     req.CampaignName,
		}

		if err := s.API.CreateCampaign(ctx, req); err != nil {
			result.FailCount++
			item.Status = model.ItemStatusFailed
			item.LastError = err.Error()
			run.Items = append(run.Items, item)
			log.Warn("campaign create failed",
				zap.String("company_account_id", req.CompanyAccountID),
				zap.String("template_id", req.TemplateID),
				zap.String("scheduled_date", req.ScheduledDate),
				zap.Error(err),
			)
			if appErrors.IsAuthExpired(err) {
				authErr = err
				result.AuthExpired = true
				break
			}
			continue
		}

		result.SuccessCount++
		item.Status = model.ItemStatusCreated
		run.Items = append(run.Items, item)
	}

	run.SuccessCount = result.SuccessCount
	run.FailCount = result.FailCount
	run.Cancelled = result.Cancelled
	run.FinishedAt = s.Now().UTC()

	s.finish(result)
	log.Info("batch creation finished",
		zap.Int("success", result.SuccessCount),
		zap.Int("failed", result.FailCount),
		zap.Bool("cancelled", result.Cancelled),
	)

	if s.Publisher != nil && result.SuccessCount+result.FailCount > 0 {
		// publish with a fresh context so a cancelled submit is still recorded
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Publisher.PublishRun(pubCtx, run); err != nil {
			log.Error("failed to publish batch run", zap.Error(err))
		}
	}

	if authErr != nil {
		return result, authErr
	}
	return result, nil
}

func (s *BatchScheduler) finish(result *BatchResult) {
	if result.AuthExpired {
		result.Notices = append(result.Notices, model.ErrorNotice("Session expired. Please login again."))
		result.Navigate = appErrors.LoginRoute
		return
	}
	if result.SuccessCount > 0 {
		result.Notices = append(result.Notices,
			model.SuccessNotice(fmt.Sprintf("Successfully created %d campaign(s)", result.SuccessCount)))
		if result.FailCount > 0 {
			result.Notices = append(result.Notices,
				model.ErrorNotice(fmt.Sprintf("Failed to create %d campaign(s)", result.FailCount)))
		}
		if !result.Cancelled {
			result.Navigate = CampaignsRoute
		}
		return
	}
	if result.Cancelled && result.FailCount == 0 {
		result.Notices = append(result.Notices, model.ErrorNotice("Campaign creation cancelled"))
		return
	}
	result.Notices = append(result.Notices, model.ErrorNotice("Failed to create campaigns"))
}
