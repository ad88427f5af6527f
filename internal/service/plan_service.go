// internal/service/plan_service.go
package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
	"github.com/unclebandit/campaign-admin/internal/model"
)

const (
	DefaultBatchSize = 1500
	MinBatchSize     = 1
	MaxBatchSize     = 5000

	planFailedMessage  = "Failed to calculate campaign plan"
	planOutdatedNotice = "Plan is out of date. Please recalculate."
)

// PlanInputs are the four form fields the preview tracks.
type PlanInputs struct {
	SelectedCsv   string `json:"csvFileId"`
	BatchSize     int    `json:"batchSize"`
	ScheduledDate string `json:"scheduledDate"`
	EmailLimit    string `json:"emailLimit"`
}

// PlanResult is what a recalculation produced.
type PlanResult struct {
	Plan *model.CampaignPlan `json:"plan"`
	// Requested is false when inputs were incomplete and nothing was sent.
	Requested bool `json:"requested"`
	// AnchoredToNow means no scheduled date was set and the backend planned
	// from the current time. The submitted dates will differ.
	AnchoredToNow bool           `json:"anchoredToNow"`
	Notices       []model.Notice `json:"notices,omitempty"`
}

// PlanPreview keeps the last good plan for one form.
type PlanPreview struct {
	API      CampaignAPI
	Now      func() time.Time
	Location *time.Location
	Logger   *zap.Logger

	mu   sync.Mutex
	plan *model.CampaignPlan

	// inputs the plan was calculated for, batch size defaulted
	inputs PlanInputs
}

func NewPlanPreview(api CampaignAPI, logger *zap.Logger) *PlanPreview {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanPreview{API: api, Now: time.Now, Location: time.UTC, Logger: logger.Named("plan")}
}

// Plan returns the plan currently on display, possibly stale.
func (p *PlanPreview) Plan() *model.CampaignPlan {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plan
}

// PlanFor returns the plan on display when it was calculated for the
// form's CSV, batch size and email limit. A blank CSV or missing plan is
// left for Validate to report.
func (p *PlanPreview) PlanFor(form BatchForm) (*model.CampaignPlan, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.plan == nil || strings.TrimSpace(form.SelectedCsv) == "" {
		return p.plan, nil
	}
	batchSize := form.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	if form.SelectedCsv != p.inputs.SelectedCsv ||
		batchSize != p.inputs.BatchSize ||
		!sameLimit(ParseEmailLimit(form.EmailLimit), ParseEmailLimit(p.inputs.EmailLimit)) {
		return nil, appErrors.NewValidation("plan", planOutdatedNotice)
	}
	return p.plan, nil
}

func sameLimit(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ClampBatchSize applies the form's [1,5000] bounds. The request path does
// not call it.
func ClampBatchSize(n int) int {
	if n < MinBatchSize {
		return MinBatchSize
	}
	if n > MaxBatchSize {
		return MaxBatchSize
	}
	return n
}

// ParseEmailLimit returns nil for blank or non-numeric input.
func ParseEmailLimit(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// BuildPlanRequest turns form inputs into the calculate-plan body.
func (p *PlanPreview) BuildPlanRequest(in PlanInputs) (model.PlanRequest, bool, error) {
	batchSize := in.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}

	anchoredToNow := false
	var start time.Time
	if strings.TrimSpace(in.ScheduledDate) == "" {
		start = p.Now()
		anchoredToNow = true
	} else {
		t, err := ParseScheduledDate(in.ScheduledDate, p.Location)
		if err != nil {
			return model.PlanRequest{}, false, appErrors.NewValidation("scheduledDate", "Invalid scheduled date")
		}
		start = t
	}

	return model.PlanRequest{
		CsvFileID:    in.SelectedCsv,
		BatchPattern: []int{batchSize},
		StartDate:    FormatISO(start),
		EmailLimit:   ParseEmailLimit(in.EmailLimit),
	}, anchoredToNow, nil
}

// Recalculate refreshes the plan for the given inputs. On failure the
// previous plan stays in place and an error notice is returned.
func (p *PlanPreview) Recalculate(ctx context.Context, in PlanInputs) (*PlanResult, error) {
	if strings.TrimSpace(in.SelectedCsv) == "" {
		return &PlanResult{Plan: p.Plan()}, nil
	}

	req, anchored, err := p.BuildPlanRequest(in)
	if err != nil {
		return &PlanResult{
			Plan:    p.Plan(),
			Notices: []model.Notice{model.ErrorNotice(appErrors.UserMessage(err, planFailedMessage))},
		}, err
	}

	plan, err := p.API.CalculatePlan(ctx, req)
	if err != nil {
		p.Logger.Warn("calculate plan failed", zap.String("csv_file_id", req.CsvFileID), zap.Error(err))
		return &PlanResult{
			Plan:          p.Plan(),
			Requested:     true,
			AnchoredToNow: anchored,
			Notices:       []model.Notice{model.ErrorNotice(planFailedMessage)},
		}, err
	}

	in.BatchSize = req.BatchPattern[0]
	p.mu.Lock()
	p.plan = plan
	p.inputs = in
	p.mu.Unlock()

	p.Logger.Debug("plan calculated",
		zap.String("csv_file_id", req.CsvFileID),
		zap.Int("campaigns", plan.NumberOfCampaigns()),
		zap.Bool("anchored_to_now", anchored),
	)
	return &PlanResult{Plan: plan, Requested: true, AnchoredToNow: anchored}, nil
}
