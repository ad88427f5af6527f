// internal/service/ports.go
package service

import (
	"context"
	"time"

	"github.com/unclebandit/campaign-admin/internal/model"
)

// CampaignAPI is the part of the backend the campaign flows use.
type CampaignAPI interface {
	CalculatePlan(ctx context.Context, req model.PlanRequest) (*model.CampaignPlan, error)
	CreateCampaign(ctx context.Context, req model.CreateCampaignRequest) error
}

// OTPAPI is the part of the backend the edit gate uses.
type OTPAPI interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
}

// RunPublisher receives finished batch runs.
type RunPublisher interface {
	PublishRun(ctx context.Context, run *model.BatchRun) error
}

// isoMillis matches what the web client sent for dates.
const isoMillis = "2006-01-02T15:04:05.000Z"

// FormatISO renders t in UTC with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseScheduledDate accepts RFC 3339 or a datetime-local value. Values
// without an offset are read in loc.
func ParseScheduledDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
