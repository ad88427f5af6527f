// internal/model/batch_run.go
package model

import "time"

const (
	ItemStatusCreated = "created"
	ItemStatusFailed  = "failed"
)

// BatchItem records the outcome of one create call in a fan-out.
type BatchItem struct {
	ID               int    `db:"id" json:"id,omitempty"`
	RunID            string `db:"run_id" json:"run_id"`
	Seq              int    `db:"seq" json:"seq"`
	CompanyAccountID string `db:"company_account_id" json:"company_account_id"`
	TemplateID       string `db:"template_id" json:"template_id"`
	PlanIndex        int    `db:"plan_index" json:"plan_index"`
	ScheduledDate    string `db:"scheduled_date" json:"scheduled_date"`
	CampaignName     string `db:"campaign_name" json:"campaign_name,omitempty"`
	Status           string `db:"status" json:"status"`
	LastError        string `db:"last_error" json:"last_error,omitempty"`
}

// BatchRun is the report of one batch creation.
type BatchRun struct {
	ID            string      `db:"id" json:"id"`
	CsvFileID     string      `db:"csv_file_id" json:"csv_file_id"`
	BatchSize     int         `db:"batch_size" json:"batch_size"`
	IntervalHours int         `db:"interval_hours" json:"interval_hours"`
	ScheduledBase time.Time   `db:"scheduled_base" json:"scheduled_base"`
	SuccessCount  int         `db:"success_count" json:"success_count"`
	FailCount     int         `db:"fail_count" json:"fail_count"`
	Cancelled     bool        `db:"cancelled" json:"cancelled"`
	StartedAt     time.Time   `db:"started_at" json:"started_at"`
	FinishedAt    time.Time   `db:"finished_at" json:"finished_at"`
	Items         []BatchItem `json:"items,omitempty"`
}
