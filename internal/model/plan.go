// internal/model/plan.go
package model

// PlanRequest is the body sent to the plan calculation endpoint.
type PlanRequest struct {
	CsvFileID    string `json:"csvFileId"`
	BatchPattern []int  `json:"batchPattern"`
	StartDate    string `json:"startDate"`
	EmailLimit   *int   `json:"emailLimit"`
}

// CsvFileSummary is the CSV usage block of a plan.
type CsvFileSummary struct {
	TotalEmails    int  `json:"totalEmails"`
	SentCount      int  `json:"sentCount"`
	RemainingCount int  `json:"remainingCount"`
	EmailsToUse    *int `json:"emailsToUse,omitempty"`
}

// PlanEntry is one dated batch in a plan.
type PlanEntry struct {
	Day          int    `json:"day"`
	CampaignName string `json:"campaignName"`
	BatchSize    int    `json:"batchSize"`
}

// CampaignPlan is computed by the backend; the client never edits it.
type CampaignPlan struct {
	CsvFile       CsvFileSummary `json:"csvFile"`
	TotalDays     int            `json:"totalDays"`
	AveragePerDay float64        `json:"averagePerDay"`
	Campaigns     []PlanEntry    `json:"campaigns"`
}

// NumberOfCampaigns returns how many dated batches the plan holds.
func (p *CampaignPlan) NumberOfCampaigns() int {
	if p == nil {
		return 0
	}
	return len(p.Campaigns)
}
