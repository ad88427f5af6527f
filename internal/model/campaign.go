// internal/model/campaign.go
package model

import "time"

// CreateCampaignRequest is the body of one campaign create call.
type CreateCampaignRequest struct {
	CsvFileID        string `json:"csvFileId"`
	CompanyAccountID string `json:"companyAccountId"`
	TemplateID       string `json:"templateId"`
	BatchSize        int    `json:"batchSize"`
	ScheduledDate    string `json:"scheduledDate"`
	CampaignName     string `json:"campaignName,omitempty"`
}

// CompanySelection is one selected company and the templates picked for it.
type CompanySelection struct {
	CompanyAccountID string   `json:"companyAccountId"`
	TemplateIDs      []string `json:"templateIds"`
}

// CompanyAccount is a sending account owned by the backend.
type CompanyAccount struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	IsActive  bool       `json:"isActive"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// CampaignTemplate belongs to one company account.
type CampaignTemplate struct {
	ID               string `json:"_id"`
	Name             string `json:"name"`
	Subject          string `json:"subject"`
	CompanyAccountID string `json:"companyAccountId"`
}

// CsvFile is an uploaded recipient list.
type CsvFile struct {
	ID             string     `json:"_id"`
	Name           string     `json:"name"`
	TotalEmails    int        `json:"totalEmails"`
	SentCount      int        `json:"sentCount"`
	RemainingCount int        `json:"remainingCount"`
	UploadedAt     *time.Time `json:"uploadedAt,omitempty"`
}
