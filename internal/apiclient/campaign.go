package apiclient

import (
	"context"
	"net/http"
	"net/url"

	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
	"github.com/unclebandit/campaign-admin/internal/model"
)

// CalculatePlan asks the backend to split a CSV into dated batches.
func (c *Client) CalculatePlan(ctx context.Context, req model.PlanRequest) (*model.CampaignPlan, error) {
	var plan model.CampaignPlan
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/campaigns/calculate-plan",
		body:     req,
		fallback: "Failed to calculate campaign plan",
		needData: true,
	}, &plan)
	if err != nil {
		return nil, err
	}
	if plan.Campaigns == nil {
		return nil, &appErrors.ErrMalformedResponse{Endpoint: "/campaigns/calculate-plan", Reason: "plan has no campaigns field"}
	}
	return &plan, nil
}

// CreateCampaign schedules one campaign.
func (c *Client) CreateCampaign(ctx context.Context, req model.CreateCampaignRequest) error {
	return c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/campaigns",
		body:     req,
		fallback: "Failed to create campaign",
	}, nil)
}

func (c *Client) ListCsvFiles(ctx context.Context) ([]model.CsvFile, error) {
	var files []model.CsvFile
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/csv-files",
		fallback: "Failed to fetch CSV files",
	}, &files)
	return files, err
}

func (c *Client) ListCompanyAccounts(ctx context.Context) ([]model.CompanyAccount, error) {
	var accounts []model.CompanyAccount
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/company-accounts",
		fallback: "Failed to fetch company accounts",
	}, &accounts)
	return accounts, err
}

// ListTemplates returns the templates of one company account.
func (c *Client) ListTemplates(ctx context.Context, companyAccountID string) ([]model.CampaignTemplate, error) {
	var templates []model.CampaignTemplate
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/campaign-templates?companyAccountId=" + url.QueryEscape(companyAccountID),
		fallback: "Failed to fetch templates",
	}, &templates)
	return templates, err
}
