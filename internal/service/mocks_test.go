package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/unclebandit/campaign-admin/internal/model"
)

// MockCampaignAPI records calls and fails the create calls listed in failAt.
type MockCampaignAPI struct {
	mu       sync.Mutex
	plan     *model.CampaignPlan
	planErr  error
	planReqs []model.PlanRequest
	creates  []model.CreateCampaignRequest
	failAt   map[int]error
	onCreate func(n int)
}

func (m *MockCampaignAPI) CalculatePlan(ctx context.Context, req model.PlanRequest) (*model.CampaignPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.planReqs = append(m.planReqs, req)
	if m.planErr != nil {
		return nil, m.planErr
	}
	cp := *m.plan
	cp.Campaigns = append([]model.PlanEntry(nil), m.plan.Campaigns...)
	return &cp, nil
}

func (m *MockCampaignAPI) CreateCampaign(ctx context.Context, req model.CreateCampaignRequest) error {
	m.mu.Lock()
	n := len(m.creates)
	m.creates = append(m.creates, req)
	hook := m.onCreate
	err := m.failAt[n]
	m.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return err
}

func (m *MockCampaignAPI) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.planReqs) + len(m.creates)
}

// MockOTPAPI accepts a single code.
type MockOTPAPI struct {
	sendErr  error
	sendFn   func(email string) error
	validOTP string
	verifyFn func(email, otp string) error
	sent     []string
	verified []string
}

func (m *MockOTPAPI) SendOTP(ctx context.Context, email string) error {
	if m.sendFn != nil {
		return m.sendFn(email)
	}
	m.sent = append(m.sent, email)
	return m.sendErr
}

func (m *MockOTPAPI) VerifyOTP(ctx context.Context, email, otp string) error {
	m.verified = append(m.verified, otp)
	if m.verifyFn != nil {
		return m.verifyFn(email, otp)
	}
	if otp != m.validOTP {
		return errors.New("invalid otp")
	}
	return nil
}

// MockPublisher collects published runs.
type MockPublisher struct {
	mu   sync.Mutex
	runs []*model.BatchRun
}

func (m *MockPublisher) PublishRun(ctx context.Context, run *model.BatchRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func threeDayPlan() *model.CampaignPlan {
	return &model.CampaignPlan{
		CsvFile:       model.CsvFileSummary{TotalEmails: 4000, RemainingCount: 4000},
		TotalDays:     3,
		AveragePerDay: 1333.33,
		Campaigns: []model.PlanEntry{
			{Day: 1, CampaignName: "Spring - Day 1", BatchSize: 1500},
			{Day: 2, CampaignName: "Spring - Day 2", BatchSize: 1500},
			{Day: 3, CampaignName: "", BatchSize: 1000},
		},
	}
}
