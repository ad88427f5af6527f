package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/campaign-admin/internal/apiclient"
	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
	"github.com/unclebandit/campaign-admin/internal/model"
	"github.com/unclebandit/campaign-admin/internal/session"
)

func newClient(t *testing.T, h http.HandlerFunc) (*apiclient.Client, *session.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore("tok", &model.User{ID: "u1"})
	return apiclient.New(srv.URL, 5*time.Second, store, nil), store
}

func TestCalculatePlanDecodesEnvelope(t *testing.T) {
	var got model.PlanRequest
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/campaigns/calculate-plan", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true,"data":{
			"csvFile":{"totalEmails":5000,"sentCount":1000,"remainingCount":4000},
			"totalDays":3,"averagePerDay":1333.3,
			"campaigns":[{"day":1,"campaignName":"Day 1","batchSize":1500},
			             {"day":2,"campaignName":"Day 2","batchSize":1500},
			             {"day":3,"campaignName":"Day 3","batchSize":1000}]}}`))
	})

	limit := 4000
	plan, err := client.CalculatePlan(context.Background(), model.PlanRequest{
		CsvFileID: "csv1", BatchPattern: []int{1500}, StartDate: "2026-01-01T00:00:00.000Z", EmailLimit: &limit,
	})
	require.NoError(t, err)
	assert.Equal(t, "csv1", got.CsvFileID)
	assert.Equal(t, []int{1500}, got.BatchPattern)
	require.NotNil(t, got.EmailLimit)
	assert.Equal(t, 4000, *got.EmailLimit)

	assert.Equal(t, 3, plan.NumberOfCampaigns())
	assert.Equal(t, 4000, plan.CsvFile.RemainingCount)
	assert.Nil(t, plan.CsvFile.EmailsToUse)
	assert.Equal(t, "Day 3", plan.Campaigns[2].CampaignName)
}

func TestCalculatePlanRejectsMissingData(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})
	_, err := client.CalculatePlan(context.Background(), model.PlanRequest{CsvFileID: "x"})
	var malformed *appErrors.ErrMalformedResponse
	require.True(t, errors.As(err, &malformed))
}

func TestCalculatePlanRejectsPlanWithoutCampaigns(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"totalDays":0}}`))
	})
	_, err := client.CalculatePlan(context.Background(), model.PlanRequest{CsvFileID: "x"})
	var malformed *appErrors.ErrMalformedResponse
	require.True(t, errors.As(err, &malformed))
}

func TestUnauthorizedClearsSession(t *testing.T) {
	calls := 0
	client, store := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"jwt expired"}`))
	})

	err := client.SendOTP(context.Background(), "admin@example.com")
	require.True(t, appErrors.IsAuthExpired(err))
	assert.Empty(t, store.Token())
	assert.Nil(t, store.User())

	// with no token nothing is sent
	err = client.VerifyOTP(context.Background(), "admin@example.com", "123456")
	require.True(t, appErrors.IsAuthExpired(err))
	assert.Equal(t, 1, calls)
}

func TestErrorMessageFromBodyOrFallback(t *testing.T) {
	status := http.StatusBadRequest
	body := `{"success":false,"message":"Template not found"}`
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	})

	err := client.CreateCampaign(context.Background(), model.CreateCampaignRequest{CsvFileID: "c"})
	var apiErr *appErrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Template not found", apiErr.Message)

	status = http.StatusInternalServerError
	body = `<html>oops</html>`
	err = client.CreateCampaign(context.Background(), model.CreateCampaignRequest{CsvFileID: "c"})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Failed to create campaign", apiErr.Message)
}

func TestSuccessFalseIsAnError(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"Invalid or expired OTP"}`))
	})
	err := client.VerifyOTP(context.Background(), "a@b.c", "000000")
	assert.Equal(t, "Invalid or expired OTP", appErrors.UserMessage(err, "Invalid OTP"))
}

func TestListTemplatesQuery(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/campaign-templates", r.URL.Path)
		assert.Equal(t, "co 1", r.URL.Query().Get("companyAccountId"))
		w.Write([]byte(`{"data":[{"_id":"t1","name":"Welcome","companyAccountId":"co 1"}]}`))
	})
	templates, err := client.ListTemplates(context.Background(), "co 1")
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "t1", templates[0].ID)
}

func TestSendOTPBody(t *testing.T) {
	var body map[string]string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/otp/send", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"success":true,"message":"OTP sent"}`))
	})
	require.NoError(t, client.SendOTP(context.Background(), "admin@example.com"))
	assert.Equal(t, map[string]string{"email": "admin@example.com"}, body)
}

func TestNoTokenSendsNothing(t *testing.T) {
	hit := false
	client, store := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		hit = true
	})
	require.NoError(t, store.Clear())

	_, err := client.ListCsvFiles(context.Background())
	assert.True(t, appErrors.IsAuthExpired(err))
	assert.False(t, hit)
}
