package appErrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
)

func TestIsAuthExpiredThroughWrap(t *testing.T) {
	err := fmt.Errorf("create campaign: %w", appErrors.NewAuthExpired())
	assert.True(t, appErrors.IsAuthExpired(err))
	assert.False(t, appErrors.IsAuthExpired(errors.New("boom")))

	var expired *appErrors.ErrAuthExpired
	assert.True(t, errors.As(err, &expired))
	assert.Equal(t, "/auth/login", expired.LoginRoute)
}

func TestUserMessage(t *testing.T) {
	fallback := "Failed to calculate campaign plan"

	assert.Equal(t, "CSV not found",
		appErrors.UserMessage(&appErrors.APIError{Status: 404, Message: "CSV not found"}, fallback))
	assert.Equal(t, fallback,
		appErrors.UserMessage(&appErrors.APIError{Status: 500}, fallback))
	assert.Equal(t, fallback, appErrors.UserMessage(errors.New("dial tcp"), fallback))
	assert.Equal(t, "Please select a CSV file",
		appErrors.UserMessage(appErrors.NewValidation("csvFileId", "Please select a CSV file"), fallback))
}
