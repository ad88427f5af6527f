package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
	"github.com/unclebandit/campaign-admin/internal/model"
	"github.com/unclebandit/campaign-admin/internal/service"
)

var authorized = []string{"admin@example.com", "ops@example.com", "cto@example.com"}

func TestEditGateHappyPath(t *testing.T) {
	api := &MockOTPAPI{validOTP: "123456"}
	g := service.NewEditGate(api, authorized, 0, nil)
	require.Equal(t, service.StateLocked, g.State())
	require.False(t, g.EditMode())

	notices, err := g.RequestOTP(context.Background(), nil, "Admin@Example.com")
	require.NoError(t, err)
	assert.Equal(t, []model.Notice{model.SuccessNotice("OTP sent to admin@example.com")}, notices)
	assert.Equal(t, service.StateOtpRequested, g.State())
	assert.Equal(t, "05:00", g.Countdown().String())

	assert.Equal(t, "12345", g.EnterCode("12-34 5"))
	assert.False(t, g.CanVerify())
	assert.Equal(t, "123456", g.EnterCode("1a2b3c4d5e6f7"))
	assert.True(t, g.CanVerify())

	_, err = g.Verify(context.Background())
	require.NoError(t, err)
	assert.True(t, g.EditMode())
	assert.Equal(t, service.StateUnlocked, g.State())
}

func TestEditGateWrongCodeStaysRequested(t *testing.T) {
	api := &MockOTPAPI{validOTP: "123456"}
	g := service.NewEditGate(api, authorized, 0, nil)
	_, err := g.RequestOTP(context.Background(), nil, "ops@example.com")
	require.NoError(t, err)

	g.EnterCode("000000")
	notices, err := g.Verify(context.Background())
	require.Error(t, err)
	assert.Equal(t, []model.Notice{model.ErrorNotice("Invalid OTP")}, notices)
	assert.Equal(t, service.StateOtpRequested, g.State())
	assert.False(t, g.EditMode())

	g.EnterCode("123456")
	_, err = g.Verify(context.Background())
	require.NoError(t, err)
	assert.True(t, g.EditMode())
}

func TestEditGateVerifyNeedsSixDigits(t *testing.T) {
	api := &MockOTPAPI{validOTP: "123456"}
	g := service.NewEditGate(api, authorized, 0, nil)
	_, err := g.RequestOTP(context.Background(), nil, "ops@example.com")
	require.NoError(t, err)

	g.EnterCode("123")
	_, err = g.Verify(context.Background())
	var vErr *appErrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Empty(t, api.verified)
}

func TestEditGateRejectsUnlistedEmail(t *testing.T) {
	api := &MockOTPAPI{}
	g := service.NewEditGate(api, authorized, 0, nil)

	_, err := g.RequestOTP(context.Background(), nil, "intruder@example.com")
	var vErr *appErrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Empty(t, api.sent)
	assert.Equal(t, service.StateLocked, g.State())
}

func TestEditGateSendFailureStaysLocked(t *testing.T) {
	api := &MockOTPAPI{sendErr: &appErrors.APIError{Status: 429, Message: "Too many requests"}}
	g := service.NewEditGate(api, authorized, 0, nil)

	notices, err := g.RequestOTP(context.Background(), nil, "ops@example.com")
	require.Error(t, err)
	assert.Equal(t, []model.Notice{model.ErrorNotice("Too many requests")}, notices)
	assert.Equal(t, service.StateLocked, g.State())
}

func TestEditGateChangeEmail(t *testing.T) {
	api := &MockOTPAPI{validOTP: "654321"}
	g := service.NewEditGate(api, authorized, 0, nil)
	_, err := g.RequestOTP(context.Background(), nil, "ops@example.com")
	require.NoError(t, err)

	// a second request without changing email is refused
	_, err = g.RequestOTP(context.Background(), nil, "cto@example.com")
	require.Error(t, err)

	g.ChangeEmail()
	st := g.Status()
	assert.Equal(t, service.StateLocked, st.State)
	assert.Empty(t, st.Email)
	assert.Equal(t, "00:00", st.Remaining)

	_, err = g.RequestOTP(context.Background(), nil, "cto@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@example.com", "cto@example.com"}, api.sent)
}

func TestEditGateAuthExpiryIsSurfaced(t *testing.T) {
	api := &MockOTPAPI{verifyFn: func(string, string) error { return appErrors.NewAuthExpired() }}
	g := service.NewEditGate(api, authorized, 0, nil)
	_, err := g.RequestOTP(context.Background(), nil, "ops@example.com")
	require.NoError(t, err)

	g.EnterCode("111111")
	_, err = g.Verify(context.Background())
	assert.True(t, appErrors.IsAuthExpired(err))
	assert.False(t, g.EditMode())
}

func TestCountdownReachesZeroAfterTTLTicks(t *testing.T) {
	var c service.Countdown
	c.Reset(300 * time.Second)
	assert.Equal(t, "05:00", c.String())

	for i := 0; i < 299; i++ {
		c.Tick()
	}
	assert.Equal(t, 1, c.Seconds())
	assert.Equal(t, "00:01", c.String())

	assert.Equal(t, 0, c.Tick())
	// floors at zero
	assert.Equal(t, 0, c.Tick())
}

func TestCountdownRunStopsOnCancel(t *testing.T) {
	var c service.Countdown
	c.Reset(10 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not stop")
	}
}

func TestSanitizeCode(t *testing.T) {
	assert.Equal(t, "", service.SanitizeCode("abc"))
	assert.Equal(t, "123456", service.SanitizeCode(" 123 456 789"))
	assert.Equal(t, "42", service.SanitizeCode("4-2"))
}

func TestEditGateConcurrentSendReachesUpstreamOnce(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	sends := 0
	api := &MockOTPAPI{validOTP: "123456", sendFn: func(email string) error {
		sends++
		close(entered)
		<-release
		return nil
	}}
	g := service.NewEditGate(api, authorized, 0, nil)

	done := make(chan error)
	go func() {
		_, err := g.RequestOTP(context.Background(), nil, "admin@example.com")
		done <- err
	}()
	<-entered

	notices, err := g.RequestOTP(context.Background(), nil, "ops@example.com")
	var vErr *appErrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, []model.Notice{model.ErrorNotice("An OTP is already being sent")}, notices)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, sends)
	assert.Equal(t, service.StateOtpRequested, g.State())
	assert.Equal(t, "admin@example.com", g.Status().Email)
}
