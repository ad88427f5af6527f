// internal/service/edit_gate.go
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
	"github.com/unclebandit/campaign-admin/internal/model"
)

type GateState string

const (
	StateLocked       GateState = "locked"
	StateOtpRequested GateState = "otp_requested"
	StateOtpVerifying GateState = "otp_verifying"
	StateUnlocked     GateState = "unlocked"
)

const (
	OTPLength       = 6
	DefaultOTPTTL   = 300 * time.Second
	otpSendFailed   = "Failed to send OTP"
	otpVerifyFailed = "Invalid OTP"
)

// Countdown is the OTP expiry timer shown to the user. It only tracks
// whole seconds; the server owns the real expiry.
type Countdown struct {
	mu        sync.Mutex
	remaining int
}

func (c *Countdown) Reset(d time.Duration) {
	c.mu.Lock()
	c.remaining = int(d / time.Second)
	c.mu.Unlock()
}

// Tick removes one second and returns what is left.
func (c *Countdown) Tick() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining > 0 {
		c.remaining--
	}
	return c.remaining
}

func (c *Countdown) Seconds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// String renders mm:ss.
func (c *Countdown) String() string {
	s := c.Seconds()
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// Run ticks once a second until zero or ctx is done.
func (c *Countdown) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.Tick() == 0 {
				return
			}
		}
	}
}

// GateStatus is a snapshot for callers that render the gate.
type GateStatus struct {
	State      GateState `json:"state"`
	Email      string    `json:"email,omitempty"`
	Code       string    `json:"code,omitempty"`
	Remaining  string    `json:"remaining"`
	CanVerify  bool      `json:"canVerify"`
	EditMode   bool      `json:"editMode"`
	Authorized []string  `json:"authorizedEmails"`
}

// EditGate unlocks edit mode after an emailed one-time code is verified.
// Unlocked is final for the gate's lifetime.
type EditGate struct {
	API        OTPAPI
	Authorized []string
	TTL        time.Duration
	Logger     *zap.Logger

	mu        sync.Mutex
	state     GateState
	email     string
	code      string
	countdown Countdown
	stopTimer context.CancelFunc
	sending   bool
}

func NewEditGate(api OTPAPI, authorized []string, ttl time.Duration, logger *zap.Logger) *EditGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &EditGate{
		API:        api,
		Authorized: authorized,
		TTL:        ttl,
		Logger:     logger.Named("editgate"),
		state:      StateLocked,
	}
}

func (g *EditGate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// EditMode is the capability flag for add/edit/delete actions.
func (g *EditGate) EditMode() bool {
	return g.State() == StateUnlocked
}

func (g *EditGate) Countdown() *Countdown {
	return &g.countdown
}

func (g *EditGate) Status() GateStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GateStatus{
		State:      g.state,
		Email:      g.email,
		Code:       g.code,
		Remaining:  g.countdown.String(),
		CanVerify:  g.state == StateOtpRequested && len(g.code) == OTPLength,
		EditMode:   g.state == StateUnlocked,
		Authorized: g.Authorized,
	}
}

func (g *EditGate) isAuthorized(email string) bool {
	for _, a := range g.Authorized {
		if strings.EqualFold(a, email) {
			return true
		}
	}
	return false
}

// RequestOTP sends a code to email and starts the countdown. The timer is
// driven in the background until timerCtx is done; pass nil to drive it by
// hand with Countdown().Tick.
func (g *EditGate) RequestOTP(ctx context.Context, timerCtx context.Context, email string) ([]model.Notice, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	g.mu.Lock()
	if g.state == StateUnlocked {
		g.mu.Unlock()
		return nil, nil
	}
	var err error
	switch {
	case g.sending:
		err = appErrors.NewValidation("email", "An OTP is already being sent")
	case g.state != StateLocked:
		err = appErrors.NewValidation("email", "An OTP was already sent. Change email to request a new one.")
	case email == "":
		err = appErrors.NewValidation("email", "Please select an email")
	case !g.isAuthorized(email):
		err = appErrors.NewValidation("email", "Email is not authorized for edit mode")
	}
	if err != nil {
		g.mu.Unlock()
		return []model.Notice{model.ErrorNotice(err.Error())}, err
	}
	// cleared when the send returns
	g.sending = true
	g.mu.Unlock()

	err = g.API.SendOTP(ctx, email)

	g.mu.Lock()
	g.sending = false
	if err != nil {
		g.mu.Unlock()
		g.Logger.Warn("send otp failed", zap.String("email", email), zap.Error(err))
		return []model.Notice{model.ErrorNotice(appErrors.UserMessage(err, otpSendFailed))}, err
	}
	g.state = StateOtpRequested
	g.email = email
	g.code = ""
	g.countdown.Reset(g.TTL)
	g.startTimerLocked(timerCtx)
	g.mu.Unlock()

	g.Logger.Info("otp sent", zap.String("email", email))
	return []model.Notice{model.SuccessNotice("OTP sent to " + email)}, nil
}

func (g *EditGate) startTimerLocked(parent context.Context) {
	if g.stopTimer != nil {
		g.stopTimer()
		g.stopTimer = nil
	}
	if parent == nil {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	g.stopTimer = cancel
	go g.countdown.Run(ctx)
}

// ChangeEmail drops the pending code locally. The server side OTP is left
// as is.
func (g *EditGate) ChangeEmail() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateOtpRequested {
		return
	}
	if g.stopTimer != nil {
		g.stopTimer()
		g.stopTimer = nil
	}
	g.state = StateLocked
	g.email = ""
	g.code = ""
	g.countdown.Reset(0)
}

// SanitizeCode keeps digits only, at most six of them.
func SanitizeCode(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == OTPLength {
				break
			}
		}
	}
	return b.String()
}

// EnterCode stores the sanitized code and returns it.
func (g *EditGate) EnterCode(raw string) string {
	code := SanitizeCode(raw)
	g.mu.Lock()
	g.code = code
	g.mu.Unlock()
	return code
}

func (g *EditGate) CanVerify() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == StateOtpRequested && len(g.code) == OTPLength
}

// Verify checks the entered code with the server and unlocks on success.
func (g *EditGate) Verify(ctx context.Context) ([]model.Notice, error) {
	g.mu.Lock()
	if g.state == StateUnlocked {
		g.mu.Unlock()
		return nil, nil
	}
	if g.state != StateOtpRequested || len(g.code) != OTPLength {
		g.mu.Unlock()
		err := appErrors.NewValidation("otp", "Please enter the 6-digit OTP")
		return []model.Notice{model.ErrorNotice(err.Error())}, err
	}
	g.state = StateOtpVerifying
	email, code := g.email, g.code
	g.mu.Unlock()

	err := g.API.VerifyOTP(ctx, email, code)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.state = StateOtpRequested
		g.Logger.Warn("otp verification failed", zap.String("email", email), zap.Error(err))
		return []model.Notice{model.ErrorNotice(appErrors.UserMessage(err, otpVerifyFailed))}, err
	}

	g.state = StateUnlocked
	g.code = ""
	if g.stopTimer != nil {
		g.stopTimer()
		g.stopTimer = nil
	}
	g.Logger.Info("edit mode unlocked", zap.String("email", email))
	return []model.Notice{model.SuccessNotice("Edit mode enabled")}, nil
}
