package apiclient

import (
	"context"
	"net/http"
)

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp,omitempty"`
}

func (c *Client) SendOTP(ctx context.Context, email string) error {
	return c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/otp/send",
		body:     otpRequest{Email: email},
		fallback: "Failed to send OTP",
	}, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) error {
	return c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/otp/verify",
		body:     otpRequest{Email: email, OTP: otp},
		fallback: "Invalid OTP",
	}, nil)
}
