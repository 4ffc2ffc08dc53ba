package inbound

import (
	"context"

	"github.com/agrilink/idgate/internal/pkg/router"
	"github.com/agrilink/idgate/internal/verification/usecase"
)

type uc interface {
	SignupStart(ctx context.Context, in usecase.SignupStartInput) (*usecase.SignupStartOutput, error)
	SignupConfirm(ctx context.Context, in usecase.SignupConfirmInput) (*usecase.SignupConfirmOutput, error)
	OTPResend(ctx context.Context, in usecase.OTPResendInput) error

	LoginOTP(ctx context.Context, in usecase.LoginOTPInput) (*usecase.LoginOTPOutput, error)
	LoginOTPConfirm(ctx context.Context, in usecase.LoginOTPConfirmInput) (*usecase.LoginOTPConfirmOutput, error)
	LoginPassword(ctx context.Context, in usecase.LoginPasswordInput) (*usecase.LoginPasswordOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Signup verification
	r.POST("/api/v1/verification/signup", end.Signup)
	r.POST("/api/v1/verification/signup/confirm", end.SignupConfirm)
	r.POST("/api/v1/verification/otp/resend", end.OTPResend)

	// Login
	r.POST("/api/v1/verification/login/otp", end.LoginOTP)
	r.POST("/api/v1/verification/login/otp/confirm", end.LoginOTPConfirm)
	r.POST("/api/v1/verification/login/password", end.LoginPassword)
}
