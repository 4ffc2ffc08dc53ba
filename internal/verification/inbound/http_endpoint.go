package inbound

import (
	"github.com/agrilink/idgate/internal/pkg/router"
	"github.com/agrilink/idgate/internal/verification/usecase"
)

// HTTPEndpoint exposes HTTP handlers for signup and login verification flows.
type HTTPEndpoint struct {
	uc uc
}

// Signup registers a pending identity and opens an OTP verification session.
// @Summary Start signup verification
// @Description Validates the identity number against the directory, registers a pending identity with the provider and triggers OTP delivery.
// @Tags Verification, Signup
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup payload"
// @Success 200 {object} router.successResponse{data=SignupResponse} "Verification session opened"
// @Failure 400 {object} router.errorResponse "Validation error or account already registered"
// @Failure 404 {object} router.errorResponse "Identity number not in directory"
// @Failure 500 {object} router.errorResponse "Provider or server failure"
// @Router /api/v1/verification/signup [post]
func (h *HTTPEndpoint) Signup(r *router.Request) (any, error) {
	var req SignupRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SignupStart(r.Context(), usecase.SignupStartInput{
		AccountID:   req.AccountID,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Region:      req.Region,
		Subregion:   req.Subregion,
	})
	if err != nil {
		return nil, err
	}

	return SignupResponse{
		SessionToken: resp.Token,
		Phone:        resp.Phone,
		ProviderID:   resp.ProviderID,
	}, nil
}

// SignupConfirm verifies the OTP code and persists the verified account.
// @Summary Confirm signup verification
// @Description Submits the OTP code for an open session. On success the account record is created and the session consumed.
// @Tags Verification, Signup
// @Accept json
// @Produce json
// @Param request body SignupConfirmRequest true "Confirmation payload"
// @Success 200 {object} router.successResponse{data=SignupConfirmResponse} "Account verified"
// @Failure 400 {object} router.errorResponse "Malformed code or invalid/expired session"
// @Failure 401 {object} router.errorResponse "Provider rejected the code"
// @Failure 500 {object} router.errorResponse "Persistence or server failure"
// @Router /api/v1/verification/signup/confirm [post]
func (h *HTTPEndpoint) SignupConfirm(r *router.Request) (any, error) {
	var req SignupConfirmRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SignupConfirm(r.Context(), usecase.SignupConfirmInput{
		Token: req.SessionToken,
		Code:  req.Code,
	})
	if err != nil {
		return nil, err
	}

	return SignupConfirmResponse{Account: toAccountPayload(resp.Account)}, nil
}

// OTPResend triggers delivery of a fresh code for an open session.
// @Summary Resend verification code
// @Description Requests a new OTP for the session. The session itself is not modified.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body OTPResendRequest true "Resend payload"
// @Success 200 {object} router.successResponse{data=OTPResendResponse} "Code resent"
// @Failure 400 {object} router.errorResponse "Invalid or expired session"
// @Failure 429 {object} router.errorResponse "Too many resend attempts"
// @Failure 500 {object} router.errorResponse "Provider or server failure"
// @Router /api/v1/verification/otp/resend [post]
func (h *HTTPEndpoint) OTPResend(r *router.Request) (any, error) {
	var req OTPResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.OTPResend(r.Context(), usecase.OTPResendInput{Token: req.SessionToken}); err != nil {
		return nil, err
	}

	return OTPResendResponse{}, nil
}

// LoginOTP starts an OTP login attempt for an existing account.
// @Summary Start OTP login
// @Description Triggers OTP delivery for a verified account and opens a login session.
// @Tags Verification, Login
// @Accept json
// @Produce json
// @Param request body LoginOTPRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginOTPResponse} "Login session opened"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Failure 429 {object} router.errorResponse "Too many login attempts"
// @Failure 500 {object} router.errorResponse "Provider or server failure"
// @Router /api/v1/verification/login/otp [post]
func (h *HTTPEndpoint) LoginOTP(r *router.Request) (any, error) {
	var req LoginOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.LoginOTP(r.Context(), usecase.LoginOTPInput{AccountID: req.AccountID})
	if err != nil {
		return nil, err
	}

	return LoginOTPResponse{SessionToken: resp.Token, Phone: resp.Phone}, nil
}

// LoginOTPConfirm completes an OTP login attempt.
// @Summary Confirm OTP login
// @Description Submits the OTP code for an open login session and consumes it on success.
// @Tags Verification, Login
// @Accept json
// @Produce json
// @Param request body LoginOTPConfirmRequest true "Confirmation payload"
// @Success 200 {object} router.successResponse{data=LoginOTPConfirmResponse} "Login verified"
// @Failure 400 {object} router.errorResponse "Malformed code or invalid/expired session"
// @Failure 401 {object} router.errorResponse "Provider rejected the code"
// @Failure 500 {object} router.errorResponse "Server failure"
// @Router /api/v1/verification/login/otp/confirm [post]
func (h *HTTPEndpoint) LoginOTPConfirm(r *router.Request) (any, error) {
	var req LoginOTPConfirmRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.LoginOTPConfirm(r.Context(), usecase.LoginOTPConfirmInput{
		Token: req.SessionToken,
		Code:  req.Code,
	})
	if err != nil {
		return nil, err
	}

	return LoginOTPConfirmResponse{Account: toAccountPayload(resp.Account)}, nil
}

// LoginPassword authenticates with a password through the provider.
// @Summary Password login
// @Description Exchanges account ID and password for provider tokens.
// @Tags Verification, Login
// @Accept json
// @Produce json
// @Param request body LoginPasswordRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginPasswordResponse} "Authentication result"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Failure 500 {object} router.errorResponse "Provider or server failure"
// @Router /api/v1/verification/login/password [post]
func (h *HTTPEndpoint) LoginPassword(r *router.Request) (any, error) {
	var req LoginPasswordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.LoginPassword(r.Context(), usecase.LoginPasswordInput{
		AccountID: req.AccountID,
		Password:  req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginPasswordResponse{
		AccessToken:  resp.AccessToken,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		Account:      toAccountPayload(resp.Account),
	}, nil
}

func toAccountPayload(acc usecase.AccountSummary) AccountPayload {
	return AccountPayload{
		AccountID:   acc.AccountID,
		Phone:       acc.Phone,
		DisplayName: acc.DisplayName,
		Region:      acc.Region,
		Subregion:   acc.Subregion,
		Verified:    acc.Verified,
	}
}
