package usecase

import (
	"context"
	"log/slog"

	"github.com/agrilink/idgate/internal/pkg/goerror"
)

type OTPResendInput struct {
	Token string `validate:"required"`
}

// OTPResend triggers a fresh code delivery for an open session. The session
// itself is never mutated; its token and expiry stay exactly as issued.
func (s *Usecase) OTPResend(ctx context.Context, in OTPResendInput) error {
	ctx, span := s.startSpan(ctx, "OTPResend")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	sess, err := s.getSession(ctx, in.Token)
	if err != nil {
		return err
	}

	if err := s.allow(ctx, "otp:resend:"+sess.AccountID); err != nil {
		return err
	}

	// Login sessions carry no password; their identity is already confirmed,
	// so a fresh code means reopening the login challenge. Signup sessions
	// resend through the pending-confirmation channel.
	if sess.Password == "" {
		err = s.provider.BeginLoginChallenge(ctx, sess.Phone)
	} else {
		err = s.provider.ResendCode(ctx, sess.Phone)
	}
	if err != nil {
		slog.WarnContext(ctx, "provider failed to resend code", "account_id", sess.AccountID, "error", err)
		return err
	}

	return nil
}
