package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/agrilink/idgate/internal/pkg/goerror"
)

type LoginOTPConfirmInput struct {
	Token string `validate:"required"`
	Code  string `validate:"required,otpcode"`
}

type LoginOTPConfirmOutput struct {
	Account AccountSummary
}

// LoginOTPConfirm verifies the code for an open login session through the
// provider and consumes the session on success.
func (s *Usecase) LoginOTPConfirm(ctx context.Context, in LoginOTPConfirmInput) (*LoginOTPConfirmOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginOTPConfirm")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	sess, err := s.getSession(ctx, in.Token)
	if err != nil {
		return nil, err
	}

	if err := s.provider.CompleteLoginChallenge(ctx, sess.Phone, in.Code); err != nil {
		slog.WarnContext(ctx, "provider rejected login confirmation", "account_id", sess.AccountID, "error", err)
		return nil, err
	}

	acc, err := s.repoDB.GetAccountByAccountID(ctx, sess.AccountID)
	if err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("Account not found", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo get account", "account_id", sess.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.session.Delete(ctx, in.Token); err != nil {
		slog.ErrorContext(ctx, "failed to delete consumed session", "account_id", sess.AccountID, "error", err)
	}

	return &LoginOTPConfirmOutput{Account: summarize(acc)}, nil
}
