package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/agrilink/idgate/internal/pkg/goerror"
	"github.com/agrilink/idgate/internal/verification/entity"
)

type SignupConfirmInput struct {
	Token string `validate:"required"`
	Code  string `validate:"required,otpcode"`
}

type SignupConfirmOutput struct {
	Account AccountSummary
}

// SignupConfirm consumes the session exactly once: a malformed code leaves
// the session untouched, a provider rejection keeps it for another attempt,
// and only a fully persisted account deletes it.
func (s *Usecase) SignupConfirm(ctx context.Context, in SignupConfirmInput) (*SignupConfirmOutput, error) {
	ctx, span := s.startSpan(ctx, "SignupConfirm")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	sess, err := s.getSession(ctx, in.Token)
	if err != nil {
		return nil, err
	}

	if err := s.provider.ConfirmIdentity(ctx, sess.Phone, in.Code); err != nil {
		slog.WarnContext(ctx, "provider rejected confirmation", "account_id", sess.AccountID, "error", err)
		return nil, err
	}

	now := s.clock.Now()
	account := entity.Account{
		ID:          s.oid.Generate(),
		ProviderID:  sess.ProviderID,
		Username:    sess.Phone,
		AccountID:   sess.AccountID,
		Phone:       sess.Phone,
		DisplayName: sess.DisplayName,
		Region:      sess.Region,
		Subregion:   sess.Subregion,
		Verified:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repoDB.CreateAccount(ctx, account); err != nil {
		if !errors.Is(err, goerror.ErrConflict) {
			slog.ErrorContext(ctx, "account persist failed after confirmed verification, needs reconciliation",
				"account_id", sess.AccountID, "provider_id", sess.ProviderID, "error", err)
			return nil, goerror.NewPersistence(err)
		}

		slog.WarnContext(ctx, "account already persisted, continuing", "account_id", sess.AccountID)
	}

	if err := s.session.Delete(ctx, in.Token); err != nil {
		slog.ErrorContext(ctx, "failed to delete consumed session", "account_id", sess.AccountID, "error", err)
	}

	if err := s.repoMessaging.PublishAccountVerified(ctx, AccountVerifiedEvent{
		AccountID:   account.AccountID,
		ProviderID:  account.ProviderID,
		Phone:       account.Phone,
		DisplayName: account.DisplayName,
		Region:      account.Region,
		Subregion:   account.Subregion,
		VerifiedAt:  now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish account verified event", "account_id", account.AccountID, "error", err)
	}

	return &SignupConfirmOutput{Account: summarize(&account)}, nil
}
