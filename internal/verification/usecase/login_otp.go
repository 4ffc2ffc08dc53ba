package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/agrilink/idgate/internal/pkg/goerror"
	"github.com/agrilink/idgate/internal/pkg/phone"
	"github.com/agrilink/idgate/internal/verification/entity"
)

type LoginOTPInput struct {
	AccountID string `validate:"required,nid"`
}

type LoginOTPOutput struct {
	Token string
	Phone string
}

// LoginOTP opens an OTP login attempt for an existing account: it triggers
// code delivery through the provider's login challenge and issues a fresh
// session carrying no password. Both the account record and its directory
// entry must exist; the directory phone is the delivery address.
func (s *Usecase) LoginOTP(ctx context.Context, in LoginOTPInput) (*LoginOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginOTP")
	defer span.End()

	in.AccountID = strings.TrimSpace(in.AccountID)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.repoDB.GetAccountByAccountID(ctx, in.AccountID)
	if err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("Account not found", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo get account", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	dir, err := s.repoDB.GetDirectoryEntry(ctx, in.AccountID)
	if err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("Identity number is not registered", goerror.CodeNotFound)
		}

		slog.ErrorContext(ctx, "failed to repo get directory entry", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	username, err := phone.Canonicalize(dir.Phone)
	if err != nil {
		slog.ErrorContext(ctx, "directory phone malformed", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.allow(ctx, "otp:login:"+in.AccountID); err != nil {
		return nil, err
	}

	identity, err := s.provider.GetIdentity(ctx, username)
	if err != nil {
		slog.WarnContext(ctx, "provider lookup failed", "account_id", in.AccountID, "error", err)
		return nil, err
	}

	if err := s.provider.BeginLoginChallenge(ctx, username); err != nil {
		slog.WarnContext(ctx, "provider failed to open login challenge", "account_id", in.AccountID, "error", err)
		return nil, err
	}

	token, err := s.session.Create(ctx, entity.Session{
		AccountID:   acc.AccountID,
		Phone:       username,
		DisplayName: acc.DisplayName,
		Region:      acc.Region,
		Subregion:   acc.Subregion,
		ProviderID:  identity.ProviderID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create login session", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &LoginOTPOutput{Token: token, Phone: username}, nil
}
