package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/agrilink/idgate/internal/pkg/goerror"
	"github.com/agrilink/idgate/internal/pkg/phone"
	"github.com/agrilink/idgate/internal/verification/entity"
	"github.com/agrilink/idgate/internal/verification/outbound/provider"
)

type SignupStartInput struct {
	AccountID   string `validate:"required,nid"`
	Password    string `validate:"required,password"`
	DisplayName string `validate:"required,min=2,max=100"`
	Region      string `validate:"required,max=100"`
	Subregion   string `validate:"required,max=100"`
}

type SignupStartOutput struct {
	Token      string
	Phone      string
	ProviderID string
}

// SignupStart registers a pending identity with the provider, triggers OTP
// delivery and opens a verification session. The password travels only into
// the session and the provider call; it is never echoed back.
func (s *Usecase) SignupStart(ctx context.Context, in SignupStartInput) (*SignupStartOutput, error) {
	ctx, span := s.startSpan(ctx, "SignupStart")
	defer span.End()

	in.AccountID = strings.TrimSpace(in.AccountID)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Region = strings.TrimSpace(in.Region)
	in.Subregion = strings.TrimSpace(in.Subregion)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	_, err := s.repoDB.GetAccountByAccountID(ctx, in.AccountID)
	if err == nil {
		return nil, goerror.NewBusiness("Account is already registered", goerror.CodeInvalidInput)
	}
	if !errors.Is(err, goerror.ErrNotFound) {
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

	canonical, err := phone.Canonicalize(dir.Phone)
	if err != nil {
		slog.ErrorContext(ctx, "directory entry has malformed phone", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	providerID, err := s.provider.CreatePendingIdentity(ctx, provider.PendingIdentity{
		Username:    canonical,
		Password:    in.Password,
		Phone:       canonical,
		DisplayName: in.DisplayName,
		AccountID:   in.AccountID,
	})
	if err != nil {
		slog.WarnContext(ctx, "provider rejected pending identity", "account_id", in.AccountID, "error", err)
		return nil, err
	}

	token, err := s.session.Create(ctx, entity.Session{
		AccountID:   in.AccountID,
		Phone:       canonical,
		DisplayName: in.DisplayName,
		Password:    in.Password,
		Region:      in.Region,
		Subregion:   in.Subregion,
		ProviderID:  providerID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create verification session", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &SignupStartOutput{
		Token:      token,
		Phone:      canonical,
		ProviderID: providerID,
	}, nil
}
