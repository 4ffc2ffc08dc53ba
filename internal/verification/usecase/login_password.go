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

type LoginPasswordInput struct {
	AccountID string `validate:"required,nid"`
	Password  string `validate:"required"`
}

type LoginPasswordOutput struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresIn    int32
	Account      AccountSummary
}

// LoginPassword authenticates directly against the provider with a
// password. Provider rejections are passed through verbatim.
func (s *Usecase) LoginPassword(ctx context.Context, in LoginPasswordInput) (*LoginPasswordOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginPassword")
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

	username := s.resolveUsername(ctx, acc)

	tokens, err := s.provider.PasswordAuthenticate(ctx, username, in.Password)
	if err != nil {
		slog.WarnContext(ctx, "provider rejected password authentication", "account_id", in.AccountID, "error", err)
		return nil, err
	}

	return &LoginPasswordOutput{
		AccessToken:  tokens.AccessToken,
		IDToken:      tokens.IDToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		Account:      summarize(acc),
	}, nil
}

// resolveUsername prefers the canonical directory phone over the username
// stored on the account record; the directory is the fresher source when
// both exist. Password login keeps the stored-username fallback so accounts
// outlive directory edits.
func (s *Usecase) resolveUsername(ctx context.Context, acc *entity.Account) string {
	dir, err := s.repoDB.GetDirectoryEntry(ctx, acc.AccountID)
	if err != nil || dir.Phone == "" {
		if err != nil && !errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "directory lookup failed, using stored username", "account_id", acc.AccountID, "error", err)
		}
		return acc.Username
	}

	canonical, err := phone.Canonicalize(dir.Phone)
	if err != nil {
		slog.WarnContext(ctx, "directory phone malformed, using stored username", "account_id", acc.AccountID, "error", err)
		return acc.Username
	}

	return canonical
}
