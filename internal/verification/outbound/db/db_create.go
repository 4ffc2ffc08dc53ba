package db

import (
	"context"

	"github.com/agrilink/idgate/internal/verification/entity"
)

func (s *DB) CreateAccount(ctx context.Context, account entity.Account) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAccount")
	defer func() { s.endSpan(span, err) }()

	_, err = s.accounts.InsertOne(ctx, accountDoc{
		ID:          account.ID,
		ProviderID:  account.ProviderID,
		Username:    account.Username,
		AccountID:   account.AccountID,
		Phone:       account.Phone,
		DisplayName: account.DisplayName,
		Region:      account.Region,
		Subregion:   account.Subregion,
		Verified:    account.Verified,
		CreatedAt:   account.CreatedAt,
		UpdatedAt:   account.UpdatedAt,
	})

	err = s.mapError(err)
	return err
}
