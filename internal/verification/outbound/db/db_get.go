package db

import (
	"context"

	"github.com/agrilink/idgate/internal/verification/entity"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func (s *DB) GetDirectoryEntry(ctx context.Context, accountID string) (_ *entity.DirectoryEntry, err error) {
	ctx, span := s.startSpan(ctx, "GetDirectoryEntry")
	defer func() { s.endSpan(span, err) }()

	var doc directoryDoc
	if err = s.mapError(s.directory.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&doc)); err != nil {
		return nil, err
	}

	return &entity.DirectoryEntry{
		AccountID:   doc.AccountID,
		Phone:       doc.Phone,
		DisplayName: doc.DisplayName,
	}, nil
}

func (s *DB) GetAccountByAccountID(ctx context.Context, accountID string) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByAccountID")
	defer func() { s.endSpan(span, err) }()

	var doc accountDoc
	if err = s.mapError(s.accounts.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&doc)); err != nil {
		return nil, err
	}

	return doc.toEntity(), nil
}

func (doc *accountDoc) toEntity() *entity.Account {
	return &entity.Account{
		ID:          doc.ID,
		ProviderID:  doc.ProviderID,
		Username:    doc.Username,
		AccountID:   doc.AccountID,
		Phone:       doc.Phone,
		DisplayName: doc.DisplayName,
		Region:      doc.Region,
		Subregion:   doc.Subregion,
		Verified:    doc.Verified,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
