package mq

import (
	"context"
	"encoding/json"

	"github.com/agrilink/idgate/internal/pkg/instrument"
	"github.com/agrilink/idgate/internal/pkg/messaging"
	"github.com/agrilink/idgate/internal/shared/event"
	"github.com/agrilink/idgate/internal/verification/usecase"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishAccountVerified(ctx context.Context, msg usecase.AccountVerifiedEvent) error {
	ctx, span := m.ins.Tracer("verification.outbound.mq").Start(ctx, "PublishAccountVerified")
	defer span.End()

	body, err := json.Marshal(event.AccountVerifiedMessage{
		AccountID:   msg.AccountID,
		ProviderID:  msg.ProviderID,
		Phone:       msg.Phone,
		DisplayName: msg.DisplayName,
		Region:      msg.Region,
		Subregion:   msg.Subregion,
		VerifiedAt:  msg.VerifiedAt.Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if err := m.client.Publish(ctx, event.AccountVerifiedDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(msg.AccountID),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
