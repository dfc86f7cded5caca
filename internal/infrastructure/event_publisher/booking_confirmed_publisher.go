package event_publisher

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"quickshow/internal/entities"
	"quickshow/internal/interfaces/message/events"
	"quickshow/internal/interfaces/message/outbox"
)

// OutboxConfirmationPublisher publishes BookingConfirmed through the
// transactional outbox, using the transaction found in the context.
// The settlement usecase calls it inside the same transaction that
// marks the booking paid, which is what makes the confirmation fire
// exactly once per booking.
type OutboxConfirmationPublisher struct {
	db              *sqlx.DB
	getter          *trmsqlx.CtxGetter
	watermillLogger watermill.LoggerAdapter
}

func NewOutboxConfirmationPublisher(
	db *sqlx.DB,
	getter *trmsqlx.CtxGetter,
	watermillLogger watermill.LoggerAdapter,
) *OutboxConfirmationPublisher {
	return &OutboxConfirmationPublisher{
		db:              db,
		getter:          getter,
		watermillLogger: watermillLogger,
	}
}

func (p *OutboxConfirmationPublisher) PublishConfirmed(ctx context.Context, bookingID uuid.UUID) error {
	tr := p.getter.DefaultTrOrDB(ctx, p.db)

	publisher, err := outbox.NewPublisher(tr, p.watermillLogger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}

	eb, err := events.NewEventBus(publisher, p.watermillLogger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}

	return eb.Publish(ctx, entities.BookingConfirmed_v1{
		Header:    entities.NewEventHeader(),
		BookingID: bookingID,
	})
}
