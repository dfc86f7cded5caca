package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickshow/internal/entities"
	"quickshow/internal/infrastructure/clients"
	"quickshow/internal/interfaces/message/events"
)

type fakeNotifications struct {
	sent []clients.BookingConfirmationMessage
}

func (f *fakeNotifications) SendBookingConfirmation(ctx context.Context, msg clients.BookingConfirmationMessage) error {
	f.sent = append(f.sent, msg)
	return nil
}

type fakeDetailsRepo struct {
	details *entities.BookingDetails
}

func (f *fakeDetailsRepo) GetDetails(ctx context.Context, id uuid.UUID) (*entities.BookingDetails, error) {
	if f.details == nil {
		return nil, entities.ErrBookingNotFound
	}
	return f.details, nil
}

type fakeExpireService struct {
	expired []uuid.UUID
}

func (f *fakeExpireService) Expire(ctx context.Context, bookingID uuid.UUID) error {
	f.expired = append(f.expired, bookingID)
	return nil
}

func TestSendConfirmationHandler(t *testing.T) {
	bookingID := uuid.New()
	startTime := time.Date(2026, time.September, 12, 19, 30, 0, 0, time.UTC)

	notifications := &fakeNotifications{}
	details := &fakeDetailsRepo{details: &entities.BookingDetails{
		Booking: entities.Booking{
			ID:        bookingID,
			UserEmail: "user@example.com",
			Seats:     []string{"A1", "A2"},
			Amount:    25.00,
		},
		MovieTitle:    "Dune",
		ShowStartTime: startTime,
	}}

	handler := events.NewHandler(notifications, details, &fakeExpireService{}).SendConfirmationHandler()

	event := entities.BookingConfirmed_v1{
		Header:    entities.NewEventHeader(),
		BookingID: bookingID,
	}
	require.NoError(t, handler.Handle(context.Background(), &event))

	require.Len(t, notifications.sent, 1)
	msg := notifications.sent[0]
	assert.Equal(t, event.Header.IdempotencyKey, msg.DeduplicationID)
	assert.Equal(t, "user@example.com", msg.Email)
	assert.Equal(t, "Dune", msg.MovieTitle)
	assert.Equal(t, "Saturday, 12 September 2026", msg.ShowDate)
	assert.Equal(t, "19:30", msg.ShowTime)
	assert.Equal(t, []string{"A1", "A2"}, msg.Seats)
	assert.Equal(t, 25.00, msg.Amount)
}

func TestSendConfirmationHandler_MissingBooking(t *testing.T) {
	notifications := &fakeNotifications{}

	handler := events.NewHandler(notifications, &fakeDetailsRepo{}, &fakeExpireService{}).SendConfirmationHandler()

	err := handler.Handle(context.Background(), &entities.BookingConfirmed_v1{
		Header:    entities.NewEventHeader(),
		BookingID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Empty(t, notifications.sent)
}

func TestCheckPaymentHandler(t *testing.T) {
	bookingID := uuid.New()
	expireService := &fakeExpireService{}

	handler := events.NewHandler(&fakeNotifications{}, &fakeDetailsRepo{}, expireService).CheckPaymentHandler()

	err := handler.Handle(context.Background(), &entities.CheckPayment_v1{
		Header:    entities.NewEventHeader(),
		BookingID: bookingID,
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bookingID}, expireService.expired)
}
