package events

import (
	"context"

	"github.com/google/uuid"

	"quickshow/internal/entities"
	"quickshow/internal/infrastructure/clients"
)

type NotificationsService interface {
	SendBookingConfirmation(ctx context.Context, msg clients.BookingConfirmationMessage) error
}

type BookingDetailsRepository interface {
	GetDetails(ctx context.Context, id uuid.UUID) (*entities.BookingDetails, error)
}

type ExpireBookingService interface {
	Expire(ctx context.Context, bookingID uuid.UUID) error
}

type Handler struct {
	notificationsClient NotificationsService
	bookings            BookingDetailsRepository
	expireService       ExpireBookingService
}

func NewHandler(
	notificationsClient NotificationsService,
	bookings BookingDetailsRepository,
	expireService ExpireBookingService,
) *Handler {
	return &Handler{
		notificationsClient: notificationsClient,
		bookings:            bookings,
		expireService:       expireService,
	}
}
