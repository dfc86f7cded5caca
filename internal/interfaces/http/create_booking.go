package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"quickshow/internal/application/usecases/reservation"
	"quickshow/internal/entities"
)

type CreateBookingRequest struct {
	ShowID        uuid.UUID `json:"showId"`
	SelectedSeats []string  `json:"selectedSeats"`
}

type CreateBookingResponse struct {
	Success   bool      `json:"success"`
	URL       string    `json:"url,omitempty"`
	BookingID uuid.UUID `json:"bookingId,omitempty"`
	Message   string    `json:"message,omitempty"`
}

func (s *Server) CreateBookingHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var request CreateBookingRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	caller := identityFrom(c)

	result, err := s.reservationsService.Reserve(ctx, reservation.ReserveRequest{
		ShowID:    request.ShowID,
		Seats:     request.SelectedSeats,
		UserID:    caller.UserID,
		UserEmail: caller.UserEmail,
		Origin:    c.Request().Header.Get("Origin"),
	})
	switch {
	case errors.Is(err, entities.ErrInvalidSeatSelection):
		return c.JSON(http.StatusBadRequest, CreateBookingResponse{
			Success: false,
			Message: "Invalid seat selection.",
		})
	case errors.Is(err, entities.ErrShowNotFound):
		return c.JSON(http.StatusNotFound, CreateBookingResponse{
			Success: false,
			Message: "Show not found.",
		})
	case errors.Is(err, entities.ErrSeatsUnavailable):
		return c.JSON(http.StatusConflict, CreateBookingResponse{
			Success: false,
			Message: "Selected seats are not available.",
		})
	case err != nil:
		return err
	}

	return c.JSON(http.StatusCreated, CreateBookingResponse{
		Success:   true,
		URL:       result.PaymentURL,
		BookingID: result.BookingID,
	})
}
