package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"quickshow/internal/entities"
)

type GetBookingResponse struct {
	Success bool              `json:"success"`
	Booking *entities.Booking `json:"booking,omitempty"`
	Message string            `json:"message,omitempty"`
}

func (s *Server) GetBookingHandler(c echo.Context) error {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, GetBookingResponse{
			Success: false,
			Message: "Invalid booking id.",
		})
	}

	booking, err := s.bookingsRepo.GetByID(c.Request().Context(), bookingID)
	if errors.Is(err, entities.ErrBookingNotFound) {
		return c.JSON(http.StatusNotFound, GetBookingResponse{
			Success: false,
			Message: "Booking not found.",
		})
	}
	if err != nil {
		return err
	}

	// Bookings are private to the user that made them.
	if booking.UserID != identityFrom(c).UserID {
		return c.JSON(http.StatusNotFound, GetBookingResponse{
			Success: false,
			Message: "Booking not found.",
		})
	}

	return c.JSON(http.StatusOK, GetBookingResponse{
		Success: true,
		Booking: booking,
	})
}
