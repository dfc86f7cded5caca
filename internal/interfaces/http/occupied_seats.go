package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"quickshow/internal/entities"
)

type OccupiedSeatsResponse struct {
	Success       bool     `json:"success"`
	OccupiedSeats []string `json:"occupiedSeats"`
}

func (s *Server) OccupiedSeatsHandler(c echo.Context) error {
	showID, err := uuid.Parse(c.Param("show_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Invalid show id.",
		})
	}

	seats, err := s.showsRepo.OccupiedSeats(c.Request().Context(), showID)
	if errors.Is(err, entities.ErrShowNotFound) {
		return c.JSON(http.StatusNotFound, map[string]any{
			"success": false,
			"message": "Show not found.",
		})
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, OccupiedSeatsResponse{
		Success:       true,
		OccupiedSeats: seats,
	})
}
