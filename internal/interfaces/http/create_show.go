package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"quickshow/internal/entities"
)

type CreateShowRequest struct {
	MovieTitle string    `json:"movieTitle"`
	StartTime  time.Time `json:"startTime"`
	SeatPrice  float64   `json:"seatPrice"`
}

type CreateShowResponse struct {
	ShowID uuid.UUID `json:"showId"`
}

func (s *Server) CreateShowHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var request CreateShowRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	if request.MovieTitle == "" || request.SeatPrice <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Movie title and a positive seat price are required.",
		})
	}

	showID, err := s.showsRepo.CreateShow(ctx, entities.Show{
		MovieTitle: request.MovieTitle,
		StartTime:  request.StartTime,
		SeatPrice:  request.SeatPrice,
		IsActive:   true,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, CreateShowResponse{
		ShowID: showID,
	})
}
