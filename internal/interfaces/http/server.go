package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quickshow/internal/application/usecases/reservation"
	"quickshow/internal/entities"
)

type ReservationsService interface {
	Reserve(ctx context.Context, req reservation.ReserveRequest) (*reservation.ReserveResult, error)
}

type SettlementsService interface {
	Settle(ctx context.Context, notification entities.PaymentNotification) error
}

type PaymentSessionsService interface {
	SessionsByPaymentIntent(ctx context.Context, paymentIntentID string) ([]entities.CheckoutSession, error)
}

type ShowsRepository interface {
	CreateShow(ctx context.Context, show entities.Show) (uuid.UUID, error)
	OccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error)
}

type BookingsRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Booking, error)
}

type Server struct {
	e *echo.Echo

	reservationsService ReservationsService
	settlementsService  SettlementsService
	paymentSessions     PaymentSessionsService
	showsRepo           ShowsRepository
	bookingsRepo        BookingsRepository

	webhookSecret string
}

func NewServer(
	e *echo.Echo,
	reservationsService ReservationsService,
	settlementsService SettlementsService,
	paymentSessions PaymentSessionsService,
	showsRepo ShowsRepository,
	bookingsRepo BookingsRepository,
	webhookSecret string,
	routerIsRunning func() bool,
) *Server {
	srv := &Server{
		e:                   e,
		reservationsService: reservationsService,
		settlementsService:  settlementsService,
		paymentSessions:     paymentSessions,
		showsRepo:           showsRepo,
		bookingsRepo:        bookingsRepo,
		webhookSecret:       webhookSecret,
	}

	e.POST("/bookings", srv.CreateBookingHandler, RequireIdentity)
	e.GET("/bookings/:booking_id", srv.GetBookingHandler, RequireIdentity)

	e.POST("/shows", srv.CreateShowHandler)
	e.GET("/shows/:show_id/seats", srv.OccupiedSeatsHandler)

	e.POST("/payments/notifications", srv.PaymentNotificationHandler)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/health", func(c echo.Context) error {
		if !routerIsRunning() {
			return c.String(http.StatusServiceUnavailable, "router is not running")
		}
		return c.String(http.StatusOK, "ok")
	})

	// logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log.FromContext(c.Request().Context()).
				WithField("path", c.Request().URL.Path).
				Info("Handling a request")

			err := next(c)

			if err != nil {
				log.FromContext(c.Request().Context()).
					WithField("error", err).
					Error("Request handling error")
			}

			return err
		}
	})
	return srv
}

func (s *Server) Start() error {
	err := s.e.Start(":8080")
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
