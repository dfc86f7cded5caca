package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/settings"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"quickshow/internal/entities"
)

const (
	// paymentWindow is how long the customer has to settle before the
	// sweeper releases the seats and deletes the booking.
	paymentWindow = 10 * time.Minute

	// checkoutSessionTTL is the lifetime of the gateway's hosted
	// checkout page; the gateway enforces it, not us.
	checkoutSessionTTL = 30 * time.Minute
)

type ShowsRepo interface {
	GetShow(ctx context.Context, id uuid.UUID) (*entities.Show, error)
	OccupySeats(ctx context.Context, showID uuid.UUID, seats []string, userID string) error
}

type BookingsRepo interface {
	Create(ctx context.Context, booking *entities.Booking) (uuid.UUID, error)
	SetPaymentLink(ctx context.Context, id uuid.UUID, link string) error
}

type ExpiryScheduler interface {
	Schedule(ctx context.Context, bookingID uuid.UUID, fireAt time.Time) error
}

type PaymentsService interface {
	CreateCheckoutSession(ctx context.Context, req entities.CheckoutSessionRequest) (*entities.CheckoutSession, error)
}

type TransactionManager interface {
	DoWithSettings(ctx context.Context, s trm.Settings, f func(ctx context.Context) error) error
}

type ReserveSeatsUsecase struct {
	showsRepo      ShowsRepo
	bookingsRepo   BookingsRepo
	scheduler      ExpiryScheduler
	paymentsClient PaymentsService
	trManager      TransactionManager
	defaultOrigin  string
	wakeSweeper    func()
}

func NewReserveSeatsUsecase(
	showsRepo ShowsRepo,
	bookingsRepo BookingsRepo,
	scheduler ExpiryScheduler,
	paymentsClient PaymentsService,
	trManager TransactionManager,
	defaultOrigin string,
	wakeSweeper func(),
) *ReserveSeatsUsecase {
	if wakeSweeper == nil {
		wakeSweeper = func() {}
	}
	return &ReserveSeatsUsecase{
		showsRepo:      showsRepo,
		bookingsRepo:   bookingsRepo,
		scheduler:      scheduler,
		paymentsClient: paymentsClient,
		trManager:      trManager,
		defaultOrigin:  defaultOrigin,
		wakeSweeper:    wakeSweeper,
	}
}

type ReserveRequest struct {
	ShowID    uuid.UUID
	Seats     []string
	UserID    string
	UserEmail string
	// Origin of the booking UI, used to build the checkout return URLs.
	Origin string
}

type ReserveResult struct {
	BookingID  uuid.UUID
	PaymentURL string
}

func WithRetry(attempts int, f func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		var lastErr error
		for i := 0; i < attempts; i++ {
			err := f(ctx)
			if err == nil {
				return nil
			}

			pgErr := &pq.Error{}
			if errors.As(err, &pgErr); pgErr.Code == "40001" {
				log.FromContext(ctx).Warn("serialization failure, retrying, attempt: ", i+1)
				lastErr = err
				continue
			}

			return err
		}
		return lastErr
	}
}

// Reserve holds the requested seats, creates an unpaid booking and hands
// the caller a checkout redirect. The seat occupation, booking row and
// the delayed payment check commit in one transaction; the expiry check
// is therefore in place before the gateway is ever called, so seats held
// by a failed or abandoned checkout always get released.
func (u *ReserveSeatsUsecase) Reserve(ctx context.Context, req ReserveRequest) (*ReserveResult, error) {
	if err := validateSeats(req.Seats); err != nil {
		return nil, err
	}

	var (
		bookingID uuid.UUID
		show      *entities.Show
	)
	err := WithRetry(3, func(ctx context.Context) error {
		return u.trManager.DoWithSettings(
			ctx,
			trmsql.MustSettings(
				settings.Must(settings.WithCancelable(true)),
				trmsql.WithTxOptions(&sql.TxOptions{Isolation: sql.LevelSerializable}),
			),
			func(ctx context.Context) error {
				var err error
				show, err = u.showsRepo.GetShow(ctx, req.ShowID)
				if err != nil {
					return fmt.Errorf("failed to get show: %w", err)
				}
				if !show.IsActive {
					return entities.ErrShowNotFound
				}
				if !show.IsAvailable(req.Seats) {
					return entities.ErrSeatsUnavailable
				}

				if err := u.showsRepo.OccupySeats(ctx, req.ShowID, req.Seats, req.UserID); err != nil {
					return fmt.Errorf("failed to occupy seats: %w", err)
				}

				bookingID, err = u.bookingsRepo.Create(ctx, &entities.Booking{
					UserID:    req.UserID,
					UserEmail: req.UserEmail,
					ShowID:    req.ShowID,
					Seats:     req.Seats,
					Amount:    show.SeatPrice * float64(len(req.Seats)),
				})
				if err != nil {
					return fmt.Errorf("failed to create booking: %w", err)
				}

				return u.scheduler.Schedule(ctx, bookingID, time.Now().Add(paymentWindow))
			},
		)
	})(ctx)
	if err != nil {
		return nil, err
	}

	u.wakeSweeper()

	origin := req.Origin
	if origin == "" {
		origin = u.defaultOrigin
	}

	session, err := u.paymentsClient.CreateCheckoutSession(ctx, entities.CheckoutSessionRequest{
		ItemName:        show.MovieTitle,
		ItemDescription: fmt.Sprintf("%d seat(s) for %s", len(req.Seats), show.MovieTitle),
		UnitAmount:      int64(math.Round(show.SeatPrice * 100)),
		Quantity:        len(req.Seats),
		SuccessURL:      origin + "/loading/my-bookings?status=success",
		CancelURL:       origin + "/my-bookings?status=cancel",
		ExpiresAt:       time.Now().Add(checkoutSessionTTL),
		Metadata: map[string]string{
			"bookingId": bookingID.String(),
		},
		// The gateway may report settlement at the payment-intent level,
		// which does not inherit session metadata.
		PaymentIntentMetadata: map[string]string{
			"bookingId": bookingID.String(),
		},
	})
	if err != nil {
		log.FromContext(ctx).Error("checkout session creation failed, seats stay held until the payment check fires: ", err)
		return nil, fmt.Errorf("failed to create checkout session: %w", entities.ErrGatewayUnavailable)
	}

	if err := u.bookingsRepo.SetPaymentLink(ctx, bookingID, session.URL); err != nil {
		return nil, fmt.Errorf("failed to store payment link: %w", err)
	}

	return &ReserveResult{
		BookingID:  bookingID,
		PaymentURL: session.URL,
	}, nil
}

func validateSeats(seats []string) error {
	if len(seats) == 0 {
		return fmt.Errorf("no seats selected: %w", entities.ErrInvalidSeatSelection)
	}

	seen := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		if seat == "" {
			return fmt.Errorf("empty seat id: %w", entities.ErrInvalidSeatSelection)
		}
		if _, dup := seen[seat]; dup {
			return fmt.Errorf("seat %s selected twice: %w", seat, entities.ErrInvalidSeatSelection)
		}
		seen[seat] = struct{}{}
	}

	return nil
}
