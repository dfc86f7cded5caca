package reservation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickshow/internal/application/usecases/reservation"
	"quickshow/internal/entities"
)

type fakeShowsRepo struct {
	show       *entities.Show
	occupyErr  error
	occupied   []string
	occupiedBy string
}

func (f *fakeShowsRepo) GetShow(ctx context.Context, id uuid.UUID) (*entities.Show, error) {
	if f.show == nil {
		return nil, entities.ErrShowNotFound
	}
	return f.show, nil
}

func (f *fakeShowsRepo) OccupySeats(ctx context.Context, showID uuid.UUID, seats []string, userID string) error {
	if f.occupyErr != nil {
		return f.occupyErr
	}
	f.occupied = seats
	f.occupiedBy = userID
	return nil
}

type fakeBookingsRepo struct {
	created     *entities.Booking
	createdID   uuid.UUID
	paymentLink string
}

func (f *fakeBookingsRepo) Create(ctx context.Context, booking *entities.Booking) (uuid.UUID, error) {
	f.created = booking
	f.createdID = uuid.New()
	return f.createdID, nil
}

func (f *fakeBookingsRepo) SetPaymentLink(ctx context.Context, id uuid.UUID, link string) error {
	f.paymentLink = link
	return nil
}

type fakeScheduler struct {
	bookingID uuid.UUID
	fireAt    time.Time
	calls     int
}

func (f *fakeScheduler) Schedule(ctx context.Context, bookingID uuid.UUID, fireAt time.Time) error {
	f.bookingID = bookingID
	f.fireAt = fireAt
	f.calls++
	return nil
}

type fakePayments struct {
	req     entities.CheckoutSessionRequest
	session *entities.CheckoutSession
	err     error
	calls   int
}

func (f *fakePayments) CreateCheckoutSession(ctx context.Context, req entities.CheckoutSessionRequest) (*entities.CheckoutSession, error) {
	f.req = req
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type passthroughTrManager struct{}

func (passthroughTrManager) DoWithSettings(ctx context.Context, _ trm.Settings, f func(ctx context.Context) error) error {
	return f(ctx)
}

func newTestShow() *entities.Show {
	return &entities.Show{
		ID:         uuid.New(),
		MovieTitle: "Dune",
		StartTime:  time.Now().Add(48 * time.Hour),
		SeatPrice:  15.00,
		IsActive:   true,
	}
}

func TestReserve_Success(t *testing.T) {
	show := newTestShow()
	showsRepo := &fakeShowsRepo{show: show}
	bookingsRepo := &fakeBookingsRepo{}
	sched := &fakeScheduler{}
	payments := &fakePayments{session: &entities.CheckoutSession{
		ID:  "cs_123",
		URL: "https://pay.example.com/cs_123",
	}}
	woken := false

	usecase := reservation.NewReserveSeatsUsecase(
		showsRepo, bookingsRepo, sched, payments, passthroughTrManager{},
		"https://quickshow.example.com",
		func() { woken = true },
	)

	result, err := usecase.Reserve(context.Background(), reservation.ReserveRequest{
		ShowID:    show.ID,
		Seats:     []string{"A1", "A2", "A3"},
		UserID:    "user-1",
		UserEmail: "user@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, bookingsRepo.createdID, result.BookingID)
	assert.Equal(t, "https://pay.example.com/cs_123", result.PaymentURL)
	assert.Equal(t, "https://pay.example.com/cs_123", bookingsRepo.paymentLink)

	assert.Equal(t, []string{"A1", "A2", "A3"}, showsRepo.occupied)
	assert.Equal(t, "user-1", showsRepo.occupiedBy)
	assert.Equal(t, 45.00, bookingsRepo.created.Amount)

	// the payment check is scheduled roughly one window ahead
	require.Equal(t, 1, sched.calls)
	assert.Equal(t, bookingsRepo.createdID, sched.bookingID)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), sched.fireAt, 5*time.Second)
	assert.True(t, woken)

	assert.Equal(t, int64(1500), payments.req.UnitAmount)
	assert.Equal(t, 3, payments.req.Quantity)
	assert.Equal(t, bookingsRepo.createdID.String(), payments.req.Metadata["bookingId"])
	assert.Equal(t, bookingsRepo.createdID.String(), payments.req.PaymentIntentMetadata["bookingId"])
	assert.Equal(t, "https://quickshow.example.com/loading/my-bookings?status=success", payments.req.SuccessURL)
}

func TestReserve_InvalidSeatSelection(t *testing.T) {
	usecase := reservation.NewReserveSeatsUsecase(
		&fakeShowsRepo{show: newTestShow()}, &fakeBookingsRepo{}, &fakeScheduler{},
		&fakePayments{}, passthroughTrManager{}, "", nil,
	)

	for name, seats := range map[string][]string{
		"empty":     {},
		"duplicate": {"A1", "A1"},
		"blank id":  {"A1", ""},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := usecase.Reserve(context.Background(), reservation.ReserveRequest{
				ShowID: uuid.New(),
				Seats:  seats,
			})
			assert.ErrorIs(t, err, entities.ErrInvalidSeatSelection)
		})
	}
}

func TestReserve_SeatsTaken(t *testing.T) {
	payments := &fakePayments{}
	usecase := reservation.NewReserveSeatsUsecase(
		&fakeShowsRepo{show: newTestShow(), occupyErr: entities.ErrSeatsUnavailable},
		&fakeBookingsRepo{}, &fakeScheduler{}, payments, passthroughTrManager{}, "", nil,
	)

	_, err := usecase.Reserve(context.Background(), reservation.ReserveRequest{
		ShowID: uuid.New(),
		Seats:  []string{"A1"},
	})
	assert.ErrorIs(t, err, entities.ErrSeatsUnavailable)
	assert.Zero(t, payments.calls)
}

func TestReserve_SeatAlreadyOnLedger(t *testing.T) {
	show := newTestShow()
	show.OccupiedSeats = map[string]string{"A1": "someone-else"}

	showsRepo := &fakeShowsRepo{show: show}
	payments := &fakePayments{}
	usecase := reservation.NewReserveSeatsUsecase(
		showsRepo, &fakeBookingsRepo{}, &fakeScheduler{},
		payments, passthroughTrManager{}, "", nil,
	)

	_, err := usecase.Reserve(context.Background(), reservation.ReserveRequest{
		ShowID: show.ID,
		Seats:  []string{"A1", "A2"},
	})
	assert.ErrorIs(t, err, entities.ErrSeatsUnavailable)

	// fails fast on the ledger snapshot, before attempting the update
	assert.Empty(t, showsRepo.occupied)
	assert.Zero(t, payments.calls)
}

func TestReserve_InactiveShow(t *testing.T) {
	show := newTestShow()
	show.IsActive = false

	usecase := reservation.NewReserveSeatsUsecase(
		&fakeShowsRepo{show: show}, &fakeBookingsRepo{}, &fakeScheduler{},
		&fakePayments{}, passthroughTrManager{}, "", nil,
	)

	_, err := usecase.Reserve(context.Background(), reservation.ReserveRequest{
		ShowID: show.ID,
		Seats:  []string{"A1"},
	})
	assert.ErrorIs(t, err, entities.ErrShowNotFound)
}

func TestReserve_GatewayDown_CheckStaysScheduled(t *testing.T) {
	sched := &fakeScheduler{}
	usecase := reservation.NewReserveSeatsUsecase(
		&fakeShowsRepo{show: newTestShow()}, &fakeBookingsRepo{}, sched,
		&fakePayments{err: errors.New("connection refused")},
		passthroughTrManager{}, "", nil,
	)

	_, err := usecase.Reserve(context.Background(), reservation.ReserveRequest{
		ShowID: uuid.New(),
		Seats:  []string{"A1"},
	})
	assert.ErrorIs(t, err, entities.ErrGatewayUnavailable)

	// the expiry check was committed before the gateway call, so the
	// held seats will still be released
	assert.Equal(t, 1, sched.calls)
}

func TestReserve_OriginOverridesDefault(t *testing.T) {
	payments := &fakePayments{session: &entities.CheckoutSession{URL: "https://pay.example.com/cs_1"}}
	usecase := reservation.NewReserveSeatsUsecase(
		&fakeShowsRepo{show: newTestShow()}, &fakeBookingsRepo{}, &fakeScheduler{},
		payments, passthroughTrManager{}, "https://default.example.com", nil,
	)

	_, err := usecase.Reserve(context.Background(), reservation.ReserveRequest{
		ShowID: uuid.New(),
		Seats:  []string{"A1"},
		Origin: "https://app.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/loading/my-bookings?status=success", payments.req.SuccessURL)
	assert.Equal(t, "https://app.example.com/my-bookings?status=cancel", payments.req.CancelURL)
}
