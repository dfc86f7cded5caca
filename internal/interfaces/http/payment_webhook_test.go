package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickshow/internal/application/usecases/reservation"
	"quickshow/internal/entities"
	"quickshow/internal/infrastructure/clients"
	quickshowHTTP "quickshow/internal/interfaces/http"
)

const testWebhookSecret = "whsec_test"

type fakeReservations struct {
	result *reservation.ReserveResult
	err    error
	req    reservation.ReserveRequest
}

func (f *fakeReservations) Reserve(ctx context.Context, req reservation.ReserveRequest) (*reservation.ReserveResult, error) {
	f.req = req
	return f.result, f.err
}

type fakeSettlements struct {
	notifications []entities.PaymentNotification
	err           error
}

func (f *fakeSettlements) Settle(ctx context.Context, notification entities.PaymentNotification) error {
	f.notifications = append(f.notifications, notification)
	return f.err
}

type fakePaymentSessions struct {
	sessions []entities.CheckoutSession
	err      error
}

func (f *fakePaymentSessions) SessionsByPaymentIntent(ctx context.Context, paymentIntentID string) ([]entities.CheckoutSession, error) {
	return f.sessions, f.err
}

type fakeShowsRepo struct {
	createdID uuid.UUID
	created   entities.Show
	occupied  []string
	err       error
}

func (f *fakeShowsRepo) CreateShow(ctx context.Context, show entities.Show) (uuid.UUID, error) {
	f.created = show
	return f.createdID, f.err
}

func (f *fakeShowsRepo) OccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error) {
	return f.occupied, f.err
}

type fakeBookingsRepo struct {
	booking *entities.Booking
	err     error
}

func (f *fakeBookingsRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Booking, error) {
	return f.booking, f.err
}

type serverFakes struct {
	reservations *fakeReservations
	settlements  *fakeSettlements
	sessions     *fakePaymentSessions
	shows        *fakeShowsRepo
	bookings     *fakeBookingsRepo
}

func newTestServer(t *testing.T) (*echo.Echo, *serverFakes) {
	t.Helper()

	fakes := &serverFakes{
		reservations: &fakeReservations{},
		settlements:  &fakeSettlements{},
		sessions:     &fakePaymentSessions{},
		shows:        &fakeShowsRepo{createdID: uuid.New()},
		bookings:     &fakeBookingsRepo{},
	}

	e := echo.New()
	quickshowHTTP.NewServer(
		e,
		fakes.reservations,
		fakes.settlements,
		fakes.sessions,
		fakes.shows,
		fakes.bookings,
		testWebhookSecret,
		func() bool { return true },
	)
	return e, fakes
}

func postNotification(e *echo.Echo, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments/notifications", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set(clients.SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func signedNotification(e *echo.Echo, body string) *httptest.ResponseRecorder {
	return postNotification(e, body, clients.SignNotification([]byte(body), testWebhookSecret, time.Now()))
}

func TestPaymentNotification_SessionCompleted(t *testing.T) {
	e, fakes := newTestServer(t)
	bookingID := uuid.New()

	body := `{
		"type": "checkout.session.completed",
		"data": {
			"id": "cs_1",
			"payment_status": "paid",
			"metadata": {"bookingId": "` + bookingID.String() + `"}
		}
	}`

	rec := signedNotification(e, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fakes.settlements.notifications, 1)
	assert.Equal(t, bookingID, fakes.settlements.notifications[0].BookingID)
	assert.True(t, fakes.settlements.notifications[0].Confirmed)
}

func TestPaymentNotification_SessionCompletedUnpaid(t *testing.T) {
	e, fakes := newTestServer(t)
	bookingID := uuid.New()

	body := `{
		"type": "checkout.session.completed",
		"data": {
			"id": "cs_1",
			"payment_status": "unpaid",
			"metadata": {"bookingId": "` + bookingID.String() + `"}
		}
	}`

	rec := signedNotification(e, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fakes.settlements.notifications, 1)
	assert.False(t, fakes.settlements.notifications[0].Confirmed)
}

func TestPaymentNotification_IntentSucceededWithMetadata(t *testing.T) {
	e, fakes := newTestServer(t)
	bookingID := uuid.New()

	body := `{
		"type": "payment_intent.succeeded",
		"data": {
			"id": "pi_1",
			"metadata": {"bookingId": "` + bookingID.String() + `"}
		}
	}`

	rec := signedNotification(e, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fakes.settlements.notifications, 1)
	assert.Equal(t, bookingID, fakes.settlements.notifications[0].BookingID)
	assert.True(t, fakes.settlements.notifications[0].Confirmed)
}

func TestPaymentNotification_IntentSucceededViaSessionLookup(t *testing.T) {
	e, fakes := newTestServer(t)
	bookingID := uuid.New()
	fakes.sessions.sessions = []entities.CheckoutSession{
		{ID: "cs_1", Metadata: map[string]string{"bookingId": bookingID.String()}},
	}

	body := `{
		"type": "payment_intent.succeeded",
		"data": {"id": "pi_1", "metadata": {}}
	}`

	rec := signedNotification(e, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fakes.settlements.notifications, 1)
	assert.Equal(t, bookingID, fakes.settlements.notifications[0].BookingID)
}

func TestPaymentNotification_BadSignature(t *testing.T) {
	e, fakes := newTestServer(t)

	body := `{"type": "checkout.session.completed", "data": {}}`
	rec := postNotification(e, body, clients.SignNotification([]byte(body), "wrong-secret", time.Now()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fakes.settlements.notifications)
}

func TestPaymentNotification_MissingSignature(t *testing.T) {
	e, fakes := newTestServer(t)

	rec := postNotification(e, `{"type": "checkout.session.completed", "data": {}}`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fakes.settlements.notifications)
}

func TestPaymentNotification_SignedButUnusableIsAcked(t *testing.T) {
	e, fakes := newTestServer(t)

	for name, body := range map[string]string{
		"unknown type":      `{"type": "charge.refunded", "data": {}}`,
		"missing bookingId": `{"type": "checkout.session.completed", "data": {"payment_status": "paid", "metadata": {}}}`,
		"bad bookingId":     `{"type": "checkout.session.completed", "data": {"payment_status": "paid", "metadata": {"bookingId": "nope"}}}`,
		"not json":          `this is not json`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := signedNotification(e, body)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, fakes.settlements.notifications)
		})
	}
}

func TestPaymentNotification_SettleFailureTriggersRetry(t *testing.T) {
	e, fakes := newTestServer(t)
	fakes.settlements.err = errors.New("db down")

	body := `{
		"type": "checkout.session.completed",
		"data": {
			"payment_status": "paid",
			"metadata": {"bookingId": "` + uuid.NewString() + `"}
		}
	}`

	rec := signedNotification(e, body)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
