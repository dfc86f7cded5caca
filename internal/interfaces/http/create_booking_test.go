package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickshow/internal/application/usecases/reservation"
	"quickshow/internal/entities"
	quickshowHTTP "quickshow/internal/interfaces/http"
)

func postBooking(e *echo.Echo, body string, withIdentity bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if withIdentity {
		req.Header.Set(quickshowHTTP.HeaderUserID, "user-1")
		req.Header.Set(quickshowHTTP.HeaderUserEmail, "user@example.com")
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateBooking_Success(t *testing.T) {
	e, fakes := newTestServer(t)

	bookingID := uuid.New()
	fakes.reservations.result = &reservation.ReserveResult{
		BookingID:  bookingID,
		PaymentURL: "https://pay.example.com/cs_1",
	}

	showID := uuid.New()
	rec := postBooking(e, `{"showId": "`+showID.String()+`", "selectedSeats": ["A1", "A2"]}`, true)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp quickshowHTTP.CreateBookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, bookingID, resp.BookingID)
	assert.Equal(t, "https://pay.example.com/cs_1", resp.URL)

	assert.Equal(t, showID, fakes.reservations.req.ShowID)
	assert.Equal(t, []string{"A1", "A2"}, fakes.reservations.req.Seats)
	assert.Equal(t, "user-1", fakes.reservations.req.UserID)
	assert.Equal(t, "user@example.com", fakes.reservations.req.UserEmail)
}

func TestCreateBooking_MissingIdentity(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postBooking(e, `{"showId": "`+uuid.NewString()+`", "selectedSeats": ["A1"]}`, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateBooking_ErrorMapping(t *testing.T) {
	for name, tc := range map[string]struct {
		err      error
		wantCode int
	}{
		"seats taken":    {entities.ErrSeatsUnavailable, http.StatusConflict},
		"show not found": {entities.ErrShowNotFound, http.StatusNotFound},
		"bad selection":  {entities.ErrInvalidSeatSelection, http.StatusBadRequest},
		"gateway down":   {entities.ErrGatewayUnavailable, http.StatusInternalServerError},
	} {
		t.Run(name, func(t *testing.T) {
			e, fakes := newTestServer(t)
			fakes.reservations.err = tc.err

			rec := postBooking(e, `{"showId": "`+uuid.NewString()+`", "selectedSeats": ["A1"]}`, true)

			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestOccupiedSeats(t *testing.T) {
	e, fakes := newTestServer(t)
	fakes.shows.occupied = []string{"A1", "B4"}

	req := httptest.NewRequest(http.MethodGet, "/shows/"+uuid.NewString()+"/seats", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp quickshowHTTP.OccupiedSeatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"A1", "B4"}, resp.OccupiedSeats)
}

func TestOccupiedSeats_UnknownShow(t *testing.T) {
	e, fakes := newTestServer(t)
	fakes.shows.err = entities.ErrShowNotFound

	req := httptest.NewRequest(http.MethodGet, "/shows/"+uuid.NewString()+"/seats", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBooking_OwnershipEnforced(t *testing.T) {
	e, fakes := newTestServer(t)
	bookingID := uuid.New()
	fakes.bookings.booking = &entities.Booking{
		ID:     bookingID,
		UserID: "someone-else",
	}

	req := httptest.NewRequest(http.MethodGet, "/bookings/"+bookingID.String(), nil)
	req.Header.Set(quickshowHTTP.HeaderUserID, "user-1")
	req.Header.Set(quickshowHTTP.HeaderUserEmail, "user@example.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
