package create_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/EVC-BookingService/internal/api/middleware"
	"github.com/m04kA/EVC-BookingService/internal/domain"
	createBooking "github.com/m04kA/EVC-BookingService/internal/usecase/create_booking"
)

type fakeUseCase struct {
	resp *createBooking.Response
	err  error
	got  *createBooking.Request
}

func (f *fakeUseCase) Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

const validBody = `{"stationId":1,"portId":10,"date":"2025-06-11","startTime":"10:00","endTime":"10:30","chargingMode":"normal"}`

func doRequest(t *testing.T, uc CreateBookingUseCase, body string, userID string) *httptest.ResponseRecorder {
	t.Helper()

	h := NewHandler(uc, nopLogger{})
	protected := middleware.Auth(http.HandlerFunc(h.Handle))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	uc := &fakeUseCase{resp: &createBooking.Response{
		Reservation: &domain.Reservation{
			ID:            1,
			UserID:        7,
			StationID:     1,
			PortID:        10,
			Date:          time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
			StartTime:     "10:00",
			EndTime:       "10:30",
			ChargingMode:  domain.ModeNormal,
			Status:        domain.StatusPending,
			StationName:   "EVC Tverskaya",
			EstimatedCost: 250,
		},
	}}

	rec := doRequest(t, uc, validBody, "7")
	assert.Equal(t, http.StatusCreated, rec.Code)

	// userID берется из заголовка, а не из тела
	require.NotNil(t, uc.got)
	assert.Equal(t, int64(7), uc.got.UserID)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, int64(1), envelope.Data.ID)
	assert.Equal(t, "pending", envelope.Data.Status)
}

func TestHandle_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{createBooking.ErrSlotConflict, http.StatusConflict},
		{createBooking.ErrPortOffline, http.StatusConflict},
		{createBooking.ErrStationNotFound, http.StatusNotFound},
		{createBooking.ErrPortNotFound, http.StatusNotFound},
		{createBooking.ErrStationClosed, http.StatusBadRequest},
		{createBooking.ErrInvalidWindow, http.StatusBadRequest},
		{createBooking.ErrModeNotSupported, http.StatusBadRequest},
		{createBooking.ErrInvalidDate, http.StatusBadRequest},
		{createBooking.ErrDateTooFarInFuture, http.StatusBadRequest},
		{createBooking.ErrTooLateToBook, http.StatusBadRequest},
		{createBooking.ErrInvalidInput, http.StatusBadRequest},
		{createBooking.ErrTimeout, http.StatusServiceUnavailable},
		{createBooking.ErrInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := doRequest(t, &fakeUseCase{err: tc.err}, validBody, "7")
		assert.Equal(t, tc.code, rec.Code, "error=%v", tc.err)

		var envelope struct {
			Success bool `json:"success"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.False(t, envelope.Success)
	}
}

func TestHandle_AuthRequired(t *testing.T) {
	rec := doRequest(t, &fakeUseCase{}, validBody, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, &fakeUseCase{}, validBody, "not-a-number")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandle_MalformedBody(t *testing.T) {
	rec := doRequest(t, &fakeUseCase{}, `{"stationId":`, "7")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// неизвестные поля отклоняются
	rec = doRequest(t, &fakeUseCase{}, `{"stationId":1,"bogus":true}`, "7")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, &fakeUseCase{}, `{"stationId":1,"portId":10,"date":"11.06.2025","startTime":"10:00","endTime":"10:30","chargingMode":"normal"}`, "7")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
