package reschedule_booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	rescheduleBooking "github.com/m04kA/SMC-SpaBookingService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-SpaBookingService/pkg/logger"
)

type fakeUseCase struct {
	req *rescheduleBooking.Request
	err error
}

func (f *fakeUseCase) Execute(ctx context.Context, req *rescheduleBooking.Request) (*rescheduleBooking.Response, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	prev := req.NewStartAt.Add(-24 * time.Hour)
	return &rescheduleBooking.Response{
		Booking:    &domain.Booking{ID: req.BookingID, StartAt: req.NewStartAt, EndAt: req.NewStartAt.Add(time.Hour), Status: domain.StatusConfirmed},
		PreviousAt: prev,
		Remaining:  1,
	}, nil
}

func patch(uc *fakeUseCase, target, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/bookings/{bookingId}/reschedule", NewHandler(uc, logger.NewNop()).Handle)

	req := httptest.NewRequest(http.MethodPatch, target, bytes.NewBufferString(body))
	req = req.WithContext(middleware.WithActor(req.Context(), domain.Actor{ID: 100, Role: domain.RoleClient}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	uc := &fakeUseCase{}

	rec := patch(uc, "/bookings/5/reschedule", `{"newStartAt":"2025-03-11T10:00:00Z"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(5), uc.req.BookingID)
	assert.Equal(t, domain.RoleClient, uc.req.Actor.Role)

	var body RescheduleResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 1, body.RemainingReschedules)
	assert.True(t, body.Booking.StartAt.Equal(time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)))
}

func TestHandle_Errors(t *testing.T) {
	valid := `{"newStartAt":"2025-03-11T10:00:00Z"}`

	tests := []struct {
		name   string
		target string
		body   string
		err    error
		status int
	}{
		{name: "bad id", target: "/bookings/abc/reschedule", body: valid, status: http.StatusBadRequest},
		{name: "missing start", target: "/bookings/5/reschedule", body: `{}`, status: http.StatusBadRequest},
		{name: "not found", target: "/bookings/5/reschedule", body: valid, err: rescheduleBooking.ErrBookingNotFound, status: http.StatusNotFound},
		{name: "conflict", target: "/bookings/5/reschedule", body: valid, err: rescheduleBooking.ErrBookingConflict, status: http.StatusConflict},
		{name: "limit", target: "/bookings/5/reschedule", body: valid, err: rescheduleBooking.ErrRescheduleLimitReached, status: http.StatusUnprocessableEntity},
		{name: "status", target: "/bookings/5/reschedule", body: valid, err: rescheduleBooking.ErrCannotReschedule, status: http.StatusUnprocessableEntity},
		{name: "too late", target: "/bookings/5/reschedule", body: valid, err: rescheduleBooking.ErrTooLateToReschedule, status: http.StatusUnprocessableEntity},
		{name: "access", target: "/bookings/5/reschedule", body: valid, err: rescheduleBooking.ErrAccessDenied, status: http.StatusForbidden},
		{name: "internal", target: "/bookings/5/reschedule", body: valid, err: rescheduleBooking.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := patch(&fakeUseCase{err: tt.err}, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
