package transition_booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/memory"
	transitionBooking "github.com/m04kA/SMC-SpaBookingService/internal/usecase/transition_booking"
	"github.com/m04kA/SMC-SpaBookingService/pkg/logger"
	"github.com/m04kA/SMC-SpaBookingService/pkg/metrics"
)

func newRouter(t *testing.T) (*mux.Router, *memory.Store, int64) {
	t.Helper()
	store := memory.NewStore()

	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	b, err := store.Bookings().Create(context.Background(), &domain.Booking{
		ProviderID: 1,
		ClientID:   100,
		ServiceID:  10,
		StartAt:    start,
		EndAt:      start.Add(time.Hour),
		Status:     domain.StatusPending,
	})
	require.NoError(t, err)

	uc := transitionBooking.NewUseCase(
		store.Bookings(), store.Stats(), store.History(), store.Outbox(), store.TxManager(),
		nil, (*metrics.Metrics)(nil),
		transitionBooking.Config{MinClientCancelNotice: 2 * time.Hour, MinProviderCancelNotice: time.Hour},
		logger.NewNop(),
	)

	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/bookings/{bookingId}/status", NewHandler(uc, logger.NewNop()).Handle).Methods(http.MethodPatch)
	return r, store, b.ID
}

func patch(r http.Handler, id int64, userID, role, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/bookings/"+strconv.FormatInt(id, 10)+"/status", bytes.NewBufferString(body))
	req.Header.Set(middleware.HeaderUserID, userID)
	req.Header.Set(middleware.HeaderUserRole, role)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_ProviderConfirms(t *testing.T) {
	r, _, id := newRouter(t)

	rec := patch(r, id, "1", "provider", `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body TransitionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "pending", body.From)
	assert.Equal(t, "confirmed", body.Booking.Status)
	assert.Equal(t, []string{"capture_payment", "add_to_calendar"}, body.Effects)
}

func TestHandle_Rejections(t *testing.T) {
	r, _, id := newRouter(t)

	assert.Equal(t, http.StatusForbidden, patch(r, id, "100", "client", `{"status":"confirmed"}`).Code)
	assert.Equal(t, http.StatusForbidden, patch(r, id, "2", "provider", `{"status":"confirmed"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, patch(r, id, "1", "provider", `{"status":"completed"}`).Code)
	assert.Equal(t, http.StatusBadRequest, patch(r, id, "1", "provider", `{"status":"archived"}`).Code)
	assert.Equal(t, http.StatusNotFound, patch(r, 404, "1", "admin", `{"status":"confirmed"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, patch(r, id, "", "", `{"status":"confirmed"}`).Code)
}

func TestHandle_ClientCancels(t *testing.T) {
	r, store, id := newRouter(t)

	rec := patch(r, id, "100", "client", `{"status":"cancelled","reason":"feeling unwell"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	b, err := store.Bookings().GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, b.Status)
	require.NotNil(t, b.CancellationReason)
	assert.Equal(t, "feeling unwell", *b.CancellationReason)
}

func TestHandle_ClientCancelTooLate(t *testing.T) {
	r, store, _ := newRouter(t)

	start := time.Now().Add(30 * time.Minute)
	b, err := store.Bookings().Create(context.Background(), &domain.Booking{
		ProviderID:   1,
		ClientID:     100,
		ServiceID:    10,
		StartAt:      start,
		EndAt:        start.Add(time.Hour),
		Status:       domain.StatusConfirmed,
		ServicePrice: 3000,
	})
	require.NoError(t, err)

	rec := patch(r, b.ID, "100", "client", `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	rec = patch(r, b.ID, "1", "provider", `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	// Администратор не ограничен и отменяет без штрафа
	rec = patch(r, b.ID, "999", "admin", `{"status":"cancelled"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body TransitionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "cancelled", body.Booking.Status)
	assert.Zero(t, body.CancellationFee)
}
