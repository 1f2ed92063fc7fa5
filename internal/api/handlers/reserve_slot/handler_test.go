package reserve_slot

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

	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	usecase "github.com/m04kA/SMC-CourtBookingService/internal/usecase/reserve_slot"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

type handlerNopLogger struct{}

func (handlerNopLogger) Info(string, ...interface{})  {}
func (handlerNopLogger) Warn(string, ...interface{})  {}
func (handlerNopLogger) Error(string, ...interface{}) {}

type fakeUseCase struct {
	gotReq *usecase.Request
	resp   *usecase.Response
	err    error
}

func (f *fakeUseCase) Execute(_ context.Context, req *usecase.Request) (*usecase.Response, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func doRequest(uc ReserveSlotUseCase, body string, identity *domain.Identity) *httptest.ResponseRecorder {
	handler := NewHandler(uc, handlerNopLogger{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	if identity != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *identity))
	}

	rec := httptest.NewRecorder()
	handler.Handle(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	uc := &fakeUseCase{resp: &usecase.Response{
		ID:          7,
		UserID:      42,
		CourtID:     1,
		SlotID:      10,
		Status:      "active",
		CourtName:   "Центральный корт",
		Price:       1500,
		BookingDate: time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		StartTime:   types.TimeString("10:00"),
		EndTime:     types.TimeString("11:00"),
	}}

	identity := &domain.Identity{UserID: 42, Role: domain.RoleUser}
	rec := doRequest(uc, `{"slotId": 10}`, identity)

	assert.Equal(t, http.StatusCreated, rec.Code)

	// ID пользователя берется из identity, а не из тела запроса
	require.NotNil(t, uc.gotReq)
	assert.Equal(t, int64(42), uc.gotReq.UserID)
	assert.Equal(t, int64(10), uc.gotReq.SlotID)

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "2025-10-15", resp.BookingDate)
	assert.Equal(t, "10:00", resp.StartTime)
}

func TestHandle_NoIdentity(t *testing.T) {
	rec := doRequest(&fakeUseCase{}, `{"slotId": 10}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandle_InvalidBody(t *testing.T) {
	identity := &domain.Identity{UserID: 42, Role: domain.RoleUser}

	rec := doRequest(&fakeUseCase{}, `{invalid`, identity)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(&fakeUseCase{}, `{"slotId": 0}`, identity)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"slot not found", usecase.ErrSlotNotFound, http.StatusNotFound},
		{"slot occupied", usecase.ErrSlotUnavailable, http.StatusConflict},
		{"slot in past", usecase.ErrSlotInPast, http.StatusBadRequest},
		{"court unavailable", usecase.ErrCourtUnavailable, http.StatusConflict},
		{"internal", usecase.ErrInternal, http.StatusInternalServerError},
	}

	identity := &domain.Identity{UserID: 42, Role: domain.RoleUser}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(&fakeUseCase{err: tt.err}, `{"slotId": 10}`, identity)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
