package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	courtstore "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type fakeSlotRepo struct {
	free []*domain.Slot
}

func (f *fakeSlotRepo) GetAvailableByCourtAndDate(_ context.Context, courtID int64, date time.Time) ([]*domain.Slot, error) {
	var out []*domain.Slot
	for _, s := range f.free {
		if s.CourtID == courtID && s.Date.Equal(date) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeCourtRepo struct {
	courts map[int64]*domain.Court
}

func (f *fakeCourtRepo) GetByID(_ context.Context, id int64) (*domain.Court, error) {
	c, ok := f.courts[id]
	if !ok {
		return nil, courtstore.ErrCourtNotFound
	}
	return c, nil
}

var (
	testNow  = time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
)

func newTestUseCase(slots ...*domain.Slot) *UseCase {
	slotRepo := &fakeSlotRepo{free: slots}
	courtRepo := &fakeCourtRepo{courts: map[int64]*domain.Court{
		1: {ID: 1, OwnerID: 100, Name: "Центральный корт", Available: true},
	}}

	uc := NewUseCase(slotRepo, courtRepo, nopLogger{})
	uc.timeProvider = fixedTime{t: testNow}
	return uc
}

func TestExecute_ReturnsFreeSlots(t *testing.T) {
	uc := newTestUseCase(
		&domain.Slot{ID: 10, CourtID: 1, Date: testDate, StartTime: types.TimeString("10:00"), EndTime: types.TimeString("11:00"), Price: 1500},
		&domain.Slot{ID: 11, CourtID: 1, Date: testDate, StartTime: types.TimeString("11:00"), EndTime: types.TimeString("12:00"), Price: 1500},
		&domain.Slot{ID: 20, CourtID: 2, Date: testDate, StartTime: types.TimeString("10:00"), EndTime: types.TimeString("11:00"), Price: 900},
	)

	resp, err := uc.Execute(context.Background(), &Request{CourtID: 1, Date: testDate})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.CourtID)
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, int64(10), resp.Slots[0].ID)
	assert.Equal(t, "10:00", resp.Slots[0].StartTime.String())
	assert.Equal(t, int64(11), resp.Slots[1].ID)
}

func TestExecute_EmptyWhenNoFreeSlots(t *testing.T) {
	uc := newTestUseCase()

	resp, err := uc.Execute(context.Background(), &Request{CourtID: 1, Date: testDate})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_CourtNotFound(t *testing.T) {
	uc := newTestUseCase()

	_, err := uc.Execute(context.Background(), &Request{CourtID: 999, Date: testDate})
	assert.ErrorIs(t, err, ErrCourtNotFound)
}

func TestExecute_PastDateRejected(t *testing.T) {
	uc := newTestUseCase()

	pastDate := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	_, err := uc.Execute(context.Background(), &Request{CourtID: 1, Date: pastDate})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_TodayIsAllowed(t *testing.T) {
	todayDate := time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)
	uc := newTestUseCase(
		&domain.Slot{ID: 30, CourtID: 1, Date: todayDate, StartTime: types.TimeString("18:00"), EndTime: types.TimeString("19:00"), Price: 1500},
	)

	resp, err := uc.Execute(context.Background(), &Request{CourtID: 1, Date: todayDate})
	require.NoError(t, err)
	assert.Len(t, resp.Slots, 1)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := newTestUseCase()

	_, err := uc.Execute(context.Background(), &Request{CourtID: 0, Date: testDate})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{CourtID: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
