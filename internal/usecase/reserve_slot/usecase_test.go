package reserve_slot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	courtstore "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	slotstore "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

// fakeSlotRepo воспроизводит семантику условного UPDATE в Occupy:
// занять можно только свободный слот, под мьютексом.
type fakeSlotRepo struct {
	mu        sync.Mutex
	slots     map[int64]*domain.Slot
	occupyErr error
	released  []int64
}

func newFakeSlotRepo(slots ...*domain.Slot) *fakeSlotRepo {
	m := make(map[int64]*domain.Slot, len(slots))
	for _, s := range slots {
		m[s.ID] = s
	}
	return &fakeSlotRepo{slots: m}
}

func (f *fakeSlotRepo) GetByID(_ context.Context, id int64) (*domain.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.slots[id]
	if !ok {
		return nil, slotstore.ErrSlotNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSlotRepo) Occupy(_ context.Context, slotID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.occupyErr != nil {
		return f.occupyErr
	}

	s, ok := f.slots[slotID]
	if !ok {
		return slotstore.ErrSlotNotFound
	}
	if s.IsOccupied {
		return slotstore.ErrSlotOccupied
	}

	s.IsOccupied = true
	s.OccupantID = &userID
	return nil
}

func (f *fakeSlotRepo) Release(_ context.Context, slotID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.slots[slotID]
	if !ok {
		return slotstore.ErrSlotNotFound
	}

	s.IsOccupied = false
	s.OccupantID = nil
	f.released = append(f.released, slotID)
	return nil
}

type fakeBookingRepo struct {
	mu        sync.Mutex
	createErr error
	created   []*domain.Booking
	nextID    int64
}

func (f *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}

	f.nextID++
	copied := *b
	copied.ID = f.nextID
	copied.Status = domain.StatusActive
	copied.CancelledBy = domain.CancelledByNone
	copied.CreatedAt = time.Now()
	copied.UpdatedAt = copied.CreatedAt
	f.created = append(f.created, &copied)
	return &copied, nil
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

func testFixtures() (*fakeSlotRepo, *fakeBookingRepo, *fakeCourtRepo, time.Time) {
	now := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

	slotRepo := newFakeSlotRepo(&domain.Slot{
		ID:        10,
		CourtID:   1,
		Date:      tomorrow,
		StartTime: types.TimeString("10:00"),
		EndTime:   types.TimeString("11:00"),
		Price:     1500,
	})

	courtRepo := &fakeCourtRepo{courts: map[int64]*domain.Court{
		1: {ID: 1, OwnerID: 100, Name: "Центральный корт", Available: true},
	}}

	return slotRepo, &fakeBookingRepo{}, courtRepo, now
}

func newTestUseCase(slotRepo *fakeSlotRepo, bookingRepo *fakeBookingRepo, courtRepo *fakeCourtRepo, now time.Time) *UseCase {
	uc := NewUseCase(slotRepo, bookingRepo, courtRepo, nopLogger{})
	uc.timeProvider = fixedTime{t: now}
	return uc
}

func TestExecute_Success(t *testing.T) {
	slotRepo, bookingRepo, courtRepo, now := testFixtures()
	uc := newTestUseCase(slotRepo, bookingRepo, courtRepo, now)

	resp, err := uc.Execute(context.Background(), &Request{UserID: 42, SlotID: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, int64(42), resp.UserID)
	assert.Equal(t, int64(1), resp.CourtID)
	assert.Equal(t, int64(10), resp.SlotID)
	assert.Equal(t, string(domain.StatusActive), resp.Status)

	// Денормализованные данные скопированы из корта и слота
	assert.Equal(t, "Центральный корт", resp.CourtName)
	assert.Equal(t, 1500.0, resp.Price)
	assert.Equal(t, "10:00", resp.StartTime.String())
	assert.Equal(t, "11:00", resp.EndTime.String())

	s, err := slotRepo.GetByID(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, s.IsOccupied)
	require.NotNil(t, s.OccupantID)
	assert.Equal(t, int64(42), *s.OccupantID)
}

func TestExecute_SlotNotFound(t *testing.T) {
	slotRepo, bookingRepo, courtRepo, now := testFixtures()
	uc := newTestUseCase(slotRepo, bookingRepo, courtRepo, now)

	_, err := uc.Execute(context.Background(), &Request{UserID: 42, SlotID: 999})
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestExecute_SlotAlreadyOccupied(t *testing.T) {
	slotRepo, bookingRepo, courtRepo, now := testFixtures()
	slotRepo.slots[10].IsOccupied = true
	uc := newTestUseCase(slotRepo, bookingRepo, courtRepo, now)

	_, err := uc.Execute(context.Background(), &Request{UserID: 42, SlotID: 10})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Empty(t, bookingRepo.created)
}

func TestExecute_SlotInPast(t *testing.T) {
	slotRepo, bookingRepo, courtRepo, _ := testFixtures()
	// Текущее время позже начала слота
	lateNow := time.Date(2025, 10, 15, 10, 30, 0, 0, time.UTC)
	uc := newTestUseCase(slotRepo, bookingRepo, courtRepo, lateNow)

	_, err := uc.Execute(context.Background(), &Request{UserID: 42, SlotID: 10})
	assert.ErrorIs(t, err, ErrSlotInPast)
}

func TestExecute_CourtUnavailable(t *testing.T) {
	slotRepo, bookingRepo, courtRepo, now := testFixtures()
	courtRepo.courts[1].Available = false
	uc := newTestUseCase(slotRepo, bookingRepo, courtRepo, now)

	_, err := uc.Execute(context.Background(), &Request{UserID: 42, SlotID: 10})
	assert.ErrorIs(t, err, ErrCourtUnavailable)

	s, err := slotRepo.GetByID(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, s.IsOccupied)
}

func TestExecute_LostOccupyRace(t *testing.T) {
	slotRepo, bookingRepo, courtRepo, now := testFixtures()
	// GetByID видит слот свободным, но CAS проигрывает конкуренту
	slotRepo.occupyErr = slotstore.ErrSlotOccupied
	uc := newTestUseCase(slotRepo, bookingRepo, courtRepo, now)

	_, err := uc.Execute(context.Background(), &Request{UserID: 42, SlotID: 10})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Empty(t, bookingRepo.created)
}

func TestExecute_ReleasesSlotWhenCreateFails(t *testing.T) {
	slotRepo, bookingRepo, courtRepo, now := testFixtures()
	bookingRepo.createErr = errors.New("ledger is down")
	uc := newTestUseCase(slotRepo, bookingRepo, courtRepo, now)

	_, err := uc.Execute(context.Background(), &Request{UserID: 42, SlotID: 10})
	assert.ErrorIs(t, err, ErrInternal)

	// Компенсирующее освобождение вернуло слот в свободное состояние
	assert.Equal(t, []int64{10}, slotRepo.released)
	s, getErr := slotRepo.GetByID(context.Background(), 10)
	require.NoError(t, getErr)
	assert.False(t, s.IsOccupied)
}

func TestExecute_ConcurrentRequestsOnlyOneWins(t *testing.T) {
	slotRepo, bookingRepo, courtRepo, now := testFixtures()
	uc := newTestUseCase(slotRepo, bookingRepo, courtRepo, now)

	const attempts = 8
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), &Request{UserID: int64(i + 1), SlotID: 10})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotUnavailable)
	}

	assert.Equal(t, 1, wins)
	assert.Len(t, bookingRepo.created, 1)
}

func TestExecute_InvalidInput(t *testing.T) {
	slotRepo, bookingRepo, courtRepo, now := testFixtures()
	uc := newTestUseCase(slotRepo, bookingRepo, courtRepo, now)

	_, err := uc.Execute(context.Background(), &Request{UserID: 0, SlotID: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{UserID: 42, SlotID: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
