package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingstore "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	courtstore "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ptr"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

// fakeTxManager выполняет функцию без настоящей транзакции
type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeBookingRepo struct {
	bookings    map[int64]*domain.Booking
	finalizeErr map[int64]error
}

func newFakeBookingRepo(bookings ...*domain.Booking) *fakeBookingRepo {
	m := make(map[int64]*domain.Booking, len(bookings))
	for _, b := range bookings {
		m[b.ID] = b
	}
	return &fakeBookingRepo{bookings: m, finalizeErr: map[int64]error{}}
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingstore.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) GetByUserID(_ context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.UserID != userID {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBookingRepo) GetByCourtWithFilter(_ context.Context, filter domain.CourtBookingsFilter) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.CourtID != filter.CourtID {
			continue
		}
		if !filter.IncludeInactive && filter.Status == nil && b.IsTerminal() {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBookingRepo) GetActive(_ context.Context) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.IsActive() {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) Finalize(_ context.Context, id int64, status domain.BookingStatus, cancelledBy domain.CancelledBy) error {
	if err, ok := f.finalizeErr[id]; ok {
		return err
	}

	b, ok := f.bookings[id]
	if !ok {
		return bookingstore.ErrBookingNotFound
	}
	if b.IsTerminal() {
		return bookingstore.ErrAlreadyFinalized
	}

	b.Status = status
	b.CancelledBy = cancelledBy
	if status == domain.StatusCancelled {
		now := time.Now()
		b.CancelledAt = &now
	}
	return nil
}

type fakeSlotRepo struct {
	released   []int64
	releaseErr map[int64]error
}

func (f *fakeSlotRepo) Release(_ context.Context, slotID int64) error {
	if err, ok := f.releaseErr[slotID]; ok {
		return err
	}
	f.released = append(f.released, slotID)
	return nil
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

// Фикстуры: корт id=1 принадлежит пользователю 100,
// бронирование id=1 пользователя 42 на завтра (относительно now)
func testService(bookings ...*domain.Booking) (*Service, *fakeBookingRepo, *fakeSlotRepo) {
	now := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)

	bookingRepo := newFakeBookingRepo(bookings...)
	slotRepo := &fakeSlotRepo{releaseErr: map[int64]error{}}
	courtRepo := &fakeCourtRepo{courts: map[int64]*domain.Court{
		1: {ID: 1, OwnerID: 100, Name: "Центральный корт", Available: true},
	}}

	svc := NewService(bookingRepo, slotRepo, courtRepo, fakeTxManager{}, nopLogger{})
	svc.timeProvider = fixedTime{t: now}
	return svc, bookingRepo, slotRepo
}

func activeBooking(id int64, date time.Time) *domain.Booking {
	return &domain.Booking{
		ID:          id,
		UserID:      42,
		CourtID:     1,
		SlotID:      id + 100,
		Status:      domain.StatusActive,
		CancelledBy: domain.CancelledByNone,
		CourtName:   "Центральный корт",
		Price:       1500,
		BookingDate: date,
		StartTime:   types.TimeString("10:00"),
		EndTime:     types.TimeString("11:00"),
	}
}

var (
	tomorrow  = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	today     = time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)
	yesterday = time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
)

func TestCancel_OwnFutureBooking(t *testing.T) {
	svc, bookingRepo, slotRepo := testService(activeBooking(1, tomorrow))

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
		ActorID:   42,
		ActorRole: domain.RoleUser,
	})
	require.NoError(t, err)

	b := bookingRepo.bookings[1]
	assert.Equal(t, domain.StatusCancelled, b.Status)
	assert.Equal(t, domain.CancelledByUser, b.CancelledBy)
	assert.NotNil(t, b.CancelledAt)
	assert.Equal(t, []int64{101}, slotRepo.released)
}

func TestCancel_WindowClosedOnGameDay(t *testing.T) {
	svc, bookingRepo, slotRepo := testService(activeBooking(1, today))

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
		ActorID:   42,
		ActorRole: domain.RoleUser,
	})
	assert.ErrorIs(t, err, ErrCancellationWindowClosed)

	assert.Equal(t, domain.StatusActive, bookingRepo.bookings[1].Status)
	assert.Empty(t, slotRepo.released)
}

func TestCancel_WindowClosedForPastDate(t *testing.T) {
	svc, _, _ := testService(activeBooking(1, yesterday))

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
		ActorID:   42,
		ActorRole: domain.RoleUser,
	})
	assert.ErrorIs(t, err, ErrCancellationWindowClosed)
}

func TestCancel_CourtOwnerIgnoresWindow(t *testing.T) {
	svc, bookingRepo, slotRepo := testService(activeBooking(1, today))

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
		ActorID:   100, // владелец корта
		ActorRole: domain.RoleOwner,
	})
	require.NoError(t, err)

	b := bookingRepo.bookings[1]
	assert.Equal(t, domain.StatusCancelled, b.Status)
	assert.Equal(t, domain.CancelledByOwner, b.CancelledBy)
	assert.Equal(t, []int64{101}, slotRepo.released)
}

func TestCancel_AdminIgnoresWindow(t *testing.T) {
	svc, bookingRepo, _ := testService(activeBooking(1, today))

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
		ActorID:   777,
		ActorRole: domain.RoleAdmin,
	})
	require.NoError(t, err)

	// Администратор отменяет чужое бронирование от имени площадки
	assert.Equal(t, domain.CancelledByOwner, bookingRepo.bookings[1].CancelledBy)
}

func TestCancel_StrangerDenied(t *testing.T) {
	svc, bookingRepo, _ := testService(activeBooking(1, tomorrow))

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
		ActorID:   555,
		ActorRole: domain.RoleUser,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, domain.StatusActive, bookingRepo.bookings[1].Status)
}

func TestCancel_AlreadyTerminal(t *testing.T) {
	b := activeBooking(1, tomorrow)
	b.Status = domain.StatusCancelled
	svc, _, slotRepo := testService(b)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
		ActorID:   42,
		ActorRole: domain.RoleUser,
	})
	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.Empty(t, slotRepo.released)
}

func TestCancel_LostRaceWithSweeper(t *testing.T) {
	svc, bookingRepo, slotRepo := testService(activeBooking(1, tomorrow))
	// Между чтением и Finalize бронирование успели финализировать
	bookingRepo.finalizeErr[1] = bookingstore.ErrAlreadyFinalized

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
		ActorID:   42,
		ActorRole: domain.RoleUser,
	})
	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.Empty(t, slotRepo.released)
}

func TestCancel_BookingNotFound(t *testing.T) {
	svc, _, _ := testService()

	err := svc.Cancel(context.Background(), 404, &models.CancelBookingRequest{
		ActorID:   42,
		ActorRole: domain.RoleUser,
	})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestSweepExpirations_ExpiresOnlyEndedBookings(t *testing.T) {
	ended := activeBooking(1, yesterday)
	future := activeBooking(2, tomorrow)
	svc, bookingRepo, slotRepo := testService(ended, future)

	now := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	expired, err := svc.SweepExpirations(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, expired)
	assert.Equal(t, domain.StatusExpired, bookingRepo.bookings[1].Status)
	assert.Equal(t, domain.CancelledByNone, bookingRepo.bookings[1].CancelledBy)
	assert.Equal(t, domain.StatusActive, bookingRepo.bookings[2].Status)
	assert.Equal(t, []int64{101}, slotRepo.released)
}

func TestSweepExpirations_ExpiresSameDayAfterEndTime(t *testing.T) {
	b := activeBooking(1, today) // слот 10:00-11:00, now 12:00
	svc, bookingRepo, _ := testService(b)

	now := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	expired, err := svc.SweepExpirations(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, expired)
	assert.Equal(t, domain.StatusExpired, bookingRepo.bookings[1].Status)
}

func TestSweepExpirations_SkipsConcurrentlyFinalized(t *testing.T) {
	svc, bookingRepo, slotRepo := testService(activeBooking(1, yesterday))
	bookingRepo.finalizeErr[1] = bookingstore.ErrAlreadyFinalized

	now := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	expired, err := svc.SweepExpirations(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 0, expired)
	assert.Empty(t, slotRepo.released)
}

func TestSweepExpirations_ContinuesAfterPerBookingError(t *testing.T) {
	first := activeBooking(1, yesterday)
	second := activeBooking(2, yesterday)
	svc, bookingRepo, slotRepo := testService(first, second)
	// Освобождение слота первого бронирования падает
	slotRepo.releaseErr[101] = errors.New("connection reset")

	now := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	expired, err := svc.SweepExpirations(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, expired)
	assert.Equal(t, domain.StatusExpired, bookingRepo.bookings[2].Status)
	assert.Equal(t, []int64{102}, slotRepo.released)
}

func TestGetByID_AccessMatrix(t *testing.T) {
	tests := []struct {
		name    string
		actor   domain.Identity
		wantErr error
	}{
		{"booking owner", domain.Identity{UserID: 42, Role: domain.RoleUser}, nil},
		{"court owner", domain.Identity{UserID: 100, Role: domain.RoleOwner}, nil},
		{"admin", domain.Identity{UserID: 777, Role: domain.RoleAdmin}, nil},
		{"stranger", domain.Identity{UserID: 555, Role: domain.RoleUser}, ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := testService(activeBooking(1, tomorrow))

			resp, err := svc.GetByID(context.Background(), 1, tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), resp.ID)
			assert.Equal(t, "10:00", resp.StartTime)
		})
	}
}

func TestGetUserBookings_AccessAndStatusFilter(t *testing.T) {
	cancelled := activeBooking(2, tomorrow)
	cancelled.Status = domain.StatusCancelled
	svc, _, _ := testService(activeBooking(1, tomorrow), cancelled)

	// Чужую историю обычный пользователь не видит
	_, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		UserID:    42,
		ActorID:   555,
		ActorRole: domain.RoleUser,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	// Сам пользователь видит свою историю с фильтром по статусу
	resp, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		UserID:    42,
		ActorID:   42,
		ActorRole: domain.RoleUser,
		Status:    ptr.Ptr("cancelled"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, int64(2), resp.Bookings[0].ID)

	// Некорректный статус отклоняется
	_, err = svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		UserID:    42,
		ActorID:   42,
		ActorRole: domain.RoleUser,
		Status:    ptr.Ptr("pending"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetCourtBookings_OwnerAndAdminOnly(t *testing.T) {
	svc, _, _ := testService(activeBooking(1, tomorrow))

	_, err := svc.GetCourtBookings(context.Background(), &models.GetCourtBookingsRequest{
		CourtID:   1,
		ActorID:   42, // автор бронирования, но не владелец корта
		ActorRole: domain.RoleUser,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := svc.GetCourtBookings(context.Background(), &models.GetCourtBookingsRequest{
		CourtID:   1,
		ActorID:   100,
		ActorRole: domain.RoleOwner,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)
}

func TestGetCourtBookings_CourtNotFound(t *testing.T) {
	svc, _, _ := testService()

	_, err := svc.GetCourtBookings(context.Background(), &models.GetCourtBookingsRequest{
		CourtID:   999,
		ActorID:   777,
		ActorRole: domain.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrCourtNotFound)
}
