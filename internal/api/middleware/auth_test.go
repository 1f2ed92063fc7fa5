package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/userservice"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeUserProvider struct {
	users map[int64]*userservice.User
	err   error
}

func (f *fakeUserProvider) GetUser(_ context.Context, userID int64) (*userservice.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, userservice.ErrUserNotFound
	}
	return u, nil
}

func runAuth(t *testing.T, provider UserProvider, setup func(r *http.Request)) (*httptest.ResponseRecorder, *domain.Identity) {
	t.Helper()

	var captured *domain.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := IdentityFrom(r.Context()); ok {
			captured = &identity
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/1", nil)
	if setup != nil {
		setup(req)
	}

	rec := httptest.NewRecorder()
	Auth(provider, nopLogger{})(next).ServeHTTP(rec, req)
	return rec, captured
}

func TestAuth_MissingHeader(t *testing.T) {
	rec, identity := runAuth(t, &fakeUserProvider{}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, identity)
}

func TestAuth_InvalidUserID(t *testing.T) {
	rec, _ := runAuth(t, &fakeUserProvider{}, func(r *http.Request) {
		r.Header.Set(HeaderUserID, "not-a-number")
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_UserNotFound(t *testing.T) {
	rec, _ := runAuth(t, &fakeUserProvider{users: map[int64]*userservice.User{}}, func(r *http.Request) {
		r.Header.Set(HeaderUserID, "42")
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_UserServiceUnavailable(t *testing.T) {
	rec, _ := runAuth(t, &fakeUserProvider{err: errors.New("connection refused")}, func(r *http.Request) {
		r.Header.Set(HeaderUserID, "42")
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuth_RoleComesFromUserRecord(t *testing.T) {
	provider := &fakeUserProvider{users: map[int64]*userservice.User{
		42: {ID: 42, Name: "admin", Role: "Admin"},
	}}

	rec, identity := runAuth(t, provider, func(r *http.Request) {
		r.Header.Set(HeaderUserID, "42")
		// Попытка назначить себе роль через заголовок игнорируется
		r.Header.Set("X-User-Role", "Owner")
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, identity)
	assert.Equal(t, int64(42), identity.UserID)
	assert.Equal(t, domain.RoleAdmin, identity.Role)
}

func TestAuth_UnknownRoleDefaultsToUser(t *testing.T) {
	provider := &fakeUserProvider{users: map[int64]*userservice.User{
		42: {ID: 42, Name: "someone", Role: "SuperAdmin"},
	}}

	rec, identity := runAuth(t, provider, func(r *http.Request) {
		r.Header.Set(HeaderUserID, "42")
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, identity)
	assert.Equal(t, domain.RoleUser, identity.Role)
}
