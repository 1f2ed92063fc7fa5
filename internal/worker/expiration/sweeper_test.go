package expiration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeService struct {
	mu      sync.Mutex
	calls   int
	expired int
	err     error
}

func (f *fakeService) SweepExpirations(_ context.Context, _ time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.expired, f.err
}

func (f *fakeService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingMetrics struct {
	mu      sync.Mutex
	expired []int
	errs    []error
}

func (m *recordingMetrics) ObserveSweep(expired int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expired = append(m.expired, expired)
	m.errs = append(m.errs, err)
}

func TestRun_SweepsImmediatelyAndStopsOnCancel(t *testing.T) {
	service := &fakeService{expired: 2}
	metrics := &recordingMetrics{}
	sweeper := NewSweeper(service, time.Hour, metrics, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()

	// Первый проход выполняется сразу, не дожидаясь тика
	require.Eventually(t, func() bool { return service.callCount() == 1 },
		time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	require.Len(t, metrics.expired, 1)
	assert.Equal(t, 2, metrics.expired[0])
	assert.NoError(t, metrics.errs[0])
}

func TestRun_SweepsOnEveryTick(t *testing.T) {
	service := &fakeService{}
	sweeper := NewSweeper(service, 20*time.Millisecond, nil, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = sweeper.Run(ctx) }()

	require.Eventually(t, func() bool { return service.callCount() >= 3 },
		time.Second, 5*time.Millisecond)
}

func TestRun_ContinuesAfterSweepError(t *testing.T) {
	service := &fakeService{err: errors.New("db is down")}
	metrics := &recordingMetrics{}
	sweeper := NewSweeper(service, 20*time.Millisecond, metrics, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = sweeper.Run(ctx) }()

	// Ошибка одного прохода не останавливает sweeper
	require.Eventually(t, func() bool { return service.callCount() >= 2 },
		time.Second, 5*time.Millisecond)

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	require.NotEmpty(t, metrics.errs)
	assert.Error(t, metrics.errs[0])
}
