package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturo-api/internal/infrastructure/scheduler"
)

type stubRunner struct {
	calls int
	err   error
}

func (r *stubRunner) Run(context.Context, time.Time) (int, error) {
	r.calls++
	return 2, r.err
}

type mockLocker struct{ mock.Mock }

func (m *mockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := m.Called(key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockLocker) Release(ctx context.Context, key, token string) error {
	return m.Called(key, token).Error(0)
}

type countObserver struct {
	runs, skips, errs int
}

func (o *countObserver) ObserveJob(_ string, _ time.Duration, err error) {
	o.runs++
	if err != nil {
		o.errs++
	}
}

func (o *countObserver) SkipJob(string) { o.skips++ }

func TestNew_SpecInvalida(t *testing.T) {
	_, err := scheduler.New("cada tanto", &stubRunner{}, nil, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestRunOverdue_SinLock(t *testing.T) {
	runner := &stubRunner{}
	obs := &countObserver{}
	s, err := scheduler.New("@hourly", runner, nil, obs, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, s.RunOverdue(context.Background()))
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, 1, obs.runs)
}

func TestRunOverdue_ConLock(t *testing.T) {
	runner := &stubRunner{}
	obs := &countObserver{}
	locker := &mockLocker{}
	locker.On("TryLock", "facturo:jobs:overdue").Return("tok", true, nil).Once()
	locker.On("Release", "facturo:jobs:overdue", "tok").Return(nil).Once()

	s, err := scheduler.New("@hourly", runner, locker, obs, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.RunOverdue(context.Background()))
	assert.Equal(t, 1, runner.calls)

	// Otra réplica tiene el lock: no se ejecuta.
	locker.On("TryLock", "facturo:jobs:overdue").Return("", false, nil).Once()
	require.NoError(t, s.RunOverdue(context.Background()))
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, 1, obs.skips)
	locker.AssertExpectations(t)
}

func TestRunOverdue_ErrorDelCasoDeUso(t *testing.T) {
	runner := &stubRunner{err: errors.New("db caída")}
	obs := &countObserver{}
	s, err := scheduler.New("@every 1h", runner, nil, obs, zerolog.Nop())
	require.NoError(t, err)

	assert.Error(t, s.RunOverdue(context.Background()))
	assert.Equal(t, 1, obs.errs)
}

func TestStartStop(t *testing.T) {
	s, err := scheduler.New("@hourly", &stubRunner{}, nil, nil, zerolog.Nop())
	require.NoError(t, err)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
