package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/attendance"
)

type blockingLoader struct {
	mu      sync.Mutex
	calls   int
	err     error
	release chan struct{}
	started chan struct{}
}

func (b *blockingLoader) Load(context.Context) (*DatasetSnapshot, error) {
	b.mu.Lock()
	b.calls++
	n := b.calls
	err := b.err
	b.mu.Unlock()
	if b.started != nil {
		b.started <- struct{}{}
	}
	if b.release != nil {
		<-b.release
	}
	if err != nil {
		return nil, err
	}
	return &DatasetSnapshot{
		Dataset: attendance.NewDataset(attendance.Input{}, attendance.Options{}),
		Version: "v" + string(rune('0'+n)),
	}, nil
}

func waitForState(t *testing.T, svc *ReloadService, state string) *ReloadStatus {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st := svc.Status(); st != nil && st.State == state {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("reload never reached state %q (last: %+v)", state, svc.Status())
	return nil
}

func TestReloadServiceRunsQueuedReload(t *testing.T) {
	loader := &blockingLoader{}
	svc := NewReloadService(loader, time.Millisecond, zap.NewNop())
	assert.Nil(t, svc.Status())

	svc.Start(context.Background())
	defer svc.Stop()

	id, err := svc.Trigger("api")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	st := waitForState(t, svc, ReloadSucceeded)
	assert.Equal(t, id, st.JobID)
	assert.Equal(t, "api", st.Reason)
	assert.Equal(t, "v1", st.Version)
	assert.False(t, st.FinishedAt.IsZero())
}

func TestReloadServiceCoalescesPendingTriggers(t *testing.T) {
	loader := &blockingLoader{release: make(chan struct{}), started: make(chan struct{}, 4)}
	svc := NewReloadService(loader, time.Millisecond, zap.NewNop())
	svc.Start(context.Background())
	defer svc.Stop()

	first, err := svc.Trigger("api")
	require.NoError(t, err)
	<-loader.started

	second, err := svc.Trigger("api")
	require.NoError(t, err)
	third, err := svc.Trigger("scheduled")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, third)

	close(loader.release)
	st := waitForState(t, svc, ReloadSucceeded)
	assert.Equal(t, second, st.JobID)

	loader.mu.Lock()
	defer loader.mu.Unlock()
	assert.Equal(t, 2, loader.calls)
}

func TestReloadServiceRecordsFailure(t *testing.T) {
	loader := &blockingLoader{err: errors.New("database down")}
	svc := NewReloadService(loader, time.Millisecond, zap.NewNop())
	svc.Start(context.Background())
	defer svc.Stop()

	_, err := svc.Trigger("api")
	require.NoError(t, err)
	st := waitForState(t, svc, ReloadFailed)
	assert.Equal(t, "database down", st.Error)
}

func TestReloadServiceRequiresStart(t *testing.T) {
	svc := NewReloadService(&blockingLoader{}, time.Millisecond, zap.NewNop())
	_, err := svc.Trigger("api")
	assert.Error(t, err)
}

func TestReloadServiceRetriesUntilAttemptsExhausted(t *testing.T) {
	loader := &blockingLoader{err: errors.New("database down")}
	svc := NewReloadService(loader, time.Millisecond, zap.NewNop())
	svc.Start(context.Background())
	defer svc.Stop()

	_, err := svc.Trigger("api")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		st := svc.Status()
		return st != nil && st.State == ReloadFailed && st.Attempt == 3
	}, 2*time.Second, 5*time.Millisecond)

	loader.mu.Lock()
	defer loader.mu.Unlock()
	assert.Equal(t, 3, loader.calls)
}
