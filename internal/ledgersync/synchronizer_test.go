package ledgersync

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	catalogdomain "github.com/smallbiznis/bizledger/internal/catalog/domain"
	statedomain "github.com/smallbiznis/bizledger/internal/state/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestSynchronizer(t *testing.T, remote Remote, initial statedomain.AppState, onError func(*SyncError)) *Synchronizer {
	t.Helper()
	s := New(Params{Log: zap.NewNop(), Remote: remote, Initial: initial, OnError: onError})
	s.Run(context.Background())
	t.Cleanup(s.Close)
	return s
}

func flush(t *testing.T, s *Synchronizer) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))
}

func TestUpdateDispatchesDeltaInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := NewMockRemote(ctrl)

	initial := statedomain.AppState{
		Departments: []catalogdomain.Department{{ID: "a", Name: "Ops"}, {ID: "b", Name: "Sales"}},
	}
	s := newTestSynchronizer(t, remote, initial, nil)

	gomock.InOrder(
		remote.EXPECT().Upsert(gomock.Any(), "departments", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, record json.RawMessage) error {
				assert.JSONEq(t, `{"id":"b","name":"Sales & Marketing"}`, string(record))
				return nil
			}),
		remote.EXPECT().Delete(gomock.Any(), "departments", "a").Return(nil),
		remote.EXPECT().Upsert(gomock.Any(), "tasks", gomock.Any()).Return(nil),
	)

	err := s.Update(context.Background(), func(state *statedomain.AppState) error {
		state.Departments = []catalogdomain.Department{{ID: "b", Name: "Sales & Marketing"}}
		state.Tasks = append(state.Tasks, catalogdomain.Task{ID: "t1", Address: "12 High St", Status: catalogdomain.TaskInProgress})
		return nil
	})
	require.NoError(t, err)

	got := s.State()
	require.Len(t, got.Departments, 1)
	assert.Equal(t, "Sales & Marketing", got.Departments[0].Name)

	flush(t, s)
}

func TestUpdateErrorLeavesStateUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := NewMockRemote(ctrl)

	initial := statedomain.AppState{Departments: []catalogdomain.Department{{ID: "a", Name: "Ops"}}}
	s := newTestSynchronizer(t, remote, initial, nil)

	boom := errors.New("boom")
	err := s.Update(context.Background(), func(state *statedomain.AppState) error {
		state.Departments[0].Name = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "Ops", s.State().Departments[0].Name)

	flush(t, s)
}

func TestFailedOperationIsSurfacedAndBatchContinues(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := NewMockRemote(ctrl)

	core, logs := observer.New(zapcore.WarnLevel)
	var (
		mu     sync.Mutex
		failed []*SyncError
	)
	s := New(Params{
		Log:    zap.New(core),
		Remote: remote,
		OnError: func(e *SyncError) {
			mu.Lock()
			failed = append(failed, e)
			mu.Unlock()
		},
	})
	s.Run(context.Background())
	t.Cleanup(s.Close)

	rejected := &RemoteError{Status: 400, Type: "validation_error"}
	gomock.InOrder(
		remote.EXPECT().Upsert(gomock.Any(), "employees", gomock.Any()).Return(rejected),
		remote.EXPECT().Upsert(gomock.Any(), "employees", gomock.Any()).Return(nil),
	)

	err := s.Update(context.Background(), func(state *statedomain.AppState) error {
		state.Employees = []catalogdomain.Employee{{ID: "e1", Name: "Bad"}, {ID: "e2", Name: "Good", DepartmentID: "a"}}
		return nil
	})
	require.NoError(t, err)
	flush(t, s)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failed, 1)
	assert.Equal(t, "employees", failed[0].Collection)
	assert.Equal(t, OpUpsert, failed[0].Op)
	assert.Equal(t, "e1", failed[0].ID)
	assert.ErrorIs(t, failed[0], rejected)

	// no rollback of the local change
	assert.Len(t, s.State().Employees, 2)

	entries := logs.FilterMessage("sync operation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ledgersync", entries[0].LoggerName)
	assert.Equal(t, "e1", entries[0].ContextMap()["record_id"])
}

func TestFetchOnLoginKeepsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := NewMockRemote(ctrl)

	initial := statedomain.AppState{
		Session:     statedomain.Session{UserID: "stale"},
		Departments: []catalogdomain.Department{{ID: "old", Name: "Old"}},
	}
	s := newTestSynchronizer(t, remote, initial, nil)

	remote.EXPECT().FetchState(gomock.Any()).Return(statedomain.AppState{
		Session:     statedomain.Session{UserID: "server"},
		Departments: []catalogdomain.Department{{ID: "a", Name: "Ops"}},
	}, nil)

	session := statedomain.Session{UserID: "u1", Email: "sara@example.com", Role: "editor", Token: "tok"}
	require.NoError(t, s.FetchOnLogin(context.Background(), session))

	got := s.State()
	assert.Equal(t, session, got.Session)
	require.Len(t, got.Departments, 1)
	assert.Equal(t, "a", got.Departments[0].ID)

	// the fetched state is the new baseline, so nothing was queued
	flush(t, s)
}

func TestFetchOnLoginError(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := NewMockRemote(ctrl)
	s := newTestSynchronizer(t, remote, statedomain.AppState{}, nil)

	remote.EXPECT().FetchState(gomock.Any()).Return(statedomain.AppState{}, &RemoteError{Status: 401})
	err := s.FetchOnLogin(context.Background(), statedomain.Session{Token: "tok"})
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, 401, remoteErr.Status)
}

func TestUpdateAfterClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := New(Params{Remote: NewMockRemote(ctrl)})
	s.Run(context.Background())
	s.Close()

	err := s.Update(context.Background(), func(state *statedomain.AppState) error {
		state.Departments = []catalogdomain.Department{{ID: "a", Name: "Ops"}}
		return nil
	})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Flush(context.Background()), ErrClosed)
}

func TestFlushHonoursContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	// worker never started
	s := New(Params{Remote: NewMockRemote(ctrl)})
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Flush(ctx), context.DeadlineExceeded)
}

func TestCancelledRunReleasesQueuedFlush(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := NewMockRemote(ctrl)

	started := make(chan struct{})
	var once sync.Once
	remote.EXPECT().
		Upsert(gomock.Any(), "departments", gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ json.RawMessage) error {
			once.Do(func() { close(started) })
			<-ctx.Done()
			return ctx.Err()
		}).
		MinTimes(1).MaxTimes(2)

	runCtx, cancel := context.WithCancel(context.Background())
	s := New(Params{Log: zap.NewNop(), Remote: remote})
	s.Run(runCtx)
	t.Cleanup(s.Close)

	require.NoError(t, s.Update(context.Background(), func(state *statedomain.AppState) error {
		state.Departments = []catalogdomain.Department{{ID: "a", Name: "Ops"}, {ID: "b", Name: "Sales"}}
		return nil
	}))
	<-started

	time.AfterFunc(20*time.Millisecond, cancel)
	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	require.NoError(t, s.Flush(ctx))

	err := s.Update(context.Background(), func(state *statedomain.AppState) error {
		state.Departments = nil
		return nil
	})
	assert.ErrorIs(t, err, ErrClosed)
}
