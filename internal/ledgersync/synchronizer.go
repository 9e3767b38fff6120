package ledgersync

import (
	"context"
	"sync"

	"github.com/smallbiznis/bizledger/internal/observability/metrics"
	statedomain "github.com/smallbiznis/bizledger/internal/state/domain"
	"go.uber.org/zap"
)

type Params struct {
	Log     *zap.Logger
	Remote  Remote
	Metrics *metrics.Metrics
	// OnError receives every record the worker failed to persist.
	OnError func(*SyncError)
	Initial statedomain.AppState
}

// Synchronizer owns the client-side copy of the ledger. Updates apply locally at once and
// the resulting catalog delta is persisted by a single background worker in FIFO order.
type Synchronizer struct {
	log     *zap.Logger
	remote  Remote
	metrics *metrics.Metrics
	onError func(*SyncError)

	mu    sync.RWMutex
	state statedomain.AppState

	qmu     sync.Mutex
	pending []operation
	closed  bool
	wake    chan struct{}

	runOnce sync.Once
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(p Params) *Synchronizer {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Synchronizer{
		log:     log.Named("ledgersync"),
		remote:  p.Remote,
		metrics: p.Metrics,
		onError: p.OnError,
		state:   p.Initial.Clone(),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Run starts the worker. It stops when ctx is cancelled or Close is called.
func (s *Synchronizer) Run(ctx context.Context) {
	s.runOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		s.cancel = cancel
		go s.loop(ctx)
	})
}

// Close stops the worker after the operation in flight. Queued operations are dropped.
func (s *Synchronizer) Close() {
	s.drain()
	s.runOnce.Do(func() { close(s.done) })
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

// State returns a copy of the current local state.
func (s *Synchronizer) State() statedomain.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Update applies fn to a copy of the state and publishes the result. The catalog delta
// between the old and new state is queued for the worker. An error from fn leaves the
// state untouched.
func (s *Synchronizer) Update(ctx context.Context, fn func(*statedomain.AppState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	ops, err := diffState(&s.state, &next)
	if err != nil {
		return err
	}
	s.state = next

	if len(ops) > 0 {
		s.log.Debug("queueing sync operations", zap.Int("count", len(ops)))
	}
	return s.enqueue(ops...)
}

// FetchOnLogin replaces the local ledger with the server's copy. Only the session fields
// survive; nothing is queued.
func (s *Synchronizer) FetchOnLogin(ctx context.Context, session statedomain.Session) error {
	fetched, err := s.remote.FetchState(ctx)
	if err != nil {
		return err
	}
	fetched.Session = session

	s.mu.Lock()
	s.state = fetched
	s.mu.Unlock()

	s.log.Info("state fetched",
		zap.String("user_id", session.UserID),
		zap.Int("departments", len(fetched.Departments)),
		zap.Int("employees", len(fetched.Employees)),
		zap.Int("expenses", len(fetched.Expenses)),
	)
	return nil
}

// Flush blocks until every operation queued before the call has been dispatched.
func (s *Synchronizer) Flush(ctx context.Context) error {
	barrier := make(chan struct{})
	if err := s.enqueue(operation{barrier: barrier}); err != nil {
		return err
	}
	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Synchronizer) enqueue(ops ...operation) error {
	if len(ops) == 0 {
		return nil
	}
	s.qmu.Lock()
	if s.closed {
		s.qmu.Unlock()
		return ErrClosed
	}
	s.pending = append(s.pending, ops...)
	s.qmu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// drain refuses further operations and releases every queued barrier.
func (s *Synchronizer) drain() {
	s.qmu.Lock()
	s.closed = true
	dropped := s.pending
	s.pending = nil
	s.qmu.Unlock()

	for _, op := range dropped {
		if op.barrier != nil {
			close(op.barrier)
		}
	}
}

func (s *Synchronizer) loop(ctx context.Context) {
	defer close(s.done)
	defer s.drain()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}

		for {
			s.qmu.Lock()
			if len(s.pending) == 0 {
				s.qmu.Unlock()
				break
			}
			op := s.pending[0]
			s.pending = s.pending[1:]
			s.qmu.Unlock()

			if op.barrier != nil {
				close(op.barrier)
				continue
			}
			if ctx.Err() != nil {
				return
			}
			s.dispatch(ctx, op)
		}
	}
}

func (s *Synchronizer) dispatch(ctx context.Context, op operation) {
	var err error
	switch op.op {
	case OpUpsert:
		err = s.remote.Upsert(ctx, op.collection, op.payload)
	case OpDelete:
		err = s.remote.Delete(ctx, op.collection, op.id)
	}

	if err == nil {
		s.metrics.RecordSyncOperation(ctx, op.collection, op.op, "success")
		return
	}

	syncErr := &SyncError{Collection: op.collection, Op: op.op, ID: op.id, Err: err}
	s.metrics.RecordSyncOperation(ctx, op.collection, op.op, "error")
	s.log.Warn("sync operation failed",
		zap.String("collection", op.collection),
		zap.String("op", op.op),
		zap.String("record_id", op.id),
		zap.Error(err),
	)
	if s.onError != nil {
		s.onError(syncErr)
	}
}
