package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultQueueSize bounds the pending tasks of one channel.
const DefaultQueueSize = 16

var (
	// ErrQueueFull is returned when a channel already has QueueSize tasks pending.
	ErrQueueFull = errors.New("task queue full")
	// ErrStopped is returned after Stop.
	ErrStopped = errors.New("worker manager stopped")
)

// Task is one unit of work executed on a channel's worker.
type Task func(ctx context.Context) error

type task struct {
	ctx      context.Context
	fn       Task
	resultCh chan error
}

type workerState struct {
	taskCh chan task
	stopCh chan struct{}
}

// Manager runs tasks on one goroutine per channel, so tasks submitted for
// the same channel never overlap while different channels proceed in
// parallel.
type Manager struct {
	queueSize int

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
	workers map[string]*workerState
}

func NewManager(queueSize int) *Manager {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Manager{
		queueSize: queueSize,
		workers:   make(map[string]*workerState),
	}
}

// Do runs fn on the worker of channelID and waits for it to finish or for
// ctx to be done. A task whose ctx is already done when its turn comes is
// skipped.
func (m *Manager) Do(ctx context.Context, channelID string, fn Task) error {
	if ctx == nil {
		ctx = context.Background()
	}
	state, err := m.ensureWorker(channelID)
	if err != nil {
		return err
	}

	resultCh := make(chan error, 1)
	select {
	case state.taskCh <- task{ctx: ctx, fn: fn, resultCh: resultCh}:
	default:
		return ErrQueueFull
	}

	select {
	case err := <-resultCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-state.stopCh:
		return ErrStopped
	}
}

// Stop terminates every worker and waits for running tasks to return.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	for _, state := range m.workers {
		close(state.stopCh)
	}
	m.workers = make(map[string]*workerState)
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *Manager) ensureWorker(channelID string) (*workerState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return nil, ErrStopped
	}
	if state, ok := m.workers[channelID]; ok {
		return state, nil
	}

	state := &workerState{
		taskCh: make(chan task, m.queueSize),
		stopCh: make(chan struct{}),
	}
	m.workers[channelID] = state
	m.wg.Add(1)
	go m.runWorker(channelID, state)
	return state, nil
}

func (m *Manager) runWorker(channelID string, state *workerState) {
	defer m.wg.Done()
	log.Debug().Str("channel", channelID).Msg("channel worker started")

	for {
		select {
		case <-state.stopCh:
			log.Debug().Str("channel", channelID).Msg("channel worker stopped")
			return
		case t := <-state.taskCh:
			m.handle(channelID, t)
		}
	}
}

func (m *Manager) handle(channelID string, t task) {
	if err := t.ctx.Err(); err != nil {
		t.resultCh <- err
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("channel", channelID).Interface("panic", r).Msg("channel task panicked")
			t.resultCh <- errors.New("channel task panicked")
		}
	}()
	t.resultCh <- t.fn(t.ctx)
}
