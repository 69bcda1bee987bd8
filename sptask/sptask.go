// SPDX-License-Identifier: GPL-2.0-or-later

// Package sptask hands work to the coprocessor side (display list and
// audio builders) and lets the simulation wait for it by message passing.
package sptask

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"gokart/conlog"
)

type State uint32

const (
	NotStarted State = iota
	Running
	Interrupted
	Finished
	// FinishedDP is a graphics task whose display processor output is done
	// as well.
	FinishedDP
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Interrupted:
		return "interrupted"
	case Finished:
		return "finished"
	case FinishedDP:
		return "finished-dp"
	}
	return "unknown"
}

// Done reports whether the task will not change state any more.
func (s State) Done() bool {
	return s == Interrupted || s == Finished || s == FinishedDP
}

type Kind uint8

const (
	Gfx Kind = iota
	Audio
)

// Task is one unit of coprocessor work.
type Task struct {
	ID   uuid.UUID
	Kind Kind
	Data any

	state atomic.Uint32
	err   error
	done  chan struct{}
}

func NewTask(k Kind, data any) *Task {
	return &Task{
		ID:   uuid.Must(uuid.NewV7()),
		Kind: k,
		Data: data,
		done: make(chan struct{}),
	}
}

func (t *Task) State() State {
	return State(t.state.Load())
}

func (t *Task) finish(s State, err error) {
	t.err = err
	t.state.Store(uint32(s))
	close(t.done)
}

// Done is closed once the task reached a final state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task is done or ctx ends.
func (t *Task) Wait(ctx context.Context) (State, error) {
	select {
	case <-t.done:
		return t.State(), t.err
	case <-ctx.Done():
		return t.State(), ctx.Err()
	}
}

// Runner executes one task.
type Runner func(ctx context.Context, t *Task) error

var ErrQueueClosed = errors.New("sptask: queue closed")

// Queue runs submitted tasks on a fixed set of workers, in submission
// order per worker.
type Queue struct {
	tasks  chan *Task
	g      *errgroup.Group
	ctx    context.Context
	mu     sync.RWMutex
	closed bool
}

// NewQueue starts workers running run. Cancelling ctx interrupts running
// tasks and stops the workers.
func NewQueue(ctx context.Context, workers, depth int, run Runner) *Queue {
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	q := &Queue{
		tasks: make(chan *Task, depth),
		g:     g,
		ctx:   gctx,
	}
	for range workers {
		g.Go(func() error {
			q.work(run)
			return nil
		})
	}
	return q
}

func (q *Queue) work(run Runner) {
	for {
		select {
		case <-q.ctx.Done():
			q.drain()
			return
		case t, ok := <-q.tasks:
			if !ok {
				return
			}
			q.exec(run, t)
		}
	}
}

func (q *Queue) exec(run Runner, t *Task) {
	if q.ctx.Err() != nil {
		t.finish(Interrupted, q.ctx.Err())
		return
	}
	t.state.Store(uint32(Running))
	err := run(q.ctx, t)
	switch {
	case q.ctx.Err() != nil:
		t.finish(Interrupted, q.ctx.Err())
	case err != nil:
		conlog.DPrintf("sptask %v failed: %v", t.ID, err)
		t.finish(Finished, err)
	case t.Kind == Gfx:
		t.finish(FinishedDP, nil)
	default:
		t.finish(Finished, nil)
	}
}

// drain marks everything still queued as interrupted.
func (q *Queue) drain() {
	for {
		select {
		case t, ok := <-q.tasks:
			if !ok {
				return
			}
			t.finish(Interrupted, q.ctx.Err())
		default:
			return
		}
	}
}

// Submit queues t. It blocks while the queue is full.
func (q *Queue) Submit(ctx context.Context, t *Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed || q.ctx.Err() != nil {
		return ErrQueueClosed
	}
	select {
	case q.tasks <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.ctx.Done():
		return ErrQueueClosed
	}
}

// Close stops accepting tasks and waits for the queued ones.
func (q *Queue) Close() error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()
	return q.g.Wait()
}
