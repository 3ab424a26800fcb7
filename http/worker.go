package http

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPoolSize is the number of idle RequestCtx values kept for reuse.
// It must be a power of two.
const WorkerPoolSize = 1024

// WorkerPool bounds the number of connections served at once and recycles
// their RequestCtx values.
type WorkerPool struct {
	Ready RingBuffer[*RequestCtx]

	slots chan struct{}
	wg    sync.WaitGroup
}

func NewWorkerPool(maxConns int) *WorkerPool {
	if maxConns <= 0 {
		maxConns = WorkerPoolSize
	}
	return &WorkerPool{
		Ready: NewRingBuffer[*RequestCtx](),
		slots: make(chan struct{}, maxConns),
	}
}

// Acquire blocks until a connection slot is free and returns an idle
// RequestCtx for it.
func (wp *WorkerPool) Acquire(ctx context.Context) (*RequestCtx, error) {
	select {
	case wp.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	reqCtx, err := wp.Ready.Dequeue()
	if err != nil {
		reqCtx = NewRequestCtx()
	}
	return reqCtx, nil
}

// Release hands reqCtx back and frees its slot.
func (wp *WorkerPool) Release(reqCtx *RequestCtx) {
	reqCtx.Reset(nil)
	_ = wp.Ready.Enqueue(reqCtx) // dropped when full
	<-wp.slots
}

// Go runs fn on its own goroutine and releases reqCtx afterwards.
func (wp *WorkerPool) Go(reqCtx *RequestCtx, fn func(reqCtx *RequestCtx)) {
	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()
		defer wp.Release(reqCtx)

		fn(reqCtx)
	}()
}

// Active returns the number of slots in use.
func (wp *WorkerPool) Active() int {
	return len(wp.slots)
}

// Wait blocks until every goroutine started by Go has returned or ctx is
// done.
func (wp *WorkerPool) Wait(ctx context.Context) error {
	return waitGroup(ctx, &wp.wg)
}

func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var (
	ErrFull  = errors.New("ring buffer is full")
	ErrEmpty = errors.New("ring buffer is empty")
)

type RingBuffer[T any] struct {
	buffer [WorkerPoolSize]slot[T]
	mask   uint64
	enqPos uint64
	deqPos uint64
}

type slot[T any] struct {
	sequence uint64
	value    T
}

// NewRingBuffer creates a lock-free queue holding up to WorkerPoolSize items.
func NewRingBuffer[T any]() RingBuffer[T] {
	var buf [WorkerPoolSize]slot[T]
	for i := range buf {
		buf[i].sequence = uint64(i)
	}
	return RingBuffer[T]{
		buffer: buf,
		mask:   WorkerPoolSize - 1,
	}
}

// Enqueue adds an item to the ring buffer
func (q *RingBuffer[T]) Enqueue(val T) error {
	for {
		pos := atomic.LoadUint64(&q.enqPos)
		slot := &q.buffer[pos&q.mask]

		seq := atomic.LoadUint64(&slot.sequence)
		delta := int64(seq) - int64(pos)

		if delta == 0 {
			if atomic.CompareAndSwapUint64(&q.enqPos, pos, pos+1) {
				slot.value = val
				atomic.StoreUint64(&slot.sequence, pos+1)
				return nil
			}
		} else if delta < 0 {
			return ErrFull
		} else {
			runtime.Gosched()
		}
	}
}

// Dequeue removes and returns the oldest item
func (q *RingBuffer[T]) Dequeue() (T, error) {
	var zero T
	for {
		pos := atomic.LoadUint64(&q.deqPos)
		slot := &q.buffer[pos&q.mask]

		seq := atomic.LoadUint64(&slot.sequence)
		delta := int64(seq) - int64(pos+1)

		if delta == 0 {
			if atomic.CompareAndSwapUint64(&q.deqPos, pos, pos+1) {
				val := slot.value
				slot.value = zero
				atomic.StoreUint64(&slot.sequence, pos+q.mask+1)
				return val, nil
			}
		} else if delta < 0 {
			return zero, ErrEmpty
		} else {
			runtime.Gosched()
		}
	}
}
