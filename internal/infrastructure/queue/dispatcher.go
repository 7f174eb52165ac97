package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jinlabs/users-management/internal/core/domain"
	"github.com/jinlabs/users-management/internal/core/ports"
	"github.com/jinlabs/users-management/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 10 * time.Second
)

// Dispatcher routes user events to a fixed set of workers using consistent
// hashing on the user id, so events for one user are delivered in order.
type Dispatcher struct {
	workers []chan domain.UserEvent
	sink    ports.EventSink
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink ports.EventSink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.UserEvent, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.UserEvent, channelBuffer)
	}
	return d
}

var _ ports.EventPublisher = (*Dispatcher)(nil)

// Start launches all worker goroutines. Workers stop when ctx is cancelled or
// after Close once their queues are drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish hands the event to the worker responsible for its user. It never
// blocks: when that worker's queue is full the event is dropped.
func (d *Dispatcher) Publish(_ context.Context, event domain.UserEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("event_id", event.ID).Msg("dispatcher closed, event dropped")
		metrics.EventsDroppedTotal.WithLabelValues(string(event.Type)).Inc()
		return
	}

	idx := d.shardIndex(event.UserID)
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Int64("user_id", event.UserID).
			Int("worker_id", idx).
			Msg("event queue full, event dropped")
		metrics.EventsDroppedTotal.WithLabelValues(string(event.Type)).Inc()
	}
}

// Close stops accepting events and waits for the workers to drain their
// queues or for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(userID, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.UserEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.EventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(ctx, id, event)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, event domain.UserEvent) {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := d.sink.Write(writeCtx, event); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(string(event.Type), "error").Inc()
		d.log.Error().Err(err).
			Str("event_id", event.ID).
			Int64("user_id", event.UserID).
			Int("worker_id", workerID).
			Msg("event delivery failed")
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(string(event.Type), "ok").Inc()
}
