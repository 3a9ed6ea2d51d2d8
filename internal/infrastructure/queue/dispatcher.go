package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmskeleton/backend/internal/api/metrics"
	"github.com/farmskeleton/backend/internal/core/domain"
	"github.com/farmskeleton/backend/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	drainTimeout   = 5 * time.Second
)

// Dispatcher routes audit events to a fixed set of workers using consistent
// hashing on the account email, preserving per-account event ordering.
type Dispatcher struct {
	workers []chan domain.AuthEvent
	service ports.AuditService
	log     zerolog.Logger
}

var _ ports.AuditSink = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.AuditService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuthEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuthEvent, channelBuffer)
	}
	return d
}

// Run processes events until ctx is cancelled, then drains whatever is still
// buffered and returns once every worker has stopped.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i, ch := range d.workers {
		wg.Add(1)
		go func(id int, ch <-chan domain.AuthEvent) {
			defer wg.Done()
			d.runWorker(ctx, id, ch)
		}(i, ch)
	}
	wg.Wait()
	return nil
}

// Enqueue hands an event to the worker responsible for its account. It never
// blocks: when that worker's buffer is full the event is dropped and counted.
func (d *Dispatcher) Enqueue(event domain.AuthEvent) {
	idx := d.shardIndex(shardKey(event))
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditDroppedTotal.Inc()
		d.log.Warn().
			Str("type", string(event.Type)).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

func shardKey(e domain.AuthEvent) string {
	if e.Email != "" {
		return e.Email
	}
	return e.Subject
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuthEvent) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, event)
		}
	}
}

// drain flushes buffered events after shutdown has been requested.
func (d *Dispatcher) drain(id int, ch <-chan domain.AuthEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-ch:
			d.process(ctx, id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, event domain.AuthEvent) {
	if err := d.service.Process(ctx, event); err != nil {
		metrics.AuditErrorsTotal.Inc()
		d.log.Error().Err(err).
			Str("type", string(event.Type)).
			Int("worker_id", id).
			Msg("audit event processing failed")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues(string(event.Type)).Inc()
}
