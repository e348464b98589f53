package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/bandobast/zone-monitor/internal/api/metrics"
	"github.com/bandobast/zone-monitor/internal/core/domain"
	"github.com/bandobast/zone-monitor/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// job is either a position to merge or a removal.
type job struct {
	position ports.PositionInput
	remove   bool
}

func (j job) entityID() string {
	return j.position.EntityID
}

// Dispatcher routes work to a fixed set of workers using consistent hashing
// on the entity id, so every entity's updates and removals are applied in the
// order they were enqueued.
type Dispatcher struct {
	workers []chan job
	service ports.TrackingService
	log     zerolog.Logger
	// done is the Start context's Done channel. Sends give up once it closes.
	done <-chan struct{}
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.TrackingService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled,
// after which enqueued work is dropped. Call Start before any producer runs.
func (d *Dispatcher) Start(ctx context.Context) {
	d.done = ctx.Done()
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a position to the worker responsible for its entity.
// It blocks once that worker's buffer is full, until the dispatcher stops.
func (d *Dispatcher) Enqueue(in ports.PositionInput) {
	d.send(job{position: in})
}

// EnqueueBatch enqueues positions in order.
func (d *Dispatcher) EnqueueBatch(ins []ports.PositionInput) {
	for _, in := range ins {
		d.Enqueue(in)
	}
}

// EnqueueRemoval schedules removal of entityID behind any of its pending positions.
func (d *Dispatcher) EnqueueRemoval(entityID string) {
	d.send(job{position: ports.PositionInput{EntityID: entityID}, remove: true})
}

func (d *Dispatcher) send(j job) {
	idx := d.shardIndex(j.entityID())
	select {
	case d.workers[idx] <- j:
	case <-d.done:
		d.log.Debug().Str("entity_id", j.entityID()).Bool("remove", j.remove).Msg("dispatcher stopped, job dropped")
		return
	}
	metrics.DispatchQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps an entity id deterministically to a worker index.
func (d *Dispatcher) shardIndex(entityID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(entityID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	depth := metrics.DispatchQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			d.process(ctx, id, j)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, worker int, j job) {
	if j.remove {
		err := d.service.Remove(ctx, j.entityID())
		switch {
		case errors.Is(err, domain.ErrUnknownEntity):
			d.log.Debug().Str("entity_id", j.entityID()).Msg("removal of untracked entity ignored")
		case err != nil:
			d.log.Error().Err(err).Str("entity_id", j.entityID()).Int("worker_id", worker).Msg("removal failed")
		}
		return
	}

	if _, err := d.service.Submit(ctx, j.position); err != nil {
		d.log.Error().Err(err).
			Str("entity_id", j.entityID()).
			Str("source", j.position.Source).
			Int("worker_id", worker).
			Msg("position processing failed")
	}
}
