package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/almacen/admin-console/internal/core/domain"
	"github.com/almacen/admin-console/internal/core/ports"
	"github.com/almacen/admin-console/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
	drainTimeout   = 10 * time.Second
)

// AuditDispatcher persists sign-in attempts on a fixed set of workers,
// sharded by username so one user's attempts are written in order.
type AuditDispatcher struct {
	workers []chan domain.SignInAttempt
	repo    ports.AuditRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewAuditDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.SignInAttempt, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SignInAttempt, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *AuditDispatcher) Wait() {
	d.wg.Wait()
}

// Record enqueues an attempt without blocking. When the worker's buffer is
// full the attempt is dropped and counted.
func (d *AuditDispatcher) Record(attempt domain.SignInAttempt) {
	idx := d.shardIndex(attempt.Username)
	select {
	case d.workers[idx] <- attempt:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.AuditDroppedTotal.Inc()
		d.log.Warn().
			Str("username", attempt.Username).
			Int("worker_id", idx).
			Msg("audit queue full, attempt dropped")
	}
}

// shardIndex maps a username deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SignInAttempt) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case attempt, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(label).Dec()
			// A write already dequeued finishes even if shutdown starts meanwhile.
			d.write(context.WithoutCancel(ctx), id, attempt)
		}
	}
}

// drain writes whatever is still buffered for worker id. Attempts left once
// drainTimeout has passed are counted as dropped.
func (d *AuditDispatcher) drain(id int, ch <-chan domain.SignInAttempt) {
	label := strconv.Itoa(id)
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	written, dropped := 0, 0
	for {
		select {
		case attempt, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(label).Dec()
			if ctx.Err() != nil {
				metrics.AuditDroppedTotal.Inc()
				dropped++
				continue
			}
			d.write(ctx, id, attempt)
			written++
		default:
			if written+dropped > 0 {
				d.log.Info().
					Int("worker_id", id).
					Int("written", written).
					Int("dropped", dropped).
					Msg("audit queue drained")
			}
			return
		}
	}
}

func (d *AuditDispatcher) write(ctx context.Context, id int, attempt domain.SignInAttempt) {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := d.repo.InsertAttempt(writeCtx, &attempt); err != nil {
		metrics.AuditWriteErrorsTotal.Inc()
		d.log.Error().Err(err).
			Str("username", attempt.Username).
			Int("worker_id", id).
			Msg("audit write failed")
	}
}
