package decoder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-quest-bot/internal/domain/ports/adapter"
	"telegram-quest-bot/internal/infra/metrics"
)

// Compile-time check
var _ adapter.QRDecoder = (*Pool)(nil)

var ErrPoolStopped = errors.New("decoder pool stopped")

// Pool runs QR detection on a fixed set of worker goroutines so the CPU-heavy
// decode never runs on the caller's goroutine. It is process-wide state:
// created once at startup, stopped once at shutdown. Stop drains jobs already
// queued before returning.
type Pool struct {
	jobs chan job
	quit chan struct{}
	wg   sync.WaitGroup
	n    int
	log  *zerolog.Logger

	// mu orders submissions against Stop: a job enqueued under the read lock
	// is in the queue before Stop flips stopped and releases the workers, so
	// the drain always sees it.
	mu      sync.RWMutex
	stopped bool

	// decodeFn is swapped in tests; defaults to the gozxing pipeline.
	decodeFn func([]byte) []string
}

type job struct {
	image []byte
	out   chan []string
}

func NewPool(workers, queueSize int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers * 4
	}
	return &Pool{
		jobs:     make(chan job, queueSize),
		quit:     make(chan struct{}),
		n:        workers,
		log:      logger,
		decodeFn: decodeQR,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case j := <-p.jobs:
					p.run(id, j)
				case <-p.quit:
					// Drain whatever was accepted before the stop.
					for {
						select {
						case j := <-p.jobs:
							p.run(id, j)
						default:
							return
						}
					}
				}
			}
		}(i + 1)
	}
	p.log.Info().Int("workers", p.n).Msg("decoder pool started")
}

// Stop rejects new submissions, finishes queued jobs and waits for workers.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	close(p.quit)
	p.wg.Wait()
	p.log.Info().Msg("decoder pool stopped")
}

// Decode hands the image to a worker and suspends until the result is ready
// or ctx is cancelled. On cancellation the worker still runs the job to
// completion in the background; only the wait is abandoned.
func (p *Pool) Decode(ctx context.Context, imageBytes []byte) ([]string, error) {
	j := job{image: imageBytes, out: make(chan []string, 1)}
	if err := p.submit(ctx, j); err != nil {
		return nil, err
	}

	select {
	case texts := <-j.out:
		return texts, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// submit enqueues under the read lock. Holding it across the send keeps Stop
// from closing quit mid-enqueue, so an accepted job is always run.
func (p *Pool) submit(ctx context.Context, j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.jobs <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) run(workerID int, j job) {
	start := time.Now()
	texts := p.safeDecode(workerID, j.image)
	metrics.ObserveDecode(time.Since(start), len(texts) > 0)
	// out is buffered; never blocks even if the caller gave up.
	j.out <- texts
}

// safeDecode keeps a panicking detector from taking the worker down with it.
func (p *Pool) safeDecode(workerID int, image []byte) (texts []string) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error().Int("worker", workerID).Interface("panic", rec).Msg("decode panicked")
			texts = nil
		}
	}()
	return p.decodeFn(image)
}
