package page

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/papercomputeco/frontier/pkg/logger"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 64
)

// Job is one page for the pool to fetch. Done is called from a worker
// goroutine with the outcome.
type Job struct {
	Ctx  context.Context
	URL  string
	Done func(*Page, error)
}

// PoolConfig is the configuration options for the fetch pool.
type PoolConfig struct {
	// Source fetches the pages.
	Source Source

	// NumWorkers is the number of concurrent fetches.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 64).
	QueueSize uint

	Logger *slog.Logger
}

// Pool fetches pages concurrently on a fixed number of workers.
type Pool struct {
	config *PoolConfig
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a fetch pool and starts its worker goroutines.
func NewPool(c *PoolConfig) (*Pool, error) {
	if c.Source == nil {
		return nil, fmt.Errorf("pool needs a page source")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	log := c.Logger
	if log == nil {
		log = logger.Nop()
	}

	p := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: log,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Enqueue submits a job. It returns false, dropping the job, when the queue
// is full.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("fetch queued", "url", job.URL)
		return true
	default:
		p.logger.Error("fetch not queued, queue full, job dropped", "url", job.URL)
		return false
	}
}

// Close stops accepting jobs and waits for queued fetches to finish.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("fetch worker started", "worker_id", id)

	for job := range p.queue {
		p.process(job)
	}

	p.logger.Debug("fetch worker stopped", "worker_id", id)
}

func (p *Pool) process(job Job) {
	ctx := job.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		pg  *Page
		err error
	)
	if err = ctx.Err(); err == nil {
		pg, err = p.config.Source.Fetch(ctx, job.URL)
	}

	if job.Done != nil {
		job.Done(pg, err)
	}
}
