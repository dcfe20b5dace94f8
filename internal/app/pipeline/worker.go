package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"coachlens/internal/app/jobs"
	"coachlens/internal/app/model"
)

// Pool runs queued pipeline jobs on a fixed set of workers. Workers stop when
// the context is cancelled or the queue is closed; in-flight jobs finish
// first.
type Pool struct {
	runner  *Runner
	queue   *Queue
	workers int
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewPool(runner *Runner, queue *Queue, workers int, log *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 2
	}
	return &Pool{runner: runner, queue: queue, workers: workers, log: log}
}

func (p *Pool) Start(ctx context.Context) {
	p.log.Info("starting worker pool", zap.Int("workers", p.workers))
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop closes the queue and waits for workers to drain it.
func (p *Pool) Stop() {
	p.queue.Close()
	p.wg.Wait()
	p.log.Info("worker pool stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	log := p.log.With(zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			log.Debug("worker stopping, context cancelled")
			return
		case task, ok := <-p.queue.Tasks():
			if !ok {
				log.Debug("worker stopping, queue closed")
				return
			}
			p.run(ctx, log, task)
		}
	}
}

func (p *Pool) run(ctx context.Context, log *zap.Logger, task Task) {
	log = log.With(zap.String("kind", string(task.Kind)), zap.String("job_id", task.ID))
	jobsStarted.WithLabelValues(string(task.Kind)).Inc()
	start := time.Now()

	var err error
	switch task.Kind {
	case model.KindEvaluation:
		err = p.runner.RunEvaluation(ctx, task.ID)
	case model.KindComparison:
		err = p.runner.RunComparison(ctx, task.ID)
	default:
		log.Error("unknown task kind dropped")
		return
	}
	jobDuration.WithLabelValues(string(task.Kind)).Observe(time.Since(start).Seconds())

	var conflict *jobs.ConflictError
	switch {
	case err == nil:
		log.Info("job finished", zap.Duration("elapsed", time.Since(start)))
	case errors.As(err, &conflict):
		// Another worker won the start gate; the job is in good hands.
		log.Info("job already claimed", zap.String("status", string(conflict.Current)))
	default:
		log.Error("job failed", zap.Error(err))
	}
}
