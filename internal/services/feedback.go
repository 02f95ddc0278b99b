package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"skillup-go/internal/analytics"
	"skillup-go/internal/config"
	"skillup-go/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrFeedbackQueueFull = errors.New("feedback queue is full")
	ErrFeedbackStopped   = errors.New("feedback worker is stopped")
)

// FeedbackInput is what the generator sees of a finished attempt.
type FeedbackInput struct {
	Title    string
	Score    int
	MaxScore int
	Passed   bool
}

// FeedbackGenerator turns an attempt summary into free text.
type FeedbackGenerator interface {
	Generate(ctx context.Context, in FeedbackInput) (string, error)
}

// FeedbackGeneratorFunc adapts a function to FeedbackGenerator.
type FeedbackGeneratorFunc func(ctx context.Context, in FeedbackInput) (string, error)

func (f FeedbackGeneratorFunc) Generate(ctx context.Context, in FeedbackInput) (string, error) {
	return f(ctx, in)
}

// RuleBasedFeedback writes feedback from score bands.
type RuleBasedFeedback struct{}

func (RuleBasedFeedback) Generate(ctx context.Context, in FeedbackInput) (string, error) {
	pct := analytics.Percent(float64(in.Score), float64(in.MaxScore))
	var advice string
	switch {
	case pct >= 90:
		advice = "Excellent work. You have a strong command of this material."
	case in.Passed:
		advice = "Well done. Review the questions you missed to consolidate what you learned."
	case pct >= 50:
		advice = "You are close. Revisit the related content and try again."
	default:
		advice = "This topic needs more study. Work through the learning path content before retrying."
	}
	return fmt.Sprintf("You scored %d out of %d (%.0f%%) on %q. %s", in.Score, in.MaxScore, pct, in.Title, advice), nil
}

type FeedbackJob struct {
	ResultID uint
	Input    FeedbackInput
}

// FeedbackStats counts what the worker has done since it started.
type FeedbackStats struct {
	Enqueued  int64 `json:"enqueued"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Retries   int64 `json:"retries"`
	Dropped   int64 `json:"dropped"`
}

// FeedbackWorker generates attempt feedback off the request path.
// Each job is retried with exponential backoff; exhausted jobs are logged and counted.
type FeedbackWorker struct {
	log   *zap.Logger
	store *repository.Store
	gen   FeedbackGenerator
	cfg   config.FeedbackConfig

	jobs   chan FeedbackJob
	quit   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool

	enqueued  atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	retries   atomic.Int64
	dropped   atomic.Int64
}

func NewFeedbackWorker(log *zap.Logger, store *repository.Store, gen FeedbackGenerator, cfg config.FeedbackConfig) *FeedbackWorker {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &FeedbackWorker{
		log:    log.Named("feedback"),
		store:  store,
		gen:    gen,
		cfg:    cfg,
		jobs:   make(chan FeedbackJob, cfg.QueueSize),
		quit:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the worker goroutines. Calling it twice has no effect.
func (w *FeedbackWorker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true
	w.log.Info("Starting feedback workers", zap.Int("workers", w.cfg.Workers), zap.Int("queue_size", w.cfg.QueueSize))
	for i := 0; i < w.cfg.Workers; i++ {
		w.wg.Add(1)
		go w.run()
	}
}

// Enqueue hands a job to the workers without blocking.
func (w *FeedbackWorker) Enqueue(job FeedbackJob) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		w.dropped.Add(1)
		return ErrFeedbackStopped
	}
	select {
	case w.jobs <- job:
		w.enqueued.Add(1)
		return nil
	default:
		w.dropped.Add(1)
		return ErrFeedbackQueueFull
	}
}

// Stop refuses new jobs and waits for queued ones to finish.
// If ctx ends first, in-flight jobs are cancelled, queued jobs are counted as dropped
// and ctx.Err is returned.
func (w *FeedbackWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	close(w.jobs)
	w.mu.Unlock()

	if !started {
		if n := w.drain(); n > 0 {
			w.log.Warn("Feedback worker stopped before it started", zap.Int64("dropped", n))
		}
		w.cancel()
		return nil
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		w.cancel()
		w.log.Info("Feedback workers drained", zap.Any("stats", w.Stats()))
		return nil
	case <-ctx.Done():
		close(w.quit)
		w.cancel()
		n := w.drain()
		w.log.Warn("Feedback workers did not drain in time", zap.Int64("dropped", n))
		return ctx.Err()
	}
}

// drain empties the closed job queue and counts what it removed as dropped.
func (w *FeedbackWorker) drain() int64 {
	var n int64
	for range w.jobs {
		n++
	}
	w.dropped.Add(n)
	return n
}

func (w *FeedbackWorker) Stats() FeedbackStats {
	return FeedbackStats{
		Enqueued:  w.enqueued.Load(),
		Succeeded: w.succeeded.Load(),
		Failed:    w.failed.Load(),
		Retries:   w.retries.Load(),
		Dropped:   w.dropped.Load(),
	}
}

func (w *FeedbackWorker) run() {
	defer w.wg.Done()
	for job := range w.jobs {
		select {
		case <-w.quit:
			w.dropped.Add(1)
			continue
		default:
		}
		w.process(job)
	}
}

func (w *FeedbackWorker) process(job FeedbackJob) {
	backoff := w.cfg.InitialBackoff
	var lastErr error
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			w.retries.Add(1)
			if !w.sleep(backoff) {
				break
			}
			backoff *= 2
		}
		if lastErr = w.attempt(job); lastErr == nil {
			w.succeeded.Add(1)
			w.log.Debug("Feedback stored", zap.Uint("attempt_id", job.ResultID), zap.Int("try", attempt))
			return
		}
		w.log.Warn("Feedback generation failed",
			zap.Uint("attempt_id", job.ResultID),
			zap.Int("try", attempt),
			zap.Int("max_tries", w.cfg.MaxAttempts),
			zap.Error(lastErr))
	}
	w.failed.Add(1)
	w.log.Error("Giving up on feedback", zap.Uint("attempt_id", job.ResultID), zap.Error(lastErr))
}

func (w *FeedbackWorker) attempt(job FeedbackJob) error {
	ctx, cancel := context.WithTimeout(w.ctx, w.cfg.Timeout)
	defer cancel()

	text, err := w.gen.Generate(ctx, job.Input)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	uow := w.store.UnitOfWork()
	result, err := uow.AssessmentResults.GetByID(ctx, job.ResultID)
	if err != nil {
		return fmt.Errorf("load attempt: %w", err)
	}
	result.Feedback = text
	uow.AssessmentResults.Update(result)
	return uow.SaveChanges(ctx)
}

// sleep waits d and reports false if the worker was told to quit.
func (w *FeedbackWorker) sleep(d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-w.quit:
		return false
	}
}
