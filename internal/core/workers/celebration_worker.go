package workers

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/habitgrid/internal/core/domain"
)

const queueSize = 100

// Notifier delivers a celebration to whatever renders it.
type Notifier interface {
	Notify(ctx context.Context, habit domain.Habit) error
}

type CelebrationJob struct {
	Habit domain.Habit
}

// CelebrationWorker moves celebrations off the command path. Jobs are
// dropped when the queue is full.
type CelebrationWorker struct {
	notifier Notifier
	logger   *zap.Logger
	jobs     chan CelebrationJob
	wg       sync.WaitGroup
}

func NewCelebrationWorker(notifier Notifier, logger *zap.Logger) *CelebrationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CelebrationWorker{
		notifier: notifier,
		logger:   logger,
		jobs:     make(chan CelebrationJob, queueSize),
	}
}

func (w *CelebrationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.logger.Info("celebration worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.logger.Info("celebration worker shutting down")
				return
			}
		}
	}()
}

// Wait blocks until the worker goroutine has exited.
func (w *CelebrationWorker) Wait() {
	w.wg.Wait()
}

// Celebrate enqueues the habit. It never blocks.
func (w *CelebrationWorker) Celebrate(ctx context.Context, habit domain.Habit) {
	select {
	case w.jobs <- CelebrationJob{Habit: habit}:
	default:
		w.logger.Warn("celebration queue full, dropping job", zap.String("habit_id", habit.ID))
	}
}

func (w *CelebrationWorker) processJob(ctx context.Context, job CelebrationJob) {
	if err := w.notifier.Notify(ctx, job.Habit); err != nil {
		w.logger.Error("failed to deliver celebration", zap.String("habit_id", job.Habit.ID), zap.Error(err))
		return
	}
	w.logger.Debug("celebration delivered", zap.String("habit_id", job.Habit.ID), zap.String("name", job.Habit.Name))
}

// LogNotifier only records the celebration.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, habit domain.Habit) error {
	n.logger.Info("week complete", zap.String("habit_id", habit.ID), zap.String("name", habit.Name))
	return nil
}
