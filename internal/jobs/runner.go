package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/college-portal/internal/ctxutil"
	"github.com/Spok95/college-portal/internal/logging"
	"github.com/Spok95/college-portal/internal/observability"
)

type Job func(ctx context.Context) error

type Runner struct {
	ctx context.Context
	log *zap.Logger
	wg  sync.WaitGroup
}

func New(ctx context.Context, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{ctx: ctx, log: log.Named("jobs")}
}

// Every запускает fn с интервалом до отмены контекста. Первый запуск: через interval.
func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				r.run(name, fn)
			}
		}
	}()
}

// Wait ждёт выхода всех циклов Every, включая текущие запуски задач.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// run: один запуск с метриками; паника в задаче не роняет цикл.
func (r *Runner) run(name string, fn Job) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic in job %s: %v", name, p)
			jobErrors.WithLabelValues(name).Inc()
			observability.CaptureErr(err)
			r.log.Error("job panicked", zap.String("job", name), zap.Error(err))
		}
		jobRuns.WithLabelValues(name).Inc()
		jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	ctx := ctxutil.WithOp(r.ctx, "job."+name)
	if err := fn(ctx); err != nil {
		jobErrors.WithLabelValues(name).Inc()
		observability.CaptureRemote(err)
		logging.FromContext(ctx, r.log).Error("job failed", zap.Error(err))
	}
}
