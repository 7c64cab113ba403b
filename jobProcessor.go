package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/mmdatafocus/sales_backend/workflow"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// JobProcessor polls the processing_jobs table and runs claimed jobs. The
// claim itself is a guarded conditional update, so running several replicas
// is safe; the optional Redis lock only keeps idle replicas from hammering
// the table.
type JobProcessor struct {
	DB       *gorm.DB
	Logger   *logrus.Logger
	WorkerID string
	Interval time.Duration
}

func NewJobProcessor(db *gorm.DB, logger *logrus.Logger) *JobProcessor {
	return &JobProcessor{
		DB:       db,
		Logger:   logger,
		WorkerID: "worker-" + time.Now().Format("20060102-150405.000"),
		Interval: 2 * time.Second,
	}
}

func shouldRunJobProcessor() bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv("JOB_PROCESSING")))
	if val == "false" {
		return false
	}
	// Default on: a stored job must eventually run even when the Pub/Sub
	// wakeup channel is absent or broken. Claims are idempotent, so extra
	// pollers are harmless.
	return true
}

func (p *JobProcessor) Run(ctx context.Context) {
	if p == nil || p.DB == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		p.processOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.Interval):
		}
	}
}

func (p *JobProcessor) processOnce(ctx context.Context) {
	if p.DB == nil {
		return
	}
	// a panicking job must not take the poller goroutine down with it; the
	// row stays claimed until the stale-lock window reclaims it
	defer func() {
		if r := recover(); r != nil {
			config.LogError(p.Logger, "jobProcessor.go", "processOnce", "Recovered", nil, fmt.Errorf("panic: %v", r))
		}
	}()
	// best-effort polling lock; claim correctness never depends on Redis
	var lock *redislock.Lock
	if locker := config.GetRedisLock(); locker != nil {
		var err error
		lock, err = locker.Obtain(ctx, "lock:job-processor", 30*time.Second, nil)
		if err == redislock.ErrNotObtained {
			return
		}
		if err != nil {
			config.LogError(p.Logger, "jobProcessor.go", "processOnce", "ObtainLock", nil, err)
		}
	}
	if lock != nil {
		defer func() { _ = lock.Release(ctx) }()
	}

	for {
		job, err := workflow.ClaimNextJob(ctx, p.DB, p.WorkerID)
		if err != nil {
			config.LogError(p.Logger, "jobProcessor.go", "processOnce", "ClaimNextJob", nil, err)
			return
		}
		if job == nil {
			return
		}

		p.Logger.WithFields(logrus.Fields{
			"job_id":         job.ID,
			"job_type":       job.Type,
			"reference_id":   job.ReferenceId,
			"attempt":        job.Attempts,
			"correlation_id": job.CorrelationId,
		}).Info("[job.claimed]")

		jobCtx := ctx
		if job.CorrelationId != "" {
			jobCtx = utils.SetCorrelationIdInContext(ctx, job.CorrelationId)
		}
		if err := workflow.RunJob(jobCtx, p.Logger, job); err != nil {
			if failErr := workflow.FailJob(ctx, p.DB, job, err); failErr != nil {
				config.LogError(p.Logger, "jobProcessor.go", "processOnce", "FailJob", job.ID, failErr)
			}
			continue
		}
		if err := workflow.CompleteJob(ctx, p.DB, job); err != nil {
			config.LogError(p.Logger, "jobProcessor.go", "processOnce", "CompleteJob", job.ID, err)
		}
	}
}
