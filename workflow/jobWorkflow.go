package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/models"
	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// a processing job whose lock is older than this is presumed orphaned by
	// a dead worker and may be reclaimed
	JobStaleAfter = 5 * time.Minute

	jobRetryBackoff = time.Minute
)

// JobClaimable reports whether a job row may be picked up at now: pending and
// due, or processing under a stale lock.
func JobClaimable(job models.ProcessingJob, now time.Time) bool {
	switch job.Status {
	case models.JobStatusPending:
		return job.NextAttemptAt == nil || !job.NextAttemptAt.After(now)
	case models.JobStatusProcessing:
		return job.LockedAt != nil && now.Sub(*job.LockedAt) > JobStaleAfter
	}
	return false
}

// ClaimNextJob atomically claims one due job for workerId. The claim is a
// conditional update guarded on the row's current status and lock, so two
// workers polling simultaneously can never claim the same job. Returns nil
// without error when nothing is due.
func ClaimNextJob(ctx context.Context, db *gorm.DB, workerId string) (*models.ProcessingJob, error) {
	now := time.Now()

	var candidates []models.ProcessingJob
	err := db.WithContext(ctx).
		Where("(status = ? AND (next_attempt_at IS NULL OR next_attempt_at <= ?)) OR (status = ? AND locked_at < ?)",
			models.JobStatusPending, now,
			models.JobStatusProcessing, now.Add(-JobStaleAfter)).
		Order("id ASC").
		Limit(5).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		result := db.WithContext(ctx).Model(&models.ProcessingJob{}).
			Where("id = ? AND status = ? AND (locked_at <=> ? OR locked_at < ?)",
				candidate.ID, candidate.Status, candidate.LockedAt, now.Add(-JobStaleAfter)).
			Updates(map[string]interface{}{
				"status":    models.JobStatusProcessing,
				"locked_by": workerId,
				"locked_at": now,
				"attempts":  gorm.Expr("attempts + 1"),
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			continue // lost the race, try the next candidate
		}
		candidate.Status = models.JobStatusProcessing
		candidate.LockedBy = workerId
		candidate.LockedAt = &now
		candidate.Attempts++
		return &candidate, nil
	}
	return nil, nil
}

// CompleteJob marks a claimed job done. The guard on locked_by means a
// reclaimed job cannot be completed by the worker that lost it.
func CompleteJob(ctx context.Context, db *gorm.DB, job *models.ProcessingJob) error {
	result := db.WithContext(ctx).Model(&models.ProcessingJob{}).
		Where("id = ? AND status = ? AND locked_by = ?", job.ID, models.JobStatusProcessing, job.LockedBy).
		Updates(map[string]interface{}{
			"status":     models.JobStatusDone,
			"last_error": "",
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorAlreadyProcessed
	}
	return nil
}

// FailJob records a processing failure. The job goes back to pending with a
// backoff until attempts run out, then parks as failed.
func FailJob(ctx context.Context, db *gorm.DB, job *models.ProcessingJob, procErr error) error {
	updates := map[string]interface{}{
		"last_error": procErr.Error(),
	}
	if job.Attempts >= job.MaxAttempts {
		updates["status"] = models.JobStatusFailed
	} else {
		updates["status"] = models.JobStatusPending
		updates["next_attempt_at"] = time.Now().Add(jobRetryBackoff * time.Duration(job.Attempts))
	}
	return db.WithContext(ctx).Model(&models.ProcessingJob{}).
		Where("id = ? AND locked_by = ?", job.ID, job.LockedBy).
		Updates(updates).Error
}

// RunJob dispatches a claimed job to its handler. An unrecognized type is a
// processing failure like any other, so the row retries and then parks
// instead of wedging the dispatcher.
func RunJob(ctx context.Context, logger *logrus.Logger, job *models.ProcessingJob) error {
	switch job.Type {
	case models.JobTypeReconciliationUpload:
		return ProcessReconciliationUpload(ctx, logger, job.ReferenceId)
	}
	err := fmt.Errorf("unknown job type %q", job.Type)
	config.LogError(logger, "jobWorkflow.go", "RunJob", "UnknownJobType", job.ID, err)
	return err
}
