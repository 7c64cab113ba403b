package models

import (
	"time"

	"gorm.io/gorm"
)

// ProcessingJob is the durable queue behind asynchronous work (settlement
// file parsing). The row is written inside the same transaction as the
// upload record, so a job can never be lost between accepting the file and
// processing it; workers claim rows with a stale-lock reclaim, making
// delivery at-least-once.
type ProcessingJob struct {
	ID            int        `gorm:"primary_key" json:"id"`
	Type          JobType    `gorm:"size:40;not null" json:"type"`
	ReferenceId   int        `gorm:"index;not null" json:"reference_id"`
	Status        JobStatus  `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Attempts      int        `gorm:"default:0" json:"attempts"`
	MaxAttempts   int        `gorm:"default:5" json:"max_attempts"`
	LockedBy      string     `gorm:"size:60" json:"locked_by"`
	LockedAt      *time.Time `json:"locked_at"`
	NextAttemptAt *time.Time `json:"next_attempt_at"`
	LastError     string     `gorm:"type:text" json:"last_error"`
	CorrelationId string     `gorm:"size:40" json:"correlation_id"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func EnqueueJob(tx *gorm.DB, job *ProcessingJob) error {
	if job.MaxAttempts <= 0 {
		job.MaxAttempts = 5
	}
	job.Status = JobStatusPending
	return tx.Create(job).Error
}
