package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RevisionSession is one study attempt tied to a schedule entry. It is
// created when the timer starts and never mutated after it is finished.
type RevisionSession struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"topic_id"`
	Topic          *Topic            `gorm:"constraint:OnDelete:CASCADE;foreignKey:TopicID;references:ID" json:"topic,omitempty"`
	ScheduleID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"schedule_id"`
	Schedule       *RevisionSchedule `gorm:"constraint:OnDelete:CASCADE;foreignKey:ScheduleID;references:ID" json:"schedule,omitempty"`
	UserID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	StartedAt      time.Time         `gorm:"not null;column:started_at;index" json:"started_at"`
	EndedAt        *time.Time        `gorm:"column:ended_at" json:"ended_at,omitempty"`
	PlannedSeconds int               `gorm:"not null;column:planned_seconds" json:"planned_seconds"`
	ActualSeconds  int               `gorm:"not null;default:0;column:actual_seconds" json:"actual_seconds"`
	Rating         Rating            `gorm:"column:rating" json:"rating,omitempty"`
	Notes          string            `gorm:"column:notes" json:"notes,omitempty"`
	Finished       bool              `gorm:"not null;default:false;column:finished" json:"finished"`
	CreatedAt      time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"deleted_at,omitempty"`
}

func (RevisionSession) TableName() string {
	return "revision_session"
}
