package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RevisionSchedule is one repetition instance of a topic: the cycle offset it
// was generated from, when it is due, and its completion/snooze state.
type RevisionSchedule struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"topic_id"`
	Topic          *Topic         `gorm:"constraint:OnDelete:CASCADE;foreignKey:TopicID;references:ID" json:"topic,omitempty"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	CycleOffset    int            `gorm:"not null;column:cycle_offset" json:"cycle_offset"`
	DueDate        time.Time      `gorm:"not null;column:due_date;index" json:"due_date"`
	Status         ScheduleStatus `gorm:"not null;default:'pending';column:status" json:"status"`
	CompletedAt    *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	SnoozedTo      *time.Time     `gorm:"column:snoozed_to" json:"snoozed_to,omitempty"`
	SnoozeDays     int            `gorm:"not null;default:0;column:snooze_days" json:"snooze_days"`
	CascadeSnoozed bool           `gorm:"not null;default:false;column:cascade_snoozed" json:"cascade_snoozed"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (RevisionSchedule) TableName() string {
	return "revision_schedule"
}

// EffectiveDate is the date the entry actually surfaces to the learner:
// the snoozed-to date when snoozed, the due date otherwise. It is always
// >= the original due date.
func (s *RevisionSchedule) EffectiveDate() time.Time {
	if s.Status == ScheduleSnoozed && s.SnoozedTo != nil && s.SnoozedTo.After(s.DueDate) {
		return *s.SnoozedTo
	}
	return s.DueDate
}

// DueEntries buckets a user's open schedule entries by due status.
type DueEntries struct {
	DueToday []*RevisionSchedule `json:"due_today"`
	Overdue  []*RevisionSchedule `json:"overdue"`
	Snoozed  []*RevisionSchedule `json:"snoozed"`
}
