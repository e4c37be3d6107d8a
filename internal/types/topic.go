package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Topic struct {
	ID               uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID                `gorm:"type:uuid;not null;index" json:"user_id"`
	User             *User                    `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Subject          string                   `gorm:"not null;column:subject;index" json:"subject"`
	Title            string                   `gorm:"not null;column:title" json:"title"`
	FirstStudied     *time.Time               `gorm:"column:first_studied" json:"first_studied,omitempty"`
	EstimatedMinutes int                      `gorm:"not null;default:30;column:estimated_minutes" json:"estimated_minutes"`
	Weightage        int                      `gorm:"not null;default:3;column:weightage" json:"weightage"`
	Difficulty       int                      `gorm:"not null;default:3;column:difficulty" json:"difficulty"`
	MasteryLevel     MasteryLevel             `gorm:"not null;default:'Beginner';column:mastery_level" json:"mastery_level"`
	MustWin          bool                     `gorm:"not null;default:false;column:must_win" json:"must_win"`
	IsArchived       bool                     `gorm:"not null;default:false;column:is_archived" json:"is_archived"`
	Frequency        datatypes.JSONSlice[int] `gorm:"column:frequency" json:"frequency"`
	CreatedAt        time.Time                `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time                `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt           `gorm:"index" json:"deleted_at,omitempty"`
}

func (Topic) TableName() string {
	return "topic"
}

// RevisionFrequencyOf returns the topic's configured frequency, falling back
// to the derived preset when none was stored.
func (t *Topic) RevisionFrequencyOf() RevisionFrequency {
	if len(t.Frequency) == 0 {
		return DeriveFrequency(t.Weightage, t.Difficulty)
	}
	return RevisionFrequency(t.Frequency)
}
