package types

import (
	"time"

	"github.com/google/uuid"
)

// MetricsSnapshot is a derived per-user performance summary over a scope and
// time window. It is fully recomputable from session + schedule history.
type MetricsSnapshot struct {
	UserID             uuid.UUID `json:"user_id"`
	OnTimeRate         float64   `json:"on_time_rate"`
	TotalMinutes       float64   `json:"total_minutes"`
	AvgTimePerRevision float64   `json:"avg_time_per_revision"`
	Consistency        float64   `json:"consistency"`
	Coverage           float64   `json:"coverage"`
}

// LeaderboardEntry is a persisted MetricsSnapshot plus its assigned rank,
// keyed uniquely by (user, scope, scope id, time window). Rows are replaced
// wholesale per recomputation run, never partially updated.
type LeaderboardEntry struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;index:idx_leaderboard_key,unique" json:"user_id"`
	User               *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Scope              Scope      `gorm:"not null;column:scope;index:idx_leaderboard_key,unique" json:"scope"`
	ScopeID            string     `gorm:"not null;default:'';column:scope_id;index:idx_leaderboard_key,unique" json:"scope_id"`
	TimeWindow         TimeWindow `gorm:"not null;column:time_window;index:idx_leaderboard_key,unique" json:"time_window"`
	Rank               int        `gorm:"not null;column:rank" json:"rank"`
	OnTimeRate         float64    `gorm:"not null;default:0;column:on_time_rate" json:"on_time_rate"`
	TotalMinutes       float64    `gorm:"not null;default:0;column:total_minutes" json:"total_minutes"`
	AvgTimePerRevision float64    `gorm:"not null;default:0;column:avg_time_per_revision" json:"avg_time_per_revision"`
	Consistency        float64    `gorm:"not null;default:0;column:consistency" json:"consistency"`
	Coverage           float64    `gorm:"not null;default:0;column:coverage" json:"coverage"`
	CalculatedAt       time.Time  `gorm:"not null;column:calculated_at" json:"calculated_at"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

func (LeaderboardEntry) TableName() string {
	return "leaderboard_entry"
}

// Snapshot extracts the metrics portion of a leaderboard row.
func (e *LeaderboardEntry) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		UserID:             e.UserID,
		OnTimeRate:         e.OnTimeRate,
		TotalMinutes:       e.TotalMinutes,
		AvgTimePerRevision: e.AvgTimePerRevision,
		Consistency:        e.Consistency,
		Coverage:           e.Coverage,
	}
}

// ComparisonBucket is a synthetic aggregate (topper/average/struggling) or
// the requesting user's own row, shaped like a metrics snapshot plus a
// display rank.
type ComparisonBucket struct {
	Label   string          `json:"label"`
	Rank    int             `json:"rank"`
	Present bool            `json:"present"`
	Metrics MetricsSnapshot `json:"metrics"`
}

// ComparisonData contextualizes one user's metrics against the cohort.
type ComparisonData struct {
	You        ComparisonBucket `json:"you"`
	Topper     ComparisonBucket `json:"topper"`
	Average    ComparisonBucket `json:"average"`
	Struggling ComparisonBucket `json:"struggling"`
}
