package types

import (
	"fmt"
	"strings"

	pkgerrors "github.com/reviseapp/revise-backend/internal/pkg/errors"
)

// DueStatus is the user-facing classification of a schedule entry.
type DueStatus string

const (
	DueStatusDueToday  DueStatus = "due_today"
	DueStatusOverdue   DueStatus = "overdue"
	DueStatusSnoozed   DueStatus = "snoozed"
	DueStatusCompleted DueStatus = "completed"
	DueStatusUpcoming  DueStatus = "upcoming"
)

// ScheduleStatus is the persisted completion state of a schedule entry.
// Exactly one of the three states holds at any time.
type ScheduleStatus string

const (
	SchedulePending   ScheduleStatus = "pending"
	ScheduleCompleted ScheduleStatus = "completed"
	ScheduleSnoozed   ScheduleStatus = "snoozed"
)

// Rating is the recall rating submitted when a session finishes.
type Rating string

const (
	RatingAgain Rating = "Again"
	RatingHard  Rating = "Hard"
	RatingGood  Rating = "Good"
	RatingEasy  Rating = "Easy"
)

func ParseRating(raw string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "again":
		return RatingAgain, nil
	case "hard":
		return RatingHard, nil
	case "good":
		return RatingGood, nil
	case "easy":
		return RatingEasy, nil
	}
	return "", fmt.Errorf("%w: unknown rating %q", pkgerrors.ErrValidation, raw)
}

type MasteryLevel string

const (
	MasteryBeginner     MasteryLevel = "Beginner"
	MasteryIntermediate MasteryLevel = "Intermediate"
	MasteryAdvanced     MasteryLevel = "Advanced"
	MasteryMastered     MasteryLevel = "Mastered"
)

// Scope selects which topics a metrics/leaderboard computation covers.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeSubject Scope = "subject"
	ScopeTopic   Scope = "topic"
)

func ParseScope(raw string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "global":
		return ScopeGlobal, nil
	case "subject":
		return ScopeSubject, nil
	case "topic":
		return ScopeTopic, nil
	}
	return "", fmt.Errorf("%w: unknown scope %q", pkgerrors.ErrValidation, raw)
}

// TimeWindow bounds the session history a computation reads.
type TimeWindow string

const (
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
	WindowAll   TimeWindow = "all"
)

func ParseTimeWindow(raw string) (TimeWindow, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "week":
		return WindowWeek, nil
	case "month":
		return WindowMonth, nil
	case "all":
		return WindowAll, nil
	}
	return "", fmt.Errorf("%w: unknown time window %q", pkgerrors.ErrValidation, raw)
}

// Days returns the window length in days. "all" is capped at ten years,
// mirroring the reference query interval.
func (w TimeWindow) Days() int {
	switch w {
	case WindowMonth:
		return 30
	case WindowAll:
		return 3650
	default:
		return 7
	}
}
