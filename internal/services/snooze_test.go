package services

import (
  "errors"
  "testing"

  pkgerrors "github.com/reviseapp/revise-backend/internal/pkg/errors"
  "github.com/reviseapp/revise-backend/internal/repos"
  "github.com/reviseapp/revise-backend/internal/types"
)

func newSnoozeFixture(t *testing.T) (SnoozeService, ScheduleService, *testDeps) {
  t.Helper()
  db := testDB(t)
  log := testLogger()
  deps := &testDeps{
    db:           db,
    topicRepo:    repos.NewTopicRepo(db, log),
    scheduleRepo: repos.NewRevisionScheduleRepo(db, log),
    sessionRepo:  repos.NewRevisionSessionRepo(db, log),
  }
  snooze := NewSnoozeService(db, log, deps.scheduleRepo)
  schedule := NewScheduleService(db, log, deps.topicRepo, deps.scheduleRepo)
  return snooze, schedule, deps
}

func TestSnoozeOne_CascadeShiftsLaterEntries(t *testing.T) {
  snooze, schedule, deps := newSnoozeFixture(t)
  user := seedUser(t, deps.db)
  topic := seedTopic(t, deps.db, user.ID, types.RevisionFrequency{7, 14, 21}, day("2024-01-01"))
  if _, err := schedule.GenerateSchedule(testCtx, nil, topic); err != nil {
    t.Fatalf("GenerateSchedule: %v", err)
  }
  entries := loadEntries(t, deps.db, topic.ID)

  result, err := snooze.SnoozeOne(testCtx, entries[0].ID, 3, true, day("2024-01-08"))
  if err != nil {
    t.Fatalf("SnoozeOne: %v", err)
  }
  want := []string{"2024-01-11", "2024-01-18", "2024-01-25"}
  if len(result.NewDates) != len(want) {
    t.Fatalf("expected %d touched dates, got %d", len(want), len(result.NewDates))
  }
  for i, date := range result.NewDates {
    if got := date.Format("2006-01-02"); got != want[i] {
      t.Fatalf("date %d: expected %s, got %s", i, want[i], got)
    }
  }

  rows := loadEntries(t, deps.db, topic.ID)
  target := rows[0]
  if target.Status != types.ScheduleSnoozed {
    t.Fatalf("expected target snoozed, got %s", target.Status)
  }
  // The target keeps its original due date; only the surface date moves.
  if got := target.DueDate.Format("2006-01-02"); got != "2024-01-08" {
    t.Fatalf("expected target due date untouched, got %s", got)
  }
  if target.SnoozedTo == nil || target.SnoozedTo.Format("2006-01-02") != "2024-01-11" {
    t.Fatalf("expected snoozed_to 2024-01-11, got %v", target.SnoozedTo)
  }
  if got := rows[1].DueDate.Format("2006-01-02"); got != "2024-01-18" {
    t.Fatalf("expected second entry shifted to 2024-01-18, got %s", got)
  }
  if got := rows[2].DueDate.Format("2006-01-02"); got != "2024-01-25" {
    t.Fatalf("expected third entry shifted to 2024-01-25, got %s", got)
  }
}

func TestSnoozeOne_WithoutCascadeLeavesSiblings(t *testing.T) {
  snooze, schedule, deps := newSnoozeFixture(t)
  user := seedUser(t, deps.db)
  topic := seedTopic(t, deps.db, user.ID, types.RevisionFrequency{7, 14}, day("2024-01-01"))
  if _, err := schedule.GenerateSchedule(testCtx, nil, topic); err != nil {
    t.Fatalf("GenerateSchedule: %v", err)
  }
  entries := loadEntries(t, deps.db, topic.ID)

  if _, err := snooze.SnoozeOne(testCtx, entries[0].ID, 2, false, day("2024-01-08")); err != nil {
    t.Fatalf("SnoozeOne: %v", err)
  }
  rows := loadEntries(t, deps.db, topic.ID)
  if got := rows[1].DueDate.Format("2006-01-02"); got != "2024-01-15" {
    t.Fatalf("expected sibling untouched at 2024-01-15, got %s", got)
  }
  if rows[1].Status != types.SchedulePending {
    t.Fatalf("expected sibling still pending, got %s", rows[1].Status)
  }
}

func TestSnoozeOne_DaysOutOfRange(t *testing.T) {
  snooze, schedule, deps := newSnoozeFixture(t)
  user := seedUser(t, deps.db)
  topic := seedTopic(t, deps.db, user.ID, types.RevisionFrequency{7}, day("2024-01-01"))
  if _, err := schedule.GenerateSchedule(testCtx, nil, topic); err != nil {
    t.Fatalf("GenerateSchedule: %v", err)
  }
  entries := loadEntries(t, deps.db, topic.ID)

  for _, days := range []int{0, -1, 31} {
    _, err := snooze.SnoozeOne(testCtx, entries[0].ID, days, false, day("2024-01-08"))
    if !errors.Is(err, pkgerrors.ErrValidation) {
      t.Fatalf("days=%d: expected ErrValidation, got %v", days, err)
    }
  }
  // Bounds themselves are fine.
  if _, err := snooze.SnoozeOne(testCtx, entries[0].ID, 30, false, day("2024-01-08")); err != nil {
    t.Fatalf("days=30: %v", err)
  }
}

func TestSnoozeOne_RejectsCompletedEntry(t *testing.T) {
  snooze, schedule, deps := newSnoozeFixture(t)
  user := seedUser(t, deps.db)
  topic := seedTopic(t, deps.db, user.ID, types.RevisionFrequency{7}, day("2024-01-01"))
  if _, err := schedule.GenerateSchedule(testCtx, nil, topic); err != nil {
    t.Fatalf("GenerateSchedule: %v", err)
  }
  entries := loadEntries(t, deps.db, topic.ID)
  completedAt := day("2024-01-08")
  entries[0].Status = types.ScheduleCompleted
  entries[0].CompletedAt = &completedAt
  if err := deps.db.Save(entries[0]).Error; err != nil {
    t.Fatalf("complete entry: %v", err)
  }

  _, err := snooze.SnoozeOne(testCtx, entries[0].ID, 3, false, day("2024-01-09"))
  if !errors.Is(err, pkgerrors.ErrInvalidStateTransition) {
    t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
  }
}

func TestSnoozeAll_SnoozesDueAndOverdueOnly(t *testing.T) {
  snooze, schedule, deps := newSnoozeFixture(t)
  user := seedUser(t, deps.db)
  topic := seedTopic(t, deps.db, user.ID, types.RevisionFrequency{7, 14, 21}, day("2024-01-01"))
  if _, err := schedule.GenerateSchedule(testCtx, nil, topic); err != nil {
    t.Fatalf("GenerateSchedule: %v", err)
  }

  // On 2024-01-15 the first entry is overdue and the second is due today;
  // the third is upcoming and must stay untouched.
  result, err := snooze.SnoozeAll(testCtx, user.ID, 2, false, day("2024-01-15"))
  if err != nil {
    t.Fatalf("SnoozeAll: %v", err)
  }
  if len(result.NewDates) != 2 {
    t.Fatalf("expected 2 touched entries, got %d", len(result.NewDates))
  }

  rows := loadEntries(t, deps.db, topic.ID)
  if rows[0].Status != types.ScheduleSnoozed || rows[1].Status != types.ScheduleSnoozed {
    t.Fatalf("expected first two entries snoozed, got %s / %s", rows[0].Status, rows[1].Status)
  }
  if rows[2].Status != types.SchedulePending {
    t.Fatalf("expected upcoming entry untouched, got %s", rows[2].Status)
  }
  if got := rows[2].DueDate.Format("2006-01-02"); got != "2024-01-22" {
    t.Fatalf("expected upcoming entry due 2024-01-22, got %s", got)
  }
}

func TestSnoozeAll_NothingDueIsANoOp(t *testing.T) {
  snooze, schedule, deps := newSnoozeFixture(t)
  user := seedUser(t, deps.db)
  topic := seedTopic(t, deps.db, user.ID, types.RevisionFrequency{7}, day("2024-01-01"))
  if _, err := schedule.GenerateSchedule(testCtx, nil, topic); err != nil {
    t.Fatalf("GenerateSchedule: %v", err)
  }

  result, err := snooze.SnoozeAll(testCtx, user.ID, 5, false, day("2024-01-02"))
  if err != nil {
    t.Fatalf("SnoozeAll: %v", err)
  }
  if len(result.NewDates) != 0 {
    t.Fatalf("expected no touched entries, got %d", len(result.NewDates))
  }
}
