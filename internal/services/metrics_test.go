package services

import (
  "math"
  "testing"
  "time"

  "github.com/google/uuid"

  "github.com/reviseapp/revise-backend/internal/types"
)

func finishedSession(userID, topicID, scheduleID uuid.UUID, startedAt time.Time, seconds int) *types.RevisionSession {
  ended := startedAt.Add(time.Duration(seconds) * time.Second)
  return &types.RevisionSession{
    ID:            uuid.New(),
    TopicID:       topicID,
    ScheduleID:    scheduleID,
    UserID:        userID,
    StartedAt:     startedAt,
    EndedAt:       &ended,
    ActualSeconds: seconds,
    Finished:      true,
  }
}

func TestComputeMetrics_ZeroSessionsIsAllZero(t *testing.T) {
  userID := uuid.New()
  snapshot := computeMetrics(userID, nil, nil, 5, 7)
  if snapshot.UserID != userID {
    t.Fatalf("expected user id carried through")
  }
  if snapshot.OnTimeRate != 0 || snapshot.TotalMinutes != 0 || snapshot.AvgTimePerRevision != 0 ||
    snapshot.Consistency != 0 || snapshot.Coverage != 0 {
    t.Fatalf("expected all-zero snapshot, got %+v", snapshot)
  }
}

func TestComputeMetrics_OnTimeRateUsesLinkedSessionsOnly(t *testing.T) {
  userID := uuid.New()
  topicID := uuid.New()
  onTimeEntry := &types.RevisionSchedule{ID: uuid.New(), DueDate: day("2024-01-10")}
  lateEntry := &types.RevisionSchedule{ID: uuid.New(), DueDate: day("2024-01-05")}
  entries := map[uuid.UUID]*types.RevisionSchedule{
    onTimeEntry.ID: onTimeEntry,
    lateEntry.ID:   lateEntry,
  }
  sessions := []*types.RevisionSession{
    finishedSession(userID, topicID, onTimeEntry.ID, day("2024-01-10"), 600),
    finishedSession(userID, topicID, lateEntry.ID, day("2024-01-08"), 600),
    // Orphan session: counts for minutes, not for the on-time rate.
    finishedSession(userID, topicID, uuid.New(), day("2024-01-09"), 600),
  }

  snapshot := computeMetrics(userID, sessions, entries, 1, 7)
  if snapshot.OnTimeRate != 50 {
    t.Fatalf("expected on-time rate 50 (1 of 2 linked), got %v", snapshot.OnTimeRate)
  }
  if snapshot.TotalMinutes != 30 {
    t.Fatalf("expected 30 total minutes, got %v", snapshot.TotalMinutes)
  }
  if snapshot.AvgTimePerRevision != 10 {
    t.Fatalf("expected 10 minutes per revision, got %v", snapshot.AvgTimePerRevision)
  }
}

func TestComputeMetrics_EntryCompletionTimestampWins(t *testing.T) {
  userID := uuid.New()
  topicID := uuid.New()
  completedAt := day("2024-01-09")
  entry := &types.RevisionSchedule{
    ID:          uuid.New(),
    DueDate:     day("2024-01-10"),
    Status:      types.ScheduleCompleted,
    CompletedAt: &completedAt,
  }
  // The session ended late, but the entry records an on-time completion.
  session := finishedSession(userID, topicID, entry.ID, day("2024-01-12"), 600)

  snapshot := computeMetrics(userID, []*types.RevisionSession{session},
    map[uuid.UUID]*types.RevisionSchedule{entry.ID: entry}, 1, 7)
  if snapshot.OnTimeRate != 100 {
    t.Fatalf("expected on-time rate 100, got %v", snapshot.OnTimeRate)
  }
}

func TestComputeMetrics_ConsistencyAndCoverageClamped(t *testing.T) {
  userID := uuid.New()
  topicID := uuid.New()
  var sessions []*types.RevisionSession
  // Ten distinct study days inside a seven-day window.
  for i := 0; i < 10; i++ {
    sessions = append(sessions, finishedSession(userID, topicID, uuid.New(), day("2024-01-01").AddDate(0, 0, i), 60))
  }

  snapshot := computeMetrics(userID, sessions, nil, 1, 7)
  if snapshot.Consistency != 100 {
    t.Fatalf("expected consistency clamped to 100, got %v", snapshot.Consistency)
  }
  if snapshot.Coverage != 100 {
    t.Fatalf("expected coverage 100 (1 of 1 topics), got %v", snapshot.Coverage)
  }
}

func TestComputeMetrics_ValuesStayInRange(t *testing.T) {
  userID := uuid.New()
  topicID := uuid.New()
  entry := &types.RevisionSchedule{ID: uuid.New(), DueDate: day("2024-01-10")}
  sessions := []*types.RevisionSession{
    finishedSession(userID, topicID, entry.ID, day("2024-01-10"), 900),
  }
  snapshot := computeMetrics(userID, sessions, map[uuid.UUID]*types.RevisionSchedule{entry.ID: entry}, 3, 30)

  for name, v := range map[string]float64{
    "on_time_rate": snapshot.OnTimeRate,
    "consistency":  snapshot.Consistency,
    "coverage":     snapshot.Coverage,
  } {
    if v < 0 || v > 100 || math.IsNaN(v) {
      t.Fatalf("%s out of range: %v", name, v)
    }
  }
}
