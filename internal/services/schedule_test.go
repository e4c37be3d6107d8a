package services

import (
  "errors"
  "testing"

  pkgerrors "github.com/reviseapp/revise-backend/internal/pkg/errors"
  "github.com/reviseapp/revise-backend/internal/repos"
  "github.com/reviseapp/revise-backend/internal/types"
)

func newScheduleService(t *testing.T) (ScheduleService, *testDeps) {
  t.Helper()
  db := testDB(t)
  log := testLogger()
  deps := &testDeps{
    db:           db,
    topicRepo:    repos.NewTopicRepo(db, log),
    scheduleRepo: repos.NewRevisionScheduleRepo(db, log),
    sessionRepo:  repos.NewRevisionSessionRepo(db, log),
  }
  return NewScheduleService(db, log, deps.topicRepo, deps.scheduleRepo), deps
}

func TestGenerateSchedule_DueDatesFollowOffsets(t *testing.T) {
  svc, deps := newScheduleService(t)
  user := seedUser(t, deps.db)
  topic := seedTopic(t, deps.db, user.ID, types.RevisionFrequency{7, 14, 21}, day("2024-01-01"))

  created, err := svc.GenerateSchedule(testCtx, nil, topic)
  if err != nil {
    t.Fatalf("GenerateSchedule: %v", err)
  }
  if len(created) != 3 {
    t.Fatalf("expected 3 entries, got %d", len(created))
  }
  want := []string{"2024-01-08", "2024-01-15", "2024-01-22"}
  entries := loadEntries(t, deps.db, topic.ID)
  for i, entry := range entries {
    if got := entry.DueDate.Format("2006-01-02"); got != want[i] {
      t.Fatalf("entry %d: expected due %s, got %s", i, want[i], got)
    }
    if entry.Status != types.SchedulePending {
      t.Fatalf("entry %d: expected pending, got %s", i, entry.Status)
    }
    if entry.CycleOffset != []int{7, 14, 21}[i] {
      t.Fatalf("entry %d: unexpected cycle offset %d", i, entry.CycleOffset)
    }
  }
}

func TestGenerateSchedule_RejectsNonIncreasingFrequency(t *testing.T) {
  svc, deps := newScheduleService(t)
  user := seedUser(t, deps.db)
  topic := seedTopic(t, deps.db, user.ID, types.RevisionFrequency{14, 7}, day("2024-01-01"))

  _, err := svc.GenerateSchedule(testCtx, nil, topic)
  if !errors.Is(err, pkgerrors.ErrValidation) {
    t.Fatalf("expected ErrValidation, got %v", err)
  }
  if rows := loadEntries(t, deps.db, topic.ID); len(rows) != 0 {
    t.Fatalf("expected no entries persisted, got %d", len(rows))
  }
}

func TestGenerateSchedule_RequiresFirstStudied(t *testing.T) {
  svc, deps := newScheduleService(t)
  user := seedUser(t, deps.db)
  topic := seedTopic(t, deps.db, user.ID, types.RevisionFrequency{7}, day("2024-01-01"))
  topic.FirstStudied = nil

  if _, err := svc.GenerateSchedule(testCtx, nil, topic); !errors.Is(err, pkgerrors.ErrValidation) {
    t.Fatalf("expected ErrValidation, got %v", err)
  }
}

func TestClassifyEntry_Precedence(t *testing.T) {
  now := day("2024-03-10")
  past := day("2024-03-01")
  future := day("2024-03-20")
  completedAt := day("2024-03-05")

  cases := []struct {
    name  string
    entry types.RevisionSchedule
    want  types.DueStatus
  }{
    {
      name:  "completed wins over overdue date",
      entry: types.RevisionSchedule{Status: types.ScheduleCompleted, DueDate: past, CompletedAt: &completedAt},
      want:  types.DueStatusCompleted,
    },
    {
      name:  "snoozed to the future wins over overdue date",
      entry: types.RevisionSchedule{Status: types.ScheduleSnoozed, DueDate: past, SnoozedTo: &future},
      want:  types.DueStatusSnoozed,
    },
    {
      name:  "elapsed snooze falls back to date comparison",
      entry: types.RevisionSchedule{Status: types.ScheduleSnoozed, DueDate: past, SnoozedTo: &past},
      want:  types.DueStatusOverdue,
    },
    {
      name:  "pending before today is overdue",
      entry: types.RevisionSchedule{Status: types.SchedulePending, DueDate: past},
      want:  types.DueStatusOverdue,
    },
    {
      name:  "pending today is due today",
      entry: types.RevisionSchedule{Status: types.SchedulePending, DueDate: now},
      want:  types.DueStatusDueToday,
    },
    {
      name:  "pending after today is upcoming",
      entry: types.RevisionSchedule{Status: types.SchedulePending, DueDate: future},
      want:  types.DueStatusUpcoming,
    },
  }
  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      entry := tc.entry
      if got := classifyEntry(&entry, now); got != tc.want {
        t.Fatalf("expected %s, got %s", tc.want, got)
      }
    })
  }
}

func TestGetDueEntries_Buckets(t *testing.T) {
  svc, deps := newScheduleService(t)
  user := seedUser(t, deps.db)
  topic := seedTopic(t, deps.db, user.ID, types.RevisionFrequency{7, 14, 21}, day("2024-01-01"))
  if _, err := svc.GenerateSchedule(testCtx, nil, topic); err != nil {
    t.Fatalf("GenerateSchedule: %v", err)
  }

  // 2024-01-15: entry 1 overdue, entry 2 due today, entry 3 upcoming.
  due, err := svc.GetDueEntries(testCtx, user.ID, day("2024-01-15"))
  if err != nil {
    t.Fatalf("GetDueEntries: %v", err)
  }
  if len(due.Overdue) != 1 || len(due.DueToday) != 1 || len(due.Snoozed) != 0 {
    t.Fatalf("expected 1 overdue / 1 due today / 0 snoozed, got %d/%d/%d",
      len(due.Overdue), len(due.DueToday), len(due.Snoozed))
  }
  if due.Overdue[0].CycleOffset != 7 || due.DueToday[0].CycleOffset != 14 {
    t.Fatalf("unexpected bucket contents: overdue offset %d, due today offset %d",
      due.Overdue[0].CycleOffset, due.DueToday[0].CycleOffset)
  }
}

func TestRegenerateFromToday_PreservesConfiguredGaps(t *testing.T) {
  svc, deps := newScheduleService(t)
  user := seedUser(t, deps.db)
  topic := seedTopic(t, deps.db, user.ID, types.RevisionFrequency{7, 14, 21}, day("2024-01-01"))
  if _, err := svc.GenerateSchedule(testCtx, nil, topic); err != nil {
    t.Fatalf("GenerateSchedule: %v", err)
  }

  // Complete the first cycle, then regenerate on 2024-02-01.
  entries := loadEntries(t, deps.db, topic.ID)
  completedAt := day("2024-01-08")
  entries[0].Status = types.ScheduleCompleted
  entries[0].CompletedAt = &completedAt
  if err := deps.db.Save(entries[0]).Error; err != nil {
    t.Fatalf("complete entry: %v", err)
  }

  regenerated, err := svc.RegenerateFromToday(testCtx, nil, topic.ID, day("2024-02-01"))
  if err != nil {
    t.Fatalf("RegenerateFromToday: %v", err)
  }
  if len(regenerated) != 2 {
    t.Fatalf("expected 2 rebuilt entries, got %d", len(regenerated))
  }

  rows := loadEntries(t, deps.db, topic.ID)
  if len(rows) != 3 {
    t.Fatalf("expected completed entry plus 2 rebuilt, got %d rows", len(rows))
  }
  var open []*types.RevisionSchedule
  for _, row := range rows {
    if row.Status == types.SchedulePending {
      open = append(open, row)
    }
  }
  // Gap from offset 7 to 14 is 7 days, then 14 to 21 is another 7.
  want := []string{"2024-02-08", "2024-02-15"}
  if len(open) != 2 {
    t.Fatalf("expected 2 pending entries, got %d", len(open))
  }
  for i, row := range open {
    if got := row.DueDate.Format("2006-01-02"); got != want[i] {
      t.Fatalf("pending entry %d: expected due %s, got %s", i, want[i], got)
    }
  }
}

func TestRegenerateFromToday_AllCyclesCompleted(t *testing.T) {
  svc, deps := newScheduleService(t)
  user := seedUser(t, deps.db)
  topic := seedTopic(t, deps.db, user.ID, types.RevisionFrequency{7}, day("2024-01-01"))
  if _, err := svc.GenerateSchedule(testCtx, nil, topic); err != nil {
    t.Fatalf("GenerateSchedule: %v", err)
  }
  entries := loadEntries(t, deps.db, topic.ID)
  completedAt := day("2024-01-08")
  entries[0].Status = types.ScheduleCompleted
  entries[0].CompletedAt = &completedAt
  if err := deps.db.Save(entries[0]).Error; err != nil {
    t.Fatalf("complete entry: %v", err)
  }

  regenerated, err := svc.RegenerateFromToday(testCtx, nil, topic.ID, day("2024-02-01"))
  if err != nil {
    t.Fatalf("RegenerateFromToday: %v", err)
  }
  if len(regenerated) != 0 {
    t.Fatalf("expected nothing rebuilt for a fully completed topic, got %d", len(regenerated))
  }
}
