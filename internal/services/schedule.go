package services

import (
  "context"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/reviseapp/revise-backend/internal/logger"
  pkgerrors "github.com/reviseapp/revise-backend/internal/pkg/errors"
  "github.com/reviseapp/revise-backend/internal/repos"
  "github.com/reviseapp/revise-backend/internal/types"
)

type ScheduleService interface {
  // GenerateSchedule creates and persists one pending entry per frequency
  // offset, due firstStudied + offset days. Rejects frequencies whose
  // offsets are not strictly increasing.
  GenerateSchedule(ctx context.Context, tx *gorm.DB, topic *types.Topic) ([]*types.RevisionSchedule, error)
  // Classify maps one entry to its due status as of now.
  Classify(entry *types.RevisionSchedule, now time.Time) types.DueStatus
  // GetDueEntries buckets the user's open entries into due-today, overdue
  // and snoozed as of now.
  GetDueEntries(ctx context.Context, userID uuid.UUID, now time.Time) (*types.DueEntries, error)
  // RegenerateFromToday discards a topic's uncompleted entries and rebuilds
  // the remaining cycles anchored at the current date. Irreversible: snooze
  // history on the replaced entries is lost.
  RegenerateFromToday(ctx context.Context, tx *gorm.DB, topicID uuid.UUID, now time.Time) ([]*types.RevisionSchedule, error)
}

type scheduleService struct {
  db           *gorm.DB
  log          *logger.Logger
  topicRepo    repos.TopicRepo
  scheduleRepo repos.RevisionScheduleRepo
}

func NewScheduleService(
  db *gorm.DB,
  baseLog *logger.Logger,
  topicRepo repos.TopicRepo,
  scheduleRepo repos.RevisionScheduleRepo,
) ScheduleService {
  serviceLog := baseLog.With("service", "ScheduleService")
  return &scheduleService{
    db:           db,
    log:          serviceLog,
    topicRepo:    topicRepo,
    scheduleRepo: scheduleRepo,
  }
}

// startOfDay truncates a timestamp to its calendar day. All due-date math in
// the scheduling engine is day-granular.
func startOfDay(t time.Time) time.Time {
  y, m, d := t.Date()
  return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func addDays(t time.Time, days int) time.Time {
  return t.AddDate(0, 0, days)
}

func (s *scheduleService) GenerateSchedule(ctx context.Context, tx *gorm.DB, topic *types.Topic) ([]*types.RevisionSchedule, error) {
  transaction := tx
  if transaction == nil {
    transaction = s.db
  }

  if topic == nil {
    return nil, fmt.Errorf("%w: topic required", pkgerrors.ErrValidation)
  }
  if topic.FirstStudied == nil {
    return nil, fmt.Errorf("%w: topic has no first-studied date", pkgerrors.ErrValidation)
  }
  freq := topic.RevisionFrequencyOf()
  if err := freq.Validate(); err != nil {
    return nil, err
  }

  anchor := startOfDay(*topic.FirstStudied)
  entries := buildEntries(topic, freq, anchor)

  created, err := s.scheduleRepo.Create(ctx, transaction, entries)
  if err != nil {
    s.log.Error("GenerateSchedule failed", "error", err, "topic_id", topic.ID)
    return nil, fmt.Errorf("create schedule entries: %w", err)
  }
  s.log.Debug("Schedule generated", "topic_id", topic.ID, "entries", len(created))
  return created, nil
}

// buildEntries materializes pending entries for each offset against the
// given anchor date. Due dates are non-decreasing because offsets are
// strictly increasing.
func buildEntries(topic *types.Topic, freq types.RevisionFrequency, anchor time.Time) []*types.RevisionSchedule {
  now := time.Now()
  entries := make([]*types.RevisionSchedule, 0, len(freq))
  for _, offset := range freq {
    entries = append(entries, &types.RevisionSchedule{
      ID:          uuid.New(),
      TopicID:     topic.ID,
      UserID:      topic.UserID,
      CycleOffset: offset,
      DueDate:     addDays(anchor, offset),
      Status:      types.SchedulePending,
      CreatedAt:   now,
      UpdatedAt:   now,
    })
  }
  return entries
}

func (s *scheduleService) Classify(entry *types.RevisionSchedule, now time.Time) types.DueStatus {
  return classifyEntry(entry, now)
}

// classifyEntry applies the status precedence contract: completion and
// snooze state always win over date comparison.
func classifyEntry(entry *types.RevisionSchedule, now time.Time) types.DueStatus {
  if entry.Status == types.ScheduleCompleted {
    return types.DueStatusCompleted
  }
  today := startOfDay(now)
  if entry.Status == types.ScheduleSnoozed && entry.SnoozedTo != nil && startOfDay(*entry.SnoozedTo).After(today) {
    return types.DueStatusSnoozed
  }
  due := startOfDay(entry.DueDate)
  switch {
  case due.Before(today):
    return types.DueStatusOverdue
  case due.Equal(today):
    return types.DueStatusDueToday
  default:
    return types.DueStatusUpcoming
  }
}

func (s *scheduleService) GetDueEntries(ctx context.Context, userID uuid.UUID, now time.Time) (*types.DueEntries, error) {
  if userID == uuid.Nil {
    return nil, fmt.Errorf("%w: user id required", pkgerrors.ErrValidation)
  }

  open, err := s.scheduleRepo.GetOpenByUserID(ctx, nil, userID)
  if err != nil {
    s.log.Error("GetDueEntries failed", "error", err, "user_id", userID)
    return nil, fmt.Errorf("load open entries: %w", err)
  }

  out := &types.DueEntries{
    DueToday: []*types.RevisionSchedule{},
    Overdue:  []*types.RevisionSchedule{},
    Snoozed:  []*types.RevisionSchedule{},
  }
  for _, entry := range open {
    switch classifyEntry(entry, now) {
    case types.DueStatusDueToday:
      out.DueToday = append(out.DueToday, entry)
    case types.DueStatusOverdue:
      out.Overdue = append(out.Overdue, entry)
    case types.DueStatusSnoozed:
      out.Snoozed = append(out.Snoozed, entry)
    }
  }
  return out, nil
}

func (s *scheduleService) RegenerateFromToday(ctx context.Context, tx *gorm.DB, topicID uuid.UUID, now time.Time) ([]*types.RevisionSchedule, error) {
  if topicID == uuid.Nil {
    return nil, fmt.Errorf("%w: topic id required", pkgerrors.ErrValidation)
  }

  var regenerated []*types.RevisionSchedule
  run := func(transaction *gorm.DB) error {
    topics, err := s.topicRepo.GetByIDs(ctx, transaction, []uuid.UUID{topicID})
    if err != nil {
      return fmt.Errorf("load topic: %w", err)
    }
    if len(topics) == 0 || topics[0] == nil {
      return fmt.Errorf("%w: topic %s", pkgerrors.ErrNotFound, topicID)
    }
    topic := topics[0]
    freq := topic.RevisionFrequencyOf()
    if err := freq.Validate(); err != nil {
      return err
    }

    existing, err := s.scheduleRepo.GetByTopicID(ctx, transaction, topicID)
    if err != nil {
      return fmt.Errorf("load entries: %w", err)
    }

    completed := 0
    dropIDs := make([]uuid.UUID, 0, len(existing))
    for _, entry := range existing {
      if entry.Status == types.ScheduleCompleted {
        completed++
        continue
      }
      dropIDs = append(dropIDs, entry.ID)
    }
    if completed >= len(freq) {
      // Every cycle is already done, nothing to rebuild.
      regenerated = []*types.RevisionSchedule{}
      return s.scheduleRepo.FullDeleteByIDs(ctx, transaction, dropIDs)
    }

    if err := s.scheduleRepo.FullDeleteByIDs(ctx, transaction, dropIDs); err != nil {
      return fmt.Errorf("delete uncompleted entries: %w", err)
    }

    // Re-anchor the remaining cycles at today, preserving the configured
    // gaps between consecutive offsets.
    today := startOfDay(now)
    prev := 0
    if completed > 0 {
      prev = freq[completed-1]
    }
    ts := time.Now()
    rebuilt := make([]*types.RevisionSchedule, 0, len(freq)-completed)
    for _, offset := range freq[completed:] {
      rebuilt = append(rebuilt, &types.RevisionSchedule{
        ID:          uuid.New(),
        TopicID:     topic.ID,
        UserID:      topic.UserID,
        CycleOffset: offset,
        DueDate:     addDays(today, offset-prev),
        Status:      types.SchedulePending,
        CreatedAt:   ts,
        UpdatedAt:   ts,
      })
      prev = offset
    }

    created, err := s.scheduleRepo.Create(ctx, transaction, rebuilt)
    if err != nil {
      return fmt.Errorf("create regenerated entries: %w", err)
    }
    regenerated = created
    return nil
  }

  var err error
  if tx != nil {
    err = run(tx)
  } else {
    err = s.db.WithContext(ctx).Transaction(run)
  }
  if err != nil {
    s.log.Error("RegenerateFromToday failed", "error", err, "topic_id", topicID)
    return nil, err
  }
  s.log.Info("Schedule regenerated from today", "topic_id", topicID, "entries", len(regenerated))
  return regenerated, nil
}
