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

// FinishResult reports how finishing a session advanced the schedule.
type FinishResult struct {
  NextDueDate   *time.Time `json:"next_due_date,omitempty"`
  CycleAdvanced bool       `json:"cycle_advanced"`
  ScheduleID    uuid.UUID  `json:"schedule_id"`
}

type SessionService interface {
  // Start opens a running session against the topic's earliest pending
  // entry. A topic can have at most one running session.
  Start(ctx context.Context, userID, topicID uuid.UUID, plannedSeconds int, now time.Time) (*types.RevisionSession, error)
  // Finish marks the session terminal, completes its schedule entry and,
  // when cycles remain, anchors the next entry at the completion point:
  // due = completedAt + (nextOffset - currentOffset). Finishing twice is
  // rejected and leaves the schedule untouched.
  Finish(ctx context.Context, sessionID uuid.UUID, actualSeconds int, rating types.Rating, notes string, now time.Time) (*FinishResult, error)
}

type sessionService struct {
  db           *gorm.DB
  log          *logger.Logger
  topicRepo    repos.TopicRepo
  scheduleRepo repos.RevisionScheduleRepo
  sessionRepo  repos.RevisionSessionRepo
}

func NewSessionService(
  db *gorm.DB,
  baseLog *logger.Logger,
  topicRepo repos.TopicRepo,
  scheduleRepo repos.RevisionScheduleRepo,
  sessionRepo repos.RevisionSessionRepo,
) SessionService {
  serviceLog := baseLog.With("service", "SessionService")
  return &sessionService{
    db:           db,
    log:          serviceLog,
    topicRepo:    topicRepo,
    scheduleRepo: scheduleRepo,
    sessionRepo:  sessionRepo,
  }
}

func (s *sessionService) Start(ctx context.Context, userID, topicID uuid.UUID, plannedSeconds int, now time.Time) (*types.RevisionSession, error) {
  if userID == uuid.Nil || topicID == uuid.Nil {
    return nil, fmt.Errorf("%w: user id and topic id required", pkgerrors.ErrValidation)
  }
  if plannedSeconds <= 0 {
    return nil, fmt.Errorf("%w: planned seconds must be positive, got %d", pkgerrors.ErrValidation, plannedSeconds)
  }

  var session *types.RevisionSession
  err := s.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
    running, err := s.sessionRepo.GetRunningByTopicID(ctx, transaction, topicID)
    if err != nil {
      return fmt.Errorf("check running session: %w", err)
    }
    if running != nil {
      return fmt.Errorf("%w: topic %s has unfinished session %s", pkgerrors.ErrSessionAlreadyActive, topicID, running.ID)
    }

    open, err := s.scheduleRepo.GetOpenByTopicID(ctx, transaction, topicID)
    if err != nil {
      return fmt.Errorf("load open entries: %w", err)
    }
    if len(open) == 0 {
      return fmt.Errorf("%w: topic %s has no open revision to study", pkgerrors.ErrNotFound, topicID)
    }
    entry := open[0]

    session = &types.RevisionSession{
      ID:             uuid.New(),
      TopicID:        topicID,
      ScheduleID:     entry.ID,
      UserID:         userID,
      StartedAt:      now,
      PlannedSeconds: plannedSeconds,
      Finished:       false,
      CreatedAt:      now,
      UpdatedAt:      now,
    }
    if _, err := s.sessionRepo.Create(ctx, transaction, []*types.RevisionSession{session}); err != nil {
      return fmt.Errorf("create session: %w", err)
    }
    return nil
  })
  if err != nil {
    s.log.Error("Start session failed", "error", err, "topic_id", topicID, "user_id", userID)
    return nil, err
  }
  s.log.Info("Session started", "session_id", session.ID, "topic_id", topicID, "schedule_id", session.ScheduleID)
  return session, nil
}

func (s *sessionService) Finish(ctx context.Context, sessionID uuid.UUID, actualSeconds int, rating types.Rating, notes string, now time.Time) (*FinishResult, error) {
  if sessionID == uuid.Nil {
    return nil, fmt.Errorf("%w: session id required", pkgerrors.ErrValidation)
  }
  if actualSeconds < 0 {
    return nil, fmt.Errorf("%w: actual seconds must not be negative, got %d", pkgerrors.ErrValidation, actualSeconds)
  }
  if _, err := types.ParseRating(string(rating)); err != nil {
    return nil, err
  }

  var result *FinishResult
  err := s.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
    sessions, err := s.sessionRepo.GetByIDs(ctx, transaction, []uuid.UUID{sessionID})
    if err != nil {
      return fmt.Errorf("load session: %w", err)
    }
    if len(sessions) == 0 || sessions[0] == nil {
      return fmt.Errorf("%w: session %s", pkgerrors.ErrNotFound, sessionID)
    }
    session := sessions[0]
    if session.Finished {
      return fmt.Errorf("%w: session %s", pkgerrors.ErrSessionAlreadyFinished, sessionID)
    }

    ended := now
    session.EndedAt = &ended
    session.ActualSeconds = actualSeconds
    session.Rating = rating
    session.Notes = notes
    session.Finished = true
    session.UpdatedAt = now
    if err := s.sessionRepo.Update(ctx, transaction, session); err != nil {
      return fmt.Errorf("finish session: %w", err)
    }

    entries, err := s.scheduleRepo.GetByIDs(ctx, transaction, []uuid.UUID{session.ScheduleID})
    if err != nil {
      return fmt.Errorf("load schedule entry: %w", err)
    }
    if len(entries) == 0 || entries[0] == nil {
      return fmt.Errorf("%w: schedule entry %s", pkgerrors.ErrNotFound, session.ScheduleID)
    }
    entry := entries[0]
    if entry.Status == types.ScheduleCompleted {
      return fmt.Errorf("%w: entry %s is already completed", pkgerrors.ErrInvalidStateTransition, entry.ID)
    }

    completedAt := now
    entry.Status = types.ScheduleCompleted
    entry.CompletedAt = &completedAt
    entry.UpdatedAt = now
    if err := s.scheduleRepo.Update(ctx, transaction, entry); err != nil {
      return fmt.Errorf("complete schedule entry: %w", err)
    }

    result = &FinishResult{ScheduleID: entry.ID}

    topics, err := s.topicRepo.GetByIDs(ctx, transaction, []uuid.UUID{entry.TopicID})
    if err != nil {
      return fmt.Errorf("load topic: %w", err)
    }
    if len(topics) == 0 || topics[0] == nil {
      return fmt.Errorf("%w: topic %s", pkgerrors.ErrNotFound, entry.TopicID)
    }
    freq := topics[0].RevisionFrequencyOf()

    nextOffset, ok := freq.NextOffset(entry.CycleOffset)
    if !ok {
      // Final cycle: nothing left to schedule.
      return nil
    }

    // Spacing is measured from the actual completion point, not the
    // original anchor.
    nextDue := addDays(startOfDay(completedAt), nextOffset-entry.CycleOffset)

    open, err := s.scheduleRepo.GetOpenByTopicID(ctx, transaction, entry.TopicID)
    if err != nil {
      return fmt.Errorf("load open entries: %w", err)
    }
    var next *types.RevisionSchedule
    for _, candidate := range open {
      if candidate.CycleOffset == nextOffset {
        next = candidate
        break
      }
    }
    if next != nil {
      next.DueDate = nextDue
      next.UpdatedAt = now
      if err := s.scheduleRepo.Update(ctx, transaction, next); err != nil {
        return fmt.Errorf("re-anchor next entry: %w", err)
      }
    } else {
      next = &types.RevisionSchedule{
        ID:          uuid.New(),
        TopicID:     entry.TopicID,
        UserID:      entry.UserID,
        CycleOffset: nextOffset,
        DueDate:     nextDue,
        Status:      types.SchedulePending,
        CreatedAt:   now,
        UpdatedAt:   now,
      }
      if _, err := s.scheduleRepo.Create(ctx, transaction, []*types.RevisionSchedule{next}); err != nil {
        return fmt.Errorf("create next entry: %w", err)
      }
    }

    result.NextDueDate = &nextDue
    result.CycleAdvanced = true
    return nil
  })
  if err != nil {
    s.log.Error("Finish session failed", "error", err, "session_id", sessionID)
    return nil, err
  }
  s.log.Info("Session finished", "session_id", sessionID, "cycle_advanced", result.CycleAdvanced)
  return result, nil
}
