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

type MetricsService interface {
  // ComputeUserMetrics derives the user's performance snapshot over the
  // finished sessions whose start time falls in the window and whose topic
  // matches the scope. A user with no sessions gets an all-zero snapshot,
  // never an error.
  ComputeUserMetrics(ctx context.Context, userID uuid.UUID, scope types.Scope, scopeID string, window types.TimeWindow, now time.Time) (*types.MetricsSnapshot, error)
}

type metricsService struct {
  db           *gorm.DB
  log          *logger.Logger
  topicRepo    repos.TopicRepo
  scheduleRepo repos.RevisionScheduleRepo
  sessionRepo  repos.RevisionSessionRepo
}

func NewMetricsService(
  db *gorm.DB,
  baseLog *logger.Logger,
  topicRepo repos.TopicRepo,
  scheduleRepo repos.RevisionScheduleRepo,
  sessionRepo repos.RevisionSessionRepo,
) MetricsService {
  serviceLog := baseLog.With("service", "MetricsService")
  return &metricsService{
    db:           db,
    log:          serviceLog,
    topicRepo:    topicRepo,
    scheduleRepo: scheduleRepo,
    sessionRepo:  sessionRepo,
  }
}

func (s *metricsService) ComputeUserMetrics(ctx context.Context, userID uuid.UUID, scope types.Scope, scopeID string, window types.TimeWindow, now time.Time) (*types.MetricsSnapshot, error) {
  if userID == uuid.Nil {
    return nil, fmt.Errorf("%w: user id required", pkgerrors.ErrValidation)
  }
  if _, err := types.ParseScope(string(scope)); err != nil {
    return nil, err
  }
  if _, err := types.ParseTimeWindow(string(window)); err != nil {
    return nil, err
  }

  scopedTopics, err := s.topicRepo.ListActiveInScope(ctx, nil, userID, scope, scopeID)
  if err != nil {
    s.log.Error("ComputeUserMetrics failed loading topics", "error", err, "user_id", userID)
    return nil, fmt.Errorf("load topics: %w", err)
  }

  windowDays := window.Days()
  from := addDays(startOfDay(now), -windowDays)
  sessions, err := s.sessionRepo.ListFinishedInWindow(ctx, nil, userID, from, now)
  if err != nil {
    s.log.Error("ComputeUserMetrics failed loading sessions", "error", err, "user_id", userID)
    return nil, fmt.Errorf("load sessions: %w", err)
  }

  // Narrow to sessions whose topic is in scope. Global scope keeps every
  // session, archived topics included; coverage still counts only active
  // topics in its denominator.
  if scope != types.ScopeGlobal {
    inScope := make(map[uuid.UUID]bool, len(scopedTopics))
    for _, topic := range scopedTopics {
      inScope[topic.ID] = true
    }
    filtered := sessions[:0]
    for _, session := range sessions {
      if inScope[session.TopicID] {
        filtered = append(filtered, session)
      }
    }
    sessions = filtered
  }

  entryIDs := make([]uuid.UUID, 0, len(sessions))
  for _, session := range sessions {
    if session.ScheduleID != uuid.Nil {
      entryIDs = append(entryIDs, session.ScheduleID)
    }
  }
  entries, err := s.scheduleRepo.GetByIDs(ctx, nil, entryIDs)
  if err != nil {
    s.log.Error("ComputeUserMetrics failed loading entries", "error", err, "user_id", userID)
    return nil, fmt.Errorf("load schedule entries: %w", err)
  }
  entriesByID := make(map[uuid.UUID]*types.RevisionSchedule, len(entries))
  for _, entry := range entries {
    entriesByID[entry.ID] = entry
  }

  snapshot := computeMetrics(userID, sessions, entriesByID, len(scopedTopics), windowDays)
  return &snapshot, nil
}

// computeMetrics folds finished sessions into a metrics snapshot. Every
// ratio guards its denominator: a zero denominator yields 0, never NaN.
func computeMetrics(userID uuid.UUID, sessions []*types.RevisionSession, entriesByID map[uuid.UUID]*types.RevisionSchedule, activeTopicCount, windowDays int) types.MetricsSnapshot {
  snapshot := types.MetricsSnapshot{UserID: userID}
  if len(sessions) == 0 {
    return snapshot
  }

  var (
    linked       int
    onTime       int
    totalSeconds int
    studyDays    = map[string]bool{}
    topics       = map[uuid.UUID]bool{}
  )
  for _, session := range sessions {
    totalSeconds += session.ActualSeconds
    studyDays[session.StartedAt.Format("2006-01-02")] = true
    topics[session.TopicID] = true

    entry, ok := entriesByID[session.ScheduleID]
    if !ok {
      continue
    }
    linked++
    completedAt := session.EndedAt
    if entry.CompletedAt != nil {
      completedAt = entry.CompletedAt
    }
    if completedAt != nil && !startOfDay(*completedAt).After(startOfDay(entry.DueDate)) {
      onTime++
    }
  }

  if linked > 0 {
    snapshot.OnTimeRate = float64(onTime) / float64(linked) * 100
  }
  snapshot.TotalMinutes = float64(totalSeconds) / 60
  snapshot.AvgTimePerRevision = snapshot.TotalMinutes / float64(len(sessions))
  if windowDays > 0 {
    snapshot.Consistency = clampPercent(float64(len(studyDays)) / float64(windowDays) * 100)
  }
  if activeTopicCount > 0 {
    snapshot.Coverage = clampPercent(float64(len(topics)) / float64(activeTopicCount) * 100)
  }
  return snapshot
}

// clampPercent bounds quantities that are percentages by construction
// (coverage, consistency). The on-time rate is a true ratio and is not
// clamped here.
func clampPercent(v float64) float64 {
  if v < 0 {
    return 0
  }
  if v > 100 {
    return 100
  }
  return v
}
