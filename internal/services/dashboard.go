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

// UpcomingDay is one day of forecast revision load.
type UpcomingDay struct {
  Date         time.Time `json:"date"`
  TopicCount   int       `json:"topic_count"`
  TotalMinutes int       `json:"total_minutes"`
}

// DashboardData is the landing-page summary: today's queue plus headline
// activity numbers and a seven-day load forecast.
type DashboardData struct {
  Date           time.Time         `json:"date"`
  DueToday       []*types.RevisionSchedule `json:"due_today"`
  OverdueCount   int               `json:"overdue_count"`
  SnoozedCount   int               `json:"snoozed_count"`
  CompletedToday int               `json:"completed_today"`
  WeeklyMinutes  float64           `json:"weekly_minutes"`
  UpcomingDays   []UpcomingDay     `json:"upcoming_days"`
}

type DashboardService interface {
  GetDashboard(ctx context.Context, userID uuid.UUID, now time.Time) (*DashboardData, error)
}

type dashboardService struct {
  db              *gorm.DB
  log             *logger.Logger
  topicRepo       repos.TopicRepo
  scheduleRepo    repos.RevisionScheduleRepo
  sessionRepo     repos.RevisionSessionRepo
  scheduleService ScheduleService
}

func NewDashboardService(
  db *gorm.DB,
  baseLog *logger.Logger,
  topicRepo repos.TopicRepo,
  scheduleRepo repos.RevisionScheduleRepo,
  sessionRepo repos.RevisionSessionRepo,
  scheduleService ScheduleService,
) DashboardService {
  serviceLog := baseLog.With("service", "DashboardService")
  return &dashboardService{
    db:              db,
    log:             serviceLog,
    topicRepo:       topicRepo,
    scheduleRepo:    scheduleRepo,
    sessionRepo:     sessionRepo,
    scheduleService: scheduleService,
  }
}

func (s *dashboardService) GetDashboard(ctx context.Context, userID uuid.UUID, now time.Time) (*DashboardData, error) {
  if userID == uuid.Nil {
    return nil, fmt.Errorf("%w: user id required", pkgerrors.ErrValidation)
  }

  due, err := s.scheduleService.GetDueEntries(ctx, userID, now)
  if err != nil {
    return nil, err
  }

  today := startOfDay(now)
  completedToday, err := s.scheduleRepo.CountCompletedBetween(ctx, nil, userID, today, addDays(today, 1))
  if err != nil {
    s.log.Error("GetDashboard failed counting completions", "error", err, "user_id", userID)
    return nil, fmt.Errorf("count completions: %w", err)
  }

  weekSessions, err := s.sessionRepo.ListFinishedInWindow(ctx, nil, userID, addDays(today, -7), now)
  if err != nil {
    s.log.Error("GetDashboard failed loading sessions", "error", err, "user_id", userID)
    return nil, fmt.Errorf("load sessions: %w", err)
  }
  var weeklySeconds int
  for _, session := range weekSessions {
    weeklySeconds += session.ActualSeconds
  }

  upcoming, err := s.forecastLoad(ctx, userID, today)
  if err != nil {
    return nil, err
  }

  return &DashboardData{
    Date:           today,
    DueToday:       due.DueToday,
    OverdueCount:   len(due.Overdue),
    SnoozedCount:   len(due.Snoozed),
    CompletedToday: int(completedToday),
    WeeklyMinutes:  float64(weeklySeconds) / 60,
    UpcomingDays:   upcoming,
  }, nil
}

// forecastLoad sums estimated minutes of pending entries per day over the
// next seven days.
func (s *dashboardService) forecastLoad(ctx context.Context, userID uuid.UUID, today time.Time) ([]UpcomingDay, error) {
  open, err := s.scheduleRepo.GetOpenByUserID(ctx, nil, userID)
  if err != nil {
    s.log.Error("forecastLoad failed loading entries", "error", err, "user_id", userID)
    return nil, fmt.Errorf("load open entries: %w", err)
  }
  topics, err := s.topicRepo.GetByUserID(ctx, nil, userID)
  if err != nil {
    s.log.Error("forecastLoad failed loading topics", "error", err, "user_id", userID)
    return nil, fmt.Errorf("load topics: %w", err)
  }
  minutesByTopic := make(map[uuid.UUID]int, len(topics))
  for _, topic := range topics {
    minutesByTopic[topic.ID] = topic.EstimatedMinutes
  }

  days := make([]UpcomingDay, 7)
  for i := range days {
    days[i] = UpcomingDay{Date: addDays(today, i+1)}
  }
  for _, entry := range open {
    effective := startOfDay(entry.EffectiveDate())
    offset := int(effective.Sub(today).Hours() / 24)
    if offset < 1 || offset > 7 {
      continue
    }
    days[offset-1].TopicCount++
    days[offset-1].TotalMinutes += minutesByTopic[entry.TopicID]
  }
  return days, nil
}
