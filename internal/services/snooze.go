package services

import (
  "context"
  "fmt"
  "sort"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/reviseapp/revise-backend/internal/logger"
  pkgerrors "github.com/reviseapp/revise-backend/internal/pkg/errors"
  "github.com/reviseapp/revise-backend/internal/repos"
  "github.com/reviseapp/revise-backend/internal/types"
)

const (
  minSnoozeDays = 1
  maxSnoozeDays = 30
)

// SnoozeResult reports the effective dates of every entry a snooze touched,
// in due-date order.
type SnoozeResult struct {
  NewDates []time.Time `json:"new_dates"`
}

type SnoozeService interface {
  // SnoozeOne defers a single entry by days. With cascade, every other
  // not-yet-completed entry of the same topic due on or after the target's
  // original due date is shifted forward by the same delta, preserving the
  // relative spacing between them.
  SnoozeOne(ctx context.Context, entryID uuid.UUID, days int, cascade bool, now time.Time) (*SnoozeResult, error)
  // SnoozeAll applies SnoozeOne semantics to every entry currently due today
  // or overdue for the user, as one atomic unit: if any entry rejects the
  // operation, none are committed and the error names the blocking entry.
  SnoozeAll(ctx context.Context, userID uuid.UUID, days int, cascade bool, now time.Time) (*SnoozeResult, error)
}

type snoozeService struct {
  db           *gorm.DB
  log          *logger.Logger
  scheduleRepo repos.RevisionScheduleRepo
}

func NewSnoozeService(
  db *gorm.DB,
  baseLog *logger.Logger,
  scheduleRepo repos.RevisionScheduleRepo,
) SnoozeService {
  serviceLog := baseLog.With("service", "SnoozeService")
  return &snoozeService{
    db:           db,
    log:          serviceLog,
    scheduleRepo: scheduleRepo,
  }
}

func validateSnoozeDays(days int) error {
  if days < minSnoozeDays || days > maxSnoozeDays {
    return fmt.Errorf("%w: snooze days must be between %d and %d, got %d", pkgerrors.ErrValidation, minSnoozeDays, maxSnoozeDays, days)
  }
  return nil
}

func (s *snoozeService) SnoozeOne(ctx context.Context, entryID uuid.UUID, days int, cascade bool, now time.Time) (*SnoozeResult, error) {
  if err := validateSnoozeDays(days); err != nil {
    return nil, err
  }
  if entryID == uuid.Nil {
    return nil, fmt.Errorf("%w: entry id required", pkgerrors.ErrValidation)
  }

  var result *SnoozeResult
  err := s.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
    entries, err := s.scheduleRepo.GetByIDs(ctx, transaction, []uuid.UUID{entryID})
    if err != nil {
      return fmt.Errorf("load entry: %w", err)
    }
    if len(entries) == 0 || entries[0] == nil {
      return fmt.Errorf("%w: schedule entry %s", pkgerrors.ErrNotFound, entryID)
    }
    touched, err := s.snoozeEntry(ctx, transaction, entries[0], days, cascade, now)
    if err != nil {
      return err
    }
    result = snoozeResultOf(touched)
    return nil
  })
  if err != nil {
    s.log.Error("SnoozeOne failed", "error", err, "entry_id", entryID, "days", days, "cascade", cascade)
    return nil, err
  }
  s.log.Info("Entry snoozed", "entry_id", entryID, "days", days, "cascade", cascade)
  return result, nil
}

// snoozeEntry applies a single snooze inside an open transaction and returns
// every entry it touched. The target keeps its original due date and gains a
// snoozed-to date of now + days; cascaded entries have their due dates
// shifted by the same additive delta.
func (s *snoozeService) snoozeEntry(ctx context.Context, transaction *gorm.DB, entry *types.RevisionSchedule, days int, cascade bool, now time.Time) ([]*types.RevisionSchedule, error) {
  if entry.Status == types.ScheduleCompleted {
    return nil, fmt.Errorf("%w: entry %s is already completed", pkgerrors.ErrInvalidStateTransition, entry.ID)
  }

  originalDue := startOfDay(entry.DueDate)
  snoozedTo := addDays(startOfDay(now), days)

  entry.Status = types.ScheduleSnoozed
  entry.SnoozedTo = &snoozedTo
  entry.SnoozeDays = days
  entry.CascadeSnoozed = cascade
  entry.UpdatedAt = time.Now()

  touched := []*types.RevisionSchedule{entry}

  if cascade {
    open, err := s.scheduleRepo.GetOpenByTopicID(ctx, transaction, entry.TopicID)
    if err != nil {
      return nil, fmt.Errorf("load topic entries: %w", err)
    }
    for _, sibling := range open {
      if sibling.ID == entry.ID {
        continue
      }
      if startOfDay(sibling.DueDate).Before(originalDue) {
        continue
      }
      sibling.DueDate = addDays(sibling.DueDate, days)
      if sibling.SnoozedTo != nil {
        shifted := addDays(*sibling.SnoozedTo, days)
        sibling.SnoozedTo = &shifted
      }
      sibling.UpdatedAt = time.Now()
      touched = append(touched, sibling)
    }
  }

  if err := s.scheduleRepo.UpdateBatch(ctx, transaction, touched); err != nil {
    return nil, fmt.Errorf("persist snooze: %w", err)
  }
  return touched, nil
}

func (s *snoozeService) SnoozeAll(ctx context.Context, userID uuid.UUID, days int, cascade bool, now time.Time) (*SnoozeResult, error) {
  if err := validateSnoozeDays(days); err != nil {
    return nil, err
  }
  if userID == uuid.Nil {
    return nil, fmt.Errorf("%w: user id required", pkgerrors.ErrValidation)
  }

  var result *SnoozeResult
  err := s.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
    open, err := s.scheduleRepo.GetOpenByUserID(ctx, transaction, userID)
    if err != nil {
      return fmt.Errorf("load open entries: %w", err)
    }

    var targets []*types.RevisionSchedule
    for _, entry := range open {
      switch classifyEntry(entry, now) {
      case types.DueStatusDueToday, types.DueStatusOverdue:
        targets = append(targets, entry)
      }
    }

    var touched []*types.RevisionSchedule
    for _, entry := range targets {
      // Reload in case an earlier cascade in this batch shifted it.
      rows, err := s.scheduleRepo.GetByIDs(ctx, transaction, []uuid.UUID{entry.ID})
      if err != nil {
        return fmt.Errorf("reload entry %s: %w", entry.ID, err)
      }
      if len(rows) == 0 {
        return fmt.Errorf("%w: schedule entry %s", pkgerrors.ErrNotFound, entry.ID)
      }
      batch, err := s.snoozeEntry(ctx, transaction, rows[0], days, cascade, now)
      if err != nil {
        return fmt.Errorf("entry %s blocked snooze-all: %w", entry.ID, err)
      }
      touched = append(touched, batch...)
    }
    result = snoozeResultOf(touched)
    return nil
  })
  if err != nil {
    s.log.Error("SnoozeAll failed", "error", err, "user_id", userID, "days", days, "cascade", cascade)
    return nil, err
  }
  s.log.Info("Snoozed all due entries", "user_id", userID, "days", days, "cascade", cascade, "touched", len(result.NewDates))
  return result, nil
}

func snoozeResultOf(touched []*types.RevisionSchedule) *SnoozeResult {
  dates := make([]time.Time, 0, len(touched))
  for _, entry := range touched {
    dates = append(dates, entry.EffectiveDate())
  }
  sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
  return &SnoozeResult{NewDates: dates}
}
