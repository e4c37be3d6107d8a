package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/reviseapp/revise-backend/internal/logger"
  "github.com/reviseapp/revise-backend/internal/types"
)

type RevisionScheduleRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.RevisionSchedule) ([]*types.RevisionSchedule, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.RevisionSchedule, error)
  // GetByTopicID returns every entry of a topic ordered by due date.
  GetByTopicID(ctx context.Context, tx *gorm.DB, topicID uuid.UUID) ([]*types.RevisionSchedule, error)
  // GetOpenByTopicID returns a topic's not-yet-completed entries ordered by
  // due date. Used by cascade snooze and cycle advancement.
  GetOpenByTopicID(ctx context.Context, tx *gorm.DB, topicID uuid.UUID) ([]*types.RevisionSchedule, error)
  // GetOpenByUserID returns every not-yet-completed entry across all of the
  // user's topics ordered by due date.
  GetOpenByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.RevisionSchedule, error)
  // GetPendingDueBefore returns a user's pending entries due strictly before
  // the cutoff, ordered by due date.
  GetPendingDueBefore(ctx context.Context, tx *gorm.DB, userID uuid.UUID, cutoff time.Time) ([]*types.RevisionSchedule, error)
  Update(ctx context.Context, tx *gorm.DB, row *types.RevisionSchedule) error
  UpdateBatch(ctx context.Context, tx *gorm.DB, rows []*types.RevisionSchedule) error
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
  // CountCompletedBetween counts entries the user completed in [from, to).
  CountCompletedBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) (int64, error)
}

type revisionScheduleRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewRevisionScheduleRepo(db *gorm.DB, baseLog *logger.Logger) RevisionScheduleRepo {
  repoLog := baseLog.With("repo", "RevisionScheduleRepo")
  return &revisionScheduleRepo{db: db, log: repoLog}
}

func (r *revisionScheduleRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.RevisionSchedule) ([]*types.RevisionSchedule, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.RevisionSchedule{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *revisionScheduleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.RevisionSchedule, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.RevisionSchedule
  if len(ids) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *revisionScheduleRepo) GetByTopicID(ctx context.Context, tx *gorm.DB, topicID uuid.UUID) ([]*types.RevisionSchedule, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.RevisionSchedule
  if topicID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("topic_id = ?", topicID).
    Order("due_date ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *revisionScheduleRepo) GetOpenByTopicID(ctx context.Context, tx *gorm.DB, topicID uuid.UUID) ([]*types.RevisionSchedule, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.RevisionSchedule
  if topicID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("topic_id = ? AND status <> ?", topicID, types.ScheduleCompleted).
    Order("due_date ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *revisionScheduleRepo) GetOpenByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.RevisionSchedule, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.RevisionSchedule
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND status <> ?", userID, types.ScheduleCompleted).
    Order("due_date ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *revisionScheduleRepo) GetPendingDueBefore(ctx context.Context, tx *gorm.DB, userID uuid.UUID, cutoff time.Time) ([]*types.RevisionSchedule, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.RevisionSchedule
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND status = ? AND due_date < ?", userID, types.SchedulePending, cutoff).
    Order("due_date ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *revisionScheduleRepo) Update(ctx context.Context, tx *gorm.DB, row *types.RevisionSchedule) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil
  }

  if err := transaction.WithContext(ctx).Save(row).Error; err != nil {
    return err
  }
  return nil
}

func (r *revisionScheduleRepo) UpdateBatch(ctx context.Context, tx *gorm.DB, rows []*types.RevisionSchedule) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  for _, row := range rows {
    if row == nil {
      continue
    }
    if err := transaction.WithContext(ctx).Save(row).Error; err != nil {
      return err
    }
  }
  return nil
}

func (r *revisionScheduleRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(ids) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Unscoped().
    Where("id IN ?", ids).
    Delete(&types.RevisionSchedule{}).Error; err != nil {
    return err
  }
  return nil
}

func (r *revisionScheduleRepo) CountCompletedBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if userID == uuid.Nil {
    return 0, nil
  }

  if err := transaction.WithContext(ctx).
    Model(&types.RevisionSchedule{}).
    Where("user_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?", userID, types.ScheduleCompleted, from, to).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}
