package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/reviseapp/revise-backend/internal/logger"
  "github.com/reviseapp/revise-backend/internal/types"
)

type RevisionSessionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.RevisionSession) ([]*types.RevisionSession, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.RevisionSession, error)
  // GetRunningByTopicID returns the topic's unfinished session, if any.
  // At most one can exist at a time.
  GetRunningByTopicID(ctx context.Context, tx *gorm.DB, topicID uuid.UUID) (*types.RevisionSession, error)
  // ListFinishedInWindow returns the user's finished sessions whose start
  // time falls in [from, to), ordered by start time.
  ListFinishedInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.RevisionSession, error)
  Update(ctx context.Context, tx *gorm.DB, row *types.RevisionSession) error
}

type revisionSessionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewRevisionSessionRepo(db *gorm.DB, baseLog *logger.Logger) RevisionSessionRepo {
  repoLog := baseLog.With("repo", "RevisionSessionRepo")
  return &revisionSessionRepo{db: db, log: repoLog}
}

func (r *revisionSessionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.RevisionSession) ([]*types.RevisionSession, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.RevisionSession{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *revisionSessionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.RevisionSession, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.RevisionSession
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

func (r *revisionSessionRepo) GetRunningByTopicID(ctx context.Context, tx *gorm.DB, topicID uuid.UUID) (*types.RevisionSession, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if topicID == uuid.Nil {
    return nil, nil
  }

  var results []*types.RevisionSession
  if err := transaction.WithContext(ctx).
    Where("topic_id = ? AND finished = ?", topicID, false).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *revisionSessionRepo) ListFinishedInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.RevisionSession, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.RevisionSession
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND finished = ? AND started_at >= ? AND started_at < ?", userID, true, from, to).
    Order("started_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *revisionSessionRepo) Update(ctx context.Context, tx *gorm.DB, row *types.RevisionSession) error {
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
