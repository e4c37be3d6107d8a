package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/reviseapp/revise-backend/internal/logger"
  "github.com/reviseapp/revise-backend/internal/types"
)

type TopicRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.Topic) ([]*types.Topic, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Topic, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Topic, error)
  // ListActiveInScope returns the user's non-archived topics restricted to
  // the given scope: all of them for global, one subject, or one topic id.
  ListActiveInScope(ctx context.Context, tx *gorm.DB, userID uuid.UUID, scope types.Scope, scopeID string) ([]*types.Topic, error)
  Update(ctx context.Context, tx *gorm.DB, row *types.Topic) error
  SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type topicRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
  repoLog := baseLog.With("repo", "TopicRepo")
  return &topicRepo{db: db, log: repoLog}
}

func (r *topicRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Topic) ([]*types.Topic, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.Topic{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *topicRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Topic, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Topic
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

func (r *topicRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Topic, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Topic
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *topicRepo) ListActiveInScope(ctx context.Context, tx *gorm.DB, userID uuid.UUID, scope types.Scope, scopeID string) ([]*types.Topic, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Topic
  if userID == uuid.Nil {
    return results, nil
  }

  q := transaction.WithContext(ctx).
    Where("user_id = ? AND is_archived = ?", userID, false)
  switch scope {
  case types.ScopeSubject:
    q = q.Where("subject = ?", scopeID)
  case types.ScopeTopic:
    q = q.Where("id = ?", scopeID)
  }

  if err := q.Order("created_at ASC").Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *topicRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Topic) error {
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

func (r *topicRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(ids) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.Topic{}).Error; err != nil {
    return err
  }
  return nil
}
