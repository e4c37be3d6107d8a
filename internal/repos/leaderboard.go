package repos

import (
  "context"
  "gorm.io/gorm"
  "github.com/reviseapp/revise-backend/internal/logger"
  "github.com/reviseapp/revise-backend/internal/types"
)

type LeaderboardRepo interface {
  // GetForScope returns the persisted snapshot set for one
  // (scope, scope id, window) key, sorted ascending by rank.
  GetForScope(ctx context.Context, tx *gorm.DB, scope types.Scope, scopeID string, window types.TimeWindow) ([]*types.LeaderboardEntry, error)
  // ReplaceForScope deletes every row for the key and inserts the new set in
  // one transaction, so readers never observe a half-updated leaderboard.
  ReplaceForScope(ctx context.Context, tx *gorm.DB, scope types.Scope, scopeID string, window types.TimeWindow, rows []*types.LeaderboardEntry) error
}

type leaderboardRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewLeaderboardRepo(db *gorm.DB, baseLog *logger.Logger) LeaderboardRepo {
  repoLog := baseLog.With("repo", "LeaderboardRepo")
  return &leaderboardRepo{db: db, log: repoLog}
}

func (r *leaderboardRepo) GetForScope(ctx context.Context, tx *gorm.DB, scope types.Scope, scopeID string, window types.TimeWindow) ([]*types.LeaderboardEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.LeaderboardEntry
  if err := transaction.WithContext(ctx).
    Where("scope = ? AND scope_id = ? AND time_window = ?", scope, scopeID, window).
    Order("rank ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *leaderboardRepo) ReplaceForScope(ctx context.Context, tx *gorm.DB, scope types.Scope, scopeID string, window types.TimeWindow, rows []*types.LeaderboardEntry) error {
  run := func(transaction *gorm.DB) error {
    if err := transaction.WithContext(ctx).
      Where("scope = ? AND scope_id = ? AND time_window = ?", scope, scopeID, window).
      Delete(&types.LeaderboardEntry{}).Error; err != nil {
      return err
    }
    if len(rows) == 0 {
      return nil
    }
    return transaction.WithContext(ctx).Create(&rows).Error
  }

  if tx != nil {
    return run(tx)
  }
  return r.db.WithContext(ctx).Transaction(run)
}
