package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/reviseapp/revise-backend/internal/logger"
  pkgerrors "github.com/reviseapp/revise-backend/internal/pkg/errors"
  "github.com/reviseapp/revise-backend/internal/types"
)

type ComparisonService interface {
  // GetComparison derives the you / topper / average / struggling buckets
  // from the persisted ranked snapshot. An empty cohort yields zeroed
  // buckets, never an error.
  GetComparison(ctx context.Context, userID uuid.UUID, scope types.Scope, scopeID string, window types.TimeWindow) (*types.ComparisonData, error)
}

type comparisonService struct {
  db          *gorm.DB
  log         *logger.Logger
  leaderboard LeaderboardService
}

func NewComparisonService(
  db *gorm.DB,
  baseLog *logger.Logger,
  leaderboard LeaderboardService,
) ComparisonService {
  serviceLog := baseLog.With("service", "ComparisonService")
  return &comparisonService{
    db:          db,
    log:         serviceLog,
    leaderboard: leaderboard,
  }
}

func (s *comparisonService) GetComparison(ctx context.Context, userID uuid.UUID, scope types.Scope, scopeID string, window types.TimeWindow) (*types.ComparisonData, error) {
  if userID == uuid.Nil {
    return nil, fmt.Errorf("%w: user id required", pkgerrors.ErrValidation)
  }

  rows, err := s.leaderboard.GetLeaderboard(ctx, scope, scopeID, window)
  if err != nil {
    return nil, err
  }
  if len(rows) == 0 {
    s.log.Debug("Comparison over empty cohort, returning zeroed buckets", "scope", scope, "window", window, "reason", pkgerrors.ErrEmptyCohort)
  }
  data := buildComparison(rows, userID)
  return &data, nil
}

// buildComparison folds a rank-ordered snapshot set into comparison buckets.
// topper is the rank-1 row; average is the arithmetic mean of every metric;
// struggling is the mean of the bottom quartile by rank (rows floor(0.75*N)
// through N-1; for small cohorts this degenerates to the last row).
func buildComparison(rows []*types.LeaderboardEntry, userID uuid.UUID) types.ComparisonData {
  data := types.ComparisonData{
    You:        types.ComparisonBucket{Label: "you"},
    Topper:     types.ComparisonBucket{Label: "topper"},
    Average:    types.ComparisonBucket{Label: "average"},
    Struggling: types.ComparisonBucket{Label: "struggling"},
  }
  n := len(rows)
  if n == 0 {
    // A user outside an empty cohort still gets a defined, non-zero rank.
    data.You.Rank = 1
    return data
  }

  data.Topper = types.ComparisonBucket{
    Label:   "topper",
    Rank:    rows[0].Rank,
    Present: true,
    Metrics: rows[0].Snapshot(),
  }

  snapshots := make([]types.MetricsSnapshot, 0, n)
  for _, row := range rows {
    snapshots = append(snapshots, row.Snapshot())
  }
  data.Average = types.ComparisonBucket{
    Label:   "average",
    Present: true,
    Metrics: meanSnapshot(snapshots),
  }

  bottom := snapshots[n*3/4:]
  if len(bottom) > 0 {
    data.Struggling = types.ComparisonBucket{
      Label:   "struggling",
      Rank:    rows[n*3/4].Rank,
      Present: true,
      Metrics: meanSnapshot(bottom),
    }
  }

  data.You.Rank = n + 1
  for _, row := range rows {
    if row.UserID == userID {
      data.You = types.ComparisonBucket{
        Label:   "you",
        Rank:    row.Rank,
        Present: true,
        Metrics: row.Snapshot(),
      }
      break
    }
  }
  return data
}

// meanSnapshot averages each metric across the given snapshots. Callers must
// not pass an empty slice.
func meanSnapshot(snapshots []types.MetricsSnapshot) types.MetricsSnapshot {
  var mean types.MetricsSnapshot
  if len(snapshots) == 0 {
    return mean
  }
  for _, s := range snapshots {
    mean.OnTimeRate += s.OnTimeRate
    mean.TotalMinutes += s.TotalMinutes
    mean.AvgTimePerRevision += s.AvgTimePerRevision
    mean.Consistency += s.Consistency
    mean.Coverage += s.Coverage
  }
  n := float64(len(snapshots))
  mean.OnTimeRate /= n
  mean.TotalMinutes /= n
  mean.AvgTimePerRevision /= n
  mean.Consistency /= n
  mean.Coverage /= n
  return mean
}
