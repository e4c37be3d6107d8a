package services

import (
  "context"
  "fmt"
  "sort"
  "sync"
  "time"

  "github.com/google/uuid"
  "go.opentelemetry.io/otel"
  "golang.org/x/sync/errgroup"
  "gorm.io/gorm"

  rediscache "github.com/reviseapp/revise-backend/internal/clients/redis"
  "github.com/reviseapp/revise-backend/internal/logger"
  "github.com/reviseapp/revise-backend/internal/repos"
  "github.com/reviseapp/revise-backend/internal/types"
)

type LeaderboardService interface {
  // Recompute derives a fresh snapshot for every active user, ranks them and
  // replaces the whole persisted set for the key atomically. A failing user
  // keeps their previous row; a timed-out batch leaves the previous snapshot
  // untouched.
  Recompute(ctx context.Context, scope types.Scope, scopeID string, window types.TimeWindow) ([]*types.LeaderboardEntry, error)
  // GetLeaderboard serves the persisted snapshot for the key, cache first,
  // sorted ascending by rank.
  GetLeaderboard(ctx context.Context, scope types.Scope, scopeID string, window types.TimeWindow) ([]*types.LeaderboardEntry, error)
}

type LeaderboardConfig struct {
  // Workers bounds the per-user metric fan-out.
  Workers int
  // BatchTimeout bounds one whole recomputation run.
  BatchTimeout time.Duration
}

type leaderboardService struct {
  db              *gorm.DB
  log             *logger.Logger
  userRepo        repos.UserRepo
  leaderboardRepo repos.LeaderboardRepo
  metricsService  MetricsService
  cache           rediscache.LeaderboardCache
  cfg             LeaderboardConfig
}

func NewLeaderboardService(
  db *gorm.DB,
  baseLog *logger.Logger,
  userRepo repos.UserRepo,
  leaderboardRepo repos.LeaderboardRepo,
  metricsService MetricsService,
  cache rediscache.LeaderboardCache,
  cfg LeaderboardConfig,
) LeaderboardService {
  serviceLog := baseLog.With("service", "LeaderboardService")
  if cfg.Workers <= 0 {
    cfg.Workers = 8
  }
  if cfg.BatchTimeout <= 0 {
    cfg.BatchTimeout = 60 * time.Second
  }
  return &leaderboardService{
    db:              db,
    log:             serviceLog,
    userRepo:        userRepo,
    leaderboardRepo: leaderboardRepo,
    metricsService:  metricsService,
    cache:           cache,
    cfg:             cfg,
  }
}

func (s *leaderboardService) Recompute(ctx context.Context, scope types.Scope, scopeID string, window types.TimeWindow) ([]*types.LeaderboardEntry, error) {
  if _, err := types.ParseScope(string(scope)); err != nil {
    return nil, err
  }
  if _, err := types.ParseTimeWindow(string(window)); err != nil {
    return nil, err
  }

  ctx, cancel := context.WithTimeout(ctx, s.cfg.BatchTimeout)
  defer cancel()
  ctx, span := otel.Tracer("leaderboard").Start(ctx, "leaderboard.recompute")
  defer span.End()

  users, err := s.userRepo.ListActive(ctx, nil)
  if err != nil {
    s.log.Error("Recompute failed listing users", "error", err)
    return nil, fmt.Errorf("list active users: %w", err)
  }
  if len(users) == 0 {
    // An empty cohort publishes an empty snapshot rather than failing the run.
    if err := s.leaderboardRepo.ReplaceForScope(ctx, nil, scope, scopeID, window, nil); err != nil {
      return nil, fmt.Errorf("replace empty snapshot: %w", err)
    }
    s.invalidate(ctx, scope, scopeID, window)
    return []*types.LeaderboardEntry{}, nil
  }

  prior, err := s.leaderboardRepo.GetForScope(ctx, nil, scope, scopeID, window)
  if err != nil {
    s.log.Error("Recompute failed loading prior snapshot", "error", err)
    return nil, fmt.Errorf("load prior snapshot: %w", err)
  }
  priorByUser := make(map[uuid.UUID]*types.LeaderboardEntry, len(prior))
  for _, row := range prior {
    priorByUser[row.UserID] = row
  }

  now := time.Now()

  // Per-user computation is independent and read-only against history, so
  // it fans out across a bounded pool. Failures retain that user's prior
  // snapshot instead of aborting the whole run.
  var mu sync.Mutex
  snapshots := make([]types.MetricsSnapshot, 0, len(users))
  g, gctx := errgroup.WithContext(ctx)
  g.SetLimit(s.cfg.Workers)
  for _, user := range users {
    user := user
    g.Go(func() error {
      snapshot, err := s.metricsService.ComputeUserMetrics(gctx, user.ID, scope, scopeID, window, now)
      if err != nil {
        if gctx.Err() != nil {
          return gctx.Err()
        }
        s.log.Warn("Per-user metrics failed, retaining prior row", "error", err, "user_id", user.ID)
        mu.Lock()
        if row, ok := priorByUser[user.ID]; ok {
          snapshots = append(snapshots, row.Snapshot())
        }
        mu.Unlock()
        return nil
      }
      mu.Lock()
      snapshots = append(snapshots, *snapshot)
      mu.Unlock()
      return nil
    })
  }
  if err := g.Wait(); err != nil {
    // Timeout or cancellation: the previous snapshot stays published.
    s.log.Error("Recompute batch aborted", "error", err, "scope", scope, "window", window)
    return nil, fmt.Errorf("recompute batch: %w", err)
  }

  ranked := rankSnapshots(snapshots)
  rows := make([]*types.LeaderboardEntry, 0, len(ranked))
  for i, snapshot := range ranked {
    rows = append(rows, &types.LeaderboardEntry{
      ID:                 uuid.New(),
      UserID:             snapshot.UserID,
      Scope:              scope,
      ScopeID:            scopeID,
      TimeWindow:         window,
      Rank:               i + 1,
      OnTimeRate:         snapshot.OnTimeRate,
      TotalMinutes:       snapshot.TotalMinutes,
      AvgTimePerRevision: snapshot.AvgTimePerRevision,
      Consistency:        snapshot.Consistency,
      Coverage:           snapshot.Coverage,
      CalculatedAt:       now,
      CreatedAt:          now,
      UpdatedAt:          now,
    })
  }

  if err := s.leaderboardRepo.ReplaceForScope(ctx, nil, scope, scopeID, window, rows); err != nil {
    s.log.Error("Recompute failed replacing snapshot", "error", err, "scope", scope, "window", window)
    return nil, fmt.Errorf("replace snapshot: %w", err)
  }
  s.invalidate(ctx, scope, scopeID, window)
  s.log.Info("Leaderboard recomputed", "scope", scope, "scope_id", scopeID, "window", window, "users", len(rows))
  return rows, nil
}

// rankSnapshots orders snapshots descending by on-time rate with a
// deterministic tie-break: total minutes descending, then user id. Re-running
// it on an unchanged input yields the same order.
func rankSnapshots(snapshots []types.MetricsSnapshot) []types.MetricsSnapshot {
  ranked := make([]types.MetricsSnapshot, len(snapshots))
  copy(ranked, snapshots)
  sort.SliceStable(ranked, func(i, j int) bool {
    if ranked[i].OnTimeRate != ranked[j].OnTimeRate {
      return ranked[i].OnTimeRate > ranked[j].OnTimeRate
    }
    if ranked[i].TotalMinutes != ranked[j].TotalMinutes {
      return ranked[i].TotalMinutes > ranked[j].TotalMinutes
    }
    return ranked[i].UserID.String() < ranked[j].UserID.String()
  })
  return ranked
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, scope types.Scope, scopeID string, window types.TimeWindow) ([]*types.LeaderboardEntry, error) {
  if _, err := types.ParseScope(string(scope)); err != nil {
    return nil, err
  }
  if _, err := types.ParseTimeWindow(string(window)); err != nil {
    return nil, err
  }

  if s.cache != nil {
    if rows, ok := s.cache.Get(ctx, scope, scopeID, window); ok {
      return rows, nil
    }
  }

  rows, err := s.leaderboardRepo.GetForScope(ctx, nil, scope, scopeID, window)
  if err != nil {
    s.log.Error("GetLeaderboard failed", "error", err, "scope", scope, "window", window)
    return nil, fmt.Errorf("load leaderboard: %w", err)
  }
  if s.cache != nil {
    s.cache.Set(ctx, scope, scopeID, window, rows)
  }
  return rows, nil
}

func (s *leaderboardService) invalidate(ctx context.Context, scope types.Scope, scopeID string, window types.TimeWindow) {
  if s.cache != nil {
    s.cache.Invalidate(ctx, scope, scopeID, window)
  }
}
