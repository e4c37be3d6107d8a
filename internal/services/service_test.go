package services

import (
  "context"
  "fmt"
  "testing"
  "time"

  "github.com/google/uuid"
  "go.uber.org/zap"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"

  "github.com/reviseapp/revise-backend/internal/logger"
  "github.com/reviseapp/revise-backend/internal/repos"
  "github.com/reviseapp/revise-backend/internal/types"
)

// testDeps bundles the db handle and repos a service test needs to seed and
// inspect state directly.
type testDeps struct {
  db           *gorm.DB
  topicRepo    repos.TopicRepo
  scheduleRepo repos.RevisionScheduleRepo
  sessionRepo  repos.RevisionSessionRepo
}

func testLogger() *logger.Logger {
  return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func testDB(t *testing.T) *gorm.DB {
  t.Helper()
  dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
  db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
    Logger: gormlogger.Default.LogMode(gormlogger.Silent),
  })
  if err != nil {
    t.Fatalf("open sqlite: %v", err)
  }
  err = db.AutoMigrate(
    &types.User{},
    &types.Topic{},
    &types.RevisionSchedule{},
    &types.RevisionSession{},
    &types.LeaderboardEntry{},
  )
  if err != nil {
    t.Fatalf("automigrate: %v", err)
  }
  return db
}

func seedUser(t *testing.T, db *gorm.DB) *types.User {
  t.Helper()
  user := &types.User{
    ID:       uuid.New(),
    Email:    fmt.Sprintf("%s@example.com", uuid.NewString()),
    Name:     "Test User",
    IsActive: true,
  }
  if err := db.Create(user).Error; err != nil {
    t.Fatalf("seed user: %v", err)
  }
  return user
}

func seedTopic(t *testing.T, db *gorm.DB, userID uuid.UUID, freq types.RevisionFrequency, firstStudied time.Time) *types.Topic {
  t.Helper()
  topic := &types.Topic{
    ID:               uuid.New(),
    UserID:           userID,
    Subject:          "Mathematics",
    Title:            "Integration by parts",
    FirstStudied:     &firstStudied,
    EstimatedMinutes: 30,
    Weightage:        3,
    Difficulty:       3,
    MasteryLevel:     types.MasteryBeginner,
    Frequency:        []int(freq),
  }
  if err := db.Create(topic).Error; err != nil {
    t.Fatalf("seed topic: %v", err)
  }
  return topic
}

// loadEntries reads a topic's schedule ordered by due date.
func loadEntries(t *testing.T, db *gorm.DB, topicID uuid.UUID) []*types.RevisionSchedule {
  t.Helper()
  var rows []*types.RevisionSchedule
  if err := db.Where("topic_id = ?", topicID).Order("due_date ASC").Find(&rows).Error; err != nil {
    t.Fatalf("load entries: %v", err)
  }
  return rows
}

func day(value string) time.Time {
  d, err := time.Parse("2006-01-02", value)
  if err != nil {
    panic(err)
  }
  return d
}

func sameDay(a, b time.Time) bool {
  return a.Format("2006-01-02") == b.Format("2006-01-02")
}

var testCtx = context.Background()
