package services

import (
  "context"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/reviseapp/revise-backend/internal/logger"
  pkgerrors "github.com/reviseapp/revise-backend/internal/pkg/errors"
  "github.com/reviseapp/revise-backend/internal/repos"
  "github.com/reviseapp/revise-backend/internal/types"
)

// TopicInput carries the user-editable topic fields.
type TopicInput struct {
  Subject          string                  `json:"subject"`
  Title            string                  `json:"title"`
  FirstStudied     *time.Time              `json:"first_studied,omitempty"`
  EstimatedMinutes int                     `json:"estimated_minutes"`
  Weightage        int                     `json:"weightage"`
  Difficulty       int                     `json:"difficulty"`
  MasteryLevel     types.MasteryLevel      `json:"mastery_level,omitempty"`
  MustWin          bool                    `json:"must_win"`
  Frequency        types.RevisionFrequency `json:"frequency,omitempty"`
}

type TopicService interface {
  // Create persists the topic and, when it has a first-studied date,
  // generates its revision schedule. An absent frequency is derived from
  // weightage and difficulty.
  Create(ctx context.Context, userID uuid.UUID, input TopicInput) (*types.Topic, error)
  GetForUser(ctx context.Context, userID uuid.UUID) ([]*types.Topic, error)
  Update(ctx context.Context, userID, topicID uuid.UUID, input TopicInput) (*types.Topic, error)
  Archive(ctx context.Context, userID, topicID uuid.UUID) error
  Delete(ctx context.Context, userID, topicID uuid.UUID) error
}

type topicService struct {
  db              *gorm.DB
  log             *logger.Logger
  topicRepo       repos.TopicRepo
  scheduleService ScheduleService
}

func NewTopicService(
  db *gorm.DB,
  baseLog *logger.Logger,
  topicRepo repos.TopicRepo,
  scheduleService ScheduleService,
) TopicService {
  serviceLog := baseLog.With("service", "TopicService")
  return &topicService{
    db:              db,
    log:             serviceLog,
    topicRepo:       topicRepo,
    scheduleService: scheduleService,
  }
}

func validateTopicInput(input TopicInput) error {
  if input.Subject == "" {
    return fmt.Errorf("%w: subject is required", pkgerrors.ErrValidation)
  }
  if input.Title == "" {
    return fmt.Errorf("%w: title is required", pkgerrors.ErrValidation)
  }
  if input.Weightage < 1 || input.Weightage > 5 {
    return fmt.Errorf("%w: weightage must be between 1 and 5", pkgerrors.ErrValidation)
  }
  if input.Difficulty < 1 || input.Difficulty > 5 {
    return fmt.Errorf("%w: difficulty must be between 1 and 5", pkgerrors.ErrValidation)
  }
  if len(input.Frequency) > 0 {
    if err := input.Frequency.Validate(); err != nil {
      return err
    }
  }
  return nil
}

func (s *topicService) Create(ctx context.Context, userID uuid.UUID, input TopicInput) (*types.Topic, error) {
  if userID == uuid.Nil {
    return nil, fmt.Errorf("%w: user id required", pkgerrors.ErrValidation)
  }
  if err := validateTopicInput(input); err != nil {
    return nil, err
  }

  freq := input.Frequency
  if len(freq) == 0 {
    freq = types.DeriveFrequency(input.Weightage, input.Difficulty)
  }
  mastery := input.MasteryLevel
  if mastery == "" {
    mastery = types.MasteryBeginner
  }
  estimated := input.EstimatedMinutes
  if estimated <= 0 {
    estimated = 30
  }

  now := time.Now()
  topic := &types.Topic{
    ID:               uuid.New(),
    UserID:           userID,
    Subject:          input.Subject,
    Title:            input.Title,
    FirstStudied:     input.FirstStudied,
    EstimatedMinutes: estimated,
    Weightage:        input.Weightage,
    Difficulty:       input.Difficulty,
    MasteryLevel:     mastery,
    MustWin:          input.MustWin,
    Frequency:        datatypes.JSONSlice[int](freq),
    CreatedAt:        now,
    UpdatedAt:        now,
  }

  err := s.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
    if _, err := s.topicRepo.Create(ctx, transaction, []*types.Topic{topic}); err != nil {
      return fmt.Errorf("create topic: %w", err)
    }
    if topic.FirstStudied != nil {
      if _, err := s.scheduleService.GenerateSchedule(ctx, transaction, topic); err != nil {
        return err
      }
    }
    return nil
  })
  if err != nil {
    s.log.Error("Create topic failed", "error", err, "user_id", userID)
    return nil, err
  }
  s.log.Info("Topic created", "topic_id", topic.ID, "user_id", userID, "subject", topic.Subject)
  return topic, nil
}

func (s *topicService) GetForUser(ctx context.Context, userID uuid.UUID) ([]*types.Topic, error) {
  if userID == uuid.Nil {
    return nil, fmt.Errorf("%w: user id required", pkgerrors.ErrValidation)
  }
  topics, err := s.topicRepo.GetByUserID(ctx, nil, userID)
  if err != nil {
    s.log.Error("GetForUser failed", "error", err, "user_id", userID)
    return nil, fmt.Errorf("get topics: %w", err)
  }
  return topics, nil
}

func (s *topicService) loadOwned(ctx context.Context, tx *gorm.DB, userID, topicID uuid.UUID) (*types.Topic, error) {
  topics, err := s.topicRepo.GetByIDs(ctx, tx, []uuid.UUID{topicID})
  if err != nil {
    return nil, fmt.Errorf("load topic: %w", err)
  }
  if len(topics) == 0 || topics[0] == nil || topics[0].UserID != userID {
    return nil, fmt.Errorf("%w: topic %s", pkgerrors.ErrNotFound, topicID)
  }
  return topics[0], nil
}

func (s *topicService) Update(ctx context.Context, userID, topicID uuid.UUID, input TopicInput) (*types.Topic, error) {
  if err := validateTopicInput(input); err != nil {
    return nil, err
  }

  var topic *types.Topic
  err := s.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
    loaded, err := s.loadOwned(ctx, transaction, userID, topicID)
    if err != nil {
      return err
    }
    topic = loaded

    hadSchedule := topic.FirstStudied != nil
    topic.Subject = input.Subject
    topic.Title = input.Title
    topic.EstimatedMinutes = input.EstimatedMinutes
    topic.Weightage = input.Weightage
    topic.Difficulty = input.Difficulty
    topic.MustWin = input.MustWin
    if input.MasteryLevel != "" {
      topic.MasteryLevel = input.MasteryLevel
    }
    if len(input.Frequency) > 0 {
      topic.Frequency = datatypes.JSONSlice[int](input.Frequency)
    }
    if input.FirstStudied != nil {
      topic.FirstStudied = input.FirstStudied
    }
    topic.UpdatedAt = time.Now()

    if err := s.topicRepo.Update(ctx, transaction, topic); err != nil {
      return fmt.Errorf("update topic: %w", err)
    }
    // First-studied arriving on an existing topic bootstraps its schedule.
    if !hadSchedule && topic.FirstStudied != nil {
      if _, err := s.scheduleService.GenerateSchedule(ctx, transaction, topic); err != nil {
        return err
      }
    }
    return nil
  })
  if err != nil {
    s.log.Error("Update topic failed", "error", err, "topic_id", topicID)
    return nil, err
  }
  return topic, nil
}

func (s *topicService) Archive(ctx context.Context, userID, topicID uuid.UUID) error {
  err := s.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
    topic, err := s.loadOwned(ctx, transaction, userID, topicID)
    if err != nil {
      return err
    }
    topic.IsArchived = true
    topic.UpdatedAt = time.Now()
    return s.topicRepo.Update(ctx, transaction, topic)
  })
  if err != nil {
    s.log.Error("Archive topic failed", "error", err, "topic_id", topicID)
    return err
  }
  s.log.Info("Topic archived", "topic_id", topicID)
  return nil
}

func (s *topicService) Delete(ctx context.Context, userID, topicID uuid.UUID) error {
  err := s.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
    if _, err := s.loadOwned(ctx, transaction, userID, topicID); err != nil {
      return err
    }
    return s.topicRepo.SoftDeleteByIDs(ctx, transaction, []uuid.UUID{topicID})
  })
  if err != nil {
    s.log.Error("Delete topic failed", "error", err, "topic_id", topicID)
    return err
  }
  s.log.Info("Topic deleted", "topic_id", topicID)
  return nil
}
