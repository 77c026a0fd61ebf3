package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/activity-server/internal/models"
	appErrors "github.com/noah-isme/activity-server/pkg/errors"
)

type submissionRepo interface {
	Submit(ctx context.Context, sub *models.UserSubmission, attempt *models.NotebookAttempt) error
	FindByActivityAndUser(ctx context.Context, activityID, username string) (*models.UserSubmission, error)
	LatestAttempt(ctx context.Context, submissionID int64) (*models.NotebookAttempt, error)
	FindAttempt(ctx context.Context, submissionID, attemptID int64) (*models.NotebookAttempt, error)
	ListAttempts(ctx context.Context, submissionID int64) ([]models.NotebookAttempt, error)
	GradeLatestAttempt(ctx context.Context, submissionID int64, score float64) error
}

type activityExistenceChecker interface {
	Exists(ctx context.Context, activityID string) (bool, error)
}

// SubmitRequest carries the multipart submission payload.
type SubmitRequest struct {
	User          string `validate:"required"`
	Name          string `validate:"required"`
	ActivityID    string `validate:"required"`
	Email         *string
	PrequizToken  *string
	PostquizToken *string
	Notebook      []byte `validate:"required"`
	Filename      string
}

// ScoreRequest grades the latest attempt of a submission.
type ScoreRequest struct {
	ActivityID string  `json:"activity_id" validate:"required"`
	User       string  `json:"user" validate:"required"`
	Score      float64 `json:"score"`
}

// SubmissionService orchestrates notebook submission and grading flows.
type SubmissionService struct {
	submissions submissionRepo
	activities  activityExistenceChecker
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSubmissionService constructs SubmissionService.
func NewSubmissionService(submissions submissionRepo, activities activityExistenceChecker, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		submissions: submissions,
		activities:  activities,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// Submit upserts the student's submission for the activity and appends a new
// ungraded attempt. Earlier attempts and their scores are preserved.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*models.UserSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	exists, err := s.activities.Exists(ctx, req.ActivityID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("activity '%s' not found", req.ActivityID))
	}

	sub := &models.UserSubmission{
		ActivityID:    req.ActivityID,
		Username:      req.User,
		Name:          req.Name,
		Email:         req.Email,
		PrequizToken:  req.PrequizToken,
		PostquizToken: req.PostquizToken,
	}
	attempt := &models.NotebookAttempt{Notebook: req.Notebook}
	if req.Filename != "" {
		attempt.NotebookFilename = &req.Filename
	}

	if err := s.submissions.Submit(ctx, sub, attempt); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cachePatternActivities)
	s.logger.Info("submission received",
		zap.String("activity_id", sub.ActivityID),
		zap.String("user", sub.Username),
		zap.Int64("attempt_id", attempt.ID),
	)
	return sub, nil
}

// UpdateScore overwrites the score on the submission's latest attempt.
func (s *SubmissionService) UpdateScore(ctx context.Context, req ScoreRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}

	sub, err := s.submissions.FindByActivityAndUser(ctx, req.ActivityID, req.User)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return err
	}

	if err := s.submissions.GradeLatestAttempt(ctx, sub.ID, req.Score); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return err
	}

	s.logger.Info("score updated",
		zap.String("activity_id", req.ActivityID),
		zap.String("user", req.User),
		zap.Float64("score", req.Score),
	)
	return nil
}

// Attempts lists the grading history for a submission, oldest first.
func (s *SubmissionService) Attempts(ctx context.Context, activityID, username string) ([]models.NotebookAttempt, error) {
	sub, err := s.submissions.FindByActivityAndUser(ctx, activityID, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, err
	}
	return s.submissions.ListAttempts(ctx, sub.ID)
}

// Download returns the requested attempt with its notebook bytes. A zero
// attemptID selects the latest attempt.
func (s *SubmissionService) Download(ctx context.Context, activityID, username string, attemptID int64) (*models.NotebookAttempt, error) {
	sub, err := s.submissions.FindByActivityAndUser(ctx, activityID, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, err
	}

	var attempt *models.NotebookAttempt
	if attemptID > 0 {
		attempt, err = s.submissions.FindAttempt(ctx, sub.ID, attemptID)
	} else {
		attempt, err = s.submissions.LatestAttempt(ctx, sub.ID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, err
	}
	return attempt, nil
}
