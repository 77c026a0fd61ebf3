package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/activity-server/internal/models"
	"github.com/noah-isme/activity-server/internal/repository"
	appErrors "github.com/noah-isme/activity-server/pkg/errors"
)

type activityRepo interface {
	Create(ctx context.Context, activity *models.Activity) error
	FindByID(ctx context.Context, activityID string) (*models.Activity, error)
	Delete(ctx context.Context, activityID string) error
	UpdateSettings(ctx context.Context, activityID string, name *string, enabled *bool) error
	List(ctx context.Context, enabledOnly bool) ([]models.ActivitySummary, error)
	ListEnabledBySubmissionEmail(ctx context.Context, email string) ([]models.ActivityRef, error)
}

const (
	cacheKeyActivitiesAll     = "activities:list:all"
	cacheKeyActivitiesEnabled = "activities:list:enabled"
	cacheKeyByEmailPrefix     = "activities:by-email:"
	cachePatternActivities    = "activities:*"
)

// CreateActivityRequest carries the multipart create payload.
type CreateActivityRequest struct {
	ActivityID      string `validate:"required"`
	ActivityName    string `validate:"required"`
	Enabled         bool
	GradingNotebook []byte `validate:"required"`
	Filename        string
}

// PatchActivityRequest mutates an activity in place.
type PatchActivityRequest struct {
	ActivityName *string `json:"activity_name"`
	Enabled      *bool   `json:"enabled"`
}

// ActivityService orchestrates activity lifecycle and listing flows.
type ActivityService struct {
	activities activityRepo
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewActivityService constructs ActivityService.
func NewActivityService(activities activityRepo, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{activities: activities, cache: cache, validator: validate, logger: logger}
}

// Create stores a new activity with its grading notebook. A taken activity
// id fails with ErrActivityExists.
func (s *ActivityService) Create(ctx context.Context, req CreateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	activity := &models.Activity{
		ActivityID:      req.ActivityID,
		ActivityName:    req.ActivityName,
		Enabled:         req.Enabled,
		GradingNotebook: req.GradingNotebook,
	}
	if req.Filename != "" {
		activity.GradingNotebookFilename = &req.Filename
	}

	if err := s.activities.Create(ctx, activity); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.ErrActivityExists
		}
		return nil, err
	}

	s.cache.Invalidate(ctx, cachePatternActivities)
	s.logger.Info("activity created", zap.String("activity_id", activity.ActivityID))
	return activity, nil
}

// Delete removes the activity and cascades to its submissions and attempts.
func (s *ActivityService) Delete(ctx context.Context, activityID string) error {
	if err := s.activities.Delete(ctx, activityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return err
	}
	s.cache.Invalidate(ctx, cachePatternActivities)
	s.logger.Info("activity deleted", zap.String("activity_id", activityID))
	return nil
}

// Update patches the display name and/or enabled flag.
func (s *ActivityService) Update(ctx context.Context, activityID string, req PatchActivityRequest) (*models.Activity, error) {
	if err := s.activities.UpdateSettings(ctx, activityID, req.ActivityName, req.Enabled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, err
	}
	s.cache.Invalidate(ctx, cachePatternActivities)
	activity, err := s.activities.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, err
	}
	return activity, nil
}

// List returns activity summaries, optionally restricted to enabled ones.
func (s *ActivityService) List(ctx context.Context, enabledOnly bool) ([]models.ActivitySummary, error) {
	key := cacheKeyActivitiesAll
	if enabledOnly {
		key = cacheKeyActivitiesEnabled
	}

	var cached []models.ActivitySummary
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	summaries, err := s.activities.List(ctx, enabledOnly)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, summaries)
	return summaries, nil
}

// ByEmail returns the enabled activities among those the email has ever
// submitted to. Disabling an activity removes it from this list without
// deleting the submission.
func (s *ActivityService) ByEmail(ctx context.Context, email string) ([]models.ActivityRef, error) {
	key := cacheKeyByEmailPrefix + email

	var cached []models.ActivityRef
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	refs, err := s.activities.ListEnabledBySubmissionEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, refs)
	return refs, nil
}

// Get returns a single activity by id.
func (s *ActivityService) Get(ctx context.Context, activityID string) (*models.Activity, error) {
	activity, err := s.activities.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("activity '%s' not found", activityID))
		}
		return nil, err
	}
	return activity, nil
}
