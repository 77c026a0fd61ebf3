package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/activity-server/internal/models"
	appErrors "github.com/noah-isme/activity-server/pkg/errors"
)

type instructorRepo interface {
	Upsert(ctx context.Context, instructor *models.Instructor) error
	Link(ctx context.Context, activityID string, instructorID int64) error
	EnsureEmails(ctx context.Context, emails []string) error
}

// AddInstructorRequest links an instructor email to an activity, creating
// the instructor lazily when the email is unseen.
type AddInstructorRequest struct {
	Email      string  `json:"email" validate:"required,email"`
	Name       *string `json:"name"`
	ActivityID string  `json:"activity_id" validate:"required"`
}

// InstructorService orchestrates instructor registration and linking.
type InstructorService struct {
	instructors instructorRepo
	activities  activityExistenceChecker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewInstructorService constructs InstructorService.
func NewInstructorService(instructors instructorRepo, activities activityExistenceChecker, validate *validator.Validate, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{instructors: instructors, activities: activities, validator: validate, logger: logger}
}

// Add creates-or-reuses the instructor and links it to the activity.
// Repeated calls leave exactly one link and one instructor row per email.
func (s *InstructorService) Add(ctx context.Context, req AddInstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}

	exists, err := s.activities.Exists(ctx, req.ActivityID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
	}

	instructor := &models.Instructor{Email: req.Email, Name: req.Name}
	if err := s.instructors.Upsert(ctx, instructor); err != nil {
		return nil, err
	}
	if err := s.instructors.Link(ctx, req.ActivityID, instructor.ID); err != nil {
		return nil, err
	}

	s.logger.Info("instructor linked",
		zap.String("email", req.Email),
		zap.String("activity_id", req.ActivityID),
	)
	return instructor, nil
}

// SeedAdmins registers the configured bootstrap emails as instructors. It is
// idempotent and runs once at startup.
func (s *InstructorService) SeedAdmins(ctx context.Context, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	if err := s.instructors.EnsureEmails(ctx, emails); err != nil {
		return err
	}
	s.logger.Info("admin instructors seeded", zap.Int("count", len(emails)))
	return nil
}
