package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/activity-server/internal/dto"
	"github.com/noah-isme/activity-server/internal/models"
)

type instructorActivityLister interface {
	ListByInstructor(ctx context.Context, instructorID int64) ([]models.Activity, error)
}

type submissionRowLister interface {
	ListRowsByActivity(ctx context.Context, activityID string) ([]models.SubmissionRow, error)
}

// DashboardService assembles the instructor dashboard view.
type DashboardService struct {
	activities  instructorActivityLister
	submissions submissionRowLister
	logger      *zap.Logger
}

// NewDashboardService constructs DashboardService.
func NewDashboardService(activities instructorActivityLister, submissions submissionRowLister, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{activities: activities, submissions: submissions, logger: logger}
}

// View builds the dashboard payload for the instructor: every linked
// activity with its submission table. An empty Activities slice renders the
// "no activities assigned" page.
func (s *DashboardService) View(ctx context.Context, instructor *models.Instructor, token string) (*dto.DashboardView, error) {
	activities, err := s.activities.ListByInstructor(ctx, instructor.ID)
	if err != nil {
		return nil, err
	}

	view := &dto.DashboardView{
		InstructorName: instructor.DisplayName(),
		Token:          token,
		Collapsible:    len(activities) > 1,
		Activities:     make([]dto.DashboardActivity, 0, len(activities)),
	}

	for _, activity := range activities {
		rows, err := s.submissions.ListRowsByActivity(ctx, activity.ActivityID)
		if err != nil {
			return nil, err
		}
		da := dto.DashboardActivity{
			ActivityID:   activity.ActivityID,
			ActivityName: activity.ActivityName,
			Enabled:      activity.Enabled,
			Submissions:  make([]dto.DashboardSubmission, 0, len(rows)),
		}
		for _, row := range rows {
			da.Submissions = append(da.Submissions, dto.DashboardSubmission{
				Name:         row.Name,
				Username:     row.Username,
				Email:        emailDisplay(row.Email),
				ScoreDisplay: ScoreDisplay(row.LatestScore),
				AttemptCount: row.AttemptCount,
			})
		}
		view.Activities = append(view.Activities, da)
	}

	return view, nil
}

// ScoreDisplay formats a nullable score the way the dashboard and report
// exports show it.
func ScoreDisplay(score *float64) string {
	if score == nil {
		return "Not graded"
	}
	return fmt.Sprintf("%.2f", *score)
}

func emailDisplay(email *string) string {
	if email == nil || *email == "" {
		return "—"
	}
	return *email
}
