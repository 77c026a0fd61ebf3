package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/activity-server/pkg/export"
	appErrors "github.com/noah-isme/activity-server/pkg/errors"
)

// ExportService renders submission reports for an activity.
type ExportService struct {
	activities  *ActivityService
	submissions submissionRowLister
	logger      *zap.Logger
}

// ExportResult is a rendered report ready to stream.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// NewExportService constructs ExportService.
func NewExportService(activities *ActivityService, submissions submissionRowLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{activities: activities, submissions: submissions, logger: logger}
}

// Render produces the submission report in the requested format.
func (s *ExportService) Render(ctx context.Context, activityID, format string) (*ExportResult, error) {
	activity, err := s.activities.Get(ctx, activityID)
	if err != nil {
		return nil, err
	}

	rows, err := s.submissions.ListRowsByActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Name", "User", "Email", "Score", "Attempts"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		email := ""
		if row.Email != nil {
			email = *row.Email
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Name":     row.Name,
			"User":     row.Username,
			"Email":    email,
			"Score":    ScoreDisplay(row.LatestScore),
			"Attempts": strconv.Itoa(row.AttemptCount),
		})
	}

	switch format {
	case "csv", "":
		content, err := export.RenderCSV(dataset)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("%s_submissions.csv", activity.ActivityID),
		}, nil
	case "pdf":
		content, err := export.RenderPDF(dataset, fmt.Sprintf("%s submissions", activity.ActivityName))
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("%s_submissions.pdf", activity.ActivityID),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
