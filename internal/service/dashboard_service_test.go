package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/activity-server/internal/models"
)

type mockActivityLister struct {
	activities []models.Activity
}

func (m *mockActivityLister) ListByInstructor(ctx context.Context, instructorID int64) ([]models.Activity, error) {
	return m.activities, nil
}

type mockRowLister struct {
	rows map[string][]models.SubmissionRow
}

func (m *mockRowLister) ListRowsByActivity(ctx context.Context, activityID string) ([]models.SubmissionRow, error) {
	return m.rows[activityID], nil
}

func TestDashboardServiceView(t *testing.T) {
	score := 92.5
	email := "alice@example.com"
	activities := &mockActivityLister{activities: []models.Activity{
		{ActivityID: "lab-1", ActivityName: "Lab 1", Enabled: true},
		{ActivityID: "lab-2", ActivityName: "Lab 2", Enabled: false},
	}}
	rows := &mockRowLister{rows: map[string][]models.SubmissionRow{
		"lab-1": {
			{Username: "alice", Name: "Alice", Email: &email, AttemptCount: 2, LatestScore: &score},
			{Username: "bob", Name: "Bob", AttemptCount: 1},
		},
	}}
	svc := NewDashboardService(activities, rows, zap.NewNop())

	name := "Prof"
	view, err := svc.View(context.Background(), &models.Instructor{ID: 3, Email: "prof@example.com", Name: &name}, "tok")
	require.NoError(t, err)

	assert.Equal(t, "Prof", view.InstructorName)
	assert.Equal(t, "tok", view.Token)
	assert.True(t, view.Collapsible)
	require.Len(t, view.Activities, 2)

	subs := view.Activities[0].Submissions
	require.Len(t, subs, 2)
	assert.Equal(t, "92.50", subs[0].ScoreDisplay)
	assert.Equal(t, "alice@example.com", subs[0].Email)
	assert.Equal(t, "Not graded", subs[1].ScoreDisplay)
	assert.Equal(t, "—", subs[1].Email)

	assert.Empty(t, view.Activities[1].Submissions)
}

func TestDashboardServiceViewSingleActivity(t *testing.T) {
	activities := &mockActivityLister{activities: []models.Activity{{ActivityID: "lab-1"}}}
	svc := NewDashboardService(activities, &mockRowLister{}, zap.NewNop())

	view, err := svc.View(context.Background(), &models.Instructor{ID: 3, Email: "prof@example.com"}, "tok")
	require.NoError(t, err)
	assert.False(t, view.Collapsible)
	assert.Equal(t, "prof@example.com", view.InstructorName)
}

func TestDashboardServiceViewNoActivities(t *testing.T) {
	svc := NewDashboardService(&mockActivityLister{}, &mockRowLister{}, zap.NewNop())

	view, err := svc.View(context.Background(), &models.Instructor{ID: 3, Email: "prof@example.com"}, "tok")
	require.NoError(t, err)
	assert.Empty(t, view.Activities)
}

func TestScoreDisplay(t *testing.T) {
	assert.Equal(t, "Not graded", ScoreDisplay(nil))
	score := 0.0
	assert.Equal(t, "0.00", ScoreDisplay(&score))
	score = 87.5
	assert.Equal(t, "87.50", ScoreDisplay(&score))
}
