package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/activity-server/internal/models"
	"github.com/noah-isme/activity-server/internal/service"
)

type stubActivities struct {
	activities map[string]*models.Activity
	createErr  error
	summaries  []models.ActivitySummary
	refs       []models.ActivityRef
}

func (m *stubActivities) Create(ctx context.Context, activity *models.Activity) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.activities == nil {
		m.activities = make(map[string]*models.Activity)
	}
	m.activities[activity.ActivityID] = activity
	return nil
}

func (m *stubActivities) FindByID(ctx context.Context, activityID string) (*models.Activity, error) {
	activity, ok := m.activities[activityID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return activity, nil
}

func (m *stubActivities) Delete(ctx context.Context, activityID string) error {
	if _, ok := m.activities[activityID]; !ok {
		return sql.ErrNoRows
	}
	delete(m.activities, activityID)
	return nil
}

func (m *stubActivities) UpdateSettings(ctx context.Context, activityID string, name *string, enabled *bool) error {
	activity, ok := m.activities[activityID]
	if !ok {
		return sql.ErrNoRows
	}
	if name != nil {
		activity.ActivityName = *name
	}
	if enabled != nil {
		activity.Enabled = *enabled
	}
	return nil
}

func (m *stubActivities) List(ctx context.Context, enabledOnly bool) ([]models.ActivitySummary, error) {
	return m.summaries, nil
}

func (m *stubActivities) ListEnabledBySubmissionEmail(ctx context.Context, email string) ([]models.ActivityRef, error) {
	return m.refs, nil
}

func newActivityHandler(repo *stubActivities) *ActivityHandler {
	activities := service.NewActivityService(repo, nil, validator.New(), zap.NewNop())
	auth := service.NewAuthService(&stubInstructors{}, zap.NewNop())
	exports := service.NewExportService(activities, &stubRowLister{}, zap.NewNop())
	return NewActivityHandler(activities, exports, auth)
}

type stubRowLister struct {
	rows []models.SubmissionRow
}

func (m *stubRowLister) ListRowsByActivity(ctx context.Context, activityID string) ([]models.SubmissionRow, error) {
	return m.rows, nil
}

func TestActivityHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubActivities{}
	handler := newActivityHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/api/activity", map[string]string{
		"activity_id":   "lab-1",
		"activity_name": "Lab 1",
	}, "grading_notebook", "grader.ipynb", []byte("{}"))

	handler.Create(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "lab-1", body["activity_id"])
	require.Contains(t, repo.activities, "lab-1")
	assert.True(t, repo.activities["lab-1"].Enabled)
}

func TestActivityHandlerCreateDuplicate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newActivityHandler(&stubActivities{createErr: &pq.Error{Code: "23505"}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/api/activity", map[string]string{
		"activity_id":   "lab-1",
		"activity_name": "Lab 1",
	}, "grading_notebook", "grader.ipynb", []byte("{}"))

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ACTIVITY_EXISTS", body["error"]["code"])
}

func TestActivityHandlerCreateMissingNotebook(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newActivityHandler(&stubActivities{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/api/activity", map[string]string{
		"activity_id":   "lab-1",
		"activity_name": "Lab 1",
	}, "", "", nil)

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActivityHandlerDeleteMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newActivityHandler(&stubActivities{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/api/activity/ghost", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "activity_id", Value: "ghost"}}

	handler.Delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActivityHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newActivityHandler(&stubActivities{summaries: []models.ActivitySummary{
		{ActivityID: "lab-1", ActivityName: "Lab 1", Enabled: true, InstructorCount: 1, SubmissionCount: 3},
	}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/api/activities", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string][]models.ActivitySummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body["activities"], 1)
	assert.Equal(t, 3, body["activities"][0].SubmissionCount)
}

func TestActivityHandlerListInvalidFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newActivityHandler(&stubActivities{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/api/activities?enabled_only=banana", nil)
	c.Request = req

	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActivityHandlerByEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newActivityHandler(&stubActivities{refs: []models.ActivityRef{
		{ActivityID: "lab-1", ActivityName: "Lab 1", Enabled: true},
	}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/api/activities/by-email/alice@example.com", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "email", Value: "alice@example.com"}}

	handler.ByEmail(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice@example.com", body["email"])
	assert.Len(t, body["activities"], 1)
}
