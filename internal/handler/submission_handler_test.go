package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/activity-server/internal/middleware"
	"github.com/noah-isme/activity-server/internal/models"
	"github.com/noah-isme/activity-server/internal/service"
)

type stubSubmissions struct {
	submission *models.UserSubmission
	attempts   []models.NotebookAttempt
}

func (m *stubSubmissions) Submit(ctx context.Context, sub *models.UserSubmission, attempt *models.NotebookAttempt) error {
	sub.ID = 7
	attempt.ID = int64(len(m.attempts)) + 1
	attempt.SubmissionID = sub.ID
	attempt.SubmittedAt = time.Now()
	m.submission = sub
	m.attempts = append(m.attempts, *attempt)
	return nil
}

func (m *stubSubmissions) FindByActivityAndUser(ctx context.Context, activityID, username string) (*models.UserSubmission, error) {
	if m.submission == nil || m.submission.ActivityID != activityID || m.submission.Username != username {
		return nil, sql.ErrNoRows
	}
	return m.submission, nil
}

func (m *stubSubmissions) LatestAttempt(ctx context.Context, submissionID int64) (*models.NotebookAttempt, error) {
	if len(m.attempts) == 0 {
		return nil, sql.ErrNoRows
	}
	return &m.attempts[len(m.attempts)-1], nil
}

func (m *stubSubmissions) FindAttempt(ctx context.Context, submissionID, attemptID int64) (*models.NotebookAttempt, error) {
	for i := range m.attempts {
		if m.attempts[i].ID == attemptID {
			return &m.attempts[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *stubSubmissions) ListAttempts(ctx context.Context, submissionID int64) ([]models.NotebookAttempt, error) {
	return m.attempts, nil
}

func (m *stubSubmissions) GradeLatestAttempt(ctx context.Context, submissionID int64, score float64) error {
	if len(m.attempts) == 0 {
		return sql.ErrNoRows
	}
	m.attempts[len(m.attempts)-1].Score = &score
	return nil
}

type stubActivityChecker struct {
	exists bool
}

func (m *stubActivityChecker) Exists(ctx context.Context, activityID string) (bool, error) {
	return m.exists, nil
}

type stubInstructors struct {
	instructor *models.Instructor
	linked     bool
}

func (m *stubInstructors) FindByEmail(ctx context.Context, email string) (*models.Instructor, error) {
	if m.instructor == nil || m.instructor.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.instructor, nil
}

func (m *stubInstructors) Linked(ctx context.Context, activityID string, instructorID int64) (bool, error) {
	return m.linked, nil
}

func newSubmissionHandler(repo *stubSubmissions, exists bool, instructors *stubInstructors) *SubmissionHandler {
	if instructors == nil {
		instructors = &stubInstructors{}
	}
	submissions := service.NewSubmissionService(repo, &stubActivityChecker{exists: exists}, nil, validator.New(), zap.NewNop())
	auth := service.NewAuthService(instructors, zap.NewNop())
	return NewSubmissionHandler(submissions, auth)
}

func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	req, err := http.NewRequest(http.MethodPost, target, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestSubmissionHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubSubmissions{}
	handler := newSubmissionHandler(repo, true, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/api/submit", map[string]string{
		"user":     "alice",
		"name":     "Alice",
		"activity": "lab-1",
		"email":    "alice@example.com",
	}, "notebook", "hw.ipynb", []byte("{}"))

	handler.Submit(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "alice", body["user"])
	assert.Equal(t, "lab-1", body["activity"])
	require.NotNil(t, repo.submission)
	require.NotNil(t, repo.submission.Email)
	assert.Equal(t, "alice@example.com", *repo.submission.Email)
}

func TestSubmissionHandlerSubmitMissingNotebook(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSubmissionHandler(&stubSubmissions{}, true, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/api/submit", map[string]string{
		"user":     "alice",
		"name":     "Alice",
		"activity": "lab-1",
	}, "", "", nil)

	handler.Submit(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmissionHandlerSubmitUnknownActivity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSubmissionHandler(&stubSubmissions{}, false, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "/api/submit", map[string]string{
		"user":     "alice",
		"name":     "Alice",
		"activity": "ghost",
	}, "notebook", "hw.ipynb", []byte("{}"))

	handler.Submit(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmissionHandlerUpdateScore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubSubmissions{
		submission: &models.UserSubmission{ID: 7, ActivityID: "lab-1", Username: "alice"},
		attempts:   []models.NotebookAttempt{{ID: 1, SubmissionID: 7}},
	}
	handler := newSubmissionHandler(repo, true, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	payload, _ := json.Marshal(map[string]interface{}{"activity_id": "lab-1", "user": "alice", "score": 95.5})
	req, _ := http.NewRequest(http.MethodPut, "/api/score", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.UpdateScore(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.attempts[0].Score)
	assert.InDelta(t, 95.5, *repo.attempts[0].Score, 0.001)
}

func TestSubmissionHandlerUpdateScoreInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSubmissionHandler(&stubSubmissions{}, true, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/api/score", bytes.NewReader([]byte(`invalid`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.UpdateScore(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmissionHandlerAttemptsRequiresInstructor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSubmissionHandler(&stubSubmissions{}, true, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/api/submissions/lab-1/alice/attempts", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "activity_id", Value: "lab-1"}, {Key: "user", Value: "alice"}}

	handler.Attempts(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmissionHandlerAttempts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubSubmissions{
		submission: &models.UserSubmission{ID: 7, ActivityID: "lab-1", Username: "alice"},
		attempts:   []models.NotebookAttempt{{ID: 1, SubmissionID: 7}, {ID: 2, SubmissionID: 7}},
	}
	handler := newSubmissionHandler(repo, true, &stubInstructors{linked: true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/api/submissions/lab-1/alice/attempts", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "activity_id", Value: "lab-1"}, {Key: "user", Value: "alice"}}
	c.Set(middleware.ContextInstructorKey, &models.Instructor{ID: 3, Email: "prof@example.com"})

	handler.Attempts(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body["attempts"], 2)
}
