package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/activity-server/internal/models"
)

func TestSubmissionRepositorySubmit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO user_submissions").
		WithArgs("lab-1", "alice", "Alice", nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("INSERT INTO notebooks").
		WithArgs(int64(7), []byte("{}"), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "submitted_at"}).AddRow(42, time.Now()))
	mock.ExpectCommit()

	sub := &models.UserSubmission{ActivityID: "lab-1", Username: "alice", Name: "Alice"}
	attempt := &models.NotebookAttempt{Notebook: []byte("{}")}
	err := repo.Submit(context.Background(), sub, attempt)
	require.NoError(t, err)
	assert.Equal(t, int64(7), sub.ID)
	assert.Equal(t, int64(42), attempt.ID)
	assert.Equal(t, int64(7), attempt.SubmissionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositorySubmitRollsBackOnAttemptFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO user_submissions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("INSERT INTO notebooks").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	sub := &models.UserSubmission{ActivityID: "lab-1", Username: "alice", Name: "Alice"}
	err := repo.Submit(context.Background(), sub, &models.NotebookAttempt{Notebook: []byte("{}")})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryFindByActivityAndUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "activity_id", "username", "name", "email", "prequiz_token", "postquiz_token"}).
		AddRow(7, "lab-1", "alice", "Alice", "alice@example.com", nil, nil)
	mock.ExpectQuery("SELECT id, activity_id, username").
		WithArgs("lab-1", "alice").
		WillReturnRows(rows)

	sub, err := repo.FindByActivityAndUser(context.Background(), "lab-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), sub.ID)
	require.NotNil(t, sub.Email)
	assert.Equal(t, "alice@example.com", *sub.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryLatestAttempt(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "submission_id", "notebook", "notebook_filename", "score", "submitted_at"}).
		AddRow(42, 7, []byte("{}"), "hw.ipynb", 88.5, time.Now())
	mock.ExpectQuery("FROM notebooks WHERE submission_id = \\$1 ORDER BY id DESC LIMIT 1").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	attempt, err := repo.LatestAttempt(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(42), attempt.ID)
	require.NotNil(t, attempt.Score)
	assert.InDelta(t, 88.5, *attempt.Score, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryListAttempts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "submission_id", "notebook_filename", "score", "submitted_at"}).
		AddRow(1, 7, "v1.ipynb", 60.0, time.Now()).
		AddRow(2, 7, "v2.ipynb", nil, time.Now())
	mock.ExpectQuery("SELECT id, submission_id, notebook_filename").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	attempts, err := repo.ListAttempts(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Nil(t, attempts[1].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryListRowsByActivity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	rows := sqlmock.NewRows([]string{"submission_id", "activity_id", "username", "name", "email", "attempt_count", "latest_score"}).
		AddRow(7, "lab-1", "alice", "Alice", nil, 3, 92.0).
		AddRow(8, "lab-1", "bob", "Bob", "bob@example.com", 1, nil)
	mock.ExpectQuery("FROM user_submissions us").
		WithArgs("lab-1").
		WillReturnRows(rows)

	list, err := repo.ListRowsByActivity(context.Background(), "lab-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 3, list[0].AttemptCount)
	assert.Nil(t, list[1].LatestScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryGradeLatestAttempt(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec("UPDATE notebooks SET score").
		WithArgs(int64(7), 95.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.GradeLatestAttempt(context.Background(), 7, 95.0)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryGradeLatestAttemptNoAttempts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec("UPDATE notebooks SET score").
		WithArgs(int64(7), 95.0).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.GradeLatestAttempt(context.Background(), 7, 95.0)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
