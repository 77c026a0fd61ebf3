package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/activity-server/internal/models"
)

// SubmissionRepository handles submission and notebook attempt persistence.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const upsertSubmissionQuery = `INSERT INTO user_submissions (activity_id, username, name, email, prequiz_token, postquiz_token)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (activity_id, username)
        DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email,
                prequiz_token = EXCLUDED.prequiz_token, postquiz_token = EXCLUDED.postquiz_token
        RETURNING id`

const insertAttemptQuery = `INSERT INTO notebooks (submission_id, notebook, notebook_filename)
        VALUES ($1, $2, $3)
        RETURNING id, submitted_at`

// Submit upserts the submission row and appends a new ungraded attempt in a
// single transaction. Concurrent resubmissions for the same (activity, user)
// pair are last-write-wins at the row level.
func (r *SubmissionRepository) Submit(ctx context.Context, sub *models.UserSubmission, attempt *models.NotebookAttempt) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submit: %w", err)
	}
	if err := tx.QueryRowContext(ctx, upsertSubmissionQuery,
		sub.ActivityID, sub.Username, sub.Name, sub.Email, sub.PrequizToken, sub.PostquizToken,
	).Scan(&sub.ID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("upsert submission: %w", err)
	}
	attempt.SubmissionID = sub.ID
	if err := tx.QueryRowContext(ctx, insertAttemptQuery,
		attempt.SubmissionID, attempt.Notebook, attempt.NotebookFilename,
	).Scan(&attempt.ID, &attempt.SubmittedAt); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert attempt: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit submit: %w", err)
	}
	return nil
}

// FindByActivityAndUser returns the submission row or sql.ErrNoRows.
func (r *SubmissionRepository) FindByActivityAndUser(ctx context.Context, activityID, username string) (*models.UserSubmission, error) {
	const query = `SELECT id, activity_id, username, name, email, prequiz_token, postquiz_token
        FROM user_submissions WHERE activity_id = $1 AND username = $2`
	var sub models.UserSubmission
	if err := r.db.GetContext(ctx, &sub, query, activityID, username); err != nil {
		return nil, err
	}
	return &sub, nil
}

// LatestAttempt returns the most recent attempt for a submission, including
// the notebook bytes.
func (r *SubmissionRepository) LatestAttempt(ctx context.Context, submissionID int64) (*models.NotebookAttempt, error) {
	const query = `SELECT id, submission_id, notebook, notebook_filename, score, submitted_at
        FROM notebooks WHERE submission_id = $1 ORDER BY id DESC LIMIT 1`
	var attempt models.NotebookAttempt
	if err := r.db.GetContext(ctx, &attempt, query, submissionID); err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindAttempt returns a specific attempt belonging to the submission.
func (r *SubmissionRepository) FindAttempt(ctx context.Context, submissionID, attemptID int64) (*models.NotebookAttempt, error) {
	const query = `SELECT id, submission_id, notebook, notebook_filename, score, submitted_at
        FROM notebooks WHERE submission_id = $1 AND id = $2`
	var attempt models.NotebookAttempt
	if err := r.db.GetContext(ctx, &attempt, query, submissionID, attemptID); err != nil {
		return nil, err
	}
	return &attempt, nil
}

// ListAttempts returns attempt metadata for a submission, oldest first. The
// notebook bytes are deliberately left out.
func (r *SubmissionRepository) ListAttempts(ctx context.Context, submissionID int64) ([]models.NotebookAttempt, error) {
	const query = `SELECT id, submission_id, notebook_filename, score, submitted_at
        FROM notebooks WHERE submission_id = $1 ORDER BY id`
	attempts := []models.NotebookAttempt{}
	if err := r.db.SelectContext(ctx, &attempts, query, submissionID); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}

// ListRowsByActivity returns one row per student with the latest grading
// state, for the dashboard and report export.
func (r *SubmissionRepository) ListRowsByActivity(ctx context.Context, activityID string) ([]models.SubmissionRow, error) {
	const query = `SELECT us.id AS submission_id, us.activity_id, us.username, us.name, us.email,
        COUNT(n.id) AS attempt_count,
        (SELECT n2.score FROM notebooks n2 WHERE n2.submission_id = us.id ORDER BY n2.id DESC LIMIT 1) AS latest_score
        FROM user_submissions us
        LEFT JOIN notebooks n ON n.submission_id = us.id
        WHERE us.activity_id = $1
        GROUP BY us.id, us.activity_id, us.username, us.name, us.email
        ORDER BY us.username`
	rows := []models.SubmissionRow{}
	if err := r.db.SelectContext(ctx, &rows, query, activityID); err != nil {
		return nil, fmt.Errorf("list submission rows: %w", err)
	}
	return rows, nil
}

// GradeLatestAttempt overwrites the score on the most recent attempt.
// Returns sql.ErrNoRows when the submission has no attempts.
func (r *SubmissionRepository) GradeLatestAttempt(ctx context.Context, submissionID int64, score float64) error {
	const query = `UPDATE notebooks SET score = $2
        WHERE id = (SELECT id FROM notebooks WHERE submission_id = $1 ORDER BY id DESC LIMIT 1)`
	res, err := r.db.ExecContext(ctx, query, submissionID, score)
	if err != nil {
		return fmt.Errorf("grade attempt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("grade attempt: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
