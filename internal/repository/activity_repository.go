package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/activity-server/internal/models"
)

// ActivityRepository handles activity persistence.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// IsUniqueViolation reports whether the error is a PostgreSQL unique
// constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// Create inserts a new activity. A duplicate activity id surfaces as a
// unique violation for the caller to map.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	const query = `INSERT INTO activities (activity_id, activity_name, enabled, grading_notebook, grading_notebook_filename)
        VALUES (:activity_id, :activity_name, :enabled, :grading_notebook, :grading_notebook_filename)`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// FindByID returns the activity or sql.ErrNoRows.
func (r *ActivityRepository) FindByID(ctx context.Context, activityID string) (*models.Activity, error) {
	const query = `SELECT activity_id, activity_name, enabled, grading_notebook, grading_notebook_filename
        FROM activities WHERE activity_id = $1`
	var activity models.Activity
	if err := r.db.GetContext(ctx, &activity, query, activityID); err != nil {
		return nil, err
	}
	return &activity, nil
}

// Exists reports whether the activity id is present.
func (r *ActivityRepository) Exists(ctx context.Context, activityID string) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM activities WHERE activity_id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, activityID); err != nil {
		return false, fmt.Errorf("activity exists: %w", err)
	}
	return exists, nil
}

// Delete removes the activity; submissions and attempts cascade at the
// database level. Returns sql.ErrNoRows when the id is unknown.
func (r *ActivityRepository) Delete(ctx context.Context, activityID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE activity_id = $1`, activityID)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateSettings patches the display name and/or enabled flag in place.
// Returns sql.ErrNoRows when the id is unknown.
func (r *ActivityRepository) UpdateSettings(ctx context.Context, activityID string, name *string, enabled *bool) error {
	sets := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	if name != nil {
		sets = append(sets, fmt.Sprintf("activity_name = $%d", len(args)+1))
		args = append(args, *name)
	}
	if enabled != nil {
		sets = append(sets, fmt.Sprintf("enabled = $%d", len(args)+1))
		args = append(args, *enabled)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, activityID)
	query := fmt.Sprintf("UPDATE activities SET %s WHERE activity_id = $%d", strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns activity summaries with instructor and submission counts.
// Attempts never multiply the submission count.
func (r *ActivityRepository) List(ctx context.Context, enabledOnly bool) ([]models.ActivitySummary, error) {
	query := `SELECT a.activity_id, a.activity_name, a.enabled,
        (SELECT COUNT(*) FROM activity_instructors ai WHERE ai.activity_id = a.activity_id) AS instructor_count,
        (SELECT COUNT(*) FROM user_submissions us WHERE us.activity_id = a.activity_id) AS submission_count
        FROM activities a`
	if enabledOnly {
		query += ` WHERE a.enabled`
	}
	query += ` ORDER BY a.activity_id`
	summaries := []models.ActivitySummary{}
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return summaries, nil
}

// ListByInstructor returns every activity the instructor is linked to.
func (r *ActivityRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]models.Activity, error) {
	const query = `SELECT a.activity_id, a.activity_name, a.enabled, a.grading_notebook_filename
        FROM activities a
        JOIN activity_instructors ai ON ai.activity_id = a.activity_id
        WHERE ai.instructor_id = $1
        ORDER BY a.activity_id`
	activities := []models.Activity{}
	if err := r.db.SelectContext(ctx, &activities, query, instructorID); err != nil {
		return nil, fmt.Errorf("list activities by instructor: %w", err)
	}
	return activities, nil
}

// ListEnabledBySubmissionEmail returns the enabled activities among those the
// given email has ever submitted to.
func (r *ActivityRepository) ListEnabledBySubmissionEmail(ctx context.Context, email string) ([]models.ActivityRef, error) {
	const query = `SELECT DISTINCT a.activity_id, a.activity_name, a.enabled
        FROM activities a
        JOIN user_submissions us ON us.activity_id = a.activity_id
        WHERE us.email = $1 AND a.enabled
        ORDER BY a.activity_id`
	refs := []models.ActivityRef{}
	if err := r.db.SelectContext(ctx, &refs, query, email); err != nil {
		return nil, fmt.Errorf("list activities by email: %w", err)
	}
	return refs, nil
}
