package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/activity-server/internal/models"
)

// InstructorRepository handles instructor rows and their activity links.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository creates a new instructor repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// FindByEmail returns the instructor or sql.ErrNoRows.
func (r *InstructorRepository) FindByEmail(ctx context.Context, email string) (*models.Instructor, error) {
	const query = `SELECT id, email, name FROM instructors WHERE email = $1`
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, email); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// Upsert creates the instructor lazily on first reference. When a name is
// provided it overwrites the stored one; a nil name leaves it untouched.
func (r *InstructorRepository) Upsert(ctx context.Context, instructor *models.Instructor) error {
	const query = `INSERT INTO instructors (email, name) VALUES ($1, $2)
        ON CONFLICT (email)
        DO UPDATE SET name = COALESCE(EXCLUDED.name, instructors.name)
        RETURNING id, name`
	if err := r.db.QueryRowContext(ctx, query, instructor.Email, instructor.Name).
		Scan(&instructor.ID, &instructor.Name); err != nil {
		return fmt.Errorf("upsert instructor: %w", err)
	}
	return nil
}

// Link associates the instructor with the activity, idempotently.
func (r *InstructorRepository) Link(ctx context.Context, activityID string, instructorID int64) error {
	const query = `INSERT INTO activity_instructors (activity_id, instructor_id)
        VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, activityID, instructorID); err != nil {
		return fmt.Errorf("link instructor: %w", err)
	}
	return nil
}

// Linked reports whether the instructor is associated with the activity.
func (r *InstructorRepository) Linked(ctx context.Context, activityID string, instructorID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM activity_instructors WHERE activity_id = $1 AND instructor_id = $2)`
	var linked bool
	if err := r.db.GetContext(ctx, &linked, query, activityID, instructorID); err != nil {
		return false, fmt.Errorf("instructor linked: %w", err)
	}
	return linked, nil
}

// EnsureEmails seeds instructor rows for the configured admin emails so the
// gated management endpoints work on a fresh database.
func (r *InstructorRepository) EnsureEmails(ctx context.Context, emails []string) error {
	const query = `INSERT INTO instructors (email) VALUES ($1) ON CONFLICT (email) DO NOTHING`
	for _, email := range emails {
		if _, err := r.db.ExecContext(ctx, query, email); err != nil {
			return fmt.Errorf("seed instructor %s: %w", email, err)
		}
	}
	return nil
}
