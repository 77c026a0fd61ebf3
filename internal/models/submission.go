package models

import "time"

// UserSubmission ties a student to an activity. Notebook uploads accumulate
// as NotebookAttempt rows, ordered by insertion id.
type UserSubmission struct {
	ID            int64   `db:"id" json:"id"`
	ActivityID    string  `db:"activity_id" json:"activity_id"`
	Username      string  `db:"username" json:"user"`
	Name          string  `db:"name" json:"name"`
	Email         *string `db:"email" json:"email,omitempty"`
	PrequizToken  *string `db:"prequiz_token" json:"prequiz_token,omitempty"`
	PostquizToken *string `db:"postquiz_token" json:"postquiz_token,omitempty"`
}

// NotebookAttempt is one graded notebook upload. Score stays nil until an
// instructor grades the attempt; regrading earlier attempts is allowed and
// never disturbs later ones.
type NotebookAttempt struct {
	ID               int64     `db:"id" json:"id"`
	SubmissionID     int64     `db:"submission_id" json:"submission_id"`
	Notebook         []byte    `db:"notebook" json:"-"`
	NotebookFilename *string   `db:"notebook_filename" json:"notebook_filename,omitempty"`
	Score            *float64  `db:"score" json:"score"`
	SubmittedAt      time.Time `db:"submitted_at" json:"submitted_at"`
}

// SubmissionRow is the dashboard/report projection: one row per student with
// the latest attempt's grading state.
type SubmissionRow struct {
	SubmissionID int64    `db:"submission_id" json:"submission_id"`
	ActivityID   string   `db:"activity_id" json:"activity_id"`
	Username     string   `db:"username" json:"user"`
	Name         string   `db:"name" json:"name"`
	Email        *string  `db:"email" json:"email,omitempty"`
	AttemptCount int      `db:"attempt_count" json:"attempt_count"`
	LatestScore  *float64 `db:"latest_score" json:"latest_score"`
}
