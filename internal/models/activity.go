package models

// Activity is a gradable assignment. The human-chosen activity id is the
// natural key referenced by every dependent table.
type Activity struct {
	ActivityID              string  `db:"activity_id" json:"activity_id"`
	ActivityName            string  `db:"activity_name" json:"activity_name"`
	Enabled                 bool    `db:"enabled" json:"enabled"`
	GradingNotebook         []byte  `db:"grading_notebook" json:"-"`
	GradingNotebookFilename *string `db:"grading_notebook_filename" json:"grading_notebook_filename,omitempty"`
}

// ActivitySummary is the listing projection with aggregate counts.
type ActivitySummary struct {
	ActivityID      string `db:"activity_id" json:"activity_id"`
	ActivityName    string `db:"activity_name" json:"activity_name"`
	Enabled         bool   `db:"enabled" json:"enabled"`
	InstructorCount int    `db:"instructor_count" json:"instructor_count"`
	SubmissionCount int    `db:"submission_count" json:"submission_count"`
}

// ActivityRef is the slim projection returned by the by-email lookup.
type ActivityRef struct {
	ActivityID   string `db:"activity_id" json:"activity_id"`
	ActivityName string `db:"activity_name" json:"activity_name"`
	Enabled      bool   `db:"enabled" json:"enabled"`
}
