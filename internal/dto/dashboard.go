package dto

// DashboardSubmission is one table row on the instructor dashboard.
type DashboardSubmission struct {
	Name         string
	Username     string
	Email        string
	ScoreDisplay string
	AttemptCount int
}

// DashboardActivity groups an activity with its submission rows.
type DashboardActivity struct {
	ActivityID   string
	ActivityName string
	Enabled      bool
	Submissions  []DashboardSubmission
}

// DashboardView is the full template payload for an authenticated
// instructor. Token is echoed into download links the way the legacy
// dashboard did.
type DashboardView struct {
	InstructorName string
	Token          string
	Collapsible    bool
	Activities     []DashboardActivity
}

// LoginView renders the Google sign-in page with an optional error banner.
// CookieMaxAge is in seconds, matching the cookie attribute.
type LoginView struct {
	GoogleClientID string
	Error          string
	CookieMaxAge   int
}
