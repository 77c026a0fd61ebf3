package models

// Instructor is an authorized grader. The email is the Google identity key;
// no password is ever stored.
type Instructor struct {
	ID    int64   `db:"id" json:"id"`
	Email string  `db:"email" json:"email"`
	Name  *string `db:"name" json:"name,omitempty"`
}

// DisplayName prefers the instructor's name, falling back to the email.
func (i Instructor) DisplayName() string {
	if i.Name != nil && *i.Name != "" {
		return *i.Name
	}
	return i.Email
}
