package domain

import "time"

// Todo represents a single task owned by exactly one user.
type Todo struct {
	ID          string
	Title       string
	Description *string
	Completed   bool
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
