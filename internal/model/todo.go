package model

import "time"

// Todo is a task owned by exactly one user and labelled by any number of tags.
//
// User and Tags are filled by the service layer when a todo is returned
// from the API. Tags is always a non-nil slice in responses so clients get
// [] instead of null.
type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	User *User `json:"user,omitempty"`
	Tags []Tag `json:"tags"`
}
