package model

import "time"

// Profile is the optional one-to-one extension of a User.
// Bio and AvatarURL are nullable columns, hence the pointers.
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Bio       *string   `json:"bio"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
