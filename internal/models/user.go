// Package models defines the persistent entities for the social backend.
package models

import (
	"time"
)

// User represents an account. ProfilePic is stored as a BLOB and serializes
// to base64 in JSON ([]byte marshaling).
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`

	// Native auth
	PasswordHash string `gorm:"type:text;not null" json:"-"`

	// Profile data
	Bio        string `gorm:"type:text" json:"bio"`
	ProfilePic []byte `gorm:"type:bytea" json:"profilePic,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublicUser is the trimmed user representation embedded in posts, comments,
// messages and notifications.
type PublicUser struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	ProfilePic []byte `json:"profilePic,omitempty"`
}

// Public returns the embeddable representation of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		ProfilePic: u.ProfilePic,
	}
}

// Follow is a follower relationship: Follower follows Followed.
type Follow struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	FollowerID uint `gorm:"not null;uniqueIndex:idx_follows_pair" json:"followerId"`
	FollowedID uint `gorm:"not null;uniqueIndex:idx_follows_pair" json:"followedId"`

	Follower User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Followed User `gorm:"foreignKey:FollowedID" json:"followed,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}
