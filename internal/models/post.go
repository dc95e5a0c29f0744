package models

import (
	"time"
)

// Category groups posts by topic.
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"createdAt"`
}

// Post is a publication. Content holds optional binary media (image etc.)
// and serializes to base64 in JSON.
type Post struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index:idx_posts_user_created,priority:1" json:"userId"`
	CategoryID  uint   `gorm:"not null;index" json:"categoryId"`
	Description string `gorm:"type:text;not null" json:"description"`
	Content     []byte `gorm:"type:bytea" json:"content,omitempty"`

	User     User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_posts_user_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostLike records one user liking one post.
type PostLike struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_post_likes_pair" json:"userId"`
	PostID uint `gorm:"not null;uniqueIndex:idx_post_likes_pair" json:"postId"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Post Post `gorm:"foreignKey:PostID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

// Comment is a user comment on a post.
type Comment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	PostID  uint   `gorm:"not null;index:idx_comments_post_created,priority:1" json:"postId"`
	UserID  uint   `gorm:"not null;index" json:"userId"`
	Content string `gorm:"type:text;not null" json:"content"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Post Post `gorm:"foreignKey:PostID" json:"-"`

	CreatedAt time.Time `gorm:"index:idx_comments_post_created,priority:2" json:"createdAt"`
}
