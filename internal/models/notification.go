package models

import (
	"time"
)

// NotificationType enumerates the events a notification can describe.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
	NotificationNewPost NotificationType = "new_post"
	NotificationMessage NotificationType = "message"
)

// Notification records an event addressed to UserID, originated by FromUserID.
// Rows are created as a side effect of the action they describe and only the
// read flag is ever mutated afterwards.
type Notification struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	Type       NotificationType `gorm:"size:20;not null" json:"type"`
	UserID     uint             `gorm:"not null;index:idx_notifications_user_created,priority:1" json:"userId"`
	FromUserID uint             `gorm:"not null" json:"fromUserId"`
	PostID     *uint            `json:"postId,omitempty"`
	IsRead     bool             `gorm:"not null;default:false" json:"isRead"`

	FromUser User  `gorm:"foreignKey:FromUserID" json:"fromUser,omitempty"`
	Post     *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_notifications_user_created,priority:2" json:"createdAt"`
}
