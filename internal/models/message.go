package models

import (
	"time"
)

// Message is a direct message between two users. IsRead only ever flips
// false -> true.
type Message struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	SenderID   uint   `gorm:"not null;index:idx_messages_sender_receiver,priority:1" json:"senderId"`
	ReceiverID uint   `gorm:"not null;index:idx_messages_sender_receiver,priority:2" json:"receiverId"`
	Content    string `gorm:"type:text;not null" json:"content"`
	IsRead     bool   `gorm:"not null;default:false" json:"isRead"`

	Sender   User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
