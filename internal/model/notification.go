package model

import "time"

// 通知类型
const (
	NotificationTypeVote    = "vote"
	NotificationTypeComment = "comment"
	NotificationTypeReply   = "reply"
	NotificationTypeFollow  = "follow"
	NotificationTypeSystem  = "system"
)

type Notification struct {
	ID               int       `json:"id"`
	UserID           int       `json:"user_id"` // 接收者
	Type             string    `json:"type"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	RelatedProductID *int      `json:"related_product_id,omitempty"`
	RelatedUserID    *int      `json:"related_user_id,omitempty"`
	IsRead           bool      `json:"is_read"`
	CreatedAt        time.Time `json:"created_at"`

	RelatedUser *User `json:"related_user,omitempty"`
}
