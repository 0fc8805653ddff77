package interfaces

import (
	"time"

	"nichehunt-backend/internal/model"
)

// NotificationRepository 定义了通知相关的数据库操作接口
type NotificationRepository interface {
	Create(notification *model.Notification) error
	FindByID(id int) (*model.Notification, error)
	List(userID, page, pageSize int) ([]*model.Notification, int, error)
	// MarkRead 单调操作：is_read 只能从 false 变为 true
	MarkRead(id int) error
	MarkAllRead(userID int) error
	UnreadCount(userID int) (int, error)
	DeleteOlderThan(t time.Time) (int64, error)
}
