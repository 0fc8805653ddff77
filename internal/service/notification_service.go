package service

import (
	"context"
	"time"

	"nichehunt-backend/internal/cache"
	"nichehunt-backend/internal/common"
	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/repository/interfaces"
	"nichehunt-backend/internal/util"

	"go.uber.org/zap"
)

// NotificationService 负责通知的扇出与已读状态管理
type NotificationService struct {
	repo  interfaces.NotificationRepository
	cache *cache.ProjectionCache
}

func NewNotificationService(repo interfaces.NotificationRepository, projectionCache *cache.ProjectionCache) *NotificationService {
	return &NotificationService{
		repo:  repo,
		cache: projectionCache,
	}
}

// Notify 为一次触发事件创建且只创建一条通知。
// 用户绝不会收到自己动作产生的通知：actorID == recipientID 时静默跳过。
func (s *NotificationService) Notify(actorID, recipientID int, notificationType, title, message string, relatedProductID, relatedUserID *int) error {
	if actorID == recipientID {
		return nil
	}

	notification := &model.Notification{
		UserID:           recipientID,
		Type:             notificationType,
		Title:            title,
		Message:          message,
		RelatedProductID: relatedProductID,
		RelatedUserID:    relatedUserID,
	}

	// 通知写入允许对临时性故障重试
	err := common.WithRetry(func() error {
		return s.repo.Create(notification)
	}, 3)
	if err != nil {
		util.Logger.Error("通知扇出失败",
			zap.Error(err),
			zap.Int("recipient", recipientID),
			zap.String("type", notificationType))
		return errors.Wrap(errors.ErrDatabase, "创建通知失败", err)
	}

	s.cache.InvalidateUnreadCount(context.Background(), recipientID)
	return nil
}

func (s *NotificationService) List(userID, page, pageSize int) ([]*model.Notification, int, error) {
	return s.repo.List(userID, page, pageSize)
}

// MarkRead 只允许接收者本人标记，且 is_read 只会从 false 变为 true
func (s *NotificationService) MarkRead(notificationID, userID int) error {
	notification, err := s.repo.FindByID(notificationID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询通知失败", err)
	}
	if notification == nil {
		return errors.New(errors.ErrNotificationNotFound, "通知不存在")
	}
	if notification.UserID != userID {
		return errors.New(errors.ErrForbidden, "无权操作该通知")
	}

	if err := s.repo.MarkRead(notificationID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "标记已读失败", err)
	}

	s.cache.InvalidateUnreadCount(context.Background(), userID)
	return nil
}

func (s *NotificationService) MarkAllRead(userID int) error {
	if err := s.repo.MarkAllRead(userID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "标记全部已读失败", err)
	}
	s.cache.InvalidateUnreadCount(context.Background(), userID)
	return nil
}

// UnreadCount 未读数是派生值；启用缓存时读缓存，任何写入都已删除对应键
func (s *NotificationService) UnreadCount(userID int) (int, error) {
	ctx := context.Background()
	if count, ok := s.cache.GetUnreadCount(ctx, userID); ok {
		return count, nil
	}

	count, err := s.repo.UnreadCount(userID)
	if err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, "查询未读数失败", err)
	}
	s.cache.SetUnreadCount(ctx, userID, count)
	return count, nil
}

// CleanupOld 定期清理已读的历史通知
func (s *NotificationService) CleanupOld(maxAge time.Duration) (int64, error) {
	return s.repo.DeleteOlderThan(time.Now().Add(-maxAge))
}
