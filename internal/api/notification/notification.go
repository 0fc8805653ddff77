package notification

import (
	"strconv"

	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// NotificationHandler 处理通知相关的HTTP请求
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler 创建一个新的 NotificationHandler 实例
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService}
}

// ListNotifications 分页获取当前用户的通知
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID := c.GetInt("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	notifications, total, err := h.notificationService.List(userID, page, pageSize)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取通知失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"notifications": notifications,
		"total":         total,
	}, "")
}

// GetUnreadCount 获取当前用户的未读通知数
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID := c.GetInt("user_id")

	count, err := h.notificationService.UnreadCount(userID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取未读通知数失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"unread_count": count}, "")
}

// MarkRead 把单条通知标记为已读，只有接收者可以操作
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的通知ID", err))
		return
	}

	userID := c.GetInt("user_id")
	if err := h.notificationService.MarkRead(notificationID, userID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "通知已标记为已读")
}

// MarkAllRead 把当前用户的全部通知标记为已读
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetInt("user_id")

	if err := h.notificationService.MarkAllRead(userID); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "标记全部已读失败", err))
		return
	}

	errors.HandleSuccess(c, nil, "全部通知已标记为已读")
}
