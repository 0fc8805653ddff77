package service

import (
	"testing"
	"time"

	"nichehunt-backend/internal/cache"
	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// TestNotifySelfSuppression 测试自己触发的事件不会给自己生成通知
func TestNotifySelfSuppression(t *testing.T) {
	notifRepo := new(MockNotificationRepository)
	svc := NewNotificationService(notifRepo, cache.New("", ""))

	err := svc.Notify(1, 1, model.NotificationTypeVote, "标题", "内容", nil, nil)
	assert.NoError(t, err)
	notifRepo.AssertNotCalled(t, "Create", mock.Anything)
}

// TestNotify 测试正常通知创建
func TestNotify(t *testing.T) {
	notifRepo := new(MockNotificationRepository)
	svc := NewNotificationService(notifRepo, cache.New("", ""))

	productID := 10
	notifRepo.On("Create", mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == 2 && n.Type == model.NotificationTypeComment && *n.RelatedProductID == 10
	})).Return(nil)

	err := svc.Notify(1, 2, model.NotificationTypeComment, "标题", "内容", &productID, nil)
	assert.NoError(t, err)
	notifRepo.AssertExpectations(t)
}

// TestMarkRead 测试接收者标记已读
func TestMarkRead(t *testing.T) {
	notifRepo := new(MockNotificationRepository)
	svc := NewNotificationService(notifRepo, cache.New("", ""))

	notification := &model.Notification{ID: 7, UserID: 2, IsRead: false}
	notifRepo.On("FindByID", 7).Return(notification, nil)
	notifRepo.On("MarkRead", 7).Return(nil)

	err := svc.MarkRead(7, 2)
	assert.NoError(t, err)
	notifRepo.AssertExpectations(t)
}

// TestMarkReadForbidden 测试非接收者标记已读被拒绝
func TestMarkReadForbidden(t *testing.T) {
	notifRepo := new(MockNotificationRepository)
	svc := NewNotificationService(notifRepo, cache.New("", ""))

	notification := &model.Notification{ID: 7, UserID: 2}
	notifRepo.On("FindByID", 7).Return(notification, nil)

	err := svc.MarkRead(7, 99)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	notifRepo.AssertNotCalled(t, "MarkRead", mock.Anything)
}

// TestMarkReadNotFound 测试通知不存在
func TestMarkReadNotFound(t *testing.T) {
	notifRepo := new(MockNotificationRepository)
	svc := NewNotificationService(notifRepo, cache.New("", ""))

	notifRepo.On("FindByID", 404).Return(nil, nil)

	err := svc.MarkRead(404, 2)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotificationNotFound))
}

// TestUnreadCount 测试未读数从存储层派生
func TestUnreadCount(t *testing.T) {
	notifRepo := new(MockNotificationRepository)
	svc := NewNotificationService(notifRepo, cache.New("", ""))

	notifRepo.On("UnreadCount", 2).Return(3, nil)

	count, err := svc.UnreadCount(2)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}

// TestCleanupOld 测试过期通知清理
func TestCleanupOld(t *testing.T) {
	notifRepo := new(MockNotificationRepository)
	svc := NewNotificationService(notifRepo, cache.New("", ""))

	notifRepo.On("DeleteOlderThan", mock.AnythingOfType("time.Time")).Return(int64(5), nil)

	deleted, err := svc.CleanupOld(30 * 24 * time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), deleted)
}
