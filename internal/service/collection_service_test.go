package service

import (
	"testing"

	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/repository/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// TestToggleProductInCollection 测试收藏切换与所有权检查
func TestToggleProductInCollection(t *testing.T) {
	collRepo := new(MockCollectionRepository)
	prodRepo := new(MockProductRepository)
	svc := NewCollectionService(collRepo, prodRepo)

	collection := &model.Collection{ID: 3, UserID: 1, Name: "工具箱"}
	collRepo.On("FindByID", 3).Return(collection, nil)
	prodRepo.On("FindByID", 10).Return(&model.Product{ID: 10}, nil)
	collRepo.On("ToggleProduct", 3, 10).Return(true, nil)

	saved, err := svc.ToggleProduct(3, 10, 1)
	assert.NoError(t, err)
	assert.True(t, saved)
	collRepo.AssertExpectations(t)
}

// TestToggleProductForbidden 测试修改他人收藏夹被拒绝
func TestToggleProductForbidden(t *testing.T) {
	collRepo := new(MockCollectionRepository)
	prodRepo := new(MockProductRepository)
	svc := NewCollectionService(collRepo, prodRepo)

	collection := &model.Collection{ID: 3, UserID: 1}
	collRepo.On("FindByID", 3).Return(collection, nil)

	_, err := svc.ToggleProduct(3, 10, 99)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	collRepo.AssertNotCalled(t, "ToggleProduct", mock.Anything, mock.Anything)
}

// TestDeleteDefaultCollection 测试默认收藏夹不允许删除
func TestDeleteDefaultCollection(t *testing.T) {
	collRepo := new(MockCollectionRepository)
	prodRepo := new(MockProductRepository)
	svc := NewCollectionService(collRepo, prodRepo)

	collection := &model.Collection{ID: 3, UserID: 1, IsDefault: true}
	collRepo.On("FindByID", 3).Return(collection, nil)
	collRepo.On("Delete", 3).Return(postgres.ErrDefaultCollection)

	err := svc.DeleteCollection(3, 1)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDefaultCollection))
}

// TestDeleteCollectionForbidden 测试删除他人收藏夹被拒绝
func TestDeleteCollectionForbidden(t *testing.T) {
	collRepo := new(MockCollectionRepository)
	prodRepo := new(MockProductRepository)
	svc := NewCollectionService(collRepo, prodRepo)

	collection := &model.Collection{ID: 3, UserID: 1}
	collRepo.On("FindByID", 3).Return(collection, nil)

	err := svc.DeleteCollection(3, 99)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	collRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

// TestGetPrivateCollection 测试私有收藏夹对非所有者表现为不存在
func TestGetPrivateCollection(t *testing.T) {
	collRepo := new(MockCollectionRepository)
	prodRepo := new(MockProductRepository)
	svc := NewCollectionService(collRepo, prodRepo)

	collection := &model.Collection{ID: 3, UserID: 1, IsPublic: false}
	collRepo.On("FindByID", 3).Return(collection, nil)

	_, err := svc.GetCollection(3, 99)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCollectionNotFound))

	// 所有者可以访问
	collRepo.On("ListProducts", 3).Return([]*model.Product{}, nil)
	got, err := svc.GetCollection(3, 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, got.ID)
}

// TestListCollectionsVisibility 测试查看自己时包含私有收藏夹
func TestListCollectionsVisibility(t *testing.T) {
	collRepo := new(MockCollectionRepository)
	prodRepo := new(MockProductRepository)
	svc := NewCollectionService(collRepo, prodRepo)

	collRepo.On("ListByUser", 1, true).Return([]*model.Collection{{ID: 1}, {ID: 2}}, nil)
	collRepo.On("ListByUser", 2, false).Return([]*model.Collection{{ID: 9}}, nil)

	own, err := svc.ListCollections(1, 1)
	assert.NoError(t, err)
	assert.Len(t, own, 2)

	others, err := svc.ListCollections(2, 1)
	assert.NoError(t, err)
	assert.Len(t, others, 1)
}

// TestQuickSave 测试快速收藏走默认收藏夹
func TestQuickSave(t *testing.T) {
	collRepo := new(MockCollectionRepository)
	prodRepo := new(MockProductRepository)
	svc := NewCollectionService(collRepo, prodRepo)

	defaultCollection := &model.Collection{ID: 8, UserID: 1, IsDefault: true}
	collRepo.On("DefaultForUser", 1).Return(defaultCollection, nil)
	collRepo.On("FindByID", 8).Return(defaultCollection, nil)
	prodRepo.On("FindByID", 10).Return(&model.Product{ID: 10}, nil)
	collRepo.On("ToggleProduct", 8, 10).Return(true, nil)

	saved, err := svc.QuickSave(1, 10)
	assert.NoError(t, err)
	assert.True(t, saved)
}
