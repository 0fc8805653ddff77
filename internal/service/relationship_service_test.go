package service

import (
	"testing"

	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/model"

	"github.com/stretchr/testify/assert"
)

// TestSharedInterests 测试共同兴趣：只保留双方都有的分类，共享数取较小值
func TestSharedInterests(t *testing.T) {
	relRepo := new(MockRelationshipRepository)
	commRepo := new(MockCommunityRepository)
	userRepo := new(MockUserRepository)
	svc := NewRelationshipService(relRepo, commRepo, userRepo)

	relRepo.On("CategoryEngagement", 1).Return([]model.CategoryEngagement{
		{CategoryID: 1, CategoryName: "开发工具", Count: 5},
		{CategoryID: 2, CategoryName: "设计", Count: 2},
		{CategoryID: 3, CategoryName: "效率", Count: 1},
	}, nil)
	relRepo.On("CategoryEngagement", 2).Return([]model.CategoryEngagement{
		{CategoryID: 1, CategoryName: "开发工具", Count: 3},
		{CategoryID: 3, CategoryName: "效率", Count: 4},
		{CategoryID: 9, CategoryName: "游戏", Count: 7},
	}, nil)

	shared, err := svc.SharedInterests(1, 2)
	assert.NoError(t, err)
	assert.Len(t, shared, 2)
	// 按共享数降序
	assert.Equal(t, 1, shared[0].CategoryID)
	assert.Equal(t, 3, shared[0].Shared)
	assert.Equal(t, 3, shared[1].CategoryID)
	assert.Equal(t, 1, shared[1].Shared)
}

// TestSharedInterestsSymmetry 测试共同兴趣关于参数顺序对称
func TestSharedInterestsSymmetry(t *testing.T) {
	relRepo := new(MockRelationshipRepository)
	commRepo := new(MockCommunityRepository)
	userRepo := new(MockUserRepository)
	svc := NewRelationshipService(relRepo, commRepo, userRepo)

	engagementA := []model.CategoryEngagement{{CategoryID: 1, CategoryName: "开发工具", Count: 5}}
	engagementB := []model.CategoryEngagement{{CategoryID: 1, CategoryName: "开发工具", Count: 3}}
	relRepo.On("CategoryEngagement", 1).Return(engagementA, nil)
	relRepo.On("CategoryEngagement", 2).Return(engagementB, nil)

	ab, err := svc.SharedInterests(1, 2)
	assert.NoError(t, err)
	ba, err := svc.SharedInterests(2, 1)
	assert.NoError(t, err)
	assert.Equal(t, ab, ba)
}

// TestInteractionHistory 测试互动历史取双向计数的较小值
func TestInteractionHistory(t *testing.T) {
	relRepo := new(MockRelationshipRepository)
	commRepo := new(MockCommunityRepository)
	userRepo := new(MockUserRepository)
	svc := NewRelationshipService(relRepo, commRepo, userRepo)

	relRepo.On("VotesOnUserProducts", 1, 2).Return(4, nil)
	relRepo.On("VotesOnUserProducts", 2, 1).Return(7, nil)
	relRepo.On("CommentsOnUserProducts", 1, 2).Return(0, nil)
	relRepo.On("CommentsOnUserProducts", 2, 1).Return(3, nil)

	history, err := svc.InteractionHistory(1, 2)
	assert.NoError(t, err)
	assert.Equal(t, 4, history.MutualVotes)
	assert.Equal(t, 0, history.MutualComments)
}

// TestGetRelationship 测试关系聚合视图
func TestGetRelationship(t *testing.T) {
	relRepo := new(MockRelationshipRepository)
	commRepo := new(MockCommunityRepository)
	userRepo := new(MockUserRepository)
	svc := NewRelationshipService(relRepo, commRepo, userRepo)

	userRepo.On("FindByID", 2).Return(&model.User{ID: 2, Username: "bob"}, nil)
	relRepo.On("MutualFollowers", 1, 2, mutualFollowersLimit).Return([]*model.User{{ID: 3}}, nil)
	relRepo.On("CategoryEngagement", 1).Return([]model.CategoryEngagement{}, nil)
	relRepo.On("CategoryEngagement", 2).Return([]model.CategoryEngagement{}, nil)
	relRepo.On("VotesOnUserProducts", 1, 2).Return(1, nil)
	relRepo.On("VotesOnUserProducts", 2, 1).Return(1, nil)
	relRepo.On("CommentsOnUserProducts", 1, 2).Return(0, nil)
	relRepo.On("CommentsOnUserProducts", 2, 1).Return(0, nil)
	relRepo.On("SharedCollections", 1, 2, sharedCollectionsLimit).Return([]model.SharedCollection{}, nil)
	commRepo.On("IsFollowing", 1, 2).Return(true, nil)
	commRepo.On("IsFollowing", 2, 1).Return(false, nil)

	relationship, err := svc.GetRelationship(1, 2)
	assert.NoError(t, err)
	assert.Len(t, relationship.MutualFollowers, 1)
	assert.Equal(t, 1, relationship.Interaction.MutualVotes)
	assert.True(t, relationship.IsFollowing)
	assert.False(t, relationship.IsFollowedBy)
}

// TestGetRelationshipTargetNotFound 测试目标用户不存在
func TestGetRelationshipTargetNotFound(t *testing.T) {
	relRepo := new(MockRelationshipRepository)
	commRepo := new(MockCommunityRepository)
	userRepo := new(MockUserRepository)
	svc := NewRelationshipService(relRepo, commRepo, userRepo)

	userRepo.On("FindByID", 404).Return(nil, nil)

	_, err := svc.GetRelationship(1, 404)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUserNotFound))
}
