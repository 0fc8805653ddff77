package service

import (
	"os"
	"testing"
	"time"

	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/repository/interfaces"
	"nichehunt-backend/internal/util"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	util.Logger = zap.NewNop()
	zap.ReplaceGlobals(zap.NewNop())
	os.Exit(m.Run())
}

// MockUserRepository 是 UserRepository 接口的模拟实现
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(username string) (*model.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindBySlug(slug string) (*model.User, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(id int, passwordHash string) error {
	args := m.Called(id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUserRepository) Count() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) FindAll(page, pageSize int) ([]*model.User, error) {
	args := m.Called(page, pageSize)
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ids []int) (map[int]*model.User, error) {
	args := m.Called(ids)
	return args.Get(0).(map[int]*model.User), args.Error(1)
}

var _ interfaces.UserRepository = (*MockUserRepository)(nil)

// MockProductRepository 是 ProductRepository 接口的模拟实现
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(product *model.Product, tagIDs []int) error {
	args := m.Called(product, tagIDs)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(id int) (*model.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) Update(product *model.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockProductRepository) List(filter interfaces.ProductFilter, page, pageSize int) ([]*model.Product, int, error) {
	args := m.Called(filter, page, pageSize)
	return args.Get(0).([]*model.Product), args.Int(1), args.Error(2)
}

func (m *MockProductRepository) ListFeatured(limit int) ([]*model.Product, error) {
	args := m.Called(limit)
	return args.Get(0).([]*model.Product), args.Error(1)
}

func (m *MockProductRepository) ListTrending(since time.Time, limit int) ([]*model.Product, error) {
	args := m.Called(since, limit)
	return args.Get(0).([]*model.Product), args.Error(1)
}

func (m *MockProductRepository) ListByLaunchWindow(from, to time.Time, limit int) ([]*model.Product, error) {
	args := m.Called(from, to, limit)
	return args.Get(0).([]*model.Product), args.Error(1)
}

func (m *MockProductRepository) IncrementViewCount(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockProductRepository) SetFeatured(id int, featured bool) error {
	args := m.Called(id, featured)
	return args.Error(0)
}

func (m *MockProductRepository) Count() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) CreateCategory(category *model.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockProductRepository) ListCategories() ([]*model.Category, error) {
	args := m.Called()
	return args.Get(0).([]*model.Category), args.Error(1)
}

func (m *MockProductRepository) FindCategoriesByIDs(ids []int) (map[int]*model.Category, error) {
	args := m.Called(ids)
	return args.Get(0).(map[int]*model.Category), args.Error(1)
}

func (m *MockProductRepository) CreateTag(tag *model.Tag) error {
	args := m.Called(tag)
	return args.Error(0)
}

func (m *MockProductRepository) ListTags() ([]*model.Tag, error) {
	args := m.Called()
	return args.Get(0).([]*model.Tag), args.Error(1)
}

func (m *MockProductRepository) AddTagToProduct(productID, tagID int) error {
	args := m.Called(productID, tagID)
	return args.Error(0)
}

func (m *MockProductRepository) TagsForProducts(productIDs []int) (map[int][]model.Tag, error) {
	args := m.Called(productIDs)
	return args.Get(0).(map[int][]model.Tag), args.Error(1)
}

var _ interfaces.ProductRepository = (*MockProductRepository)(nil)

// MockCommunityRepository 是 CommunityRepository 接口的模拟实现
type MockCommunityRepository struct {
	mock.Mock
}

func (m *MockCommunityRepository) ToggleVote(userID, productID int) (bool, error) {
	args := m.Called(userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommunityRepository) HasVoted(userID, productID int) (bool, error) {
	args := m.Called(userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommunityRepository) VoteCount(productID int) (int, error) {
	args := m.Called(productID)
	return args.Int(0), args.Error(1)
}

func (m *MockCommunityRepository) VoteCountsForProducts(productIDs []int) (map[int]int, error) {
	args := m.Called(productIDs)
	return args.Get(0).(map[int]int), args.Error(1)
}

func (m *MockCommunityRepository) VotedForProducts(userID int, productIDs []int) (map[int]bool, error) {
	args := m.Called(userID, productIDs)
	return args.Get(0).(map[int]bool), args.Error(1)
}

func (m *MockCommunityRepository) ListVotedProducts(userID, page, pageSize int) ([]*model.Product, int, error) {
	args := m.Called(userID, page, pageSize)
	return args.Get(0).([]*model.Product), args.Int(1), args.Error(2)
}

func (m *MockCommunityRepository) CreateComment(comment *model.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *MockCommunityRepository) GetCommentByID(id int) (*model.Comment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommunityRepository) ListCommentsByProduct(productID int) ([]*model.Comment, error) {
	args := m.Called(productID)
	return args.Get(0).([]*model.Comment), args.Error(1)
}

func (m *MockCommunityRepository) UpdateComment(comment *model.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *MockCommunityRepository) DeleteComment(id int, cascade bool) error {
	args := m.Called(id, cascade)
	return args.Error(0)
}

func (m *MockCommunityRepository) CommentCount(productID int) (int, error) {
	args := m.Called(productID)
	return args.Int(0), args.Error(1)
}

func (m *MockCommunityRepository) CommentCountsForProducts(productIDs []int) (map[int]int, error) {
	args := m.Called(productIDs)
	return args.Get(0).(map[int]int), args.Error(1)
}

func (m *MockCommunityRepository) CreateFollow(followerID, followingID int) (bool, error) {
	args := m.Called(followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommunityRepository) DeleteFollow(followerID, followingID int) error {
	args := m.Called(followerID, followingID)
	return args.Error(0)
}

func (m *MockCommunityRepository) IsFollowing(followerID, followingID int) (bool, error) {
	args := m.Called(followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommunityRepository) GetFollowers(userID, page, pageSize int) ([]*model.User, error) {
	args := m.Called(userID, page, pageSize)
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockCommunityRepository) GetFollowing(userID, page, pageSize int) ([]*model.User, error) {
	args := m.Called(userID, page, pageSize)
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockCommunityRepository) GetFollowerCount(userID int) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *MockCommunityRepository) GetFollowingCount(userID int) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

var _ interfaces.CommunityRepository = (*MockCommunityRepository)(nil)

// MockNotificationRepository 是 NotificationRepository 接口的模拟实现
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(notification *model.Notification) error {
	args := m.Called(notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) FindByID(id int) (*model.Notification, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) List(userID, page, pageSize int) ([]*model.Notification, int, error) {
	args := m.Called(userID, page, pageSize)
	return args.Get(0).([]*model.Notification), args.Int(1), args.Error(2)
}

func (m *MockNotificationRepository) MarkRead(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(userID int) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) UnreadCount(userID int) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) DeleteOlderThan(t time.Time) (int64, error) {
	args := m.Called(t)
	return args.Get(0).(int64), args.Error(1)
}

var _ interfaces.NotificationRepository = (*MockNotificationRepository)(nil)

// MockCollectionRepository 是 CollectionRepository 接口的模拟实现
type MockCollectionRepository struct {
	mock.Mock
}

func (m *MockCollectionRepository) Create(collection *model.Collection) error {
	args := m.Called(collection)
	return args.Error(0)
}

func (m *MockCollectionRepository) FindByID(id int) (*model.Collection, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Collection), args.Error(1)
}

func (m *MockCollectionRepository) Update(collection *model.Collection) error {
	args := m.Called(collection)
	return args.Error(0)
}

func (m *MockCollectionRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockCollectionRepository) ListByUser(userID int, includePrivate bool) ([]*model.Collection, error) {
	args := m.Called(userID, includePrivate)
	return args.Get(0).([]*model.Collection), args.Error(1)
}

func (m *MockCollectionRepository) DefaultForUser(userID int) (*model.Collection, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Collection), args.Error(1)
}

func (m *MockCollectionRepository) ToggleProduct(collectionID, productID int) (bool, error) {
	args := m.Called(collectionID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCollectionRepository) ContainsProduct(collectionID, productID int) (bool, error) {
	args := m.Called(collectionID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCollectionRepository) ListProducts(collectionID int) ([]*model.Product, error) {
	args := m.Called(collectionID)
	return args.Get(0).([]*model.Product), args.Error(1)
}

func (m *MockCollectionRepository) CollectionIDsContainingProduct(userID, productID int) ([]int, error) {
	args := m.Called(userID, productID)
	return args.Get(0).([]int), args.Error(1)
}

var _ interfaces.CollectionRepository = (*MockCollectionRepository)(nil)

// MockRelationshipRepository 是 RelationshipRepository 接口的模拟实现
type MockRelationshipRepository struct {
	mock.Mock
}

func (m *MockRelationshipRepository) MutualFollowers(userA, userB, limit int) ([]*model.User, error) {
	args := m.Called(userA, userB, limit)
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockRelationshipRepository) CategoryEngagement(userID int) ([]model.CategoryEngagement, error) {
	args := m.Called(userID)
	return args.Get(0).([]model.CategoryEngagement), args.Error(1)
}

func (m *MockRelationshipRepository) VotesOnUserProducts(voterID, ownerID int) (int, error) {
	args := m.Called(voterID, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *MockRelationshipRepository) CommentsOnUserProducts(commenterID, ownerID int) (int, error) {
	args := m.Called(commenterID, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *MockRelationshipRepository) SharedCollections(userA, userB, limit int) ([]model.SharedCollection, error) {
	args := m.Called(userA, userB, limit)
	return args.Get(0).([]model.SharedCollection), args.Error(1)
}

var _ interfaces.RelationshipRepository = (*MockRelationshipRepository)(nil)
