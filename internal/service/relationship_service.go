package service

import (
	"sort"

	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/repository/interfaces"
)

const (
	mutualFollowersLimit   = 10
	sharedInterestsLimit   = 5
	sharedCollectionsLimit = 5
)

// RelationshipService 计算两个用户之间的关系聚合视图。
// 所有操作都是对票据、关注、产品和收藏表的只读查询，没有副作用。
type RelationshipService struct {
	repo          interfaces.RelationshipRepository
	communityRepo interfaces.CommunityRepository
	userRepo      interfaces.UserRepository
}

func NewRelationshipService(
	repo interfaces.RelationshipRepository,
	communityRepo interfaces.CommunityRepository,
	userRepo interfaces.UserRepository,
) *RelationshipService {
	return &RelationshipService{
		repo:          repo,
		communityRepo: communityRepo,
		userRepo:      userRepo,
	}
}

func (s *RelationshipService) MutualFollowers(userA, userB int) ([]*model.User, error) {
	return s.repo.MutualFollowers(userA, userB, mutualFollowersLimit)
}

// SharedInterests 双方都有产出或投票的分类，共享数取双方计数的较小值，
// 按共享数降序取前五
func (s *RelationshipService) SharedInterests(userA, userB int) ([]model.SharedInterest, error) {
	engagementA, err := s.repo.CategoryEngagement(userA)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "统计分类参与度失败", err)
	}
	engagementB, err := s.repo.CategoryEngagement(userB)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "统计分类参与度失败", err)
	}

	countsB := make(map[int]model.CategoryEngagement, len(engagementB))
	for _, e := range engagementB {
		countsB[e.CategoryID] = e
	}

	var shared []model.SharedInterest
	for _, a := range engagementA {
		b, ok := countsB[a.CategoryID]
		if !ok || a.Count == 0 || b.Count == 0 {
			continue
		}
		count := a.Count
		if b.Count < count {
			count = b.Count
		}
		shared = append(shared, model.SharedInterest{
			CategoryID:   a.CategoryID,
			CategoryName: a.CategoryName,
			Shared:       count,
		})
	}

	sort.Slice(shared, func(i, j int) bool {
		if shared[i].Shared != shared[j].Shared {
			return shared[i].Shared > shared[j].Shared
		}
		return shared[i].CategoryID < shared[j].CategoryID
	})

	if len(shared) > sharedInterestsLimit {
		shared = shared[:sharedInterestsLimit]
	}
	return shared, nil
}

// InteractionHistory 双方互动的对称下界：双向计数取较小值。
// 这会低估真实互动量，是沿用的既定口径而不是待修的缺陷。
func (s *RelationshipService) InteractionHistory(userA, userB int) (model.InteractionHistory, error) {
	var history model.InteractionHistory

	votesAB, err := s.repo.VotesOnUserProducts(userA, userB)
	if err != nil {
		return history, errors.Wrap(errors.ErrDatabase, "统计投票互动失败", err)
	}
	votesBA, err := s.repo.VotesOnUserProducts(userB, userA)
	if err != nil {
		return history, errors.Wrap(errors.ErrDatabase, "统计投票互动失败", err)
	}
	history.MutualVotes = minInt(votesAB, votesBA)

	commentsAB, err := s.repo.CommentsOnUserProducts(userA, userB)
	if err != nil {
		return history, errors.Wrap(errors.ErrDatabase, "统计评论互动失败", err)
	}
	commentsBA, err := s.repo.CommentsOnUserProducts(userB, userA)
	if err != nil {
		return history, errors.Wrap(errors.ErrDatabase, "统计评论互动失败", err)
	}
	history.MutualComments = minInt(commentsAB, commentsBA)

	return history, nil
}

func (s *RelationshipService) SharedCollections(userA, userB int) ([]model.SharedCollection, error) {
	return s.repo.SharedCollections(userA, userB, sharedCollectionsLimit)
}

// GetRelationship 汇总两个用户之间的全部关系视图
func (s *RelationshipService) GetRelationship(viewerID, targetID int) (*model.Relationship, error) {
	target, err := s.userRepo.FindByID(targetID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if target == nil {
		return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
	}

	mutualFollowers, err := s.MutualFollowers(viewerID, targetID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询共同关注者失败", err)
	}

	sharedInterests, err := s.SharedInterests(viewerID, targetID)
	if err != nil {
		return nil, err
	}

	interaction, err := s.InteractionHistory(viewerID, targetID)
	if err != nil {
		return nil, err
	}

	sharedCollections, err := s.SharedCollections(viewerID, targetID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询共同收藏失败", err)
	}

	isFollowing, err := s.communityRepo.IsFollowing(viewerID, targetID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询关注状态失败", err)
	}
	isFollowedBy, err := s.communityRepo.IsFollowing(targetID, viewerID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询关注状态失败", err)
	}

	return &model.Relationship{
		MutualFollowers:   mutualFollowers,
		SharedInterests:   sharedInterests,
		Interaction:       interaction,
		SharedCollections: sharedCollections,
		IsFollowing:       isFollowing,
		IsFollowedBy:      isFollowedBy,
	}, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
