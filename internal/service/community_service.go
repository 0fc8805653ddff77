package service

import (
	"context"
	"fmt"
	"strings"

	"nichehunt-backend/config"
	"nichehunt-backend/internal/cache"
	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/repository/interfaces"
	"nichehunt-backend/internal/util"

	"go.uber.org/zap"
)

// CommunityService 承载投票、评论与关注的业务规则
type CommunityService struct {
	repo         interfaces.CommunityRepository
	productRepo  interfaces.ProductRepository
	userRepo     interfaces.UserRepository
	notification *NotificationService
	cache        *cache.ProjectionCache
}

func NewCommunityService(
	repo interfaces.CommunityRepository,
	productRepo interfaces.ProductRepository,
	userRepo interfaces.UserRepository,
	notification *NotificationService,
	projectionCache *cache.ProjectionCache,
) *CommunityService {
	return &CommunityService{
		repo:         repo,
		productRepo:  productRepo,
		userRepo:     userRepo,
		notification: notification,
		cache:        projectionCache,
	}
}

// ToggleVote 切换投票状态并返回切换后的状态。
// 只有新增投票会向产品所有者扇出通知，取消投票不会；自己投自己的产品也不会。
func (s *CommunityService) ToggleVote(userID, productID int) (bool, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, "查询产品失败", err)
	}
	if product == nil {
		return false, errors.New(errors.ErrProductNotFound, "产品不存在")
	}

	voted, err := s.repo.ToggleVote(userID, productID)
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, "切换投票失败", err)
	}

	// 投票写入后立即失效缓存的计数投影
	s.cache.InvalidateVoteCount(context.Background(), productID)

	if voted {
		actor, err := s.userRepo.FindByID(userID)
		if err != nil || actor == nil {
			util.Logger.Warn("查询投票者信息失败", zap.Error(err), zap.Int("user_id", userID))
			return voted, nil
		}
		if err := s.notification.Notify(
			userID, product.UserID,
			model.NotificationTypeVote,
			"你的产品获得了新的投票",
			fmt.Sprintf("%s 给 %s 投了一票", actor.Username, product.Name),
			&productID, &userID,
		); err != nil {
			// 通知失败不回滚投票
			util.Logger.Error("投票通知发送失败", zap.Error(err))
		}
	}

	return voted, nil
}

func (s *CommunityService) HasVoted(userID, productID int) (bool, error) {
	return s.repo.HasVoted(userID, productID)
}

// VoteCount 读取时聚合的投票数，启用缓存时经过投影缓存
func (s *CommunityService) VoteCount(productID int) (int, error) {
	ctx := context.Background()
	if count, ok := s.cache.GetVoteCount(ctx, productID); ok {
		return count, nil
	}

	count, err := s.repo.VoteCount(productID)
	if err != nil {
		return 0, err
	}
	s.cache.SetVoteCount(ctx, productID, count)
	return count, nil
}

func (s *CommunityService) ListVotedProducts(userID, page, pageSize int) ([]*model.Product, int, error) {
	return s.repo.ListVotedProducts(userID, page, pageSize)
}

// CreateComment 创建评论或回复。
// 回复通知发给父评论作者，顶层评论通知发给产品所有者；自己回复自己不通知。
func (s *CommunityService) CreateComment(comment *model.Comment) error {
	if strings.TrimSpace(comment.Content) == "" {
		return errors.New(errors.ErrValidation, "评论内容不能为空")
	}

	product, err := s.productRepo.FindByID(comment.ProductID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询产品失败", err)
	}
	if product == nil {
		return errors.New(errors.ErrProductNotFound, "产品不存在")
	}

	var parent *model.Comment
	if comment.ParentID != nil {
		parent, err = s.repo.GetCommentByID(*comment.ParentID)
		if err != nil {
			return errors.Wrap(errors.ErrDatabase, "查询父评论失败", err)
		}
		if parent == nil {
			return errors.New(errors.ErrCommentNotFound, "父评论不存在")
		}
		if parent.ProductID != comment.ProductID {
			return errors.New(errors.ErrValidation, "回复必须与父评论属于同一产品")
		}
	}

	if err := s.repo.CreateComment(comment); err != nil {
		return errors.Wrap(errors.ErrDatabase, "创建评论失败", err)
	}

	actor, err := s.userRepo.FindByID(comment.UserID)
	if err != nil || actor == nil {
		util.Logger.Warn("查询评论者信息失败", zap.Error(err), zap.Int("user_id", comment.UserID))
		return nil
	}

	if parent != nil {
		// 回复只通知父评论作者，产品所有者不会因回复收到通知
		if err := s.notification.Notify(
			comment.UserID, parent.UserID,
			model.NotificationTypeReply,
			"你的评论收到了新回复",
			fmt.Sprintf("%s 回复了你在 %s 下的评论", actor.Username, product.Name),
			&comment.ProductID, &comment.UserID,
		); err != nil {
			util.Logger.Error("回复通知发送失败", zap.Error(err))
		}
		return nil
	}

	if err := s.notification.Notify(
		comment.UserID, product.UserID,
		model.NotificationTypeComment,
		"你的产品收到了新评论",
		fmt.Sprintf("%s 评论了 %s", actor.Username, product.Name),
		&comment.ProductID, &comment.UserID,
	); err != nil {
		util.Logger.Error("评论通知发送失败", zap.Error(err))
	}
	return nil
}

func (s *CommunityService) ListComments(productID int) ([]*model.Comment, error) {
	return s.repo.ListCommentsByProduct(productID)
}

func (s *CommunityService) GetCommentByID(id int) (*model.Comment, error) {
	return s.repo.GetCommentByID(id)
}

// UpdateComment 只有评论作者可以编辑
func (s *CommunityService) UpdateComment(commentID, userID int, content string) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New(errors.ErrValidation, "评论内容不能为空")
	}

	comment, err := s.repo.GetCommentByID(commentID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询评论失败", err)
	}
	if comment == nil {
		return nil, errors.New(errors.ErrCommentNotFound, "评论不存在")
	}
	if comment.UserID != userID {
		return nil, errors.New(errors.ErrForbidden, "只有作者可以编辑评论")
	}

	comment.Content = content
	if err := s.repo.UpdateComment(comment); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "更新评论失败", err)
	}
	return comment, nil
}

// DeleteComment 只有评论作者可以删除。
// 是否级联删除回复由配置决定，默认保留（与线上观察到的行为一致）。
func (s *CommunityService) DeleteComment(commentID, userID int) error {
	comment, err := s.repo.GetCommentByID(commentID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询评论失败", err)
	}
	if comment == nil {
		return errors.New(errors.ErrCommentNotFound, "评论不存在")
	}
	if comment.UserID != userID {
		return errors.New(errors.ErrForbidden, "只有作者可以删除评论")
	}

	if err := s.repo.DeleteComment(commentID, config.AppConfig.CommentDeleteCascade); err != nil {
		return errors.Wrap(errors.ErrDatabase, "删除评论失败", err)
	}
	return nil
}

func (s *CommunityService) CommentCount(productID int) (int, error) {
	return s.repo.CommentCount(productID)
}

// FollowUser 幂等创建关注关系；只有新建时才通知被关注者
func (s *CommunityService) FollowUser(followerID, followingID int) error {
	target, err := s.userRepo.FindByID(followingID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if target == nil {
		return errors.New(errors.ErrUserNotFound, "用户不存在")
	}

	created, err := s.repo.CreateFollow(followerID, followingID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "创建关注关系失败", err)
	}

	if created {
		actor, err := s.userRepo.FindByID(followerID)
		if err != nil || actor == nil {
			util.Logger.Warn("查询关注者信息失败", zap.Error(err), zap.Int("user_id", followerID))
			return nil
		}
		if err := s.notification.Notify(
			followerID, followingID,
			model.NotificationTypeFollow,
			"你有了新的关注者",
			fmt.Sprintf("%s 关注了你", actor.Username),
			nil, &followerID,
		); err != nil {
			util.Logger.Error("关注通知发送失败", zap.Error(err))
		}
	}
	return nil
}

func (s *CommunityService) UnfollowUser(followerID, followingID int) error {
	return s.repo.DeleteFollow(followerID, followingID)
}

func (s *CommunityService) IsFollowing(followerID, followingID int) (bool, error) {
	return s.repo.IsFollowing(followerID, followingID)
}

func (s *CommunityService) GetFollowers(userID, page, pageSize int) ([]*model.User, error) {
	return s.repo.GetFollowers(userID, page, pageSize)
}

func (s *CommunityService) GetFollowing(userID, page, pageSize int) ([]*model.User, error) {
	return s.repo.GetFollowing(userID, page, pageSize)
}

func (s *CommunityService) GetFollowerCount(userID int) (int, error) {
	return s.repo.GetFollowerCount(userID)
}

func (s *CommunityService) GetFollowingCount(userID int) (int, error) {
	return s.repo.GetFollowingCount(userID)
}

func (s *CommunityService) GetUserByID(id int) (*model.User, error) {
	return s.userRepo.FindByID(id)
}
