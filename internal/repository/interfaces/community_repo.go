package interfaces

import "nichehunt-backend/internal/model"

// CommunityRepository 定义了投票、评论与关注相关的数据库操作接口
type CommunityRepository interface {
	// 投票：基于 (user_id, product_id) 唯一约束的原子切换
	ToggleVote(userID, productID int) (bool, error)
	HasVoted(userID, productID int) (bool, error)
	VoteCount(productID int) (int, error)
	VoteCountsForProducts(productIDs []int) (map[int]int, error)
	VotedForProducts(userID int, productIDs []int) (map[int]bool, error)
	ListVotedProducts(userID, page, pageSize int) ([]*model.Product, int, error)

	// 评论
	CreateComment(comment *model.Comment) error
	GetCommentByID(id int) (*model.Comment, error)
	ListCommentsByProduct(productID int) ([]*model.Comment, error)
	UpdateComment(comment *model.Comment) error
	DeleteComment(id int, cascade bool) error
	CommentCount(productID int) (int, error)
	CommentCountsForProducts(productIDs []int) (map[int]int, error)

	// 关注
	CreateFollow(followerID, followingID int) (bool, error)
	DeleteFollow(followerID, followingID int) error
	IsFollowing(followerID, followingID int) (bool, error)
	GetFollowers(userID, page, pageSize int) ([]*model.User, error)
	GetFollowing(userID, page, pageSize int) ([]*model.User, error)
	GetFollowerCount(userID int) (int, error)
	GetFollowingCount(userID int) (int, error)
}
