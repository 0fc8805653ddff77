package interfaces

import "nichehunt-backend/internal/model"

// RelationshipRepository 定义了用户关系聚合的只读查询接口
type RelationshipRepository interface {
	MutualFollowers(userA, userB, limit int) ([]*model.User, error)
	// CategoryEngagement 按分类统计用户发布或投票过的产品数
	CategoryEngagement(userID int) ([]model.CategoryEngagement, error)
	// VotesOnUserProducts 统计 voterID 对 ownerID 名下产品的投票数
	VotesOnUserProducts(voterID, ownerID int) (int, error)
	// CommentsOnUserProducts 统计 commenterID 对 ownerID 名下产品的评论数
	CommentsOnUserProducts(commenterID, ownerID int) (int, error)
	// SharedCollections 对方的公开收藏夹中与自己收藏过的产品集合有交集的部分
	SharedCollections(userA, userB, limit int) ([]model.SharedCollection, error)
}
