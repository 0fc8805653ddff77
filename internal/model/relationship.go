package model

// CategoryEngagement 用户在某个分类下发布或投票过的产品数
type CategoryEngagement struct {
	CategoryID   int    `json:"category_id"`
	CategoryName string `json:"category_name"`
	Count        int    `json:"count"`
}

// SharedInterest 两个用户在同一分类下的共同兴趣，Shared 取双方计数的较小值
type SharedInterest struct {
	CategoryID   int    `json:"category_id"`
	CategoryName string `json:"category_name"`
	Shared       int    `json:"shared"`
}

// InteractionHistory 双方互动的对称下界：各自对对方产品的投票数和评论数取较小值
type InteractionHistory struct {
	MutualVotes    int `json:"mutual_votes"`
	MutualComments int `json:"mutual_comments"`
}

// SharedCollection 对方的公开收藏夹与自己收藏过的产品的交集
type SharedCollection struct {
	CollectionID int    `json:"collection_id"`
	Name         string `json:"name"`
	OwnerID      int    `json:"owner_id"`
	Shared       int    `json:"shared"`
}

// Relationship 两个用户之间的关系汇总视图
type Relationship struct {
	MutualFollowers   []*User            `json:"mutual_followers"`
	SharedInterests   []SharedInterest   `json:"shared_interests"`
	Interaction       InteractionHistory `json:"interaction"`
	SharedCollections []SharedCollection `json:"shared_collections"`
	IsFollowing       bool               `json:"is_following"`
	IsFollowedBy      bool               `json:"is_followed_by"`
}
