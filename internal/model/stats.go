package model

// SystemStats 后台仪表盘的系统统计数据，全部实时计算
type SystemStats struct {
	TotalUsers        int `json:"total_users"`
	TotalProducts     int `json:"total_products"`
	PublishedProducts int `json:"published_products"`
	TotalVotes        int `json:"total_votes"`
	TotalComments     int `json:"total_comments"`
	TotalCollections  int `json:"total_collections"`
}
