package model

import "time"

type Collection struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	IsDefault   bool      `json:"is_default"` // 注册时创建的默认收藏夹，不可删除
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	ProductCount int        `json:"product_count"`
	Products     []*Product `json:"products,omitempty"`
}

type CollectionProduct struct {
	CollectionID int       `json:"collection_id"`
	ProductID    int       `json:"product_id"`
	CreatedAt    time.Time `json:"created_at"`
}
