package model

import "time"

// Vote 一人一票的投票记录，(user_id, product_id) 唯一
type Vote struct {
	UserID    int       `json:"user_id"`
	ProductID int       `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        int        `json:"id"`
	ProductID int        `json:"product_id"`
	UserID    int        `json:"user_id"`
	ParentID  *int       `json:"parent_id,omitempty"`
	Content   string     `json:"content"`
	IsEdited  bool       `json:"is_edited"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	User      *User      `json:"user"`
	Replies   []*Comment `json:"replies,omitempty"`
}

type Follow struct {
	ID          int       `json:"id"`
	FollowerID  int       `json:"follower_id"`
	FollowingID int       `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}
