package model

import (
	"time"
)

type Product struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Name        string    `json:"name"`
	Tagline     string    `json:"tagline"`
	Description string    `json:"description"`
	Status      string    `json:"status"` // draft / published
	CategoryID  *int      `json:"category_id,omitempty"`
	LaunchDate  time.Time `json:"launch_date"`
	IsFeatured  bool      `json:"is_featured"`
	ViewCount   int       `json:"view_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 读取时投影的派生字段
	User         *User     `json:"user,omitempty"`
	Category     *Category `json:"category,omitempty"`
	Tags         []Tag     `json:"tags,omitempty"`
	VoteCount    int       `json:"vote_count"`
	CommentCount int       `json:"comment_count"`
	HasVoted     bool      `json:"has_voted"`
}

type Category struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type Tag struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
