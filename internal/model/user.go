package model

import "time"

// User 结构体表示用户模型
type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	Slug         string     `json:"slug"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // 密码哈希不应在JSON中暴露
	AvatarURL    string     `json:"avatar_url"`
	Bio          string     `json:"bio"`
	WebsiteURL   string     `json:"website_url"`
	TwitterURL   string     `json:"twitter_url"`
	Role         string     `json:"role"`
	IsVerified   bool       `json:"is_verified"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}
