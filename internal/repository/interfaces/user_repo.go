package interfaces

import "nichehunt-backend/internal/model"

// UserRepository 定义了用户相关的数据库操作接口
type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	FindBySlug(slug string) (*model.User, error)
	Update(user *model.User) error
	UpdatePassword(id int, passwordHash string) error
	Delete(id int) error
	Count() (int, error)
	FindAll(page, pageSize int) ([]*model.User, error)
	FindByIDs(ids []int) (map[int]*model.User, error)
}
