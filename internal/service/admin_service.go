package service

import (
	"database/sql"

	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/repository/interfaces"
)

// AdminService 按功能模块组织后台管理的业务逻辑
type AdminService struct {
	userRepo    interfaces.UserRepository
	productRepo interfaces.ProductRepository
	db          *sql.DB
}

// NewAdminService 创建一个新的 AdminService 实例
func NewAdminService(userRepo interfaces.UserRepository, productRepo interfaces.ProductRepository, db *sql.DB) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		productRepo: productRepo,
		db:          db,
	}
}

// 用户管理
func (s *AdminService) GetUsers(page, pageSize int) ([]*model.User, error) {
	return s.userRepo.FindAll(page, pageSize)
}

func (s *AdminService) UpdateUserRole(userID int, role string) error {
	if role != "user" && role != "admin" {
		return errors.New(errors.ErrValidation, "invalid role")
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New(errors.ErrUserNotFound, "user not found")
	}

	user.Role = role
	return s.userRepo.Update(user)
}

// 产品管理
func (s *AdminService) SetFeatured(productID int, featured bool) error {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return errors.New(errors.ErrProductNotFound, "product not found")
	}
	return s.productRepo.SetFeatured(productID, featured)
}

// DeleteProduct 管理员删除产品，不受所有权限制
func (s *AdminService) DeleteProduct(productID int) error {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return errors.New(errors.ErrProductNotFound, "product not found")
	}
	return s.productRepo.Delete(productID)
}

// 系统管理
func (s *AdminService) GetSystemStats() (*model.SystemStats, error) {
	stats := &model.SystemStats{}

	userCount, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	stats.TotalUsers = userCount

	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM products", &stats.TotalProducts},
		{"SELECT COUNT(*) FROM products WHERE status = 'published'", &stats.PublishedProducts},
		{"SELECT COUNT(*) FROM votes", &stats.TotalVotes},
		{"SELECT COUNT(*) FROM comments", &stats.TotalComments},
		{"SELECT COUNT(*) FROM collections", &stats.TotalCollections},
	}
	for _, q := range queries {
		if err := s.db.QueryRow(q.query).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	return stats, nil
}
