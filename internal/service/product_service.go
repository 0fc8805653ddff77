package service

import (
	"context"
	"strings"
	"time"

	"nichehunt-backend/internal/cache"
	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/repository/interfaces"
	"nichehunt-backend/internal/util"

	"go.uber.org/zap"
)

// ProductService 处理产品相关的业务逻辑
type ProductService struct {
	repo          interfaces.ProductRepository
	communityRepo interfaces.CommunityRepository
	userRepo      interfaces.UserRepository
	cache         *cache.ProjectionCache
}

func NewProductService(
	repo interfaces.ProductRepository,
	communityRepo interfaces.CommunityRepository,
	userRepo interfaces.UserRepository,
	projectionCache *cache.ProjectionCache,
) *ProductService {
	return &ProductService{
		repo:          repo,
		communityRepo: communityRepo,
		userRepo:      userRepo,
		cache:         projectionCache,
	}
}

func (s *ProductService) CreateProduct(product *model.Product, tagIDs []int) error {
	if strings.TrimSpace(product.Name) == "" {
		return errors.New(errors.ErrValidation, "产品名称不能为空")
	}
	if product.Status == "" {
		product.Status = "draft"
	}
	if product.Status != "draft" && product.Status != "published" {
		return errors.New(errors.ErrValidation, "无效的产品状态")
	}
	if product.LaunchDate.IsZero() {
		product.LaunchDate = time.Now()
	}

	if err := s.repo.Create(product, tagIDs); err != nil {
		return errors.Wrap(errors.ErrDatabase, "创建产品失败", err)
	}
	return nil
}

// GetProduct 获取产品详情，附带所有者、分类、标签和派生计数；
// viewerID 大于 0 时同时投影 has_voted
func (s *ProductService) GetProduct(id, viewerID int) (*model.Product, error) {
	product, err := s.repo.FindByID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询产品失败", err)
	}
	if product == nil {
		return nil, errors.New(errors.ErrProductNotFound, "产品不存在")
	}

	if err := s.enrichProducts([]*model.Product{product}, viewerID); err != nil {
		return nil, err
	}

	// 浏览计数失败不影响读取
	if err := s.repo.IncrementViewCount(id); err != nil {
		util.Logger.Warn("更新浏览数失败", zap.Error(err), zap.Int("product_id", id))
	}

	return product, nil
}

// UpdateProduct 只有所有者可以更新
func (s *ProductService) UpdateProduct(product *model.Product, actorID int) error {
	existing, err := s.repo.FindByID(product.ID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询产品失败", err)
	}
	if existing == nil {
		return errors.New(errors.ErrProductNotFound, "产品不存在")
	}
	if existing.UserID != actorID {
		return errors.New(errors.ErrForbidden, "只有所有者可以修改产品")
	}

	// 只更新允许修改的字段；未提供的字段保持原值
	if product.Name != "" {
		if strings.TrimSpace(product.Name) == "" {
			return errors.New(errors.ErrValidation, "产品名称不能为空")
		}
		existing.Name = product.Name
	}
	if product.Tagline != "" {
		existing.Tagline = product.Tagline
	}
	if product.Description != "" {
		existing.Description = product.Description
	}
	if product.Status != "" {
		if product.Status != "draft" && product.Status != "published" {
			return errors.New(errors.ErrValidation, "无效的产品状态")
		}
		existing.Status = product.Status
	}
	if product.CategoryID != nil {
		existing.CategoryID = product.CategoryID
	}
	if !product.LaunchDate.IsZero() {
		existing.LaunchDate = product.LaunchDate
	}

	if err := s.repo.Update(existing); err != nil {
		return errors.Wrap(errors.ErrDatabase, "更新产品失败", err)
	}
	return nil
}

// DeleteProduct 只有所有者可以删除
func (s *ProductService) DeleteProduct(id, actorID int) error {
	existing, err := s.repo.FindByID(id)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询产品失败", err)
	}
	if existing == nil {
		return errors.New(errors.ErrProductNotFound, "产品不存在")
	}
	if existing.UserID != actorID {
		return errors.New(errors.ErrForbidden, "只有所有者可以删除产品")
	}

	if err := s.repo.Delete(id); err != nil {
		return errors.Wrap(errors.ErrDatabase, "删除产品失败", err)
	}
	s.cache.InvalidateVoteCount(context.Background(), id)
	return nil
}

func (s *ProductService) ListProducts(filter interfaces.ProductFilter, page, pageSize, viewerID int) ([]*model.Product, int, error) {
	products, total, err := s.repo.List(filter, page, pageSize)
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrDatabase, "查询产品列表失败", err)
	}
	if err := s.enrichProducts(products, viewerID); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *ProductService) ListFeatured(limit, viewerID int) ([]*model.Product, error) {
	products, err := s.repo.ListFeatured(limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询精选产品失败", err)
	}
	if err := s.enrichProducts(products, viewerID); err != nil {
		return nil, err
	}
	return products, nil
}

// ListTrending 最近 window 时间窗口内按票数排序
func (s *ProductService) ListTrending(window time.Duration, limit, viewerID int) ([]*model.Product, error) {
	products, err := s.repo.ListTrending(time.Now().Add(-window), limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询趋势产品失败", err)
	}
	if err := s.enrichProducts(products, viewerID); err != nil {
		return nil, err
	}
	return products, nil
}

// ListRankings 指定发布日期窗口内的票数排行（日榜传一天，周榜传一周）
func (s *ProductService) ListRankings(from, to time.Time, limit, viewerID int) ([]*model.Product, error) {
	products, err := s.repo.ListByLaunchWindow(from, to, limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询排行榜失败", err)
	}
	if err := s.enrichProducts(products, viewerID); err != nil {
		return nil, err
	}
	return products, nil
}

// enrichProducts 按页面级别批量补全所有者、分类、标签和派生计数。
// 把整页的 distinct id 收集起来一次查询，而不是逐行循环查询。
func (s *ProductService) enrichProducts(products []*model.Product, viewerID int) error {
	if len(products) == 0 {
		return nil
	}

	productIDs := make([]int, 0, len(products))
	userIDSet := make(map[int]struct{})
	categoryIDSet := make(map[int]struct{})
	for _, p := range products {
		productIDs = append(productIDs, p.ID)
		if p.User == nil {
			userIDSet[p.UserID] = struct{}{}
		}
		if p.CategoryID != nil {
			categoryIDSet[*p.CategoryID] = struct{}{}
		}
	}

	var userIDs []int
	for id := range userIDSet {
		userIDs = append(userIDs, id)
	}
	var categoryIDs []int
	for id := range categoryIDSet {
		categoryIDs = append(categoryIDs, id)
	}

	users, err := s.userRepo.FindByIDs(userIDs)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "批量查询用户失败", err)
	}
	categories, err := s.repo.FindCategoriesByIDs(categoryIDs)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "批量查询分类失败", err)
	}
	tags, err := s.repo.TagsForProducts(productIDs)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "批量查询标签失败", err)
	}
	voteCounts, err := s.communityRepo.VoteCountsForProducts(productIDs)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "批量聚合投票数失败", err)
	}
	commentCounts, err := s.communityRepo.CommentCountsForProducts(productIDs)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "批量聚合评论数失败", err)
	}

	var voted map[int]bool
	if viewerID > 0 {
		voted, err = s.communityRepo.VotedForProducts(viewerID, productIDs)
		if err != nil {
			return errors.Wrap(errors.ErrDatabase, "批量查询投票状态失败", err)
		}
	}

	for _, p := range products {
		if p.User == nil {
			p.User = users[p.UserID]
		}
		if p.CategoryID != nil {
			p.Category = categories[*p.CategoryID]
		}
		p.Tags = tags[p.ID]
		p.VoteCount = voteCounts[p.ID]
		p.CommentCount = commentCounts[p.ID]
		if voted != nil {
			p.HasVoted = voted[p.ID]
		}
	}
	return nil
}

func (s *ProductService) CreateCategory(name string) (*model.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New(errors.ErrValidation, "分类名称不能为空")
	}
	category := &model.Category{
		Name: name,
		Slug: util.GenerateSlug(name),
	}
	if err := s.repo.CreateCategory(category); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "创建分类失败", err)
	}
	return category, nil
}

func (s *ProductService) GetCategories() ([]*model.Category, error) {
	return s.repo.ListCategories()
}

func (s *ProductService) CreateTag(name string) (*model.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New(errors.ErrValidation, "标签名称不能为空")
	}
	tag := &model.Tag{Name: name}
	if err := s.repo.CreateTag(tag); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "创建标签失败", err)
	}
	return tag, nil
}

func (s *ProductService) GetTags() ([]*model.Tag, error) {
	return s.repo.ListTags()
}

// AddTagToProduct 只有产品所有者可以打标签
func (s *ProductService) AddTagToProduct(productID, tagID, actorID int) error {
	existing, err := s.repo.FindByID(productID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询产品失败", err)
	}
	if existing == nil {
		return errors.New(errors.ErrProductNotFound, "产品不存在")
	}
	if existing.UserID != actorID {
		return errors.New(errors.ErrForbidden, "只有所有者可以给产品打标签")
	}
	return s.repo.AddTagToProduct(productID, tagID)
}
