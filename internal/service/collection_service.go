package service

import (
	"strings"

	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/repository/interfaces"
	"nichehunt-backend/internal/repository/postgres"
)

// CollectionService 处理收藏夹的业务逻辑
type CollectionService struct {
	repo        interfaces.CollectionRepository
	productRepo interfaces.ProductRepository
}

func NewCollectionService(repo interfaces.CollectionRepository, productRepo interfaces.ProductRepository) *CollectionService {
	return &CollectionService{
		repo:        repo,
		productRepo: productRepo,
	}
}

func (s *CollectionService) CreateCollection(collection *model.Collection) error {
	if strings.TrimSpace(collection.Name) == "" {
		return errors.New(errors.ErrValidation, "收藏夹名称不能为空")
	}
	// 默认收藏夹只在注册时创建
	collection.IsDefault = false
	if err := s.repo.Create(collection); err != nil {
		return errors.Wrap(errors.ErrDatabase, "创建收藏夹失败", err)
	}
	return nil
}

// CreateDefaultCollection 注册时为新用户创建默认收藏夹
func (s *CollectionService) CreateDefaultCollection(userID int, name string) error {
	collection := &model.Collection{
		UserID:    userID,
		Name:      name,
		IsPublic:  false,
		IsDefault: true,
	}
	if err := s.repo.Create(collection); err != nil {
		return errors.Wrap(errors.ErrDatabase, "创建默认收藏夹失败", err)
	}
	return nil
}

// GetCollection 私有收藏夹只对所有者可见，对其他人表现为不存在
func (s *CollectionService) GetCollection(id, viewerID int) (*model.Collection, error) {
	collection, err := s.repo.FindByID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询收藏夹失败", err)
	}
	if collection == nil {
		return nil, errors.New(errors.ErrCollectionNotFound, "收藏夹不存在")
	}
	if !collection.IsPublic && collection.UserID != viewerID {
		return nil, errors.New(errors.ErrCollectionNotFound, "收藏夹不存在")
	}

	products, err := s.repo.ListProducts(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询收藏夹产品失败", err)
	}
	collection.Products = products
	collection.ProductCount = len(products)
	return collection, nil
}

// UpdateCollection 只有所有者可以更新
func (s *CollectionService) UpdateCollection(collection *model.Collection, actorID int) error {
	existing, err := s.repo.FindByID(collection.ID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询收藏夹失败", err)
	}
	if existing == nil {
		return errors.New(errors.ErrCollectionNotFound, "收藏夹不存在")
	}
	if existing.UserID != actorID {
		return errors.New(errors.ErrForbidden, "只有所有者可以修改收藏夹")
	}
	if strings.TrimSpace(collection.Name) == "" {
		return errors.New(errors.ErrValidation, "收藏夹名称不能为空")
	}

	existing.Name = collection.Name
	existing.Description = collection.Description
	existing.IsPublic = collection.IsPublic
	if err := s.repo.Update(existing); err != nil {
		return errors.Wrap(errors.ErrDatabase, "更新收藏夹失败", err)
	}
	return nil
}

// DeleteCollection 只有所有者可以删除；默认收藏夹在数据层被拒绝
func (s *CollectionService) DeleteCollection(id, actorID int) error {
	existing, err := s.repo.FindByID(id)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询收藏夹失败", err)
	}
	if existing == nil {
		return errors.New(errors.ErrCollectionNotFound, "收藏夹不存在")
	}
	if existing.UserID != actorID {
		return errors.New(errors.ErrForbidden, "只有所有者可以删除收藏夹")
	}

	if err := s.repo.Delete(id); err != nil {
		if err == postgres.ErrDefaultCollection {
			return errors.New(errors.ErrDefaultCollection, "默认收藏夹不允许删除")
		}
		return errors.Wrap(errors.ErrDatabase, "删除收藏夹失败", err)
	}
	return nil
}

// ListCollections 查看自己的收藏夹时包含私有的，查看他人时只返回公开的
func (s *CollectionService) ListCollections(ownerID, viewerID int) ([]*model.Collection, error) {
	return s.repo.ListByUser(ownerID, ownerID == viewerID)
}

// ToggleProduct 切换产品在收藏夹中的成员关系。
// 成员关系在各收藏夹之间相互独立：同一产品可以同时存在于多个收藏夹。
func (s *CollectionService) ToggleProduct(collectionID, productID, actorID int) (bool, error) {
	collection, err := s.repo.FindByID(collectionID)
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, "查询收藏夹失败", err)
	}
	if collection == nil {
		return false, errors.New(errors.ErrCollectionNotFound, "收藏夹不存在")
	}
	if collection.UserID != actorID {
		return false, errors.New(errors.ErrForbidden, "只有所有者可以修改收藏夹内容")
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, "查询产品失败", err)
	}
	if product == nil {
		return false, errors.New(errors.ErrProductNotFound, "产品不存在")
	}

	saved, err := s.repo.ToggleProduct(collectionID, productID)
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, "切换收藏状态失败", err)
	}
	return saved, nil
}

// QuickSave 把产品加入或移出用户的默认收藏夹
func (s *CollectionService) QuickSave(userID, productID int) (bool, error) {
	collection, err := s.repo.DefaultForUser(userID)
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, "查询默认收藏夹失败", err)
	}
	if collection == nil {
		return false, errors.New(errors.ErrCollectionNotFound, "默认收藏夹不存在")
	}
	return s.ToggleProduct(collection.ID, productID, userID)
}

// CollectionIDsContainingProduct 用户的哪些收藏夹包含了该产品
func (s *CollectionService) CollectionIDsContainingProduct(userID, productID int) ([]int, error) {
	return s.repo.CollectionIDsContainingProduct(userID, productID)
}
