package interfaces

import "nichehunt-backend/internal/model"

// CollectionRepository 定义了收藏夹相关的数据库操作接口
type CollectionRepository interface {
	Create(collection *model.Collection) error
	FindByID(id int) (*model.Collection, error)
	Update(collection *model.Collection) error
	// Delete 拒绝删除默认收藏夹（数据层硬约束）
	Delete(id int) error
	ListByUser(userID int, includePrivate bool) ([]*model.Collection, error)
	DefaultForUser(userID int) (*model.Collection, error)
	ToggleProduct(collectionID, productID int) (bool, error)
	ContainsProduct(collectionID, productID int) (bool, error)
	ListProducts(collectionID int) ([]*model.Product, error)
	CollectionIDsContainingProduct(userID, productID int) ([]int, error)
}
