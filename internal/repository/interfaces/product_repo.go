package interfaces

import (
	"time"

	"nichehunt-backend/internal/model"
)

// ProductFilter 产品列表查询过滤条件
type ProductFilter struct {
	Status     string
	CategoryID int
	UserID     int
	Query      string
}

// ProductRepository 定义了产品相关的数据库操作接口
type ProductRepository interface {
	Create(product *model.Product, tagIDs []int) error
	FindByID(id int) (*model.Product, error)
	Update(product *model.Product) error
	Delete(id int) error
	List(filter ProductFilter, page, pageSize int) ([]*model.Product, int, error)
	ListFeatured(limit int) ([]*model.Product, error)
	ListTrending(since time.Time, limit int) ([]*model.Product, error)
	ListByLaunchWindow(from, to time.Time, limit int) ([]*model.Product, error)
	IncrementViewCount(id int) error
	SetFeatured(id int, featured bool) error
	Count() (int, error)

	CreateCategory(category *model.Category) error
	ListCategories() ([]*model.Category, error)
	FindCategoriesByIDs(ids []int) (map[int]*model.Category, error)
	CreateTag(tag *model.Tag) error
	ListTags() ([]*model.Tag, error)
	AddTagToProduct(productID, tagID int) error
	TagsForProducts(productIDs []int) (map[int][]model.Tag, error)
}
