package product

import (
	"strconv"
	"time"

	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/repository/interfaces"
	"nichehunt-backend/internal/service"
	"nichehunt-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProductHandler 处理与产品相关的HTTP请求
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler 创建一个新的 ProductHandler 实例
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService}
}

// CreateProduct 处理创建产品的请求
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	userID := c.GetInt("user_id")

	var productData struct {
		Name        string `json:"name" binding:"required"`
		Tagline     string `json:"tagline"`
		Description string `json:"description"`
		Status      string `json:"status"`
		CategoryID  *int   `json:"category_id"`
		LaunchDate  string `json:"launch_date"`
		TagIDs      []int  `json:"tag_ids"`
	}

	if err := c.ShouldBindJSON(&productData); err != nil {
		util.Logger.Warn("创建产品失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	product := &model.Product{
		UserID:      userID,
		Name:        productData.Name,
		Tagline:     productData.Tagline,
		Description: productData.Description,
		Status:      productData.Status,
		CategoryID:  productData.CategoryID,
	}
	if productData.LaunchDate != "" {
		launchDate, err := time.Parse("2006-01-02", productData.LaunchDate)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的发布日期格式", err))
			return
		}
		product.LaunchDate = launchDate
	}

	if err := h.productService.CreateProduct(product, productData.TagIDs); err != nil {
		util.Logger.Error("创建产品失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"product": product}, "产品创建成功")
}

// GetProduct 获取单个产品详情
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的产品ID", err))
		return
	}

	viewerID := c.GetInt("user_id")
	product, err := h.productService.GetProduct(id, viewerID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"product": product}, "")
}

// UpdateProduct 更新产品，只有所有者可以操作
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的产品ID", err))
		return
	}
	userID := c.GetInt("user_id")

	var productData struct {
		Name        string `json:"name"`
		Tagline     string `json:"tagline"`
		Description string `json:"description"`
		Status      string `json:"status"`
		CategoryID  *int   `json:"category_id"`
	}

	if err := c.ShouldBindJSON(&productData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	product := &model.Product{
		ID:          id,
		Name:        productData.Name,
		Tagline:     productData.Tagline,
		Description: productData.Description,
		Status:      productData.Status,
		CategoryID:  productData.CategoryID,
	}

	if err := h.productService.UpdateProduct(product, userID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"product": product}, "产品更新成功")
}

// DeleteProduct 删除产品，只有所有者可以操作
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的产品ID", err))
		return
	}
	userID := c.GetInt("user_id")

	if err := h.productService.DeleteProduct(id, userID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "产品删除成功")
}

// ListProducts 分页获取产品列表，支持状态、分类、作者和关键字过滤
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	categoryID, _ := strconv.Atoi(c.DefaultQuery("category_id", "0"))
	userID, _ := strconv.Atoi(c.DefaultQuery("user_id", "0"))

	filter := interfaces.ProductFilter{
		Status:     c.DefaultQuery("status", "published"),
		CategoryID: categoryID,
		UserID:     userID,
		Query:      c.Query("q"),
	}

	viewerID := c.GetInt("user_id")
	products, total, err := h.productService.ListProducts(filter, page, pageSize, viewerID)
	if err != nil {
		util.Logger.Error("获取产品列表失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取产品列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"products":  products,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	}, "")
}

// GetFeaturedProducts 获取精选产品
func (h *ProductHandler) GetFeaturedProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	viewerID := c.GetInt("user_id")

	products, err := h.productService.ListFeatured(limit, viewerID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取精选产品失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"products": products}, "")
}

// GetTrendingProducts 获取时间窗口内按票数排序的热门产品
func (h *ProductHandler) GetTrendingProducts(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if days <= 0 {
		days = 7
	}
	viewerID := c.GetInt("user_id")

	products, err := h.productService.ListTrending(time.Duration(days)*24*time.Hour, limit, viewerID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取热门产品失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"products": products}, "")
}

// GetRankings 获取某一天发布的产品排行
func (h *ProductHandler) GetRankings(c *gin.Context) {
	dateStr := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的日期格式", err))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	viewerID := c.GetInt("user_id")

	from := date
	to := date.Add(24 * time.Hour)
	products, err := h.productService.ListRankings(from, to, limit, viewerID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取产品排行失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"date":     dateStr,
		"products": products,
	}, "")
}

// CreateCategory 创建分类
func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var categoryData struct {
		Name string `json:"name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&categoryData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	category, err := h.productService.CreateCategory(categoryData.Name)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"category": category}, "分类创建成功")
}

// GetCategories 获取所有分类
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.productService.GetCategories()
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取分类失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"categories": categories}, "")
}

// CreateTag 创建标签
func (h *ProductHandler) CreateTag(c *gin.Context) {
	var tagData struct {
		Name string `json:"name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&tagData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	tag, err := h.productService.CreateTag(tagData.Name)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"tag": tag}, "标签创建成功")
}

// GetTags 获取所有标签
func (h *ProductHandler) GetTags(c *gin.Context) {
	tags, err := h.productService.GetTags()
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取标签失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"tags": tags}, "")
}

// AddTagToProduct 给产品添加标签，只有所有者可以操作
func (h *ProductHandler) AddTagToProduct(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的产品ID", err))
		return
	}

	var tagData struct {
		TagID int `json:"tag_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&tagData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	userID := c.GetInt("user_id")
	if err := h.productService.AddTagToProduct(productID, tagData.TagID, userID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "标签添加成功")
}
