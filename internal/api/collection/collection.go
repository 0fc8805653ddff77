package collection

import (
	"strconv"

	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// CollectionHandler 处理收藏夹相关的HTTP请求
type CollectionHandler struct {
	collectionService *service.CollectionService
}

// NewCollectionHandler 创建一个新的 CollectionHandler 实例
func NewCollectionHandler(collectionService *service.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService}
}

// CreateCollection 创建收藏夹
func (h *CollectionHandler) CreateCollection(c *gin.Context) {
	var collectionData struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		IsPublic    bool   `json:"is_public"`
	}

	if err := c.ShouldBindJSON(&collectionData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	collection := &model.Collection{
		UserID:      c.GetInt("user_id"),
		Name:        collectionData.Name,
		Description: collectionData.Description,
		IsPublic:    collectionData.IsPublic,
	}

	if err := h.collectionService.CreateCollection(collection); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"collection": collection}, "收藏夹创建成功")
}

// GetCollection 获取收藏夹详情，私有收藏夹只对所有者可见
func (h *CollectionHandler) GetCollection(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的收藏夹ID", err))
		return
	}

	viewerID := c.GetInt("user_id")
	collection, err := h.collectionService.GetCollection(id, viewerID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"collection": collection}, "")
}

// UpdateCollection 更新收藏夹，只有所有者可以操作
func (h *CollectionHandler) UpdateCollection(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的收藏夹ID", err))
		return
	}

	var collectionData struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		IsPublic    bool   `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&collectionData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	collection := &model.Collection{
		ID:          id,
		Name:        collectionData.Name,
		Description: collectionData.Description,
		IsPublic:    collectionData.IsPublic,
	}

	userID := c.GetInt("user_id")
	if err := h.collectionService.UpdateCollection(collection, userID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "收藏夹更新成功")
}

// DeleteCollection 删除收藏夹。默认收藏夹不允许删除。
func (h *CollectionHandler) DeleteCollection(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的收藏夹ID", err))
		return
	}

	userID := c.GetInt("user_id")
	if err := h.collectionService.DeleteCollection(id, userID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "收藏夹删除成功")
}

// ListCollections 获取用户的收藏夹列表。查看他人时只返回公开的。
func (h *CollectionHandler) ListCollections(c *gin.Context) {
	ownerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}

	viewerID := c.GetInt("user_id")
	collections, err := h.collectionService.ListCollections(ownerID, viewerID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取收藏夹列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"collections": collections}, "")
}

// ToggleProduct 切换产品在收藏夹中的成员关系
func (h *CollectionHandler) ToggleProduct(c *gin.Context) {
	collectionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的收藏夹ID", err))
		return
	}

	var toggleData struct {
		ProductID int `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&toggleData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	userID := c.GetInt("user_id")
	saved, err := h.collectionService.ToggleProduct(collectionID, toggleData.ProductID, userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"saved": saved}, "")
}

// QuickSave 快速收藏：把产品加入或移出默认收藏夹
func (h *CollectionHandler) QuickSave(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的产品ID", err))
		return
	}

	userID := c.GetInt("user_id")
	saved, err := h.collectionService.QuickSave(userID, productID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"saved": saved}, "")
}

// GetSaveStatus 当前用户的哪些收藏夹包含了该产品
func (h *CollectionHandler) GetSaveStatus(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的产品ID", err))
		return
	}

	userID := c.GetInt("user_id")
	collectionIDs, err := h.collectionService.CollectionIDsContainingProduct(userID, productID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取收藏状态失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"collection_ids": collectionIDs}, "")
}
