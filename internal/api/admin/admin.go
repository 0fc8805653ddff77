package admin

import (
	"strconv"

	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/middleware"
	"nichehunt-backend/internal/service"
	"nichehunt-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler 处理后台管理相关的HTTP请求
type AdminHandler struct {
	adminService *service.AdminService
	errorMonitor *middleware.ErrorMonitor
}

// NewAdminHandler 创建一个新的 AdminHandler 实例
func NewAdminHandler(adminService *service.AdminService, errorMonitor *middleware.ErrorMonitor) *AdminHandler {
	return &AdminHandler{adminService, errorMonitor}
}

// GetUsers 分页获取用户列表
func (h *AdminHandler) GetUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	users, err := h.adminService.GetUsers(page, pageSize)
	if err != nil {
		util.Logger.Error("获取用户列表失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取用户列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"users": users}, "")
}

// UpdateUserRole 更新用户角色
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}

	var roleData struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&roleData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	if err := h.adminService.UpdateUserRole(userID, roleData.Role); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "用户角色更新成功")
}

// SetFeatured 设置或取消产品的精选状态
func (h *AdminHandler) SetFeatured(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的产品ID", err))
		return
	}

	var featuredData struct {
		Featured bool `json:"featured"`
	}
	if err := c.ShouldBindJSON(&featuredData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	if err := h.adminService.SetFeatured(productID, featuredData.Featured); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "精选状态更新成功")
}

// DeleteProduct 管理员删除产品
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的产品ID", err))
		return
	}

	if err := h.adminService.DeleteProduct(productID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "产品删除成功")
}

// GetSystemStats 获取系统统计数据
func (h *AdminHandler) GetSystemStats(c *gin.Context) {
	stats, err := h.adminService.GetSystemStats()
	if err != nil {
		util.Logger.Error("获取系统统计失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取系统统计失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"stats": stats}, "")
}

// GetErrorStats 获取各错误码的累计次数
func (h *AdminHandler) GetErrorStats(c *gin.Context) {
	errors.HandleSuccess(c, gin.H{
		"error_counts": h.errorMonitor.GetErrorCounts(),
	}, "")
}
