package relationship

import (
	"strconv"

	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// RelationshipHandler 处理用户关系聚合视图的HTTP请求
type RelationshipHandler struct {
	relationshipService *service.RelationshipService
}

// NewRelationshipHandler 创建一个新的 RelationshipHandler 实例
func NewRelationshipHandler(relationshipService *service.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{relationshipService}
}

// GetRelationship 获取当前用户与目标用户之间的关系聚合视图
func (h *RelationshipHandler) GetRelationship(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}

	viewerID := c.GetInt("user_id")
	relationship, err := h.relationshipService.GetRelationship(viewerID, targetID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"relationship": relationship}, "")
}

// GetMutualFollowers 获取两个用户的共同关注者
func (h *RelationshipHandler) GetMutualFollowers(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}

	viewerID := c.GetInt("user_id")
	mutuals, err := h.relationshipService.MutualFollowers(viewerID, targetID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取共同关注者失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"mutual_followers": mutuals}, "")
}
