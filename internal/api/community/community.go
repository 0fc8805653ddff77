package community

import (
	"strconv"

	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/service"
	"nichehunt-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CommunityHandler 处理投票、评论和关注相关的HTTP请求
type CommunityHandler struct {
	communityService *service.CommunityService
}

// NewCommunityHandler 创建一个新的 CommunityHandler 实例
func NewCommunityHandler(communityService *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{communityService}
}

// ToggleVote 切换当前用户对产品的投票状态
func (h *CommunityHandler) ToggleVote(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的产品ID", err))
		return
	}
	userID := c.GetInt("user_id")

	voted, err := h.communityService.ToggleVote(userID, productID)
	if err != nil {
		util.Logger.Error("切换投票状态失败", zap.Error(err),
			zap.Int("user_id", userID), zap.Int("product_id", productID))
		errors.HandleError(c, err)
		return
	}

	voteCount, err := h.communityService.VoteCount(productID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取票数失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"voted":      voted,
		"vote_count": voteCount,
	}, "")
}

// GetVoteStatus 获取当前用户对产品的投票状态和总票数
func (h *CommunityHandler) GetVoteStatus(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的产品ID", err))
		return
	}

	voteCount, err := h.communityService.VoteCount(productID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取票数失败", err))
		return
	}

	voted := false
	if userID := c.GetInt("user_id"); userID > 0 {
		voted, err = h.communityService.HasVoted(userID, productID)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取投票状态失败", err))
			return
		}
	}

	errors.HandleSuccess(c, gin.H{
		"voted":      voted,
		"vote_count": voteCount,
	}, "")
}

// ListVotedProducts 获取用户投过票的产品
func (h *CommunityHandler) ListVotedProducts(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	products, total, err := h.communityService.ListVotedProducts(userID, page, pageSize)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取投票产品失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"products": products,
		"total":    total,
	}, "")
}

// CreateComment 创建评论或回复
func (h *CommunityHandler) CreateComment(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的产品ID", err))
		return
	}

	var commentData struct {
		Content  string `json:"content" binding:"required"`
		ParentID *int   `json:"parent_id"`
	}

	if err := c.ShouldBindJSON(&commentData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	comment := &model.Comment{
		ProductID: productID,
		UserID:    c.GetInt("user_id"),
		Content:   commentData.Content,
		ParentID:  commentData.ParentID,
	}

	if err := h.communityService.CreateComment(comment); err != nil {
		util.Logger.Error("创建评论失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"comment": comment}, "评论创建成功")
}

// GetComments 获取产品的评论树。顶层评论按时间倒序，回复按时间正序。
func (h *CommunityHandler) GetComments(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的产品ID", err))
		return
	}

	comments, err := h.communityService.ListComments(productID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取评论失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"comments": comments}, "")
}

// UpdateComment 更新评论，只有作者可以操作
func (h *CommunityHandler) UpdateComment(c *gin.Context) {
	commentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的评论ID", err))
		return
	}

	var commentData struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&commentData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	userID := c.GetInt("user_id")
	comment, err := h.communityService.UpdateComment(commentID, userID, commentData.Content)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"comment": comment}, "评论更新成功")
}

// DeleteComment 删除评论，只有作者可以操作
func (h *CommunityHandler) DeleteComment(c *gin.Context) {
	commentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的评论ID", err))
		return
	}

	userID := c.GetInt("user_id")
	if err := h.communityService.DeleteComment(commentID, userID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "评论删除成功")
}

// FollowUser 关注用户
func (h *CommunityHandler) FollowUser(c *gin.Context) {
	followingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}

	followerID := c.GetInt("user_id")
	if err := h.communityService.FollowUser(followerID, followingID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "关注成功")
}

// UnfollowUser 取消关注
func (h *CommunityHandler) UnfollowUser(c *gin.Context) {
	followingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}

	followerID := c.GetInt("user_id")
	if err := h.communityService.UnfollowUser(followerID, followingID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "已取消关注")
}

// GetFollowers 获取用户的粉丝列表
func (h *CommunityHandler) GetFollowers(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	followers, err := h.communityService.GetFollowers(userID, page, pageSize)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取粉丝列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"followers": followers}, "")
}

// GetFollowing 获取用户的关注列表
func (h *CommunityHandler) GetFollowing(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	following, err := h.communityService.GetFollowing(userID, page, pageSize)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取关注列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"following": following}, "")
}
