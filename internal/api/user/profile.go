package user

import (
	"fmt"

	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/service"
	"nichehunt-backend/internal/storage"
	"nichehunt-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	userService      *service.UserService
	communityService *service.CommunityService
	storage          storage.Storage
}

func NewProfileHandler(userService *service.UserService, communityService *service.CommunityService, storage storage.Storage) *ProfileHandler {
	return &ProfileHandler{userService, communityService, storage}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetInt("user_id")
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		util.Logger.Error("获取用户资料失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user,
	}, "")
}

// GetPublicProfile 通过个人主页标识获取公开资料，附带关注数据
func (h *ProfileHandler) GetPublicProfile(c *gin.Context) {
	slug := c.Param("slug")
	user, err := h.userService.GetUserBySlug(slug)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	followerCount, err := h.communityService.GetFollowerCount(user.ID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取粉丝数失败", err))
		return
	}
	followingCount, err := h.communityService.GetFollowingCount(user.ID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取关注数失败", err))
		return
	}

	isFollowing := false
	if viewerID := c.GetInt("user_id"); viewerID > 0 && viewerID != user.ID {
		isFollowing, _ = h.communityService.IsFollowing(viewerID, user.ID)
	}

	errors.HandleSuccess(c, gin.H{
		"user":            user,
		"follower_count":  followerCount,
		"following_count": followingCount,
		"is_following":    isFollowing,
	}, "")
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	currentUser, err := h.userService.GetUserByID(userID)
	if err != nil {
		util.Logger.Error("获取用户信息失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	var updateData struct {
		Username   string `json:"username"`
		Bio        string `json:"bio"`
		WebsiteURL string `json:"website_url"`
		TwitterURL string `json:"twitter_url"`
	}

	if err := c.ShouldBindJSON(&updateData); err != nil {
		util.Logger.Warn("更新用户资料失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	// 只更新允许用户修改的字段
	if updateData.Username != "" {
		currentUser.Username = updateData.Username
	}
	if updateData.Bio != "" {
		currentUser.Bio = updateData.Bio
	}
	if updateData.WebsiteURL != "" {
		currentUser.WebsiteURL = updateData.WebsiteURL
	}
	if updateData.TwitterURL != "" {
		currentUser.TwitterURL = updateData.TwitterURL
	}

	if err := h.userService.UpdateUser(currentUser); err != nil {
		util.Logger.Error("更新用户资料失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "更新用户资料失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": currentUser,
	}, "资料更新成功")
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID := c.GetInt("user_id")

	file, err := c.FormFile("avatar")
	if err != nil {
		util.Logger.Error("获取上传文件失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "无法获取上传文件", err))
		return
	}

	filename := util.GenerateUniqueFilename(file.Filename)
	path := fmt.Sprintf("avatars/%d/%s", userID, filename)

	avatarURL, err := h.storage.UploadFile(file, path)
	if err != nil {
		util.Logger.Error("上传头像失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "上传头像失败", err))
		return
	}

	if err := h.userService.UpdateAvatar(userID, avatarURL); err != nil {
		util.Logger.Error("更新用户头像失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "更新用户头像失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"avatar_url": avatarURL,
	}, "头像上传成功")
}

func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	userID := c.GetInt("user_id")

	if err := h.userService.DeleteAccount(userID); err != nil {
		util.Logger.Error("注销账户失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "注销账户失败", err))
		return
	}

	errors.HandleSuccess(c, nil, "账户已注销")
}
