package service

import (
	"database/sql"
	"sync"
	"time"

	"nichehunt-backend/config"
	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/repository/interfaces"
	"nichehunt-backend/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService 处理与用户相关的业务逻辑
type UserService struct {
	userRepo          interfaces.UserRepository
	collectionService *CollectionService
	emailService      *EmailService
	tokenBlacklist    map[string]time.Time
	blacklistMutex    sync.RWMutex
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(userRepo interfaces.UserRepository, collectionService *CollectionService) *UserService {
	return &UserService{
		userRepo:          userRepo,
		collectionService: collectionService,
		emailService:      NewEmailService(userRepo),
		tokenBlacklist:    make(map[string]time.Time),
	}
}

// IsUsernameTaken 检查用户名是否已被使用
func (s *UserService) IsUsernameTaken(username string) (bool, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return user != nil, nil
}

// IsEmailTaken 检查邮箱是否已被注册
func (s *UserService) IsEmailTaken(email string) (bool, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return user != nil, nil
}

// Register 注册新用户。注册成功后为用户创建默认收藏夹并发送验证邮件。
func (s *UserService) Register(user *model.User) error {
	taken, err := s.IsUsernameTaken(user.Username)
	if err != nil {
		return err
	}
	if taken {
		return errors.New(errors.ErrUserExists, "username already exists")
	}

	taken, err = s.IsEmailTaken(user.Email)
	if err != nil {
		return err
	}
	if taken {
		return errors.New(errors.ErrUserExists, "email already registered")
	}

	if len(user.PasswordHash) < 8 {
		return errors.New(errors.ErrWeakPassword, "password must be at least 8 characters")
	}

	// 生成密码哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)

	if user.Slug == "" {
		user.Slug = util.GenerateSlug(user.Username)
	}
	if user.Role == "" {
		user.Role = "user"
	}

	err = s.userRepo.Create(user)
	if err != nil {
		return err
	}

	// 创建默认收藏夹
	if err := s.collectionService.CreateDefaultCollection(user.ID, config.AppConfig.DefaultCollection); err != nil {
		util.Logger.Error("创建默认收藏夹失败", zap.Error(err), zap.Int("user_id", user.ID))
	}

	// 发送验证邮件
	err = s.emailService.SendVerificationEmail(user.Email, user.Username)
	if err != nil {
		util.Logger.Error("发送验证邮件失败", zap.Error(err))
	}

	return nil
}

// Login 用户登录
func (s *UserService) Login(email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		util.Logger.Warn("用户登录失败，查询用户出错", zap.Error(err))
		return nil, errors.New(errors.ErrUnauthorized, "invalid email or password")
	}
	if user == nil || user.DeletedAt != nil {
		return nil, errors.New(errors.ErrUnauthorized, "invalid email or password")
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		util.Logger.Warn("用户登录失败，密码不正确", zap.Int("user_id", user.ID))
		return nil, errors.New(errors.ErrUnauthorized, "invalid email or password")
	}

	util.Logger.Info("用户登录成功", zap.Int("user_id", user.ID))
	return user, nil
}

// GetUserByID 通过ID获取用户信息
func (s *UserService) GetUserByID(id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
	}
	return user, nil
}

// GetUserBySlug 通过个人主页标识获取用户信息
func (s *UserService) GetUserBySlug(slug string) (*model.User, error) {
	user, err := s.userRepo.FindBySlug(slug)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
	}
	return user, nil
}

// UpdateUser 更新用户信息
func (s *UserService) UpdateUser(user *model.User) error {
	existingUser, err := s.GetUserByID(user.ID)
	if err != nil {
		return err
	}

	// 只更新允许修改的字段
	existingUser.Username = user.Username
	existingUser.Bio = user.Bio
	existingUser.WebsiteURL = user.WebsiteURL
	existingUser.TwitterURL = user.TwitterURL

	if err := s.userRepo.Update(existingUser); err != nil {
		return errors.Wrap(errors.ErrDatabase, "更新用户失败", err)
	}
	return nil
}

// VerifyEmail 验证邮箱
func (s *UserService) VerifyEmail(token string) error {
	userID, err := s.emailService.VerifyEmailToken(token)
	if err != nil {
		util.Logger.Error("验证邮箱令牌失败", zap.Error(err))
		return err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		util.Logger.Error("查找用户失败", zap.Error(err), zap.Int("user_id", userID))
		return err
	}
	if user == nil {
		return errors.New(errors.ErrUserNotFound, "user not found")
	}

	if user.IsVerified {
		return errors.New(errors.ErrResourceExists, "email already verified")
	}

	user.IsVerified = true
	if err := s.userRepo.Update(user); err != nil {
		util.Logger.Error("更新用户验证状态失败", zap.Error(err), zap.Int("user_id", user.ID))
		return err
	}

	util.Logger.Info("邮箱验证成功", zap.Int("user_id", user.ID))
	return nil
}

func (s *UserService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New(errors.ErrUserNotFound, "user not found")
	}
	return s.emailService.SendPasswordResetEmail(email)
}

func (s *UserService) ResetPassword(token, newPassword string) error {
	email, err := s.emailService.VerifyPasswordResetToken(token)
	if err != nil {
		util.Logger.Error("验证密码重置令牌失败", zap.Error(err))
		return err
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		util.Logger.Error("查找用户失败", zap.Error(err), zap.String("email", email))
		return err
	}
	if user == nil {
		return errors.New(errors.ErrUserNotFound, "user not found")
	}

	if len(newPassword) < 8 {
		return errors.New(errors.ErrWeakPassword, "password must be at least 8 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		util.Logger.Error("生成密码哈希失败", zap.Error(err))
		return err
	}

	if err := s.userRepo.UpdatePassword(user.ID, string(hashedPassword)); err != nil {
		util.Logger.Error("更新用户密码失败", zap.Error(err), zap.Int("user_id", user.ID))
		return err
	}

	util.Logger.Info("密码重置成功", zap.Int("user_id", user.ID))
	return nil
}

func (s *UserService) Logout(token string, userID int) error {
	s.blacklistMutex.Lock()
	s.tokenBlacklist[token] = time.Now().Add(24 * time.Hour) // 令牌在黑名单中保留24小时
	s.blacklistMutex.Unlock()
	util.Logger.Info("用户注销，令牌已加入黑名单", zap.Int("user_id", userID))
	return nil
}

func (s *UserService) IsTokenBlacklisted(token string) bool {
	s.blacklistMutex.RLock()
	expiry, exists := s.tokenBlacklist[token]
	s.blacklistMutex.RUnlock()
	if !exists {
		return false
	}
	if time.Now().After(expiry) {
		s.blacklistMutex.Lock()
		delete(s.tokenBlacklist, token)
		s.blacklistMutex.Unlock()
		return false
	}
	return true
}

type UserServiceInterface interface {
	Register(user *model.User) error
	Login(email, password string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	GetUserBySlug(slug string) (*model.User, error)
	UpdateUser(user *model.User) error
	VerifyEmail(token string) error
	RequestPasswordReset(email string) error
	ResetPassword(token, newPassword string) error
	Logout(token string, userID int) error
	IsTokenBlacklisted(token string) bool
}

// 确保 UserService 实现了 UserServiceInterface
var _ UserServiceInterface = (*UserService)(nil)

func (s *UserService) IsAdmin(userID int) (bool, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return false, err
	}
	return user.Role == "admin", nil
}

func (s *UserService) GetUsers(page, pageSize int) ([]*model.User, error) {
	return s.userRepo.FindAll(page, pageSize)
}

func (s *UserService) UpdateUserRole(userID int, newRole string) error {
	if newRole != "user" && newRole != "admin" {
		return errors.New(errors.ErrValidation, "invalid role")
	}
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	user.Role = newRole
	return s.userRepo.Update(user)
}

// UpdateAvatar 更新用户头像
func (s *UserService) UpdateAvatar(userID int, avatarURL string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	user.AvatarURL = avatarURL
	return s.userRepo.Update(user)
}

// DeleteAccount 注销用户账户（软删除）
func (s *UserService) DeleteAccount(userID int) error {
	if _, err := s.GetUserByID(userID); err != nil {
		return err
	}
	return s.userRepo.Delete(userID)
}
