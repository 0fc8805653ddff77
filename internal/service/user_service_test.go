package service

import (
	"testing"
	"time"

	"nichehunt-backend/config"
	"nichehunt-backend/internal/errors"
	"nichehunt-backend/internal/model"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func newUserServiceForTest(userRepo *MockUserRepository, collRepo *MockCollectionRepository) *UserService {
	collectionService := NewCollectionService(collRepo, new(MockProductRepository))
	return NewUserService(userRepo, collectionService)
}

// TestRegister 测试注册成功后密码被哈希并创建默认收藏夹
func TestRegister(t *testing.T) {
	userRepo := new(MockUserRepository)
	collRepo := new(MockCollectionRepository)
	svc := newUserServiceForTest(userRepo, collRepo)

	userRepo.On("FindByUsername", "alice").Return(nil, nil)
	userRepo.On("FindByEmail", "alice@example.com").Return(nil, nil)
	userRepo.On("Create", mock.AnythingOfType("*model.User")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(0).(*model.User).ID = 1
	})
	collRepo.On("Create", mock.MatchedBy(func(c *model.Collection) bool {
		return c.UserID == 1 && c.IsDefault && !c.IsPublic
	})).Return(nil)

	user := &model.User{Username: "alice", Email: "alice@example.com", PasswordHash: "Password123"}
	err := svc.Register(user)
	assert.NoError(t, err)

	// 密码已被哈希
	assert.NotEqual(t, "Password123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Password123")))
	assert.Equal(t, "user", user.Role)
	assert.NotEmpty(t, user.Slug)
	collRepo.AssertExpectations(t)
}

// TestRegisterUsernameTaken 测试重复用户名被拒绝
func TestRegisterUsernameTaken(t *testing.T) {
	userRepo := new(MockUserRepository)
	collRepo := new(MockCollectionRepository)
	svc := newUserServiceForTest(userRepo, collRepo)

	userRepo.On("FindByUsername", "alice").Return(&model.User{ID: 1, Username: "alice"}, nil)

	err := svc.Register(&model.User{Username: "alice", Email: "other@example.com", PasswordHash: "Password123"})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUserExists))
	userRepo.AssertNotCalled(t, "Create", mock.Anything)
}

// TestRegisterWeakPassword 测试过短密码被拒绝
func TestRegisterWeakPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	collRepo := new(MockCollectionRepository)
	svc := newUserServiceForTest(userRepo, collRepo)

	userRepo.On("FindByUsername", "alice").Return(nil, nil)
	userRepo.On("FindByEmail", "alice@example.com").Return(nil, nil)

	err := svc.Register(&model.User{Username: "alice", Email: "alice@example.com", PasswordHash: "short"})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrWeakPassword))
	userRepo.AssertNotCalled(t, "Create", mock.Anything)
}

// TestLogin 测试正确凭证登录成功
func TestLogin(t *testing.T) {
	userRepo := new(MockUserRepository)
	collRepo := new(MockCollectionRepository)
	svc := newUserServiceForTest(userRepo, collRepo)

	hash, _ := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)
	userRepo.On("FindByEmail", "alice@example.com").Return(&model.User{
		ID: 1, Email: "alice@example.com", PasswordHash: string(hash),
	}, nil)

	user, err := svc.Login("alice@example.com", "Password123")
	assert.NoError(t, err)
	assert.Equal(t, 1, user.ID)
}

// TestLoginWrongPassword 测试错误密码返回统一的未授权错误
func TestLoginWrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	collRepo := new(MockCollectionRepository)
	svc := newUserServiceForTest(userRepo, collRepo)

	hash, _ := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)
	userRepo.On("FindByEmail", "alice@example.com").Return(&model.User{
		ID: 1, Email: "alice@example.com", PasswordHash: string(hash),
	}, nil)

	_, err := svc.Login("alice@example.com", "wrong")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

// TestLoginDeletedAccount 测试已注销账户无法登录
func TestLoginDeletedAccount(t *testing.T) {
	userRepo := new(MockUserRepository)
	collRepo := new(MockCollectionRepository)
	svc := newUserServiceForTest(userRepo, collRepo)

	now := time.Now()
	hash, _ := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)
	userRepo.On("FindByEmail", "alice@example.com").Return(&model.User{
		ID: 1, Email: "alice@example.com", PasswordHash: string(hash), DeletedAt: &now,
	}, nil)

	_, err := svc.Login("alice@example.com", "Password123")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

// TestLogoutBlacklist 测试注销后令牌进入黑名单
func TestLogoutBlacklist(t *testing.T) {
	userRepo := new(MockUserRepository)
	collRepo := new(MockCollectionRepository)
	svc := newUserServiceForTest(userRepo, collRepo)

	assert.False(t, svc.IsTokenBlacklisted("token-a"))

	err := svc.Logout("token-a", 1)
	assert.NoError(t, err)
	assert.True(t, svc.IsTokenBlacklisted("token-a"))
	assert.False(t, svc.IsTokenBlacklisted("token-b"))
}

// TestUpdateUserRole 测试角色更新及非法角色校验
func TestUpdateUserRole(t *testing.T) {
	userRepo := new(MockUserRepository)
	collRepo := new(MockCollectionRepository)
	svc := newUserServiceForTest(userRepo, collRepo)

	err := svc.UpdateUserRole(1, "superuser")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	userRepo.On("FindByID", 1).Return(&model.User{ID: 1, Role: "user"}, nil)
	userRepo.On("Update", mock.MatchedBy(func(u *model.User) bool {
		return u.ID == 1 && u.Role == "admin"
	})).Return(nil)

	err = svc.UpdateUserRole(1, "admin")
	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
}

// TestResetPassword 测试密码重置将新哈希持久化到密码字段
func TestResetPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	collRepo := new(MockCollectionRepository)
	svc := newUserServiceForTest(userRepo, collRepo)

	token := passwordResetTokenForTest(t, "alice@example.com")
	userRepo.On("FindByEmail", "alice@example.com").Return(&model.User{
		ID: 1, Email: "alice@example.com",
	}, nil)
	userRepo.On("UpdatePassword", 1, mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("NewPassword1")) == nil
	})).Return(nil)

	err := svc.ResetPassword(token, "NewPassword1")
	assert.NoError(t, err)
	// 重置只写密码字段，不触发资料字段的批量更新
	userRepo.AssertNotCalled(t, "Update", mock.Anything)
	userRepo.AssertExpectations(t)
}

// TestResetPasswordTooShort 测试过短的新密码被拒绝
func TestResetPasswordTooShort(t *testing.T) {
	userRepo := new(MockUserRepository)
	collRepo := new(MockCollectionRepository)
	svc := newUserServiceForTest(userRepo, collRepo)

	token := passwordResetTokenForTest(t, "alice@example.com")
	userRepo.On("FindByEmail", "alice@example.com").Return(&model.User{
		ID: 1, Email: "alice@example.com",
	}, nil)

	err := svc.ResetPassword(token, "short")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrWeakPassword))
	userRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything)
}

func passwordResetTokenForTest(t *testing.T, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"type":  "password_reset",
	})
	signed, err := token.SignedString([]byte(config.AppConfig.JWTSecret))
	assert.NoError(t, err)
	return signed
}

// TestDeleteAccount 测试注销通过软删除持久化
func TestDeleteAccount(t *testing.T) {
	userRepo := new(MockUserRepository)
	collRepo := new(MockCollectionRepository)
	svc := newUserServiceForTest(userRepo, collRepo)

	userRepo.On("FindByID", 1).Return(&model.User{ID: 1}, nil)
	userRepo.On("Delete", 1).Return(nil)

	err := svc.DeleteAccount(1)
	assert.NoError(t, err)
	// 注销走软删除语句，而不是不含 deleted_at 的资料更新
	userRepo.AssertNotCalled(t, "Update", mock.Anything)
	userRepo.AssertExpectations(t)
}
