package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nichehunt-backend/config"
	"nichehunt-backend/internal/api/admin"
	"nichehunt-backend/internal/api/collection"
	"nichehunt-backend/internal/api/community"
	"nichehunt-backend/internal/api/notification"
	"nichehunt-backend/internal/api/product"
	"nichehunt-backend/internal/api/relationship"
	"nichehunt-backend/internal/api/user"
	"nichehunt-backend/internal/cache"
	"nichehunt-backend/internal/middleware"
	"nichehunt-backend/internal/repository/postgres"
	"nichehunt-backend/internal/service"
	"nichehunt-backend/internal/storage"
	"nichehunt-backend/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 设置数据库连接字符串
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName)

	// 连接数据库
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer db.Close()

	// 测试数据库连接
	err = db.Ping()
	if err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	util.Logger.Info("数据库连接池配置完成")

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("future_date", util.ValidateFutureDate)
		v.RegisterValidation("product_status", util.ValidateProductStatus)
	}

	// 确保上传文件夹存在
	ensureUploadsFolder()

	// 初始化文件存储
	fileStorage, err := storage.NewFromConfig()
	if err != nil {
		util.Logger.Fatal("初始化文件存储失败", zap.Error(err))
	}

	// 初始化投影缓存（未配置 Redis 时自动禁用）
	projectionCache := cache.New(config.AppConfig.RedisAddr, config.AppConfig.RedisPassword)

	// 初始化存储库
	userRepo := postgres.NewUserRepository(db)
	productRepo := postgres.NewProductRepository(db)
	communityRepo := postgres.NewCommunityRepository(db)
	collectionRepo := postgres.NewCollectionRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	relationshipRepo := postgres.NewRelationshipRepository(db)

	// 初始化服务
	collectionService := service.NewCollectionService(collectionRepo, productRepo)
	userService := service.NewUserService(userRepo, collectionService)
	notificationService := service.NewNotificationService(notificationRepo, projectionCache)
	communityService := service.NewCommunityService(communityRepo, productRepo, userRepo, notificationService, projectionCache)
	productService := service.NewProductService(productRepo, communityRepo, userRepo, projectionCache)
	relationshipService := service.NewRelationshipService(relationshipRepo, communityRepo, userRepo)
	adminService := service.NewAdminService(userRepo, productRepo, db)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	// 初始化处理器
	authHandler := user.NewAuthHandler(userService)
	profileHandler := user.NewProfileHandler(userService, communityService, fileStorage)
	productHandler := product.NewProductHandler(productService)
	communityHandler := community.NewCommunityHandler(communityService)
	collectionHandler := collection.NewCollectionHandler(collectionService)
	notificationHandler := notification.NewNotificationHandler(notificationService)
	relationshipHandler := relationship.NewRelationshipHandler(relationshipService)
	adminHandler := admin.NewAdminHandler(adminService, errorMonitor)

	// 启动定时任务清理过期的已读通知
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		for range ticker.C {
			util.Logger.Info("开始清理过期通知")
			deleted, err := notificationService.CleanupOld(30 * 24 * time.Hour)
			if err != nil {
				util.Logger.Error("清理过期通知失败", zap.Error(err))
				continue
			}
			util.Logger.Info("过期通知清理完成", zap.Int64("deleted", deleted))
		}
	}()

	// 设置 Gin 路由
	r := gin.Default()

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Access-Control-Allow-Origin",
	}
	r.Use(cors.New(corsConfig))

	// 配置静态文件服务
	r.Static("/uploads", config.AppConfig.LocalStoragePath)

	// 定义 API 路由
	api := r.Group("/api")
	{
		// 认证相关路由
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.POST("/request-password-reset", authHandler.RequestPasswordReset)
		api.POST("/reset-password", authHandler.ResetPassword)
		api.GET("/verify-email", authHandler.VerifyEmail)

		// 需要认证的用户路由
		authorized := api.Group("/")
		authorized.Use(middleware.AuthMiddleware(userService))
		{
			authorized.GET("/profile", profileHandler.GetProfile)
			authorized.PUT("/profile", profileHandler.UpdateProfile)
			authorized.POST("/logout", authHandler.Logout)
			authorized.POST("/refresh-token", authHandler.RefreshToken)
			authorized.POST("/profile/avatar", profileHandler.UploadAvatar)
			authorized.DELETE("/account", profileHandler.DeleteAccount)
		}

		// 产品相关路由
		api.POST("/products", middleware.AuthMiddleware(userService), productHandler.CreateProduct)
		api.GET("/products", middleware.OptionalAuthMiddleware(), productHandler.ListProducts)
		api.GET("/products/featured", middleware.OptionalAuthMiddleware(), productHandler.GetFeaturedProducts)
		api.GET("/products/trending", middleware.OptionalAuthMiddleware(), productHandler.GetTrendingProducts)
		api.GET("/products/rankings", middleware.OptionalAuthMiddleware(), productHandler.GetRankings)
		api.GET("/products/:id", middleware.OptionalAuthMiddleware(), productHandler.GetProduct)
		api.PUT("/products/:id", middleware.AuthMiddleware(userService), productHandler.UpdateProduct)
		api.DELETE("/products/:id", middleware.AuthMiddleware(userService), productHandler.DeleteProduct)
		api.POST("/products/:id/tags", middleware.AuthMiddleware(userService), productHandler.AddTagToProduct)
		api.GET("/categories", productHandler.GetCategories)
		api.GET("/tags", productHandler.GetTags)

		// 投票相关路由
		api.POST("/products/:id/vote", middleware.AuthMiddleware(userService), communityHandler.ToggleVote)
		api.GET("/products/:id/vote", middleware.OptionalAuthMiddleware(), communityHandler.GetVoteStatus)
		api.GET("/users/:id/votes", communityHandler.ListVotedProducts)

		// 评论相关路由
		api.POST("/products/:id/comments", middleware.AuthMiddleware(userService), communityHandler.CreateComment)
		api.GET("/products/:id/comments", communityHandler.GetComments)
		api.PUT("/comments/:id", middleware.AuthMiddleware(userService), communityHandler.UpdateComment)
		api.DELETE("/comments/:id", middleware.AuthMiddleware(userService), communityHandler.DeleteComment)

		// 关注相关路由
		api.POST("/users/:id/follow", middleware.AuthMiddleware(userService), communityHandler.FollowUser)
		api.DELETE("/users/:id/follow", middleware.AuthMiddleware(userService), communityHandler.UnfollowUser)
		api.GET("/users/:id/followers", communityHandler.GetFollowers)
		api.GET("/users/:id/following", communityHandler.GetFollowing)

		// 用户公开资料与关系视图
		api.GET("/users/slug/:slug", middleware.OptionalAuthMiddleware(), profileHandler.GetPublicProfile)
		api.GET("/users/:id/relationship", middleware.AuthMiddleware(userService), relationshipHandler.GetRelationship)
		api.GET("/users/:id/mutual-followers", middleware.AuthMiddleware(userService), relationshipHandler.GetMutualFollowers)

		// 收藏夹相关路由
		api.POST("/collections", middleware.AuthMiddleware(userService), collectionHandler.CreateCollection)
		api.GET("/collections/:id", middleware.OptionalAuthMiddleware(), collectionHandler.GetCollection)
		api.PUT("/collections/:id", middleware.AuthMiddleware(userService), collectionHandler.UpdateCollection)
		api.DELETE("/collections/:id", middleware.AuthMiddleware(userService), collectionHandler.DeleteCollection)
		api.POST("/collections/:id/products", middleware.AuthMiddleware(userService), collectionHandler.ToggleProduct)
		api.GET("/users/:id/collections", middleware.OptionalAuthMiddleware(), collectionHandler.ListCollections)
		api.POST("/products/:id/save", middleware.AuthMiddleware(userService), collectionHandler.QuickSave)
		api.GET("/products/:id/save", middleware.AuthMiddleware(userService), collectionHandler.GetSaveStatus)

		// 通知相关路由
		notifications := api.Group("/notifications")
		notifications.Use(middleware.AuthMiddleware(userService))
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
		}

		// 管理员路由组
		adminRoutes := api.Group("/admin")
		adminRoutes.Use(middleware.AuthMiddleware(userService), middleware.AdminMiddleware(userService))
		{
			adminRoutes.GET("/users", adminHandler.GetUsers)
			adminRoutes.PUT("/users/:id/role", adminHandler.UpdateUserRole)
			adminRoutes.PUT("/products/:id/featured", adminHandler.SetFeatured)
			adminRoutes.DELETE("/products/:id", adminHandler.DeleteProduct)
			adminRoutes.POST("/categories", productHandler.CreateCategory)
			adminRoutes.POST("/tags", productHandler.CreateTag)
			adminRoutes.GET("/stats", adminHandler.GetSystemStats)
			adminRoutes.GET("/errors", adminHandler.GetErrorStats)
		}
	}

	// 创建一个带有超时的 http.Server
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动，监听端口 :8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}

// 确保上传文件夹存在
func ensureUploadsFolder() {
	uploadsPath := config.AppConfig.LocalStoragePath
	if err := os.MkdirAll(uploadsPath, 0755); err != nil {
		util.Logger.Fatal("创建上传文件夹失败", zap.Error(err), zap.String("path", uploadsPath))
	}
	util.Logger.Info("上传文件夹已创建或已存在", zap.String("path", uploadsPath))
}
