package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	v1 "usercenter/api/v1"
	"usercenter/config"
	"usercenter/dao"
	"usercenter/internal/auth"
	"usercenter/middleware"
	"usercenter/model"
	"usercenter/service"
)

func main() {
	// 初始化配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "../"
	}
	config.InitConfig(configPath)
	config.InitRedis()

	// 初始化数据库
	db, err := gorm.Open(mysql.Open(config.GlobalConfig.MySQL.DSN), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	// 自动迁移（account / planet_code 唯一索引在这里建，兜底注册并发）
	if err := db.AutoMigrate(&model.User{}); err != nil {
		panic(err)
	}

	// 初始化 DAO 和 Service
	userDAO := dao.NewUserDAO(db)
	sessionTTL := time.Duration(config.GlobalConfig.Auth.SessionExpire) * time.Second
	sessions := auth.NewSessionManager(config.RedisClient, sessionTTL)
	userService := service.NewUserService(userDAO, sessions, config.GlobalConfig.Auth.Salt)
	userAPI := v1.NewUserAPI(userService)

	// 初始化路由
	r := gin.Default()
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 公共路由
	public := r.Group("/api/v1")
	{
		public.POST("/users/register", userAPI.Register)
		loginLimiter := middleware.LoginRateLimiter(config.RedisClient, 5, time.Minute)
		public.POST("/users/login", loginLimiter, userAPI.Login)
		// 注销不要求登录态，无会话时幂等成功
		public.POST("/users/logout", userAPI.Logout)
	}

	// 私有路由
	private := r.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(sessions))
	{
		private.GET("/users/current", userAPI.CurrentUser)
		private.GET("/users/search", userAPI.SearchUsers)
		private.POST("/users/delete", userAPI.DeleteUser)
	}

	// 启动服务
	if err := r.Run(config.GlobalConfig.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
