package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"auroramall/config"
	"auroramall/internal/api/apis"
	"auroramall/internal/api/handler"
	"auroramall/internal/middleware"
	"auroramall/internal/repository"
	"auroramall/internal/scheduler"
	"auroramall/internal/service"
	"auroramall/pkg/async"
	"auroramall/pkg/logger"
)

// SetupRouter 设置API路由
func SetupRouter(cfg *config.Config, logger *logger.Logger, db *sqlx.DB, redisClient *redis.Client) *gin.Engine {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 使用中间件
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// 创建异步工作器，用于订单状态变更通知
	worker := async.NewWorker(100, logger)
	worker.Start(5)

	// 初始化存储库
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)
	skuRepo := repository.NewSkuRepository(db)
	planRepo := repository.NewPlanRepository(db)
	addressRepo := repository.NewAddressRepository(db)

	// 初始化服务
	statusService := service.NewOrderStatusService(orderRepo, worker, logger)
	orderService := service.NewOrderService(orderRepo, orderItemRepo, paymentRepo, skuRepo, merchantRepo, planRepo, addressRepo, statusService, cfg.Order.ExpireAfter, logger)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, statusService, redisClient, logger)
	refundService := service.NewRefundService(orderRepo, orderItemRepo, paymentRepo, skuRepo, statusService, logger)
	logisticsService := service.NewLogisticsService(orderRepo, statusService, logger)

	// 初始化订单调度器，负责超时订单清理与每日统计
	orderScheduler := scheduler.NewOrderScheduler(orderService, redisClient, logger, cfg.Order.SweepInterval)
	orderScheduler.Start()

	// 初始化处理器
	orderHandler := handler.NewOrderHandler(orderService, refundService, logisticsService, logger)
	paymentHandler := handler.NewPaymentHandler(paymentService, logger)
	merchantOrderHandler := handler.NewMerchantOrderHandler(orderService, refundService, logisticsService, logger)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API版本v1
	v1 := router.Group("/api/v1")

	// 注册不需要认证的路由（支付渠道目录、网关回调）
	apis.RegisterPublicRoutes(v1, paymentHandler)

	// 注册需要认证的API路由
	authRouter := v1.Group("")
	authRouter.Use(middleware.UserAuth(redisClient))
	apis.RegisterAuthRoutes(authRouter, orderHandler, paymentHandler)

	// 注册商家端API路由
	merchantRouter := v1.Group("/merchant")
	merchantRouter.Use(middleware.UserAuth(redisClient))
	merchantRouter.Use(middleware.MerchantAuth(merchantRepo))
	apis.RegisterMerchantRoutes(merchantRouter, merchantOrderHandler)

	return router
}
