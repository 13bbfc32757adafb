package apis

import (
	"github.com/gin-gonic/gin"

	"auroramall/internal/api/handler"
)

// RegisterPublicRoutes 注册不需要认证的路由
func RegisterPublicRoutes(v1 *gin.RouterGroup, paymentHandler *handler.PaymentHandler) {
	payments := v1.Group("/payments")
	{
		payments.GET("/channels", paymentHandler.ListChannels)
		payments.POST("/callback/:channel", paymentHandler.GatewayCallback)
	}
}

// RegisterAuthRoutes 注册需要用户认证的路由
func RegisterAuthRoutes(r *gin.RouterGroup, orderHandler *handler.OrderHandler, paymentHandler *handler.PaymentHandler) {
	orders := r.Group("/orders")
	{
		orders.POST("", orderHandler.CreateOrders)
		orders.POST("/subscription", orderHandler.CreateSubscription)
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/statistics", orderHandler.Statistics)
		orders.GET("/:id", orderHandler.GetOrderDetail)
		orders.GET("/:id/logistics", orderHandler.GetLogistics)
		orders.POST("/:id/cancel", orderHandler.CancelOrder)
		orders.POST("/:id/confirm", orderHandler.ConfirmReceipt)
		orders.POST("/:id/refund", orderHandler.RequestRefund)
		orders.DELETE("/:id", orderHandler.DeleteOrder)
	}

	payments := r.Group("/payments")
	{
		payments.POST("", paymentHandler.CreatePayment)
		payments.GET("/:paymentNo/status", paymentHandler.GetPaymentStatus)
		payments.POST("/:paymentNo/confirm", paymentHandler.ConfirmPayment)
		payments.POST("/:paymentNo/cancel", paymentHandler.CancelPayment)
	}
}

// RegisterMerchantRoutes 注册商家端路由
func RegisterMerchantRoutes(r *gin.RouterGroup, merchantOrderHandler *handler.MerchantOrderHandler) {
	orders := r.Group("/orders")
	{
		orders.GET("", merchantOrderHandler.ListOrders)
		orders.GET("/:id", merchantOrderHandler.GetOrderDetail)
		orders.POST("/:id/ship", merchantOrderHandler.ShipOrder)
		orders.POST("/:id/cancel", merchantOrderHandler.CancelOrder)
		orders.POST("/:id/refund", merchantOrderHandler.ResolveRefund)
	}
}
