package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"auroramall/internal/constants"
	"auroramall/internal/service"
	"auroramall/internal/status"
	"auroramall/pkg/logger"
)

// OrderHandler 买家订单处理器
type OrderHandler struct {
	orderService     *service.OrderService
	refundService    *service.RefundService
	logisticsService *service.LogisticsService
	logger           *logger.Logger
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	orderService *service.OrderService,
	refundService *service.RefundService,
	logisticsService *service.LogisticsService,
	logger *logger.Logger,
) *OrderHandler {
	return &OrderHandler{
		orderService:     orderService,
		refundService:    refundService,
		logisticsService: logisticsService,
		logger:           logger,
	}
}

// CreateOrders 创建商品订单，按SKU拆单
func (h *OrderHandler) CreateOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
		return
	}

	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	result, err := h.orderService.CreateProductOrders(userID, &req)
	if err != nil {
		h.logger.Error("创建订单失败", "user_id", userID, "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": constants.SuccessCreate,
		"data":    result,
	})
}

// CreateSubscription 创建订阅订单
func (h *OrderHandler) CreateSubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
		return
	}

	var req service.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	order, err := h.orderService.CreateSubscriptionOrder(userID, &req)
	if err != nil {
		h.logger.Error("创建订阅订单失败", "user_id", userID, "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": constants.SuccessCreate,
		"data":    order,
	})
}

// ListOrders 分页获取当前用户订单列表
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	statuses := parseStatusFilter(c.Query("status"))

	orders, total, err := h.orderService.ListUserOrders(userID, statuses, page, pageSize)
	if err != nil {
		h.logger.Error("获取订单列表失败", "user_id", userID, "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": constants.SuccessGet,
		"data": gin.H{
			"list":      orders,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

// GetOrderDetail 获取订单详情
func (h *OrderHandler) GetOrderDetail(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	detail, err := h.orderService.GetOrderDetail(userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": constants.SuccessGet,
		"data":    detail,
	})
}

// CancelOrder 买家取消订单
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.orderService.CancelOrder(userID, orderID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessCancel})
}

// ConfirmReceipt 买家确认收货
func (h *OrderHandler) ConfirmReceipt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.orderService.ConfirmReceipt(userID, orderID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessUpdate})
}

// RequestRefund 买家申请退款
func (h *OrderHandler) RequestRefund(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	c.ShouldBindJSON(&req)

	if err := h.refundService.RequestRefund(userID, orderID, req.Reason); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessUpdate})
}

// DeleteOrder 删除订单
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.orderService.DeleteOrder(userID, orderID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessDelete})
}

// Statistics 按状态统计当前用户订单数量
func (h *OrderHandler) Statistics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
		return
	}

	stats, err := h.orderService.Statistics(userID)
	if err != nil {
		h.logger.Error("获取订单统计失败", "user_id", userID, "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": constants.SuccessGet,
		"data":    stats,
	})
}

// GetLogistics 查询订单物流信息
func (h *OrderHandler) GetLogistics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	logistics, err := h.logisticsService.GetLogistics(userID, 0, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": constants.SuccessGet,
		"data":    logistics,
	})
}

// parseStatusFilter 解析逗号分隔的状态过滤参数
func parseStatusFilter(raw string) []status.OrderStatus {
	if raw == "" {
		return nil
	}
	var statuses []status.OrderStatus
	for _, part := range strings.Split(raw, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		s := status.OrderStatus(v)
		if s.IsValid() && s != status.Deleted {
			statuses = append(statuses, s)
		}
	}
	return statuses
}
