package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"auroramall/internal/constants"
	"auroramall/internal/service"
	"auroramall/pkg/logger"
)

// MerchantOrderHandler 商家订单处理器
type MerchantOrderHandler struct {
	orderService     *service.OrderService
	refundService    *service.RefundService
	logisticsService *service.LogisticsService
	logger           *logger.Logger
}

// NewMerchantOrderHandler 创建商家订单处理器
func NewMerchantOrderHandler(
	orderService *service.OrderService,
	refundService *service.RefundService,
	logisticsService *service.LogisticsService,
	logger *logger.Logger,
) *MerchantOrderHandler {
	return &MerchantOrderHandler{
		orderService:     orderService,
		refundService:    refundService,
		logisticsService: logisticsService,
		logger:           logger,
	}
}

// ListOrders 分页获取商家订单列表
// pending=true时查询待处理订单（已支付和待发货）
func (h *MerchantOrderHandler) ListOrders(c *gin.Context) {
	merchantID, ok := currentMerchantID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 403, "message": constants.ErrInsufficientPermission})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	pending := c.Query("pending") == "true"
	statuses := parseStatusFilter(c.Query("status"))

	orders, total, err := h.orderService.ListMerchantOrders(merchantID, statuses, pending, page, pageSize)
	if err != nil {
		h.logger.Error("获取商家订单列表失败", "merchant_id", merchantID, "error", err)
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

// GetOrderDetail 商家获取订单详情
func (h *MerchantOrderHandler) GetOrderDetail(c *gin.Context) {
	merchantID, ok := currentMerchantID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 403, "message": constants.ErrInsufficientPermission})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	detail, err := h.orderService.GetMerchantOrderDetail(merchantID, orderID)
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

// ShipOrder 商家发货
func (h *MerchantOrderHandler) ShipOrder(c *gin.Context) {
	merchantID, ok := currentMerchantID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 403, "message": constants.ErrInsufficientPermission})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	var req service.ShipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrMissingShipmentInfo})
		return
	}

	if err := h.logisticsService.ShipOrder(merchantID, orderID, &req); err != nil {
		h.logger.Error("商家发货失败", "merchant_id", merchantID, "order_id", orderID, "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessShip})
}

// CancelOrder 商家取消订单
func (h *MerchantOrderHandler) CancelOrder(c *gin.Context) {
	merchantID, ok := currentMerchantID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 403, "message": constants.ErrInsufficientPermission})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	c.ShouldBindJSON(&req)

	if err := h.refundService.CancelOrder(merchantID, orderID, req.Note); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessCancel})
}

// ResolveRefund 商家处理退款申请
func (h *MerchantOrderHandler) ResolveRefund(c *gin.Context) {
	merchantID, ok := currentMerchantID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 403, "message": constants.ErrInsufficientPermission})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	var req struct {
		Approved bool   `json:"approved"`
		Note     string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.refundService.ResolveRefund(merchantID, orderID, req.Approved, req.Note); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessUpdate})
}
