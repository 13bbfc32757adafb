package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auroramall/internal/constants"
	"auroramall/internal/service"
	"auroramall/pkg/logger"
)

// PaymentHandler 支付处理器
type PaymentHandler struct {
	paymentService *service.PaymentService
	logger         *logger.Logger
}

// NewPaymentHandler 创建支付处理器
func NewPaymentHandler(paymentService *service.PaymentService, logger *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// ListChannels 获取支付渠道目录
func (h *PaymentHandler) ListChannels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": constants.SuccessGet,
		"data":    h.paymentService.ListChannels(),
	})
}

// CreatePayment 发起支付
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
		return
	}

	var req struct {
		OrderID uint64 `json:"order_id" binding:"required"`
		Channel string `json:"channel" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	session, err := h.paymentService.CreatePayment(userID, req.OrderID, req.Channel)
	if err != nil {
		h.logger.Error("发起支付失败", "user_id", userID, "order_id", req.OrderID, "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": constants.SuccessCreate,
		"data":    session,
	})
}

// GetPaymentStatus 查询支付单状态
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
		return
	}

	payment, err := h.paymentService.GetPaymentStatus(userID, c.Param("paymentNo"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": constants.SuccessGet,
		"data": gin.H{
			"payment_no":     payment.PaymentNo,
			"payment_status": payment.PaymentStatus,
			"channel":        payment.Channel,
			"amount":         payment.PaymentAmount,
			"pay_time":       payment.PayTime,
		},
	})
}

// ConfirmPayment 用户侧确认支付完成（模拟收银台回跳）
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
		return
	}

	paymentNo := c.Param("paymentNo")
	var req struct {
		Channel      string `json:"channel"`
		ThirdPartyNo string `json:"third_party_no"`
	}
	c.ShouldBindJSON(&req)

	// 归属校验复用查询接口
	if _, err := h.paymentService.GetPaymentStatus(userID, paymentNo); err != nil {
		respondError(c, err)
		return
	}

	if err := h.paymentService.ConfirmPayment(paymentNo, req.Channel, req.ThirdPartyNo); err != nil {
		h.logger.Error("确认支付失败", "payment_no", paymentNo, "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessPay})
}

// CancelPayment 取消支付单
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
		return
	}

	if err := h.paymentService.CancelPayment(userID, c.Param("paymentNo")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessCancel})
}

// GatewayCallback 支付网关异步回调
// 终态结果正常应答止住网关重试，瞬时失败应答错误码等待网关重试
func (h *PaymentHandler) GatewayCallback(c *gin.Context) {
	channel := c.Param("channel")

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("回调报文解析失败", "channel", channel, "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrMalformedCallback})
		return
	}

	err := h.paymentService.HandleGatewayCallback(channel, payload)
	if err != nil {
		h.logger.Error("处理支付回调失败", "channel", channel, "error", err)
	}
	code, message := callbackAck(err)
	c.JSON(http.StatusOK, gin.H{"code": code, "message": message})
}

// callbackAck 根据回调处理结果决定给网关的应答
// 报文问题应答400，重试不会改变结果的终态单据应答成功，其余按瞬时失败应答500
func callbackAck(err error) (int, string) {
	switch err {
	case nil:
		return 200, "SUCCESS"
	case service.ErrMalformedCallback, service.ErrUnsupportedChannel:
		return 400, err.Error()
	case service.ErrPaymentNotFound, service.ErrPaymentNotConfirmable, service.ErrOrderNotPayable, service.ErrOrderNotFound:
		return 200, "SUCCESS"
	default:
		return 500, constants.ErrInternalServer
	}
}
