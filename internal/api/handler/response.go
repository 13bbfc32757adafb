package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auroramall/internal/constants"
	"auroramall/internal/service"
)

// errorCode 将业务错误映射为响应码，响应始终以HTTP 200返回
func errorCode(err error) int {
	switch err {
	case service.ErrInvalidInput, service.ErrMissingShipmentInfo,
		service.ErrMalformedCallback, service.ErrUnsupportedChannel:
		return 400
	case service.ErrUnauthorized:
		return 403
	case service.ErrOrderNotFound, service.ErrPaymentNotFound:
		return 404
	case service.ErrInvalidTransition, service.ErrStatusChanged,
		service.ErrOrderNotPayable, service.ErrAlreadyPaid,
		service.ErrPaymentNotConfirmable, service.ErrPaymentNotCancellable,
		service.ErrNoOrdersCreated, service.ErrAlreadySubscribed,
		service.ErrRefundNotAllowed:
		return 409
	default:
		return 500
	}
}

// respondError 输出业务错误响应
func respondError(c *gin.Context, err error) {
	code := errorCode(err)
	message := err.Error()
	if code == 500 {
		message = constants.ErrInternalServer
	}
	c.JSON(http.StatusOK, gin.H{"code": code, "message": message})
}

// currentUserID 从上下文获取当前用户ID
func currentUserID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	userID, ok := v.(uint64)
	return userID, ok
}

// currentMerchantID 从上下文获取当前商家ID
func currentMerchantID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get("merchant_id")
	if !exists {
		return 0, false
	}
	merchantID, ok := v.(uint64)
	return merchantID, ok
}
