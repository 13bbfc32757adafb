package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auroramall/internal/constants"
	"auroramall/internal/service"
)

// MerchantAuth 商家认证中间件，需在UserAuth之后使用
// 根据当前用户查询其名下的商家，并将商家ID存入上下文
func MerchantAuth(merchantRepo service.MerchantRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
			c.Abort()
			return
		}

		merchant, err := merchantRepo.GetByUserID(userID.(uint64))
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"code": 500, "message": constants.ErrInternalServer})
			c.Abort()
			return
		}
		if merchant == nil || merchant.Status != 1 {
			c.JSON(http.StatusOK, gin.H{"code": 403, "message": constants.ErrInsufficientPermission})
			c.Abort()
			return
		}

		c.Set("merchant_id", merchant.MerchantID)
		c.Next()
	}
}
