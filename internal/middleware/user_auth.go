package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"auroramall/internal/constants"
)

// UserAuth 用户认证中间件
// 登录态以Token为键存放在Redis中，值为用户ID
func UserAuth(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrUnauthorized})
			c.Abort()
			return
		}

		val, err := redisClient.Get(context.Background(), "auth:token:"+token).Result()
		if err == redis.Nil || val == "" {
			c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrInvalidToken})
			c.Abort()
			return
		}
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"code": 500, "message": constants.ErrInternalServer})
			c.Abort()
			return
		}

		userID, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"code": 401, "message": constants.ErrInvalidToken})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
