package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/arcade/pkg/ratelimit"
)

// RateLimit はクライアントIPとルートごとにリクエスト数を制限するGinミドルウェアを返す。
// 登録やログインなど、認証情報を総当たりされうるエンドポイントに適用する。
func RateLimit(limiter ratelimit.Limiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP() + ":" + c.FullPath()
		d := limiter.Allow(c.Request.Context(), key, limit, window)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		remaining := max(limit-d.Count, 0)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !d.Allowed {
			retryAfter := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
			c.Header("Retry-After", strconv.Itoa(max(retryAfter, 1)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "リクエストが多すぎます。しばらくしてから再試行してください",
			})
			return
		}
		c.Next()
	}
}
