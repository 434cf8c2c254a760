package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/arcade/pkg/auth"
)

// TokenVerifier はBearerトークンを検証する外部のIDプロバイダー。
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (auth.Identity, error)
}

// contextKeyIdentity はGinコンテキストに認証済みIDを格納するキー。
const contextKeyIdentity = "identity"

// unauthorizedMessage は認証失敗時のレスポンスメッセージ。
// 失敗の原因は呼び出し元に区別して返さない。
const unauthorizedMessage = "Unauthorized"

// Authenticate はBearerトークンをIDプロバイダーで検証するGinミドルウェアを返す。
// トークンが無い場合はIDプロバイダーを呼び出さずに401を返す。
// 検証結果はキャッシュせず、リクエストごとに検証する。
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorizedMessage})
			return
		}

		identity, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			log.Printf("トークン検証エラー: path=%s, error=%v", c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorizedMessage})
			return
		}

		c.Set(contextKeyIdentity, identity)
		c.Next()
	}
}

// GetIdentity はGinコンテキストから認証済みIDを取得する。
// Authenticateミドルウェアが事前に適用されている必要がある。
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(contextKeyIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok && identity.UserID != ""
}

// bearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
