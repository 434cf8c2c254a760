package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/arcade/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubVerifier は呼び出し回数を記録するテスト用のTokenVerifier。
type stubVerifier struct {
	calls    atomic.Int32
	identity auth.Identity
	err      error
	gotToken atomic.Value
}

func (v *stubVerifier) VerifyIDToken(_ context.Context, token string) (auth.Identity, error) {
	v.calls.Add(1)
	v.gotToken.Store(token)
	if v.err != nil {
		return auth.Identity{}, v.err
	}
	return v.identity, nil
}

// newAuthRouter はAuthenticateを適用したテスト用ルーターを生成する。
func newAuthRouter(verifier TokenVerifier) *gin.Engine {
	router := gin.New()
	router.Use(Authenticate(verifier))
	router.GET("/user-highscores", func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "IDが設定されていない"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID, "display_name": identity.DisplayName})
	})
	return router
}

// TestAuthenticate は認証ゲートを検証する。
func TestAuthenticate(t *testing.T) {
	t.Parallel()

	missing := []struct {
		name   string
		header string
	}{
		{name: "Authorizationヘッダーが無い場合", header: ""},
		{name: "Bearer形式でない場合", header: "Basic dXNlcjpwYXNz"},
		{name: "トークンが空の場合", header: "Bearer    "},
		{name: "小文字のbearerの場合", header: "bearer token-1"},
	}
	for _, tt := range missing {
		t.Run(tt.name+"はIDプロバイダーを呼ばずに401が返ること", func(t *testing.T) {
			t.Parallel()

			verifier := &stubVerifier{identity: auth.Identity{UserID: "uid-1"}}
			router := newAuthRouter(verifier)

			req := httptest.NewRequest(http.MethodGet, "/user-highscores", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
			}
			if got := verifier.calls.Load(); got != 0 {
				t.Errorf("VerifyIDToken呼び出し回数 = %d, want 0", got)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("レスポンスボディのパースに失敗: %v", err)
			}
			if body["error"] != "Unauthorized" {
				t.Errorf("error = %q, want %q", body["error"], "Unauthorized")
			}
		})
	}

	t.Run("検証に失敗した場合は401が返り原因は区別されないこと", func(t *testing.T) {
		t.Parallel()

		verifier := &stubVerifier{err: errors.New("token expired")}
		router := newAuthRouter(verifier)

		req := httptest.NewRequest(http.MethodGet, "/user-highscores", nil)
		req.Header.Set("Authorization", "Bearer expired-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
		if got := verifier.calls.Load(); got != 1 {
			t.Errorf("VerifyIDToken呼び出し回数 = %d, want 1", got)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["error"] != "Unauthorized" {
			t.Errorf("error = %q, want %q", body["error"], "Unauthorized")
		}
	})

	t.Run("検証に成功した場合はIDがコンテキストに設定されること", func(t *testing.T) {
		t.Parallel()

		verifier := &stubVerifier{identity: auth.Identity{UserID: "uid-1", DisplayName: "alice"}}
		router := newAuthRouter(verifier)

		req := httptest.NewRequest(http.MethodGet, "/user-highscores", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}
		if got := verifier.gotToken.Load(); got != "good-token" {
			t.Errorf("検証されたトークン = %v, want %q", got, "good-token")
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["user_id"] != "uid-1" || body["display_name"] != "alice" {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("リクエストごとに毎回検証されること", func(t *testing.T) {
		t.Parallel()

		verifier := &stubVerifier{identity: auth.Identity{UserID: "uid-1"}}
		router := newAuthRouter(verifier)

		for range 3 {
			req := httptest.NewRequest(http.MethodGet, "/user-highscores", nil)
			req.Header.Set("Authorization", "Bearer same-token")
			router.ServeHTTP(httptest.NewRecorder(), req)
		}
		if got := verifier.calls.Load(); got != 3 {
			t.Errorf("VerifyIDToken呼び出し回数 = %d, want 3", got)
		}
	})
}

// TestGetIdentity はGetIdentityを検証する。
func TestGetIdentity(t *testing.T) {
	t.Parallel()

	t.Run("未設定の場合はfalseが返ること", func(t *testing.T) {
		t.Parallel()

		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		if _, ok := GetIdentity(c); ok {
			t.Error("GetIdentity()がtrueを返した")
		}
	})

	t.Run("コンテキストに設定された値が取得できること", func(t *testing.T) {
		t.Parallel()

		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(contextKeyIdentity, auth.Identity{UserID: "uid-9", Email: "x@example.com"})
		identity, ok := GetIdentity(c)
		if !ok {
			t.Fatal("GetIdentity()がfalseを返した")
		}
		if identity.UserID != "uid-9" || identity.Email != "x@example.com" {
			t.Errorf("identity = %+v", identity)
		}
	})

	t.Run("ユーザーIDが空の場合はfalseが返ること", func(t *testing.T) {
		t.Parallel()

		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(contextKeyIdentity, auth.Identity{DisplayName: "nobody"})
		if _, ok := GetIdentity(c); ok {
			t.Error("GetIdentity()がtrueを返した")
		}
	})
}
