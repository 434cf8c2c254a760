package arcade

import (
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/arcade/internal/ledger"
	"github.com/nao1215/arcade/pkg/authclient"
	"github.com/nao1215/arcade/pkg/httpclient"
	"github.com/nao1215/arcade/pkg/middleware"
)

// registerRequest はユーザー登録リクエストのボディ。JSONとフォームの両方を受け付ける。
type registerRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Username string `json:"username" form:"username"`
}

// handleRegister はIDプロバイダーにユーザーを作成し、カスタムトークンを返すハンドラを返す。
// 入力の検証はIDプロバイダーに任せ、失敗時はそのメッセージを返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}
		ctx := c.Request.Context()

		user, err := s.identity.CreateUser(ctx, authclient.CreateUserParams{
			Email:       req.Email,
			Password:    req.Password,
			DisplayName: req.Username,
		})
		if err != nil {
			log.Printf("ユーザー登録エラー: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": upstreamMessage(err)})
			return
		}

		if err := s.profiles.SaveProfile(ctx, ledger.Profile{
			ID:          user.ID,
			DisplayName: req.Username,
			Email:       user.Email,
		}); err != nil {
			log.Printf("プロフィール保存エラー: user_id=%s: %v", user.ID, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		customToken, err := s.identity.CreateCustomToken(ctx, user.ID)
		if err != nil {
			log.Printf("カスタムトークン発行エラー: user_id=%s: %v", user.ID, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": upstreamMessage(err)})
			return
		}

		log.Printf("ユーザーを登録しました: user_id=%s", user.ID)
		c.JSON(http.StatusOK, gin.H{
			"message":     "User registered",
			"customToken": customToken,
		})
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// handleLogin はIDプロバイダーでサインインし、IDトークンを返すハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

		idToken, err := s.identity.SignIn(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": upstreamMessage(err)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"idToken": idToken})
	}
}

// submitHighscoreRequest はスコア登録リクエストのボディ。
// スコアは有限の数値であれば範囲を問わない。ゲーム名は空文字列も受け付ける。
type submitHighscoreRequest struct {
	Game  string   `json:"game" form:"game"`
	Score *float64 `json:"score" form:"score" binding:"required"`
}

// entryResponse はハイスコアエントリのレスポンス。
type entryResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Game        string    `json:"game"`
	Score       float64   `json:"score"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// handleSubmitHighscore は認証済みユーザーのスコアを登録するハンドラを返す。
func (s *Server) handleSubmitHighscore() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.GetIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var req submitHighscoreRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scoreは数値で指定してください"})
			return
		}
		// InfやNaNはJSONで表現できず、保存するとランキングが返せなくなる
		if math.IsInf(*req.Score, 0) || math.IsNaN(*req.Score) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scoreは有限の数値で指定してください"})
			return
		}

		entry, err := s.ledger.Submit(c.Request.Context(), identity, req.Game, *req.Score)
		if err != nil {
			log.Printf("スコア登録エラー: user_id=%s: %v", identity.UserID, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.submitted.Inc()

		c.JSON(http.StatusOK, gin.H{
			"message": "High score saved",
			"entry":   toEntryResponse(entry),
		})
	}
}

// handleListHighscores はゲーム別ランキングを返すハンドラを返す。
// limitクエリで件数を減らせるが、設定された最大件数は超えない。
func (s *Server) handleListHighscores() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw, ok := c.GetQuery("limit"); ok {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limitは1以上の整数で指定してください"})
				return
			}
			limit = n
		}

		entries, err := s.ledger.List(c.Request.Context(), c.Param("game"), limit)
		if err != nil {
			log.Printf("ランキング取得エラー: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, toEntryResponses(entries))
	}
}

// handleListUserHighscores は認証済みユーザー自身のスコアを返すハンドラを返す。
func (s *Server) handleListUserHighscores() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.GetIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		game, ok := c.GetQuery("game")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "gameクエリパラメータが必要です"})
			return
		}

		entries, err := s.ledger.ListByUser(c.Request.Context(), identity, game)
		if err != nil {
			log.Printf("ユーザースコア取得エラー: user_id=%s: %v", identity.UserID, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, toEntryResponses(entries))
	}
}

// upstreamMessage はIDプロバイダーのエラーからクライアントに返すメッセージを取り出す。
func upstreamMessage(err error) string {
	if httpErr, ok := httpclient.AsHTTPError(err); ok && httpErr.Message != "" {
		return httpErr.Message
	}
	return err.Error()
}

func toEntryResponse(e ledger.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		Game:        e.Game,
		Score:       e.Score,
		DisplayName: e.DisplayName,
		CreatedAt:   e.CreatedAt,
	}
}

func toEntryResponses(entries []ledger.Entry) []entryResponse {
	resp := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toEntryResponse(e))
	}
	return resp
}
