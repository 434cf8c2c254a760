package identity

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identitydb "github.com/nao1215/arcade/internal/identity/db"
	"github.com/nao1215/arcade/internal/identity/migrations"
	"github.com/nao1215/arcade/pkg/authclient"
	"github.com/nao1215/arcade/pkg/database"
	"github.com/nao1215/arcade/pkg/middleware"
	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 10 * time.Second

// minPasswordLength はパスワードの最小文字数。
const minPasswordLength = 6

// ErrEmailTaken はメールアドレスが既に登録済みであることを表す。
var ErrEmailTaken = errors.New("このメールアドレスは既に使用されています")

// Server はIDプロバイダーサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// httpServer はRunで起動するHTTPサーバー。
	httpServer *http.Server
	// db はSQLiteデータベース接続。
	db *sql.DB
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *identitydb.Queries
	// tokens はトークンの発行・検証を行う。
	tokens *tokenIssuer
	// adminKey は管理系エンドポイントの呼び出しに必要なキー。
	adminKey string
	// bcryptCost はパスワードハッシュのコスト。
	bcryptCost int
}

// OpenDB はアカウント用のSQLiteデータベースを開き、スキーマを適用する。
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	return database.OpenSQLite(ctx, path, migrations.FS)
}

// NewServer は新しいIDプロバイダーサーバーを生成する。
// sqlDBはOpenDBで開いたものを渡す。所有権はServerに移り、Closeで閉じられる。
func NewServer(cfg Config, sqlDB *sql.DB) (*Server, error) {
	if cfg.AdminKey == "" {
		return nil, errors.New("管理者キーが設定されていません")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWTの秘密鍵が設定されていません")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:     router,
		db:         sqlDB,
		queries:    identitydb.New(sqlDB),
		tokens:     newTokenIssuer(cfg.JWTSecret, cfg.Issuer, cfg.TokenTTL),
		adminKey:   cfg.AdminKey,
		bcryptCost: cfg.BcryptCost,
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.setupRoutes()

	return s, nil
}

// Handler はHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はコンテキストが終了するまでHTTPサーバーを起動する。
// コンテキスト終了時はグレースフルシャットダウンを行う。
func (s *Server) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTPサーバーの停止に失敗: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTPサーバーの起動に失敗: %w", err)
	}
}

// Close はデータベース接続を閉じる。
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	{
		// サインインは利用者が直接呼び出せる
		api.POST("/sessions", s.handleCreateSession())

		admin := api.Group("")
		admin.Use(s.requireAdminKey())
		admin.POST("/accounts", s.handleCreateAccount())
		admin.POST("/tokens/verify", s.handleVerifyToken())
		admin.POST("/tokens/custom", s.handleCreateCustomToken())
	}

	s.router.GET("/health", func(c *gin.Context) {
		if err := s.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "service": "identity"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "identity"})
	})
}

// requireAdminKey は管理者キーを定数時間で照合するミドルウェアを返す。
func (s *Server) requireAdminKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(authclient.AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.adminKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "管理者キーが不正です"})
			return
		}
		c.Next()
	}
}

// createAccountRequest はアカウント作成リクエストのボディ。
type createAccountRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

// handleCreateAccount はアカウントを作成するハンドラを返す。
func (s *Server) handleCreateAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "有効なメールアドレスとパスワードが必要です"})
			return
		}
		if len([]rune(req.Password)) < minPasswordLength {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("パスワードは%d文字以上で指定してください", minPasswordLength),
			})
			return
		}

		account, err := s.createAccount(c.Request.Context(), req)
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": ErrEmailTaken.Error()})
			return
		}
		if err != nil {
			log.Printf("アカウント作成エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "アカウントの作成に失敗しました"})
			return
		}

		log.Printf("アカウントを作成しました: id=%s", account.ID)
		c.JSON(http.StatusCreated, gin.H{
			"id":           account.ID,
			"email":        account.Email,
			"display_name": account.DisplayName,
		})
	}
}

// createAccount はパスワードをハッシュ化してアカウントを保存する。
func (s *Server) createAccount(ctx context.Context, req createAccountRequest) (identitydb.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return identitydb.Account{}, fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}

	account, err := s.queries.CreateAccount(ctx, identitydb.CreateAccountParams{
		ID:           uuid.New().String(),
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(req.DisplayName),
	})
	if isUniqueViolation(err) {
		return identitydb.Account{}, ErrEmailTaken
	}
	if err != nil {
		return identitydb.Account{}, fmt.Errorf("アカウントの保存に失敗: %w", err)
	}
	return account, nil
}

// createSessionRequest はサインインリクエストのボディ。
// メールアドレスとパスワード、またはカスタムトークンのどちらかを指定する。
type createSessionRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CustomToken string `json:"custom_token"`
}

// handleCreateSession はサインインしてIDトークンを発行するハンドラを返す。
func (s *Server) handleCreateSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

		var (
			account identitydb.Account
			err     error
		)
		switch {
		case req.CustomToken != "":
			account, err = s.accountFromCustomToken(c.Request.Context(), req.CustomToken)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidToken.Error()})
				return
			}
		case req.Email != "" && req.Password != "":
			account, err = s.authenticatePassword(c.Request.Context(), req.Email, req.Password)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "メールアドレスまたはパスワードが正しくありません"})
				return
			}
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "メールアドレスとパスワード、またはカスタムトークンが必要です"})
			return
		}

		idToken, err := s.tokens.issue(account, tokenUseID)
		if err != nil {
			log.Printf("IDトークン発行エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの発行に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id_token":   idToken,
			"expires_in": int(s.tokens.ttl.Seconds()),
		})
	}
}

// authenticatePassword はメールアドレスとパスワードを照合する。
func (s *Server) authenticatePassword(ctx context.Context, email, password string) (identitydb.Account, error) {
	account, err := s.queries.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return identitydb.Account{}, fmt.Errorf("アカウントの取得に失敗: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return identitydb.Account{}, fmt.Errorf("パスワードの照合に失敗: %w", err)
	}
	return account, nil
}

// accountFromCustomToken はカスタムトークンを検証し、対象のアカウントを返す。
func (s *Server) accountFromCustomToken(ctx context.Context, token string) (identitydb.Account, error) {
	claims, err := s.tokens.parse(token, tokenUseCustom)
	if err != nil {
		return identitydb.Account{}, err
	}
	account, err := s.queries.GetAccountByID(ctx, claims.Subject)
	if err != nil {
		return identitydb.Account{}, fmt.Errorf("アカウントの取得に失敗: %w", err)
	}
	return account, nil
}

// handleVerifyToken はIDトークンを検証し、アカウント情報を返すハンドラを返す。
func (s *Server) handleVerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "トークンが必要です"})
			return
		}

		claims, err := s.tokens.parse(req.Token, tokenUseID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidToken.Error()})
			return
		}
		// 削除済みアカウントのトークンは受け付けない
		account, err := s.queries.GetAccountByID(c.Request.Context(), claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidToken.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user_id":      account.ID,
			"display_name": account.DisplayName,
			"email":        account.Email,
		})
	}
}

// handleCreateCustomToken はアカウントのカスタムトークンを発行するハンドラを返す。
func (s *Server) handleCreateCustomToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID string `json:"user_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ユーザーIDが必要です"})
			return
		}

		account, err := s.queries.GetAccountByID(c.Request.Context(), req.UserID)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		if err != nil {
			log.Printf("アカウント取得エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの取得に失敗しました"})
			return
		}

		token, err := s.tokens.issue(account, tokenUseCustom)
		if err != nil {
			log.Printf("カスタムトークン発行エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの発行に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"custom_token": token})
	}
}

// normalizeEmail はメールアドレスを比較用に正規化する。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isUniqueViolation はerrが一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
