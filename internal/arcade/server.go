package arcade

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/arcade/internal/ledger"
	"github.com/nao1215/arcade/pkg/authclient"
	"github.com/nao1215/arcade/pkg/middleware"
	"github.com/nao1215/arcade/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 10 * time.Second

// IdentityProvider はarcadeが利用するIDプロバイダーの操作。
type IdentityProvider interface {
	middleware.TokenVerifier
	// CreateUser はユーザーを作成する。
	CreateUser(ctx context.Context, params authclient.CreateUserParams) (authclient.User, error)
	// SignIn はメールアドレスとパスワードでサインインし、IDトークンを返す。
	SignIn(ctx context.Context, email, password string) (string, error)
	// CreateCustomToken はユーザーのカスタムトークンを発行する。
	CreateCustomToken(ctx context.Context, userID string) (string, error)
}

// ProfileStore は登録時のユーザープロフィールを保存するストア。
type ProfileStore interface {
	SaveProfile(ctx context.Context, p ledger.Profile) error
	Ping(ctx context.Context) error
}

// Deps はServerが利用する依存。生成と解放は呼び出し元が行う。
type Deps struct {
	// Identity はIDプロバイダーのクライアント。
	Identity IdentityProvider
	// Ledger はハイスコア台帳。
	Ledger *ledger.Ledger
	// Profiles はユーザープロフィールのストア。
	Profiles ProfileStore
	// Limiter は登録・ログインのレート制限。nilの場合は制限しない。
	Limiter ratelimit.Limiter
	// Registry はメトリクスの登録先。
	Registry *prometheus.Registry
}

// Server はarcadeサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// httpServer はRunで起動するHTTPサーバー。
	httpServer *http.Server
	// cfg はサービス設定。
	cfg Config
	// identity はIDプロバイダーのクライアント。
	identity IdentityProvider
	// ledger はハイスコア台帳。
	ledger *ledger.Ledger
	// profiles はユーザープロフィールのストア。
	profiles ProfileStore
	// submitted は登録されたハイスコアの件数。
	submitted prometheus.Counter
}

// NewServer は新しいarcadeサーバーを生成する。
func NewServer(cfg Config, deps Deps) (*Server, error) {
	if deps.Identity == nil || deps.Ledger == nil || deps.Profiles == nil {
		return nil, errors.New("IDプロバイダー、スコア台帳、プロフィールストアは必須です")
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}

	metrics, err := middleware.NewMetrics(deps.Registry, "arcade")
	if err != nil {
		return nil, err
	}
	submitted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arcade",
		Name:      "highscores_submitted_total",
		Help:      "登録されたハイスコアの件数",
	})
	if err := deps.Registry.Register(submitted); err != nil {
		return nil, fmt.Errorf("メトリクスの登録に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(metrics.Handler())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router:    router,
		cfg:       cfg,
		identity:  deps.Identity,
		ledger:    deps.Ledger,
		profiles:  deps.Profiles,
		submitted: submitted,
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.setupRoutes(deps)

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

// setupRoutes はルーティングを設定する。
func (s *Server) setupRoutes(deps Deps) {
	// 登録・ログインは総当たりを防ぐためレート制限する
	limited := s.router.Group("")
	limited.Use(middleware.RateLimit(deps.Limiter, s.cfg.AuthRateLimit, s.cfg.AuthRateWindow))
	{
		limited.POST("/register", s.handleRegister())
		if s.cfg.ServerSideLogin {
			limited.POST("/login", s.handleLogin())
		}
	}

	// 認証必須のエンドポイント
	authed := s.router.Group("")
	authed.Use(middleware.Authenticate(s.identity))
	{
		authed.POST("/highscore", s.handleSubmitHighscore())
		authed.GET("/user-highscores", s.handleListUserHighscores())
	}

	s.router.GET("/highscores/:game", s.handleListHighscores())

	// クライアント設定（旧パスも維持する）
	s.router.GET("/client-config", s.handleClientConfig())
	s.router.GET("/firebase-config", s.handleClientConfig())

	// ゲームごとの静的アセット
	for _, game := range s.cfg.Games {
		prefix := "/" + game
		s.router.GET(prefix, func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, prefix+"/")
		})
		s.router.StaticFS(prefix, gin.Dir(filepath.Join(s.cfg.GamesDir, game), false))
	}

	// ランディングページ
	s.router.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(s.cfg.PublicDir, "index.html"))
	})

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		if err := s.profiles.Ping(c.Request.Context()); err != nil {
			log.Printf("ヘルスチェックエラー: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "service": "arcade"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "arcade"})
	})

	// メトリクス
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	// 上記以外は共通の静的ファイルとして配信する
	s.router.NoRoute(s.handleStatic())
}

// handleStatic は共通の静的ファイルを配信するハンドラを返す。
// ファイルが無い場合はファイルサーバーが404を返す。
func (s *Server) handleStatic() gin.HandlerFunc {
	fileServer := http.FileServer(gin.Dir(s.cfg.PublicDir, false))
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "見つかりません"})
			return
		}
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}

// handleClientConfig はブラウザ向けの公開設定を返すハンドラを返す。
func (s *Server) handleClientConfig() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, s.cfg.Client)
	}
}
