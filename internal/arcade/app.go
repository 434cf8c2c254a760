package arcade

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/nao1215/arcade/internal/ledger"
	"github.com/nao1215/arcade/pkg/authclient"
	"github.com/nao1215/arcade/pkg/config"
	"github.com/nao1215/arcade/pkg/httpclient"
	"github.com/nao1215/arcade/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App は設定から組み立てたarcadeサービスと、その解放が必要な依存を保持する。
type App struct {
	// Server はHTTPサーバー。
	Server *Server
	store   *ledger.Store
	limiter ratelimit.Limiter
}

// NewApp は設定からストア、IDプロバイダーのクライアント、レート制限を生成し、
// それらを注入したサーバーを組み立てる。
func NewApp(ctx context.Context, cfg Config) (*App, error) {
	creds, err := config.LoadAdminCredentials(cfg.AdminCredentialsFile)
	if err != nil {
		return nil, err
	}

	store, err := ledger.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	limiter, err := newLimiter(ctx, cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server, err := NewServer(cfg, Deps{
		Identity: authclient.New(cfg.IdentityURL, creds.AdminKey, httpclient.WithTimeout(cfg.IdentityTimeout)),
		Ledger:   ledger.New(store, cfg.ScoreListLimit),
		Profiles: store,
		Limiter:  limiter,
		Registry: registry,
	})
	if err != nil {
		_ = limiter.Close()
		_ = store.Close()
		return nil, err
	}

	return &App{Server: server, store: store, limiter: limiter}, nil
}

// Run はコンテキストが終了するまでサーバーを起動する。
func (a *App) Run(ctx context.Context) error {
	return a.Server.Run(ctx)
}

// Close はレート制限とストアを解放する。
func (a *App) Close() error {
	return errors.Join(a.limiter.Close(), a.store.Close())
}

// newLimiter はRedisが設定されていればRedis、そうでなければメモリのレート制限を返す。
func newLimiter(ctx context.Context, cfg Config) (ratelimit.Limiter, error) {
	if cfg.RedisAddr == "" {
		return ratelimit.NewMemory(), nil
	}
	limiter, err := ratelimit.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("レート制限の初期化に失敗: %w", err)
	}
	log.Printf("レート制限のカウンタをRedisで共有します: %s", cfg.RedisAddr)
	return limiter, nil
}
