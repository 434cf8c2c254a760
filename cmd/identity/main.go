// IDプロバイダーサービスのエントリポイント。
// アカウント作成、サインイン、トークンの発行と検証を担当する。
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/arcade/internal/identity"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := identity.LoadConfig()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	sqlDB, err := identity.OpenDB(ctx, cfg.DBPath)
	if err != nil {
		log.Fatalf("データベースの初期化に失敗: %v", err)
	}

	server, err := identity.NewServer(cfg, sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		log.Fatalf("IDプロバイダーサーバーの初期化に失敗: %v", err)
	}

	log.Printf("IDプロバイダーサービスを起動します: :%s", cfg.Port)
	runErr := server.Run(ctx)
	if err := server.Close(); err != nil {
		log.Printf("リソースの解放に失敗: %v", err)
	}
	if runErr != nil {
		log.Fatalf("IDプロバイダーサービスが異常終了しました: %v", runErr)
	}
	log.Printf("IDプロバイダーサービスを停止しました")
}
