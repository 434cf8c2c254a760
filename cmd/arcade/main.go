// arcadeサービスのエントリポイント。
// ゲームの静的アセット配信、登録・ログインの中継、ハイスコアAPIを担当する。
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/arcade/internal/arcade"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := arcade.LoadConfig()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	app, err := arcade.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("arcadeサーバーの初期化に失敗: %v", err)
	}

	log.Printf("arcadeサービスを起動します: :%s", cfg.Port)
	runErr := app.Run(ctx)
	if err := app.Close(); err != nil {
		log.Printf("リソースの解放に失敗: %v", err)
	}
	if runErr != nil {
		log.Fatalf("arcadeサービスが異常終了しました: %v", runErr)
	}
	log.Printf("arcadeサービスを停止しました")
}
