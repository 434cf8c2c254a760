// arcadectlのエントリポイント。
// スコア台帳のゲーム一覧、ランキング表示、ゲーム単位の削除を行う。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/nao1215/arcade/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	defaultDB := os.Getenv("ARCADE_DB_PATH")
	if defaultDB == "" {
		defaultDB = "/data/arcade.db"
	}

	if err := cli.NewRootCommand(defaultDB).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
