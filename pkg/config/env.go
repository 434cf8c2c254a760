// Package config は環境変数と認証情報ファイルからサービス設定を読み込む共通処理を提供する。
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Parse は環境変数をtargetの構造体タグ（env / envDefault）に従って読み込む。
func Parse(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}
	return nil
}

// ParseWithEnvironment は指定されたキーと値の組から設定を読み込む。
// プロセス環境を汚さずに設定を検証したいテストで使用する。
func ParseWithEnvironment(target any, environment map[string]string) error {
	if err := env.ParseWithOptions(target, env.Options{Environment: environment}); err != nil {
		return fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}
	return nil
}
