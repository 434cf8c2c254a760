package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// AdminCredentials はIDプロバイダーの管理者操作に使うサーバー側の認証情報。
// クライアントへ公開する設定には決して含めない。
type AdminCredentials struct {
	// AdminKey はIDプロバイダーの管理系エンドポイントに送るキー。
	AdminKey string `mapstructure:"admin_key"`
}

// LoadAdminCredentials は認証情報ファイルを読み込む。
// ファイル形式は拡張子（.json / .yaml / .toml）から判定する。
func LoadAdminCredentials(path string) (AdminCredentials, error) {
	if strings.TrimSpace(path) == "" {
		return AdminCredentials{}, errors.New("認証情報ファイルのパスが指定されていません")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return AdminCredentials{}, fmt.Errorf("認証情報ファイルの読み込みに失敗: %w", err)
	}

	var creds AdminCredentials
	if err := v.Unmarshal(&creds); err != nil {
		return AdminCredentials{}, fmt.Errorf("認証情報ファイルのデコードに失敗: %w", err)
	}
	if creds.AdminKey == "" {
		return AdminCredentials{}, fmt.Errorf("認証情報ファイルにadmin_keyがありません: %s", path)
	}
	return creds, nil
}
