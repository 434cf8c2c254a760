package identity

import (
	"time"

	"github.com/nao1215/arcade/pkg/config"
)

// Config はIDプロバイダーサービスの設定。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string `env:"PORT" envDefault:"8090"`
	// AdminKey は管理系エンドポイントの呼び出しに必要なキー。
	AdminKey string `env:"IDENTITY_ADMIN_KEY,required"`
	// JWTSecret はトークン署名用の秘密鍵。
	JWTSecret string `env:"IDENTITY_JWT_SECRET,required"`
	// DBPath はアカウントを保存するSQLiteファイルのパス。
	DBPath string `env:"IDENTITY_DB_PATH" envDefault:"/data/identity.db"`
	// Issuer はトークンのissクレーム。
	Issuer string `env:"IDENTITY_ISSUER" envDefault:"arcade-identity"`
	// TokenTTL はIDトークンとカスタムトークンの有効期間。
	TokenTTL time.Duration `env:"IDENTITY_TOKEN_TTL" envDefault:"1h"`
	// BcryptCost はパスワードハッシュのコスト。
	BcryptCost int `env:"IDENTITY_BCRYPT_COST" envDefault:"10"`
}

// LoadConfig は環境変数から設定を読み込む。
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
