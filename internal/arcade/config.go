package arcade

import (
	"time"

	"github.com/nao1215/arcade/pkg/config"
)

// Config はarcadeサービスの設定。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string `env:"PORT" envDefault:"3000"`
	// IdentityURL はIDプロバイダーのベースURL。
	IdentityURL string `env:"ARCADE_IDENTITY_URL" envDefault:"http://localhost:8090"`
	// IdentityTimeout はIDプロバイダー呼び出しのタイムアウト。
	IdentityTimeout time.Duration `env:"ARCADE_IDENTITY_TIMEOUT" envDefault:"10s"`
	// AdminCredentialsFile はIDプロバイダーの管理者キーを含むサーバー側の認証情報ファイル。
	AdminCredentialsFile string `env:"ARCADE_ADMIN_CREDENTIALS_FILE" envDefault:"/run/secrets/arcade-admin.json"`
	// DBPath はスコア台帳のSQLiteファイルのパス。
	DBPath string `env:"ARCADE_DB_PATH" envDefault:"/data/arcade.db"`
	// PublicDir はランディングページなど共通の静的ファイルのディレクトリ。
	PublicDir string `env:"ARCADE_PUBLIC_DIR" envDefault:"public"`
	// GamesDir は各ゲームのディレクトリを含む親ディレクトリ。
	GamesDir string `env:"ARCADE_GAMES_DIR" envDefault:"games"`
	// Games は /<ゲーム名>/ で配信するゲーム。GamesDir直下のディレクトリ名と一致させる。
	Games []string `env:"ARCADE_GAMES" envDefault:"Colors,Echo,Meteor,Rocket"`
	// ScoreListLimit はゲーム別ランキングで返す最大件数。0は無制限。
	ScoreListLimit int `env:"ARCADE_SCORE_LIST_LIMIT" envDefault:"10"`
	// ServerSideLogin がtrueの場合、POST /login でサーバー側のログインを提供する。
	ServerSideLogin bool `env:"ARCADE_SERVER_SIDE_LOGIN" envDefault:"true"`
	// AllowedOrigins はCORSで許可するオリジン。空の場合は同一オリジンのみ、"*" はすべてのオリジン。
	AllowedOrigins []string `env:"ARCADE_ALLOWED_ORIGINS"`
	// AuthRateLimit は登録・ログインでクライアントIPごとに許可するリクエスト数。0は無制限。
	AuthRateLimit int `env:"ARCADE_AUTH_RATE_LIMIT" envDefault:"10"`
	// AuthRateWindow はAuthRateLimitを数える時間幅。
	AuthRateWindow time.Duration `env:"ARCADE_AUTH_RATE_WINDOW" envDefault:"1m"`
	// RedisAddr が設定されている場合、レート制限のカウンタをRedisで共有する。
	RedisAddr string `env:"REDIS_ADDR"`
	// RedisPassword はRedisのパスワード。
	RedisPassword string `env:"REDIS_PASSWORD"`
	// RedisDB はRedisのDB番号。
	RedisDB int `env:"REDIS_DB" envDefault:"0"`
	// Client はブラウザに公開するクライアント設定。
	Client ClientConfig `envPrefix:"ARCADE_CLIENT_"`
}

// ClientConfig はブラウザのゲームが使用する公開設定。
// 秘密情報を含めてはならない。
type ClientConfig struct {
	APIKey            string `env:"API_KEY" json:"apiKey"`
	AuthDomain        string `env:"AUTH_DOMAIN" json:"authDomain"`
	ProjectID         string `env:"PROJECT_ID" json:"projectId"`
	StorageBucket     string `env:"STORAGE_BUCKET" json:"storageBucket"`
	MessagingSenderID string `env:"MESSAGING_SENDER_ID" json:"messagingSenderId"`
	AppID             string `env:"APP_ID" json:"appId"`
	// SignInURL はクライアント側でログインする構成で使うIDプロバイダーのサインインURL。
	SignInURL string `env:"SIGN_IN_URL" json:"signInUrl,omitempty"`
}

// LoadConfig は環境変数から設定を読み込む。
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
