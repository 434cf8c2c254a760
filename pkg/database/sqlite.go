package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"

	"github.com/nao1215/arcade/pkg/migration"
	_ "modernc.org/sqlite"
)

// MemoryPath はインメモリDBを表すパス。
const MemoryPath = ":memory:"

// OpenSQLite はSQLiteデータベースを開き、fsys直下のマイグレーションを適用する。
// ファイルDBはWALモードとビジータイムアウトを有効にして開く。
func OpenSQLite(ctx context.Context, path string, fsys fs.FS) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("データベースのパスが指定されていません")
	}

	dsn := path
	if path != MemoryPath {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if path == MemoryPath {
		// インメモリDBは接続ごとに別DBになるため1接続に固定する
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("データベースの疎通確認に失敗: %w", err)
	}

	if err := migration.Run(ctx, sqlDB, fsys, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return sqlDB, nil
}
