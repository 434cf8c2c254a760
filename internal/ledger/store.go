package ledger

import (
	"context"
	"database/sql"
	"fmt"

	ledgerdb "github.com/nao1215/arcade/internal/ledger/db"
	"github.com/nao1215/arcade/internal/ledger/migrations"
	"github.com/nao1215/arcade/pkg/database"
)

// Store はハイスコアとユーザープロフィールを保持するSQLiteストア。
type Store struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *ledgerdb.Queries
}

// Open はSQLiteデータベースを開き、マイグレーションを適用したStoreを返す。
// pathに ":memory:" を指定するとインメモリDBになる。
func Open(ctx context.Context, path string) (*Store, error) {
	sqlDB, err := database.OpenSQLite(ctx, path, migrations.FS)
	if err != nil {
		return nil, err
	}
	return &Store{db: sqlDB, queries: ledgerdb.New(sqlDB)}, nil
}

// Close はデータベース接続を閉じる。
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping はデータベースの疎通を確認する。
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Profile は登録時に保存するユーザープロフィール。
type Profile struct {
	// ID はIDプロバイダーが採番したユーザーID。
	ID string
	// DisplayName は登録時のユーザー名。
	DisplayName string
	// Email はメールアドレス。
	Email string
}

// SaveProfile はユーザープロフィールを保存する。
func (s *Store) SaveProfile(ctx context.Context, p Profile) error {
	if err := s.queries.CreateUser(ctx, ledgerdb.CreateUserParams{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
	}); err != nil {
		return fmt.Errorf("ユーザープロフィールの保存に失敗: %w", err)
	}
	return nil
}

// GameSummary はゲームごとのエントリ数。
type GameSummary struct {
	Game    string
	Entries int64
}

// Games はスコアが登録されているゲームとエントリ数を名前順で返す。
func (s *Store) Games(ctx context.Context) ([]GameSummary, error) {
	rows, err := s.queries.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("ゲーム一覧の取得に失敗: %w", err)
	}
	games := make([]GameSummary, 0, len(rows))
	for _, r := range rows {
		games = append(games, GameSummary{Game: r.Game, Entries: r.Entries})
	}
	return games, nil
}

// PurgeGame は指定ゲームのエントリをすべて削除し、削除件数を返す。
// 管理者用のメンテナンス操作であり、HTTP APIからは呼び出さない。
func (s *Store) PurgeGame(ctx context.Context, game string) (int64, error) {
	n, err := s.queries.DeleteHighscoresByGame(ctx, game)
	if err != nil {
		return 0, fmt.Errorf("スコアの削除に失敗: %w", err)
	}
	return n, nil
}
