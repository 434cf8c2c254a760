package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"
)

var testMigrations = fstest.MapFS{
	"000001_create_items.up.sql": {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
}

// TestOpenSQLite はSQLiteの接続とマイグレーション適用を検証する。
func TestOpenSQLite(t *testing.T) {
	t.Parallel()

	t.Run("インメモリDBにマイグレーションが適用されること", func(t *testing.T) {
		t.Parallel()

		db, err := OpenSQLite(t.Context(), MemoryPath, testMigrations)
		if err != nil {
			t.Fatalf("OpenSQLite()でエラーが発生: %v", err)
		}
		defer db.Close()

		if _, err := db.Exec("INSERT INTO items (id) VALUES ('1')"); err != nil {
			t.Errorf("itemsテーブルが作成されていない: %v", err)
		}
		// 1接続に固定しているため、別のクエリからも同じDBが見えること
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count); err != nil {
			t.Fatalf("件数の取得に失敗: %v", err)
		}
		if count != 1 {
			t.Errorf("件数 = %d, want 1", count)
		}
	})

	t.Run("ファイルDBがWALモードで開かれること", func(t *testing.T) {
		t.Parallel()

		db, err := OpenSQLite(t.Context(), filepath.Join(t.TempDir(), "test.db"), testMigrations)
		if err != nil {
			t.Fatalf("OpenSQLite()でエラーが発生: %v", err)
		}
		defer db.Close()

		var mode string
		if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("journal_modeの取得に失敗: %v", err)
		}
		if mode != "wal" {
			t.Errorf("journal_mode = %q, want %q", mode, "wal")
		}
	})

	t.Run("空のパスはエラーになること", func(t *testing.T) {
		t.Parallel()

		if _, err := OpenSQLite(t.Context(), "", testMigrations); err == nil {
			t.Fatal("空のパスでエラーが返るべき")
		}
	})

	t.Run("マイグレーションが不正な場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		broken := fstest.MapFS{"000001_broken.up.sql": {Data: []byte("CREATE TABLEZ nope;")}}
		if _, err := OpenSQLite(t.Context(), MemoryPath, broken); err == nil {
			t.Fatal("不正なマイグレーションでエラーが返るべき")
		}
	})
}
