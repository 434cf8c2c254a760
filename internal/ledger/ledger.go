package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	ledgerdb "github.com/nao1215/arcade/internal/ledger/db"
	"github.com/nao1215/arcade/pkg/auth"
)

// AnonymousName は表示名を持たないユーザーのエントリに使う表示名。
const AnonymousName = "Anonymous"

// unbounded はSQLiteのLIMITで件数を制限しないことを表す値。
const unbounded = -1

// Entry はハイスコア台帳の1エントリ。作成後は変更しない。
type Entry struct {
	// ID はエントリの一意識別子。
	ID string
	// UserID はスコアを登録したユーザーのID。
	UserID string
	// Game はゲーム名。
	Game string
	// Score はクライアントが送信したスコア。
	Score float64
	// DisplayName は登録時点の表示名のコピー。後から表示名が変わっても更新しない。
	DisplayName string
	// CreatedAt はストアが採番した登録日時。
	CreatedAt time.Time
}

// Ledger はハイスコアの登録と取得を行う。
type Ledger struct {
	store *Store
	// maxLimit はゲーム別ランキングで返す最大件数。0は無制限。
	maxLimit int
}

// New はLedgerを生成する。
// maxLimitはゲーム別ランキングで返す最大件数で、0の場合は無制限となる。
func New(store *Store, maxLimit int) *Ledger {
	return &Ledger{store: store, maxLimit: max(maxLimit, 0)}
}

// Submit は認証済みユーザーのスコアを1件追記する。
// 同じ内容を2回登録した場合も別のエントリになる。
func (l *Ledger) Submit(ctx context.Context, identity auth.Identity, game string, score float64) (Entry, error) {
	name := identity.DisplayName
	if name == "" {
		name = AnonymousName
	}

	row, err := l.store.queries.InsertHighscore(ctx, ledgerdb.InsertHighscoreParams{
		ID:          uuid.New().String(),
		UserID:      identity.UserID,
		Game:        game,
		Score:       score,
		DisplayName: name,
	})
	if err != nil {
		return Entry{}, fmt.Errorf("ハイスコアの保存に失敗: %w", err)
	}
	return toEntry(row), nil
}

// List は指定ゲームのスコアをスコアの降順で返す。
// limitが0以下または最大件数を超える場合は最大件数に丸める。
func (l *Ledger) List(ctx context.Context, game string, limit int) ([]Entry, error) {
	rows, err := l.store.queries.ListHighscoresByGame(ctx, ledgerdb.ListHighscoresByGameParams{
		Game:  game,
		Limit: int64(l.effectiveLimit(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("ハイスコア一覧の取得に失敗: %w", err)
	}
	return toEntries(rows), nil
}

// ListByUser は認証済みユーザー自身の指定ゲームのスコアをスコアの降順で返す。
func (l *Ledger) ListByUser(ctx context.Context, identity auth.Identity, game string) ([]Entry, error) {
	rows, err := l.store.queries.ListHighscoresByUserAndGame(ctx, ledgerdb.ListHighscoresByUserAndGameParams{
		UserID: identity.UserID,
		Game:   game,
	})
	if err != nil {
		return nil, fmt.Errorf("ユーザーのハイスコア一覧の取得に失敗: %w", err)
	}
	return toEntries(rows), nil
}

// effectiveLimit はクエリに渡す件数を決める。
func (l *Ledger) effectiveLimit(requested int) int {
	switch {
	case l.maxLimit == 0 && requested <= 0:
		return unbounded
	case l.maxLimit == 0:
		return requested
	case requested <= 0 || requested > l.maxLimit:
		return l.maxLimit
	default:
		return requested
	}
}

func toEntry(h ledgerdb.Highscore) Entry {
	return Entry{
		ID:          h.ID,
		UserID:      h.UserID,
		Game:        h.Game,
		Score:       h.Score,
		DisplayName: h.DisplayName,
		CreatedAt:   time.UnixMilli(h.CreatedAt).UTC(),
	}
}

func toEntries(rows []ledgerdb.Highscore) []Entry {
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, toEntry(r))
	}
	return entries
}
