package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/nao1215/arcade/internal/ledger"
	"github.com/nao1215/arcade/pkg/database"
	"github.com/spf13/cobra"
)

// newScoresCommand はスコア管理のサブコマンドを生成する。
func newScoresCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "ハイスコアの参照と削除",
	}
	cmd.AddCommand(newGamesCommand(opts))
	cmd.AddCommand(newTopCommand(opts))
	cmd.AddCommand(newPurgeCommand(opts))
	return cmd
}

// newGamesCommand はスコアが登録されているゲームを一覧するコマンドを生成する。
func newGamesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "スコアが登録されているゲームとエントリ数を表示する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openExistingStore(cmd.Context(), opts.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			games, err := store.Games(cmd.Context())
			if err != nil {
				return err
			}
			return writeGames(cmd.OutOrStdout(), opts.Format, games)
		},
	}
}

// newTopCommand はゲーム別ランキングを表示するコマンドを生成する。
func newTopCommand(opts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "top <game>",
		Short: "ゲーム別ランキングを表示する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return errors.New("--limitは0以上で指定してください")
			}
			store, err := openExistingStore(cmd.Context(), opts.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := ledger.New(store, 0).List(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return writeEntries(cmd.OutOrStdout(), opts.Format, entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "表示する件数（0は全件）")
	return cmd
}

// newPurgeCommand は指定ゲームのスコアをすべて削除するコマンドを生成する。
func newPurgeCommand(opts *RootOptions) *cobra.Command {
	var (
		game string
		yes  bool
	)
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "指定ゲームのスコアをすべて削除する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("%s のスコアを削除するには --yes を指定してください", game)
			}
			store, err := openExistingStore(cmd.Context(), opts.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.PurgeGame(cmd.Context(), game)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{"game": game, "deleted": n})
			}
			if n == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s のスコアはありません\n", game)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s のスコアを%d件削除しました\n", game, n)
			return nil
		},
	}
	cmd.Flags().StringVar(&game, "game", "", "削除するゲーム名（大文字小文字を区別する）")
	cmd.Flags().BoolVar(&yes, "yes", false, "確認なしで削除する")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

// openExistingStore は既存のスコア台帳を開く。
// 台帳ファイルが無い場合は新しく作らずにエラーを返す。
func openExistingStore(ctx context.Context, path string) (*ledger.Store, error) {
	if path != database.MemoryPath {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("スコア台帳を開けません: %s: %w", path, err)
		}
	}
	return ledger.Open(ctx, path)
}

func writeGames(w io.Writer, format string, games []ledger.GameSummary) error {
	if format == "json" {
		type row struct {
			Game    string `json:"game"`
			Entries int64  `json:"entries"`
		}
		rows := make([]row, 0, len(games))
		for _, g := range games {
			rows = append(rows, row{Game: g.Game, Entries: g.Entries})
		}
		return json.NewEncoder(w).Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GAME\tENTRIES")
	for _, g := range games {
		fmt.Fprintf(tw, "%s\t%d\n", g.Game, g.Entries)
	}
	return tw.Flush()
}

func writeEntries(w io.Writer, format string, entries []ledger.Entry) error {
	if format == "json" {
		type row struct {
			ID          string  `json:"id"`
			UserID      string  `json:"user_id"`
			DisplayName string  `json:"display_name"`
			Score       float64 `json:"score"`
			CreatedAt   string  `json:"created_at"`
		}
		rows := make([]row, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, row{
				ID:          e.ID,
				UserID:      e.UserID,
				DisplayName: e.DisplayName,
				Score:       e.Score,
				CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
			})
		}
		return json.NewEncoder(w).Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tNAME\tUSER\tCREATED")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%g\t%s\t%s\t%s\n", i+1, e.Score, e.DisplayName, e.UserID, e.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
