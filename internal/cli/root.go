// Package cli はスコア台帳を管理するarcadectlコマンドを提供する。
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions は全コマンド共通のフラグ。
type RootOptions struct {
	// DBPath はスコア台帳のSQLiteファイルのパス。
	DBPath string
	// Format は出力形式（text または json）。
	Format string
}

// validFormats は指定可能な出力形式。
var validFormats = []string{"text", "json"}

// NewRootCommand はarcadectlのルートコマンドを生成する。
// defaultDBPathは --db フラグのデフォルト値。
func NewRootCommand(defaultDBPath string) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "arcadectl",
		Short: "arcadeのスコア台帳を管理する",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("出力形式 %q は指定できません: %v のいずれかを指定してください", opts.Format, validFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", defaultDBPath, "スコア台帳のSQLiteファイル")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "出力形式 (text|json)")

	cmd.AddCommand(newScoresCommand(opts))

	return cmd
}
