// Package ledger はハイスコア台帳を提供する。
//
// 台帳はゲームごと・ユーザーごとのスコアエントリを追記のみで保持する。
// スコアの並び順はスコアの降順で、同点の場合は登録順となる。
// スコアの値やゲーム名は検証しない。ゲーム名は完全一致（大文字小文字を区別）で扱う。
package ledger
