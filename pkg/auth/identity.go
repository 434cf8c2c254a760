// Package auth はサービス間で共有する認証済みIDの型を提供する。
//
// HTTPミドルウェア、IDプロバイダーのクライアント、スコア台帳が
// 同じIDの表現を使うために切り出している。
package auth

// Identity はBearerトークンの検証で得られた認証済みのID。
// リクエストの処理中のみ存在し、永続化しない。
type Identity struct {
	// UserID はIDプロバイダーが発行したユーザーの識別子。
	UserID string
	// DisplayName はユーザーの表示名。未設定の場合は空文字列。
	DisplayName string
	// Email はユーザーのメールアドレス。
	Email string
}
