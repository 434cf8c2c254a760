// Package authclient はIDプロバイダーサービスのHTTPクライアントを提供する。
//
// ユーザー作成、パスワードによるサインイン、IDトークンの検証、
// カスタムトークンの発行を、IDプロバイダーのAPI越しに行う。
// 管理者操作には X-Admin-Key ヘッダーで管理者キーを付与する。
package authclient
