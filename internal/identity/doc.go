// Package identity はIDプロバイダーサービスの内部実装を提供する。
//
// アカウント作成、パスワードによるサインイン、IDトークンとカスタムトークンの
// 発行・検証を担当する。arcadeサービスとはHTTPでのみ通信し、
// 管理系のエンドポイントは管理者キーを持つ呼び出し元に限定する。
package identity
