// Package migrations はIDプロバイダーのSQLiteスキーマを埋め込む。
package migrations

import "embed"

// FS はマイグレーションSQLファイル。
//
//go:embed *.up.sql
var FS embed.FS
