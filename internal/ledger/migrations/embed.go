// Package migrations はスコア台帳のSQLiteスキーマを埋め込む。
package migrations

import "embed"

// FS はマイグレーションSQLファイル。
//
//go:embed *.up.sql
var FS embed.FS
