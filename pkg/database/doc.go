// Package database はSQLiteデータベースの接続とスキーマ初期化を提供する。
//
// 各サービスは自身のマイグレーションを埋め込み、起動時にOpenSQLiteで
// 接続とマイグレーション適用をまとめて行う。
package database
