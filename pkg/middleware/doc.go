// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// Bearerトークンによる認証ゲート、パニックリカバリ、CORS設定、
// Prometheusメトリクス、レート制限など、各サービスで共通して使用する
// ミドルウェアを含む。
package middleware
