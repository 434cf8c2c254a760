// Package httpclient はサービス間のHTTP通信を行うクライアントを提供する。
//
// アーケードサーバーがIDプロバイダーのAPIを呼び出す際に使用する。
// 2xx以外の応答は接続先のエラーメッセージを保持したHTTPErrorとして返す。
package httpclient
