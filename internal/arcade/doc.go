// Package arcade はゲームポータルとハイスコアAPIを提供するサービスの内部実装を提供する。
//
// 静的なゲームアセットの配信、IDプロバイダーへの登録・ログインの中継、
// 認証済みユーザーのスコア登録とランキング取得を担当する。
// 認証情報の管理とトークン検証はIDプロバイダーに委譲し、このサービスは
// 検証結果のIDをもとにスコア台帳を読み書きするだけに留める。
package arcade
