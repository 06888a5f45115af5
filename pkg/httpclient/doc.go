// Package httpclient はsharedcal APIを呼び出すHTTPクライアントを提供する。
//
// calctlコマンドが使用する。JSONのリクエスト・レスポンスの変換、
// ログイントークンの付与、エラーレスポンスの解釈を共通化する。
package httpclient
