// Package middleware はsharedcalのHTTP APIで使用するGinミドルウェアを提供する。
//
// ログイントークン（JWT）の発行と検証、登録・ログインのレート制限、
// パニックリカバリ、CORS設定を含む。
package middleware
