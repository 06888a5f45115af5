// Package store はカレンダーのアカウントとイベントを永続化するストア層を提供する。
//
// 永続化には組み込みSQLite（modernc.org/sqlite）を使用する。
// アカウントとイベントはそれぞれ独立したコレクション（テーブル）として保持され、
// ストアごとに1つの読み書きロックで更新処理を直列化する。
// 更新のたびにアクティビティ（変更履歴）を同じトランザクション内で追記する。
//
// 主な機能:
//   - UserStore: ユーザー名で一意なアカウントの登録と認証
//   - EventStore: イベントの作成・一覧・期間検索・削除
//   - ActivityLog: 変更履歴の連番順の読み出し
package store
