// Package calendar は共有カレンダーのHTTP APIサーバーを提供する。
//
// アカウントの登録とログイン、イベントの作成・一覧・削除、
// 日ごと・月ごとのカレンダー表示、集計、変更履歴、iCalendar出力を
// /api/v1 配下のJSON APIとして公開する。
package calendar
