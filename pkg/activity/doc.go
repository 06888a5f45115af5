// Package activity はカレンダーの変更履歴（アクティビティ）を表す型を提供する。
//
// アカウント登録やイベントの作成・削除といった状態変更は、
// 変更と同じトランザクション内で追記専用のアクティビティとして記録される。
// アクティビティは不変であり、連番（Seq）の昇順で読み出される。
package activity
