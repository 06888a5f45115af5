// Package query はイベント一覧からカレンダー表示用のビューを計算する。
//
// 状態を持たない純粋な関数のみで構成され、EventStoreから取得した
// イベント一覧に対して日ごとの所属判定、開始日順の並べ替え、
// 集計、月表示のグリッド生成を行う。
package query
