// Package date は時刻を持たない暦日（年・月・日）を表す型を提供する。
//
// イベントの開始日・終了日は "2006-01-02" 形式の文字列でやり取りされ、
// 日単位で比較される。タイムゾーンや時刻成分による誤差を避けるため、
// time.Time ではなく本パッケージの Date を使用する。
package date
