// Package cli はsharedcal APIを操作するcalctlコマンドを実装する。
//
//	calctl [-server URL] [-token TOKEN] <command> [flags] [args]
//
// コマンド:
//
//	register -u USER -p PASS   アカウントを登録する
//	login    -u USER -p PASS   ログインしてトークンを表示する
//	list     [-from D] [-to D] イベント一覧を表示する
//	add      -title T -start D -end D [-desc S] [-color C] [-by USER]
//	delete   ID                イベントを削除する
//	day      DATE              指定日のイベントを表示する
//	month    YEAR MONTH        月表示を表示する
//	stats                      集計を表示する
//	activity [-since N] [-limit N]
//	ics                        iCalendar形式で出力する
//
// -serverと-tokenの既定値は環境変数SHAREDCAL_SERVERとSHAREDCAL_TOKENから読み込む。
package cli
