// Package config はsharedcalサーバーの設定を読み込む。
//
// 設定は次の順に上書きされる。
//
//  1. 組み込みの既定値
//  2. SHAREDCAL_CONFIGで指定したYAMLファイル
//  3. カレントディレクトリの.envファイル
//  4. 環境変数
package config
