// 共有カレンダーサーバーのエントリポイント。
// アカウント登録・ログイン、イベントの作成・一覧・削除、
// 月表示や集計のJSON APIを提供する。
package main

import (
	"context"
	"log"

	"github.com/nao1215/sharedcal/internal/calendar"
	"github.com/nao1215/sharedcal/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server, err := calendar.NewServer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("サーバーの初期化に失敗: %v", err)
	}
	defer server.Close()

	log.Printf("sharedcalを起動します: :%s (data=%s)", cfg.Port, cfg.DataDir)
	if err := server.Run(); err != nil {
		log.Fatalf("sharedcalの起動に失敗: %v", err)
	}
}
