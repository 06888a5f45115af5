package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/sharedcal/internal/calendar"
	"github.com/nao1215/sharedcal/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupServer は一時ディレクトリのSQLiteでsharedcalサーバーを起動し、URLを返す。
func setupServer(t *testing.T) string {
	t.Helper()

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.JWTSecret = "cli-test-secret"
	cfg.AuthRateBurst = 100

	s, err := calendar.NewServer(t.Context(), cfg)
	if err != nil {
		t.Fatalf("サーバーの生成に失敗: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

// run はcalctlを実行し、終了コードと標準出力・標準エラー出力を返す。
func run(t *testing.T, env map[string]string, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, &stdout, &stderr, func(k string) string { return env[k] })
	return code, stdout.String(), stderr.String()
}

// TestRun はサーバーに対する一連の操作を検証する。
func TestRun(t *testing.T) {
	t.Parallel()

	url := setupServer(t)
	env := map[string]string{"SHAREDCAL_SERVER": url}

	code, _, stderr := run(t, env, "register", "-u", "ana", "-p", "secret")
	if code != 0 {
		t.Fatalf("register: 終了コード = %d, stderr = %s", code, stderr)
	}

	code, _, stderr = run(t, env, "register", "-u", "ana", "-p", "secret")
	if code != 1 || !strings.Contains(stderr, "409") {
		t.Errorf("重複register: 終了コード = %d, stderr = %s", code, stderr)
	}

	code, stdout, stderr := run(t, env, "login", "-u", "ana", "-p", "secret")
	if code != 0 {
		t.Fatalf("login: 終了コード = %d, stderr = %s", code, stderr)
	}
	token := strings.TrimSpace(stdout)
	if token == "" {
		t.Fatal("トークンが出力されていない")
	}

	code, stdout, stderr = run(t, env, "-token", token, "add", "-title", "Sprint", "-start", "2024-01-10", "-end", "2024-01-12")
	if code != 0 {
		t.Fatalf("add: 終了コード = %d, stderr = %s", code, stderr)
	}
	var created map[string]any
	if err := json.Unmarshal([]byte(stdout), &created); err != nil {
		t.Fatalf("addの出力のパースに失敗: %v, stdout = %s", err, stdout)
	}
	if created["createdBy"] != "ana" {
		t.Errorf("createdBy = %v, want ana", created["createdBy"])
	}
	id, _ := created["id"].(string)

	code, stdout, _ = run(t, env, "day", "2024-01-11")
	if code != 0 || !strings.Contains(stdout, id) {
		t.Errorf("day: 終了コード = %d, stdout = %s", code, stdout)
	}

	code, stdout, _ = run(t, env, "list", "-from", "2024-01-01", "-to", "2024-01-31")
	if code != 0 || !strings.Contains(stdout, "Sprint") {
		t.Errorf("list: 終了コード = %d, stdout = %s", code, stdout)
	}

	code, stdout, _ = run(t, env, "month", "2024", "1")
	if code != 0 || !strings.Contains(stdout, `"leadingBlanks": 1`) {
		t.Errorf("month: 終了コード = %d, stdout = %s", code, stdout)
	}

	code, stdout, _ = run(t, env, "stats")
	if code != 0 || !strings.Contains(stdout, `"activeMembers": 1`) {
		t.Errorf("stats: 終了コード = %d, stdout = %s", code, stdout)
	}

	code, stdout, _ = run(t, env, "ics")
	if code != 0 || !strings.Contains(stdout, "SUMMARY:Sprint") {
		t.Errorf("ics: 終了コード = %d, stdout = %s", code, stdout)
	}

	code, _, stderr = run(t, env, "delete", id)
	if code != 0 {
		t.Errorf("delete: 終了コード = %d, stderr = %s", code, stderr)
	}
	code, _, stderr = run(t, env, "delete", id)
	if code != 1 || !strings.Contains(stderr, "404") {
		t.Errorf("2回目のdelete: 終了コード = %d, stderr = %s", code, stderr)
	}

	code, stdout, _ = run(t, env, "activity", "-limit", "10")
	if code != 0 || !strings.Contains(stdout, "EventDeleted") {
		t.Errorf("activity: 終了コード = %d, stdout = %s", code, stdout)
	}
}

// TestRunUsage は引数の誤りを検証する。
func TestRunUsage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "コマンドなし", args: nil},
		{name: "不明なコマンド", args: []string{"publish"}},
		{name: "registerでパスワードなし", args: []string{"register", "-u", "ana"}},
		{name: "addでタイトルなし", args: []string{"add", "-start", "2024-01-10"}},
		{name: "addで日付の形式が不正", args: []string{"add", "-title", "x", "-start", "2024/01/10"}},
		{name: "deleteでIDなし", args: []string{"delete"}},
		{name: "dayで日付が不正", args: []string{"day", "tomorrow"}},
		{name: "monthで月が数値でない", args: []string{"month", "2024", "feb"}},
		{name: "monthで引数が1つ", args: []string{"month", "2024"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// 接続先は使われない
			code, _, _ := run(t, map[string]string{"SHAREDCAL_SERVER": "http://127.0.0.1:1"}, tt.args...)
			if code != 2 {
				t.Errorf("終了コード = %d, want 2", code)
			}
		})
	}
}

// TestRunConnectionError は接続できないサーバーで終了コード1になることを検証する。
func TestRunConnectionError(t *testing.T) {
	t.Parallel()

	code, _, stderr := run(t, nil, "-server", "http://127.0.0.1:1", "stats")
	if code != 1 {
		t.Errorf("終了コード = %d, want 1, stderr = %s", code, stderr)
	}
}
