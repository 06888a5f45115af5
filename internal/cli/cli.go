package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/nao1215/sharedcal/pkg/date"
	"github.com/nao1215/sharedcal/pkg/httpclient"
)

// DefaultServer は-server未指定時の接続先。
const DefaultServer = "http://localhost:3000"

// errUsage は引数の誤りを表す。
var errUsage = errors.New("引数が不正です")

// command はサブコマンドの実装。
type command func(ctx context.Context, app *app, args []string) error

// app はサブコマンドの実行に必要な状態。
type app struct {
	client *httpclient.Client
	out    io.Writer
}

var commands = map[string]command{
	"register": runRegister,
	"login":    runLogin,
	"list":     runList,
	"add":      runAdd,
	"delete":   runDelete,
	"day":      runDay,
	"month":    runMonth,
	"stats":    runStats,
	"activity": runActivity,
	"ics":      runICS,
}

// Run はコマンドライン引数を解釈してサブコマンドを実行し、終了コードを返す。
// getenvは環境変数の参照に使う。
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	fs := flag.NewFlagSet("calctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", envOr(getenv, "SHAREDCAL_SERVER", DefaultServer), "sharedcalサーバーのURL")
	token := fs.String("token", getenv("SHAREDCAL_TOKEN"), "ログイントークン")
	timeout := fs.Duration("timeout", httpclient.DefaultTimeout, "リクエストのタイムアウト")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "使い方: calctl [-server URL] [-token TOKEN] <command> [flags] [args]")
		fmt.Fprintln(stderr, "command: register login list add delete day month stats activity ics")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "不明なコマンドです: %s\n", name)
		fs.Usage()
		return 2
	}

	if *token != "" {
		ctx = httpclient.WithToken(ctx, *token)
	}
	a := &app{
		client: httpclient.New(*server, httpclient.WithTimeout(*timeout)),
		out:    stdout,
	}
	if err := cmd(ctx, a, fs.Args()[1:]); err != nil {
		fmt.Fprintf(stderr, "calctl %s: %v\n", name, err)
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return 2
		}
		return 1
	}
	return 0
}

// print はレスポンスを整形したJSONで出力する。
func (a *app) print(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("出力の整形に失敗: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

// getAndPrint はGETの結果をそのまま出力する。
func (a *app) getAndPrint(ctx context.Context, path string) error {
	var result json.RawMessage
	if err := a.client.GetJSON(ctx, path, &result); err != nil {
		return err
	}
	return a.print(result)
}

// newFlagSet はサブコマンド用のFlagSetを生成する。
func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func runRegister(ctx context.Context, a *app, args []string) error {
	creds, err := parseCredentials("register", args)
	if err != nil {
		return err
	}
	var result json.RawMessage
	if err := a.client.PostJSON(ctx, "/api/v1/register", creds, &result); err != nil {
		return err
	}
	return a.print(result)
}

func runLogin(ctx context.Context, a *app, args []string) error {
	creds, err := parseCredentials("login", args)
	if err != nil {
		return err
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := a.client.PostJSON(ctx, "/api/v1/login", creds, &result); err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, result.Token)
	return err
}

// credentials は登録・ログインのリクエストボディ。
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func parseCredentials(name string, args []string) (credentials, error) {
	var c credentials
	fs := newFlagSet(name, io.Discard)
	fs.StringVar(&c.Username, "u", "", "ユーザー名")
	fs.StringVar(&c.Password, "p", "", "パスワード")
	if err := fs.Parse(args); err != nil {
		return c, fmt.Errorf("%w: %v", errUsage, err)
	}
	if c.Username == "" || c.Password == "" {
		return c, fmt.Errorf("%w: -uと-pは必須です", errUsage)
	}
	return c, nil
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("list", io.Discard)
	from := fs.String("from", "", "開始日（YYYY-MM-DD）")
	to := fs.String("to", "", "終了日（YYYY-MM-DD）")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	q := url.Values{}
	if *from != "" {
		q.Set("from", *from)
	}
	if *to != "" {
		q.Set("to", *to)
	}
	path := "/api/v1/events"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return a.getAndPrint(ctx, path)
}

// eventRequest はイベント作成のリクエストボディ。
type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	StartDate   date.Date `json:"startDate"`
	EndDate     date.Date `json:"endDate"`
	CreatedBy   string    `json:"createdBy,omitempty"`
}

func runAdd(ctx context.Context, a *app, args []string) error {
	var (
		req        eventRequest
		start, end string
	)
	fs := newFlagSet("add", io.Discard)
	fs.StringVar(&req.Title, "title", "", "タイトル")
	fs.StringVar(&req.Description, "desc", "", "説明")
	fs.StringVar(&req.Color, "color", "", "表示色（#RRGGBB）")
	fs.StringVar(&start, "start", "", "開始日（YYYY-MM-DD）")
	fs.StringVar(&end, "end", "", "終了日（YYYY-MM-DD）。省略時は開始日")
	fs.StringVar(&req.CreatedBy, "by", "", "作成者のユーザー名（ログイン中は不要）")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if req.Title == "" || start == "" {
		return fmt.Errorf("%w: -titleと-startは必須です", errUsage)
	}
	if end == "" {
		end = start
	}

	var err error
	if req.StartDate, err = date.Parse(start); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if req.EndDate, err = date.Parse(end); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	var result json.RawMessage
	if err := a.client.PostJSON(ctx, "/api/v1/events", req, &result); err != nil {
		return err
	}
	return a.print(result)
}

func runDelete(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return fmt.Errorf("%w: イベントIDを1つ指定してください", errUsage)
	}
	var result json.RawMessage
	if err := a.client.DeleteJSON(ctx, "/api/v1/events/"+url.PathEscape(args[0]), &result); err != nil {
		return err
	}
	return a.print(result)
}

func runDay(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: 日付を1つ指定してください", errUsage)
	}
	d, err := date.Parse(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return a.getAndPrint(ctx, "/api/v1/events/day/"+d.String())
}

func runMonth(ctx context.Context, a *app, args []string) error {
	var year, month int
	switch len(args) {
	case 0:
		now := time.Now()
		year, month = now.Year(), int(now.Month())
	case 2:
		if _, err := fmt.Sscanf(args[0]+" "+args[1], "%d %d", &year, &month); err != nil {
			return fmt.Errorf("%w: 年と月は数値で指定してください", errUsage)
		}
	default:
		return fmt.Errorf("%w: 年と月を指定してください", errUsage)
	}
	return a.getAndPrint(ctx, fmt.Sprintf("/api/v1/calendar/%d/%d", year, month))
}

func runStats(ctx context.Context, a *app, _ []string) error {
	return a.getAndPrint(ctx, "/api/v1/stats")
}

func runActivity(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("activity", io.Discard)
	since := fs.Int64("since", 0, "この連番より後の履歴を表示する")
	limit := fs.Int("limit", 0, "最大件数")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	q := url.Values{}
	q.Set("since", fmt.Sprint(*since))
	if *limit > 0 {
		q.Set("limit", fmt.Sprint(*limit))
	}
	return a.getAndPrint(ctx, "/api/v1/activity?"+q.Encode())
}

func runICS(ctx context.Context, a *app, _ []string) error {
	b, err := a.client.GetRaw(ctx, "/api/v1/calendar.ics")
	if err != nil {
		return err
	}
	_, err = a.out.Write(b)
	return err
}

func envOr(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// Main はos.Argsと環境変数でRunを実行する。
func Main(ctx context.Context) int {
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
}
