package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath はYAML設定ファイルのパスを指定する環境変数名。
const EnvConfigPath = "SHAREDCAL_CONFIG"

// devJWTSecret はJWT_SECRET未設定時に使う開発用の秘密鍵。
const devJWTSecret = "dev-secret-key"

var colorPattern = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// Config はサーバーの設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `yaml:"port"`
	// DataDir はSQLiteファイルを置くディレクトリ。
	DataDir string `yaml:"data_dir"`
	// JWTSecret はログイントークンの署名鍵。
	JWTSecret string `yaml:"jwt_secret"`
	// FrontendURL はCORSで許可するオリジン。
	FrontendURL string `yaml:"frontend_url"`
	// PersistTimeout は永続化処理1回あたりのタイムアウト。
	PersistTimeout time.Duration `yaml:"persist_timeout"`
	// DefaultEventColor は色が未指定のイベントに設定する色。
	DefaultEventColor string `yaml:"default_event_color"`
	// AuthRateLimit は登録・ログインの1秒あたりの許可数（クライアントIP単位）。
	AuthRateLimit float64 `yaml:"auth_rate_limit"`
	// AuthRateBurst は登録・ログインのバースト数。
	AuthRateBurst int `yaml:"auth_rate_burst"`
}

// Default は既定値の設定を返す。
func Default() *Config {
	return &Config{
		Port:              "3000",
		DataDir:           "data",
		JWTSecret:         devJWTSecret,
		FrontendURL:       "http://localhost:3000",
		PersistTimeout:    5 * time.Second,
		DefaultEventColor: "#00B4D8",
		AuthRateLimit:     1,
		AuthRateBurst:     5,
	}
}

// Load は既定値、YAMLファイル、.env、環境変数の順に設定を読み込む。
func Load() (*Config, error) {
	cfg, err := load(os.Getenv(EnvConfigPath), ".env", os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if cfg.JWTSecret == devJWTSecret {
		log.Printf("JWT_SECRETが未設定のため開発用の秘密鍵を使用します")
	}
	return cfg, nil
}

// load は設定を読み込む。lookupは環境変数の参照に使う。
func load(configPath, dotenvPath string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("設定ファイルの解析に失敗: %w", err)
		}
	}

	dotenv := map[string]string{}
	if dotenvPath != "" {
		m, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			dotenv = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf(".envの読み込みに失敗: %w", err)
		}
	}

	// 環境変数は.envより優先する
	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}
	if err := cfg.applyEnv(get); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv は環境変数の値で設定を上書きする。
func (c *Config) applyEnv(get func(string) (string, bool)) error {
	if v, ok := get("PORT"); ok {
		c.Port = v
	}
	if v, ok := get("DATA_DIR"); ok {
		c.DataDir = v
	}
	if v, ok := get("JWT_SECRET"); ok {
		c.JWTSecret = v
	}
	if v, ok := get("FRONTEND_URL"); ok {
		c.FrontendURL = v
	}
	if v, ok := get("DEFAULT_EVENT_COLOR"); ok {
		c.DefaultEventColor = v
	}
	if v, ok := get("PERSIST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PERSIST_TIMEOUTの形式が不正です: %w", err)
		}
		c.PersistTimeout = d
	}
	if v, ok := get("AUTH_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("AUTH_RATE_LIMITの形式が不正です: %w", err)
		}
		c.AuthRateLimit = f
	}
	if v, ok := get("AUTH_RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AUTH_RATE_BURSTの形式が不正です: %w", err)
		}
		c.AuthRateBurst = n
	}
	return nil
}

// Validate は設定値を検証する。
func (c *Config) Validate() error {
	switch {
	case c.Port == "":
		return errors.New("ポートが設定されていません")
	case c.DataDir == "":
		return errors.New("データディレクトリが設定されていません")
	case c.JWTSecret == "":
		return errors.New("JWT秘密鍵が設定されていません")
	case c.PersistTimeout <= 0:
		return fmt.Errorf("永続化タイムアウトは正の値を指定してください: %s", c.PersistTimeout)
	case !colorPattern.MatchString(c.DefaultEventColor):
		return fmt.Errorf("既定の色の形式が不正です: %q", c.DefaultEventColor)
	case c.AuthRateLimit <= 0:
		return fmt.Errorf("AUTH_RATE_LIMITは正の値を指定してください: %v", c.AuthRateLimit)
	case c.AuthRateBurst <= 0:
		return fmt.Errorf("AUTH_RATE_BURSTは正の値を指定してください: %d", c.AuthRateBurst)
	}
	return nil
}
