package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/sharedcal/internal/config"
	"github.com/nao1215/sharedcal/internal/store"
	"github.com/nao1215/sharedcal/pkg/middleware"
)

// serviceName はヘルスチェックとiCalendarのカレンダー名に使うサービス名。
const serviceName = "sharedcal"

// Server は共有カレンダーのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はSQLiteデータベース接続。
	db *sql.DB
	// users はアカウントの登録簿。
	users *store.UserStore
	// events はイベントの登録簿。
	events *store.EventStore
	// activities は変更履歴。
	activities *store.ActivityLog
	// jwtSecret はログイントークンの署名鍵。
	jwtSecret string
	// authLimiter は登録・ログインのレート制限。
	authLimiter *middleware.RateLimiter
	// now は現在時刻を返す。月表示の「今日」の判定に使う。
	now func() time.Time
}

// NewServer は設定に従ってSQLiteを開き、新しいサーバーを生成する。
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := store.Open(ctx, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("データベースの初期化に失敗: %w", err)
	}

	s, err := newServer(db, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// newServer は初期化済みのデータベースでサーバーを生成する。
func newServer(db *sql.DB, cfg *config.Config, userOpts ...store.UserStoreOption) (*Server, error) {
	users, err := store.NewUserStore(db, append([]store.UserStoreOption{store.WithUserTimeout(cfg.PersistTimeout)}, userOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("UserStoreの初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{cfg.FrontendURL}))

	s := &Server{
		router: router,
		port:   cfg.Port,
		db:     db,
		users:  users,
		events: store.NewEventStore(db,
			store.WithEventTimeout(cfg.PersistTimeout),
			store.WithDefaultColor(cfg.DefaultEventColor),
		),
		activities:  store.NewActivityLog(db, cfg.PersistTimeout),
		jwtSecret:   cfg.JWTSecret,
		authLimiter: middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst),
		now:         time.Now,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Handler はルーティング済みのhttp.Handlerを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close はデータベース接続を閉じる。
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	{
		// アカウント（レート制限あり）
		auth := api.Group("")
		auth.Use(middleware.RateLimit(s.authLimiter))
		{
			auth.POST("/register", s.handleRegister())
			auth.POST("/login", s.handleLogin())
		}

		// ログイン中のアカウント
		api.GET("/me", middleware.JWTAuth(s.jwtSecret), s.handleMe())

		// イベント
		events := api.Group("/events")
		{
			events.GET("", s.handleListEvents())
			events.POST("", middleware.OptionalJWT(s.jwtSecret), s.handleCreateEvent())
			events.DELETE("/:id", s.handleDeleteEvent())
			events.GET("/day/:date", s.handleEventsOnDay())
		}

		// カレンダー表示と集計
		api.GET("/calendar/:year/:month", s.handleMonth())
		api.GET("/calendar.ics", s.handleICS())
		api.GET("/stats", s.handleStats())
		api.GET("/activity", s.handleActivity())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})
}

// respondStoreError はストアのエラーをHTTPステータスに変換して返す。
// 永続化エラーは詳細をログにのみ出力する。
func respondStoreError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrAuth):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("%sエラー: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "サーバー内部でエラーが発生しました"})
	}
}
