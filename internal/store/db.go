package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/sharedcal/pkg/activity"
	"github.com/nao1215/sharedcal/pkg/migration"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DefaultTimeout は1回の永続化処理に許容する時間の既定値。
const DefaultTimeout = 5 * time.Second

// dbFileName はデータディレクトリ内のSQLiteファイル名。
const dbFileName = "sharedcal.db"

// Open はデータディレクトリ内のSQLiteデータベースを開き、マイグレーションを適用する。
// 書き込みトランザクションはBEGIN IMMEDIATEで開始し、ロック待ちはbusy_timeoutに任せる。
// ディレクトリやファイルが存在しない場合は空の状態で作成する。
func Open(ctx context.Context, dataDir string) (*sql.DB, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("データディレクトリの作成に失敗: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate",
		filepath.Join(dataDir, dbFileName))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenInMemory はインメモリのSQLiteデータベースを開く。
// :memory: は接続ごとに別のデータベースになるため、接続数を1に固定する。
func OpenInMemory(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("インメモリDBの作成に失敗: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate は同梱のマイグレーションを適用する。
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := migration.Run(ctx, db, migrationsFS, "migrations"); err != nil {
		return fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return nil
}

// isUniqueViolation はUNIQUE制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// appendActivity はトランザクション内でアクティビティを追記する。
func appendActivity(ctx context.Context, tx *sql.Tx, subjectType activity.SubjectType, subjectID string, kind activity.Kind, data any) error {
	a, err := activity.New(subjectType, subjectID, kind, data)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO activities (id, subject_type, subject_id, kind, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.SubjectType), a.SubjectID, string(a.Kind), string(a.Data), formatTime(a.CreatedAt),
	)
	return err
}

// formatTime は日時をTEXTカラム用の文字列に変換する。
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime はTEXTカラムの日時を復元する。
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// withTimeout は永続化処理用のタイムアウト付きコンテキストを返す。
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(ctx, d)
}
