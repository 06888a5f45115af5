package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/nao1215/sharedcal/pkg/date"
	"golang.org/x/crypto/bcrypt"
)

// newTestDB はマイグレーション済みのインメモリSQLiteを生成する。
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenInMemory(context.Background())
	if err != nil {
		t.Fatalf("インメモリDBの作成に失敗: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestUserStore はテスト用にbcryptコストを最小にしたUserStoreを生成する。
func newTestUserStore(t *testing.T, db *sql.DB) *UserStore {
	t.Helper()

	s, err := NewUserStore(db, WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("UserStoreの生成に失敗: %v", err)
	}
	return s
}

// mustDate は日付文字列を解析するヘルパー関数。
func mustDate(t *testing.T, s string) date.Date {
	t.Helper()

	d, err := date.Parse(s)
	if err != nil {
		t.Fatalf("日付の解析に失敗: %v", err)
	}
	return d
}
