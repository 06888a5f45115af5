package migration

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

// openTestDB はテスト用のインメモリSQLiteを開く。
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリDBの作成に失敗: %v", err)
	}
	// :memory: は接続ごとに別のDBになるため1接続に固定する
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// testFS はテスト用のマイグレーションファイル群。
func testFS() fstest.MapFS {
	return fstest.MapFS{
		"migrations/000002_add_notes.up.sql": {Data: []byte(`CREATE TABLE notes (id TEXT PRIMARY KEY);`)},
		"migrations/000001_init.up.sql":      {Data: []byte(`CREATE TABLE items (id TEXT PRIMARY KEY);`)},
		"migrations/000001_init.down.sql":    {Data: []byte(`DROP TABLE items;`)},
		"migrations/README.md":               {Data: []byte(`ignored`)},
		"migrations/abc_invalid.up.sql":      {Data: []byte(`ignored`)},
	}
}

// TestCollect はマイグレーションファイルの収集を検証する。
func TestCollect(t *testing.T) {
	t.Parallel()

	files, err := Collect(testFS(), "migrations")
	if err != nil {
		t.Fatalf("Collect()でエラーが発生: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
	if files[0].Version != 1 || files[0].Name != "init" {
		t.Errorf("files[0] = %+v", files[0])
	}
	if files[1].Version != 2 || files[1].Path != "migrations/000002_add_notes.up.sql" {
		t.Errorf("files[1] = %+v", files[1])
	}
}

// TestRun はマイグレーションの適用を検証する。
func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("未適用のマイグレーションが全て適用されること", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		ctx := context.Background()

		n, err := Run(ctx, db, testFS(), "migrations")
		if err != nil {
			t.Fatalf("Run()でエラーが発生: %v", err)
		}
		if n != 2 {
			t.Errorf("適用件数 = %d, want 2", n)
		}

		applied, err := AppliedVersions(ctx, db)
		if err != nil {
			t.Fatalf("AppliedVersions()でエラーが発生: %v", err)
		}
		if !applied[1] || !applied[2] {
			t.Errorf("applied = %v", applied)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO notes (id) VALUES ('n1')`); err != nil {
			t.Errorf("notesテーブルが作成されていない: %v", err)
		}
	})

	t.Run("2回目の実行では何も適用されないこと", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		ctx := context.Background()

		if _, err := Run(ctx, db, testFS(), "migrations"); err != nil {
			t.Fatalf("1回目のRun()でエラーが発生: %v", err)
		}
		n, err := Run(ctx, db, testFS(), "migrations")
		if err != nil {
			t.Fatalf("2回目のRun()でエラーが発生: %v", err)
		}
		if n != 0 {
			t.Errorf("適用件数 = %d, want 0", n)
		}
	})

	t.Run("SQLが不正な場合はエラーを返しバージョンが記録されないこと", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		ctx := context.Background()
		fsys := fstest.MapFS{
			"m/000001_broken.up.sql": {Data: []byte(`CREATE TABLE (`)},
		}

		if _, err := Run(ctx, db, fsys, "m"); err == nil {
			t.Fatal("Run()がエラーを返さなかった")
		}
		applied, err := AppliedVersions(ctx, db)
		if err != nil {
			t.Fatalf("AppliedVersions()でエラーが発生: %v", err)
		}
		if applied[1] {
			t.Error("失敗したマイグレーションが記録されている")
		}
	})
}

// TestCollectDuplicate はバージョン重複の検出を検証する。
func TestCollectDuplicate(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"m/000001_init.up.sql":  {Data: []byte(`SELECT 1;`)},
		"m/000001_again.up.sql": {Data: []byte(`SELECT 1;`)},
	}
	if _, err := Collect(fsys, "m"); !errors.Is(err, ErrDuplicateVersion) {
		t.Errorf("error = %v, want ErrDuplicateVersion", err)
	}
}

// TestPending は未適用分だけが返ることを検証する。
func TestPending(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"m/000001_init.up.sql": {Data: []byte(`CREATE TABLE items (id TEXT PRIMARY KEY);`)},
	}
	if _, err := Run(ctx, db, fsys, "m"); err != nil {
		t.Fatalf("Run()でエラーが発生: %v", err)
	}
	fsys["m/000002_notes.up.sql"] = &fstest.MapFile{Data: []byte(`CREATE TABLE notes (id TEXT PRIMARY KEY);`)}

	pending, err := Pending(ctx, db, fsys, "m")
	if err != nil {
		t.Fatalf("Pending()でエラーが発生: %v", err)
	}
	if len(pending) != 1 || pending[0].Version != 2 || pending[0].Name != "notes" {
		t.Errorf("Pending() = %+v", pending)
	}
}
