// Package migration はSQLiteデータベースのスキーマ変更を順番に適用する。
// SQLファイルはfs.FS（通常はembed.FS）から読み込み、適用済みのバージョンは
// schema_migrations テーブルに記録する。
package migration

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"slices"
	"strconv"
	"strings"
)

// upSuffix は適用対象となるファイルの拡張子。
const upSuffix = ".up.sql"

// ErrDuplicateVersion は同じバージョン番号のファイルが複数ある場合に返される。
var ErrDuplicateVersion = errors.New("マイグレーションのバージョンが重複しています")

// File は1つのマイグレーションファイルを表す。
type File struct {
	// Version はファイル名先頭の数値（000001_init.up.sql なら 1）。
	Version int
	// Name はバージョンと拡張子を除いた部分。
	Name string
	// Path はfs.FS内のパス。
	Path string
}

// Run は未適用のマイグレーションをバージョン順に適用し、適用した件数を返す。
// 失敗した場合はそこで止まり、それまでに適用した件数とエラーを返す。
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) (int, error) {
	pending, err := Pending(ctx, db, fsys, dir)
	if err != nil {
		return 0, err
	}

	for i, f := range pending {
		if err := apply(ctx, db, fsys, f); err != nil {
			return i, fmt.Errorf("マイグレーション %06d_%s の適用に失敗: %w", f.Version, f.Name, err)
		}
		log.Printf("[Migration] %06d_%s を適用しました", f.Version, f.Name)
	}
	return len(pending), nil
}

// Pending はまだ適用されていないマイグレーションをバージョン順に返す。
func Pending(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) ([]File, error) {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return nil, fmt.Errorf("schema_migrationsの作成に失敗: %w", err)
	}
	applied, err := AppliedVersions(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("適用済みバージョンの取得に失敗: %w", err)
	}
	files, err := Collect(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("マイグレーションファイルの収集に失敗: %w", err)
	}

	return slices.DeleteFunc(files, func(f File) bool { return applied[f.Version] }), nil
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	)`)
	return err
}

// AppliedVersions は適用済みのバージョンを集合として返す。
func AppliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// Collect はdir直下の NNNNNN_name.up.sql をバージョン順に返す。
// 命名規則に合わないファイルは無視し、バージョンが重複していればErrDuplicateVersionを返す。
func Collect(fsys fs.FS, dir string) ([]File, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(entries))
	seen := make(map[int]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, upSuffix) {
			continue
		}
		num, rest, ok := strings.Cut(strings.TrimSuffix(name, upSuffix), "_")
		if !ok {
			continue
		}
		v, err := strconv.Atoi(num)
		if err != nil || v <= 0 {
			continue
		}
		if prev, dup := seen[v]; dup {
			return nil, fmt.Errorf("%w: %s, %s", ErrDuplicateVersion, prev, name)
		}
		seen[v] = name
		files = append(files, File{Version: v, Name: rest, Path: path.Join(dir, name)})
	}

	slices.SortFunc(files, func(a, b File) int { return cmp.Compare(a.Version, b.Version) })
	return files, nil
}

// apply は1ファイル分のSQLとバージョン記録を同一トランザクションで実行する。
func apply(ctx context.Context, db *sql.DB, fsys fs.FS, f File) error {
	content, err := fs.ReadFile(fsys, f.Path)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, f.Version); err != nil {
		return err
	}
	return tx.Commit()
}
