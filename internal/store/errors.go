package store

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation は必須項目の欠落や不正な値を表す。
	ErrValidation = errors.New("入力値が不正です")
	// ErrConflict はユーザー名の重複を表す。
	ErrConflict = errors.New("既に存在します")
	// ErrAuth は認証情報の不一致を表す。
	ErrAuth = errors.New("認証情報が正しくありません")
	// ErrNotFound は指定されたレコードが存在しないことを表す。
	ErrNotFound = errors.New("見つかりません")
	// ErrPersistence は永続化層の読み書き失敗を表す。
	// 呼び出し元には詳細を見せず内部エラーとして扱う。
	ErrPersistence = errors.New("永続化に失敗しました")
)

// validationError はErrValidationをラップしたエラーを返す。
func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// persistenceError はErrPersistenceと原因のエラーを両方ラップする。
func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
