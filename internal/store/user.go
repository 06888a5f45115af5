package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/sharedcal/pkg/activity"
	"golang.org/x/crypto/bcrypt"
)

// Account は登録済みのアカウント。パスワード（ハッシュを含む）は保持しない。
type Account struct {
	// ID はアカウントの一意識別子。
	ID string `json:"id"`
	// Username はユーザー名。大文字小文字を区別して一意。
	Username string `json:"username"`
	// CreatedAt は登録日時。
	CreatedAt time.Time `json:"createdAt"`
}

// UserStore はユーザー名で一意なアカウントの登録簿。
type UserStore struct {
	db      *sql.DB
	timeout time.Duration
	// cost はbcryptのコスト。
	cost int
	// dummyHash は存在しないユーザーの認証時に比較に使うハッシュ。
	// ユーザーの有無で応答時間が変わらないようにする。
	dummyHash []byte
	// mu は登録処理の読み込み・書き込みを直列化する。
	mu sync.RWMutex
}

// UserStoreOption はUserStoreの設定を変更する。
type UserStoreOption func(*UserStore)

// WithUserTimeout は永続化処理のタイムアウトを設定する。
func WithUserTimeout(d time.Duration) UserStoreOption {
	return func(s *UserStore) { s.timeout = d }
}

// WithBcryptCost はパスワードハッシュのコストを設定する。
func WithBcryptCost(cost int) UserStoreOption {
	return func(s *UserStore) { s.cost = cost }
}

// NewUserStore は新しいUserStoreを生成する。
func NewUserStore(db *sql.DB, opts ...UserStoreOption) (*UserStore, error) {
	s := &UserStore{
		db:      db,
		timeout: DefaultTimeout,
		cost:    bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), s.cost)
	if err != nil {
		return nil, fmt.Errorf("ダミーハッシュの生成に失敗: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

// Register は新しいアカウントを登録する。
// ユーザー名かパスワードが空の場合はErrValidation、ユーザー名が登録済みの場合はErrConflictを返す。
func (s *UserStore) Register(ctx context.Context, username, password string) (*Account, error) {
	if username == "" || password == "" {
		return nil, validationError("ユーザー名とパスワードは必須です")
	}

	// ハッシュ計算は重いためロックの外で行う
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, validationError("パスワードが長すぎます")
		}
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}

	acc := &Account{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistenceError("トランザクション開始", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE username = ?)`, username,
	).Scan(&exists); err != nil {
		return nil, persistenceError("アカウントの存在確認", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: ユーザー名 %q は既に使用されています", ErrConflict, username)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		acc.ID, acc.Username, string(hash), formatTime(acc.CreatedAt),
	); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: ユーザー名 %q は既に使用されています", ErrConflict, username)
		}
		return nil, persistenceError("アカウントの保存", err)
	}

	if err := appendActivity(ctx, tx, activity.SubjectTypeAccount, acc.ID, activity.KindAccountRegistered,
		activity.AccountRegisteredData{Username: acc.Username}); err != nil {
		return nil, persistenceError("アクティビティの記録", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, persistenceError("コミット", err)
	}
	return acc, nil
}

// Authenticate はユーザー名とパスワードを検証し、一致したアカウントを返す。
// ユーザーが存在しない場合もパスワードが異なる場合もErrAuthを返す。
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	acc, hash, err := s.findWithHash(ctx, "username", username)
	if errors.Is(err, ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrAuth
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, ErrAuth
	}
	return acc, nil
}

// FindByUsername はユーザー名でアカウントを取得する。存在しない場合はErrNotFoundを返す。
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	acc, _, err := s.findWithHash(ctx, "username", username)
	return acc, err
}

// Get はIDでアカウントを取得する。存在しない場合はErrNotFoundを返す。
func (s *UserStore) Get(ctx context.Context, id string) (*Account, error) {
	acc, _, err := s.findWithHash(ctx, "id", id)
	return acc, err
}

// Count は登録済みアカウント数を返す。
func (s *UserStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, persistenceError("アカウント数の取得", err)
	}
	return n, nil
}

// findWithHash はcolumn（"id" か "username"）が一致するアカウントとパスワードハッシュを返す。
func (s *UserStore) findWithHash(ctx context.Context, column, value string) (*Account, []byte, error) {
	if value == "" {
		return nil, nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var (
		acc       Account
		hash      string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM accounts WHERE `+column+` = ?`, value,
	).Scan(&acc.ID, &acc.Username, &hash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, persistenceError("アカウントの取得", err)
	}

	acc.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, nil, persistenceError("作成日時の解析", err)
	}
	return &acc, []byte(hash), nil
}
