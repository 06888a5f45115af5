package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/sharedcal/pkg/activity"
	"github.com/nao1215/sharedcal/pkg/date"
)

// DefaultColor はcolor未指定時に使う表示色の既定値。
const DefaultColor = "#00B4D8"

// colorPattern は表示色として受け付ける形式（#RGB または #RRGGBB）。
var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Event はカレンダーイベント。開始日から終了日まで（両端を含む）の期間を持つ。
type Event struct {
	// ID はイベントの一意識別子。
	ID string `json:"id"`
	// Title はタイトル。
	Title string `json:"title"`
	// Description は説明。空でもよい。
	Description string `json:"description"`
	// Color は表示色（#RRGGBB）。
	Color string `json:"color"`
	// StartDate は開始日。
	StartDate date.Date `json:"startDate"`
	// EndDate は終了日（この日を含む）。
	EndDate date.Date `json:"endDate"`
	// CreatedBy は作成者のユーザー名。
	CreatedBy string `json:"createdBy"`
	// CreatorID は作成者のアカウントID。ユーザー名が未登録の場合は空。
	CreatorID string `json:"creatorId,omitempty"`
	// CreatedAt は作成日時。
	CreatedAt time.Time `json:"createdAt"`
}

// NewEvent はイベント作成時の入力。
type NewEvent struct {
	// Title はタイトル。必須。
	Title string
	// Description は説明。
	Description string
	// Color は表示色。空の場合はストアの既定色を使う。
	Color string
	// StartDate は開始日。必須。
	StartDate date.Date
	// EndDate は終了日。必須。StartDate以降であること。
	EndDate date.Date
	// CreatedBy は作成者のユーザー名。必須。
	CreatedBy string
	// CreatorID は作成者のアカウントID。任意。
	CreatorID string
}

// validate は入力値を検証する。
func (n NewEvent) validate() error {
	switch {
	case n.Title == "":
		return validationError("タイトルは必須です")
	case n.StartDate.IsZero() || n.EndDate.IsZero():
		return validationError("開始日と終了日は必須です")
	case n.StartDate.After(n.EndDate):
		return validationError("終了日は開始日以降の日付を指定してください")
	case n.CreatedBy == "":
		return validationError("作成者は必須です")
	case n.Color != "" && !colorPattern.MatchString(n.Color):
		return validationError(fmt.Sprintf("表示色の形式が不正です: %q", n.Color))
	}
	return nil
}

// EventStore はカレンダーイベントの登録簿。
type EventStore struct {
	db           *sql.DB
	timeout      time.Duration
	defaultColor string
	// mu は作成・削除の読み込み・書き込みを直列化する。
	mu sync.RWMutex
}

// EventStoreOption はEventStoreの設定を変更する。
type EventStoreOption func(*EventStore)

// WithEventTimeout は永続化処理のタイムアウトを設定する。
func WithEventTimeout(d time.Duration) EventStoreOption {
	return func(s *EventStore) { s.timeout = d }
}

// WithDefaultColor はcolor未指定時の表示色を設定する。
func WithDefaultColor(color string) EventStoreOption {
	return func(s *EventStore) {
		if color != "" {
			s.defaultColor = color
		}
	}
}

// NewEventStore は新しいEventStoreを生成する。
func NewEventStore(db *sql.DB, opts ...EventStoreOption) *EventStore {
	s := &EventStore{
		db:           db,
		timeout:      DefaultTimeout,
		defaultColor: DefaultColor,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add はイベントを作成し、採番したIDを持つイベントを返す。
func (s *EventStore) Add(ctx context.Context, in NewEvent) (*Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	ev := &Event{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Color:       in.Color,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		CreatedBy:   in.CreatedBy,
		CreatorID:   in.CreatorID,
		CreatedAt:   time.Now().UTC(),
	}
	if ev.Color == "" {
		ev.Color = s.defaultColor
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

	var creatorID sql.NullString
	if ev.CreatorID != "" {
		creatorID = sql.NullString{String: ev.CreatorID, Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO events (id, title, description, color, start_date, end_date, created_by, creator_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Title, ev.Description, ev.Color, ev.StartDate, ev.EndDate, ev.CreatedBy, creatorID, formatTime(ev.CreatedAt),
	); err != nil {
		return nil, persistenceError("イベントの保存", err)
	}

	if err := appendActivity(ctx, tx, activity.SubjectTypeEvent, ev.ID, activity.KindEventCreated, activity.EventCreatedData{
		Title:     ev.Title,
		StartDate: ev.StartDate.String(),
		EndDate:   ev.EndDate.String(),
		CreatedBy: ev.CreatedBy,
	}); err != nil {
		return nil, persistenceError("アクティビティの記録", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, persistenceError("コミット", err)
	}
	return ev, nil
}

// List は全てのイベントを作成順に返す。
func (s *EventStore) List(ctx context.Context) ([]Event, error) {
	return s.query(ctx, "イベント一覧の取得",
		`SELECT id, title, description, color, start_date, end_date, created_by, creator_id, created_at
		 FROM events ORDER BY rowid`)
}

// ListRange は期間 [from, to] と1日でも重なるイベントを作成順に返す。
func (s *EventStore) ListRange(ctx context.Context, from, to date.Date) ([]Event, error) {
	if from.IsZero() || to.IsZero() {
		return nil, validationError("検索期間の開始日と終了日は必須です")
	}
	if from.After(to) {
		return nil, validationError("検索期間の終了日は開始日以降の日付を指定してください")
	}
	return s.query(ctx, "期間指定のイベント取得",
		`SELECT id, title, description, color, start_date, end_date, created_by, creator_id, created_at
		 FROM events WHERE start_date <= ? AND end_date >= ? ORDER BY rowid`, to, from)
}

// Get はIDでイベントを取得する。存在しない場合はErrNotFoundを返す。
func (s *EventStore) Get(ctx context.Context, id string) (*Event, error) {
	events, err := s.query(ctx, "イベントの取得",
		`SELECT id, title, description, color, start_date, end_date, created_by, creator_id, created_at
		 FROM events WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: イベント %q", ErrNotFound, id)
	}
	return &events[0], nil
}

// Remove はIDで指定したイベントを削除する。存在しない場合はErrNotFoundを返し、何も変更しない。
func (s *EventStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistenceError("トランザクション開始", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var title, createdBy string
	err = tx.QueryRowContext(ctx, `SELECT title, created_by FROM events WHERE id = ?`, id).Scan(&title, &createdBy)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: イベント %q", ErrNotFound, id)
	}
	if err != nil {
		return persistenceError("イベントの取得", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
		return persistenceError("イベントの削除", err)
	}

	if err := appendActivity(ctx, tx, activity.SubjectTypeEvent, id, activity.KindEventDeleted, activity.EventDeletedData{
		Title:     title,
		CreatedBy: createdBy,
	}); err != nil {
		return persistenceError("アクティビティの記録", err)
	}

	if err := tx.Commit(); err != nil {
		return persistenceError("コミット", err)
	}
	return nil
}

// query は読み取りロックの下でイベントを検索する。
func (s *EventStore) query(ctx context.Context, op, q string, args ...any) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, persistenceError(op, err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]Event, 0)
	for rows.Next() {
		var (
			ev        Event
			creatorID sql.NullString
			createdAt string
		)
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Description, &ev.Color,
			&ev.StartDate, &ev.EndDate, &ev.CreatedBy, &creatorID, &createdAt); err != nil {
			return nil, persistenceError(op, err)
		}
		ev.CreatorID = creatorID.String
		if ev.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, persistenceError(op, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError(op, err)
	}
	return events, nil
}
