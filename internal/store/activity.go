package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/nao1215/sharedcal/pkg/activity"
)

// DefaultActivityLimit はSinceで件数未指定時に返す最大件数。
const DefaultActivityLimit = 100

// ActivityLog はアクティビティ（変更履歴）の読み出しを提供する。
// 追記はUserStoreとEventStoreが各トランザクション内で行う。
type ActivityLog struct {
	db      *sql.DB
	timeout time.Duration
}

// NewActivityLog は新しいActivityLogを生成する。
func NewActivityLog(db *sql.DB, timeout time.Duration) *ActivityLog {
	return &ActivityLog{db: db, timeout: timeout}
}

// Since は連番がseqより大きいアクティビティを連番の昇順で最大limit件返す。
func (l *ActivityLog) Since(ctx context.Context, seq int64, limit int) ([]activity.Activity, error) {
	if seq < 0 {
		return nil, validationError("sinceは0以上を指定してください")
	}
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	ctx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()

	rows, err := l.db.QueryContext(ctx,
		`SELECT seq, id, subject_type, subject_id, kind, data, created_at
		 FROM activities WHERE seq > ? ORDER BY seq LIMIT ?`, seq, limit)
	if err != nil {
		return nil, persistenceError("アクティビティの取得", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]activity.Activity, 0)
	for rows.Next() {
		var (
			a                 activity.Activity
			subjectType, kind string
			data, createdAt   string
		)
		if err := rows.Scan(&a.Seq, &a.ID, &subjectType, &a.SubjectID, &kind, &data, &createdAt); err != nil {
			return nil, persistenceError("アクティビティの取得", err)
		}
		a.SubjectType = activity.SubjectType(subjectType)
		a.Kind = activity.Kind(kind)
		a.Data = json.RawMessage(data)
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, persistenceError("アクティビティの取得", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("アクティビティの取得", err)
	}
	return out, nil
}
