package activity

import (
	"encoding/json"
	"time"
)

// SubjectType はアクティビティの対象となるエンティティの種類を表す。
type SubjectType string

const (
	// SubjectTypeAccount はアカウントを表す。
	SubjectTypeAccount SubjectType = "Account"
	// SubjectTypeEvent はカレンダーイベントを表す。
	SubjectTypeEvent SubjectType = "Event"
)

// Kind はアクティビティの種類を表す。
type Kind string

const (
	// KindAccountRegistered はアカウントが登録されたことを表す。
	KindAccountRegistered Kind = "AccountRegistered"
	// KindEventCreated はイベントが作成されたことを表す。
	KindEventCreated Kind = "EventCreated"
	// KindEventDeleted はイベントが削除されたことを表す。
	KindEventDeleted Kind = "EventDeleted"
)

// Activity は追記専用の変更履歴レコード。
type Activity struct {
	// ID はアクティビティの一意識別子（UUID）。
	ID string `json:"id"`
	// Seq は永続化時に採番される連番。読み出し順序に使用する。
	Seq int64 `json:"seq"`
	// SubjectType は対象エンティティの種類。
	SubjectType SubjectType `json:"subjectType"`
	// SubjectID は対象エンティティの識別子。
	SubjectID string `json:"subjectId"`
	// Kind はアクティビティの種類。
	Kind Kind `json:"kind"`
	// Data は種類ごとのデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// CreatedAt は記録された日時。
	CreatedAt time.Time `json:"createdAt"`
}

// AccountRegisteredData はAccountRegisteredアクティビティのデータ。
// パスワードやそのハッシュは含めない。
type AccountRegisteredData struct {
	// Username は登録されたユーザー名。
	Username string `json:"username"`
}

// EventCreatedData はEventCreatedアクティビティのデータ。
type EventCreatedData struct {
	// Title はイベントのタイトル。
	Title string `json:"title"`
	// StartDate は開始日（YYYY-MM-DD）。
	StartDate string `json:"startDate"`
	// EndDate は終了日（YYYY-MM-DD）。
	EndDate string `json:"endDate"`
	// CreatedBy は作成したユーザー名。
	CreatedBy string `json:"createdBy"`
}

// EventDeletedData はEventDeletedアクティビティのデータ。
type EventDeletedData struct {
	// Title は削除されたイベントのタイトル。
	Title string `json:"title"`
	// CreatedBy は削除されたイベントの作成者。
	CreatedBy string `json:"createdBy"`
}
