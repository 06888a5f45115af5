package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/nao1215/sharedcal/internal/store"
)

// productID はPRODIDに設定するサービス名。
const productID = "sharedcal"

// propertyCreatedBy は作成者のユーザー名を出力する拡張プロパティ。
const propertyCreatedBy = ical.ComponentProperty("X-SHAREDCAL-CREATED-BY")

// Export はイベント一覧を終日のVEVENTとして含むカレンダーを返す。
// DTENDは排他的な値のため終了日の翌日を設定する。
func Export(name string, events []store.Event) string {
	cal := ical.NewCalendarFor(productID)
	cal.SetMethod(ical.MethodPublish)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	stamp := time.Now()
	for _, e := range events {
		vevent := cal.AddEvent(e.ID + "@" + productID)
		vevent.SetSummary(e.Title)
		if e.Description != "" {
			vevent.SetDescription(e.Description)
		}
		vevent.SetAllDayStartAt(e.StartDate.Time())
		vevent.SetAllDayEndAt(e.EndDate.AddDays(1).Time())
		vevent.SetDtStampTime(stamp)
		if !e.CreatedAt.IsZero() {
			vevent.SetCreatedTime(e.CreatedAt)
		}
		if e.Color != "" {
			vevent.SetColor(e.Color)
		}
		vevent.SetProperty(propertyCreatedBy, e.CreatedBy)
	}
	return cal.Serialize()
}
