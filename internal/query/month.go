package query

import (
	"fmt"
	"time"

	"github.com/nao1215/sharedcal/internal/store"
	"github.com/nao1215/sharedcal/pkg/date"
)

// DayCell は月表示の1日分のセル。
type DayCell struct {
	// Date は日付。
	Date date.Date `json:"date"`
	// Today は今日かどうか。
	Today bool `json:"today"`
	// Events はその日に含まれるイベント（入力の順序）。
	Events []store.Event `json:"events"`
}

// MonthView は月表示のグリッド。週は日曜始まり。
type MonthView struct {
	// Year は年。
	Year int `json:"year"`
	// Month は月（1〜12）。
	Month int `json:"month"`
	// LeadingBlanks は1日より前に置く空セルの数（1日の曜日、日曜=0）。
	LeadingBlanks int `json:"leadingBlanks"`
	// Days は1日から月末までのセル。
	Days []DayCell `json:"days"`
}

// Range は指定された年月の初日と末日を返す。
func Range(year int, month time.Month) (date.Date, date.Date, error) {
	if month < time.January || month > time.December {
		return date.Date{}, date.Date{}, fmt.Errorf("月は1〜12で指定してください: %d", month)
	}
	if year < 1 || year > 9999 {
		return date.Date{}, date.Date{}, fmt.Errorf("年は1〜9999で指定してください: %d", year)
	}
	first := date.New(year, month, 1)
	last := date.New(year, month, date.DaysIn(year, month))
	return first, last, nil
}

// Month は指定された年月のグリッドを生成する。
// todayが月内にあれば該当セルのTodayをtrueにする。
func Month(year int, month time.Month, events []store.Event, today date.Date) (MonthView, error) {
	first, last, err := Range(year, month)
	if err != nil {
		return MonthView{}, err
	}

	view := MonthView{
		Year:          year,
		Month:         int(month),
		LeadingBlanks: int(first.Weekday()),
		Days:          make([]DayCell, 0, last.Day),
	}
	for d := first; !d.After(last); d = d.AddDays(1) {
		view.Days = append(view.Days, DayCell{
			Date:   d,
			Today:  d == today,
			Events: EventsOnDay(events, d),
		})
	}
	return view, nil
}
