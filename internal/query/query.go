package query

import (
	"slices"

	"github.com/nao1215/sharedcal/internal/store"
	"github.com/nao1215/sharedcal/pkg/date"
)

// Stats はイベント一覧の集計結果。
type Stats struct {
	// TotalEvents はイベントの総数。
	TotalEvents int `json:"totalEvents"`
	// ActiveMembers はイベントを作成したユーザーの人数（重複なし）。
	ActiveMembers int `json:"activeMembers"`
}

// OnDay はイベントが指定日に含まれるかどうかを返す。
// 開始日と終了日の両端を含み、日付単位で比較する。
func OnDay(e store.Event, day date.Date) bool {
	return day.Between(e.StartDate, e.EndDate)
}

// EventsOnDay は指定日に含まれるイベントを入力の順序のまま返す。
func EventsOnDay(events []store.Event, day date.Date) []store.Event {
	out := make([]store.Event, 0)
	for _, e := range events {
		if OnDay(e, day) {
			out = append(out, e)
		}
	}
	return out
}

// SortedByStart は開始日の昇順に並べ替えたコピーを返す。
// 開始日が同じイベントは入力の順序を保つ。
func SortedByStart(events []store.Event) []store.Event {
	out := slices.Clone(events)
	if out == nil {
		out = make([]store.Event, 0)
	}
	slices.SortStableFunc(out, func(a, b store.Event) int {
		return a.StartDate.Compare(b.StartDate)
	})
	return out
}

// Aggregate はイベント数と作成者の人数を集計する。
func Aggregate(events []store.Event) Stats {
	members := make(map[string]struct{}, len(events))
	for _, e := range events {
		members[e.CreatedBy] = struct{}{}
	}
	return Stats{
		TotalEvents:   len(events),
		ActiveMembers: len(members),
	}
}
