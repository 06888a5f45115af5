package query

import (
	"testing"
	"time"

	"github.com/nao1215/sharedcal/internal/store"
)

// TestMonth は月表示のグリッド生成を検証する。
func TestMonth(t *testing.T) {
	t.Parallel()

	t.Run("2024年2月は閏年で29日・木曜始まり", func(t *testing.T) {
		t.Parallel()

		view, err := Month(2024, time.February, nil, mustDate(t, "2024-02-14"))
		if err != nil {
			t.Fatalf("Month()でエラーが発生: %v", err)
		}
		if len(view.Days) != 29 {
			t.Errorf("len(Days) = %d, want 29", len(view.Days))
		}
		if view.LeadingBlanks != 4 {
			t.Errorf("LeadingBlanks = %d, want 4", view.LeadingBlanks)
		}
		for _, cell := range view.Days {
			wantToday := cell.Date.Day == 14
			if cell.Today != wantToday {
				t.Errorf("%s: Today = %v, want %v", cell.Date, cell.Today, wantToday)
			}
		}
	})

	t.Run("2024年9月は日曜始まりで空セルなし", func(t *testing.T) {
		t.Parallel()

		view, err := Month(2024, time.September, nil, mustDate(t, "2024-01-01"))
		if err != nil {
			t.Fatalf("Month()でエラーが発生: %v", err)
		}
		if view.LeadingBlanks != 0 {
			t.Errorf("LeadingBlanks = %d, want 0", view.LeadingBlanks)
		}
		if len(view.Days) != 30 {
			t.Errorf("len(Days) = %d, want 30", len(view.Days))
		}
		for _, cell := range view.Days {
			if cell.Today {
				t.Errorf("%s: 月外のtodayでTodayがtrue", cell.Date)
			}
		}
	})

	t.Run("月をまたぐイベントが月内の各日に配置されること", func(t *testing.T) {
		t.Parallel()

		events := []store.Event{
			newEvent(t, "span", "2024-02-28", "2024-03-02", "ana"),
			newEvent(t, "other", "2024-04-01", "2024-04-01", "bob"),
		}
		view, err := Month(2024, time.March, events, mustDate(t, "2024-03-01"))
		if err != nil {
			t.Fatalf("Month()でエラーが発生: %v", err)
		}
		for _, cell := range view.Days {
			want := 0
			if cell.Date.Day <= 2 {
				want = 1
			}
			if len(cell.Events) != want {
				t.Errorf("%s: len(Events) = %d, want %d", cell.Date, len(cell.Events), want)
			}
		}
	})

	t.Run("範囲外の月や年はエラー", func(t *testing.T) {
		t.Parallel()

		today := mustDate(t, "2024-01-01")
		if _, err := Month(2024, 0, nil, today); err == nil {
			t.Error("月0でエラーが返らない")
		}
		if _, err := Month(2024, 13, nil, today); err == nil {
			t.Error("月13でエラーが返らない")
		}
		if _, err := Month(0, time.January, nil, today); err == nil {
			t.Error("年0でエラーが返らない")
		}
	})
}

// TestRange は月の初日と末日を検証する。
func TestRange(t *testing.T) {
	t.Parallel()

	first, last, err := Range(2023, time.February)
	if err != nil {
		t.Fatalf("Range()でエラーが発生: %v", err)
	}
	if first.String() != "2023-02-01" || last.String() != "2023-02-28" {
		t.Errorf("Range() = %s, %s", first, last)
	}
}
