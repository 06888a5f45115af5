package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestParse はParse関数を検証する。
func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("正しい形式の日付を解析できること", func(t *testing.T) {
		t.Parallel()

		d, err := Parse("2024-03-01")
		if err != nil {
			t.Fatalf("Parse()でエラーが発生: %v", err)
		}
		if d.Year != 2024 || d.Month != time.March || d.Day != 1 {
			t.Errorf("Parse() = %+v, want 2024-03-01", d)
		}
		if d.String() != "2024-03-01" {
			t.Errorf("String() = %q, want %q", d.String(), "2024-03-01")
		}
	})

	t.Run("不正な形式はエラーになること", func(t *testing.T) {
		t.Parallel()

		for _, s := range []string{"", "2024/03/01", "2024-3-1", "2024-02-30", "abc", "0000-06-01"} {
			if _, err := Parse(s); err == nil {
				t.Errorf("Parse(%q)がエラーを返さなかった", s)
			}
		}
	})
}

// TestCompare は日付の比較を検証する。
func TestCompare(t *testing.T) {
	t.Parallel()

	a := New(2024, time.February, 29)
	b := New(2024, time.March, 1)

	if !a.Before(b) {
		t.Errorf("%s は %s より前であるべき", a, b)
	}
	if !b.After(a) {
		t.Errorf("%s は %s より後であるべき", b, a)
	}
	if a.Compare(a) != 0 {
		t.Errorf("Compare(同じ日付) = %d, want 0", a.Compare(a))
	}
	if New(2023, time.December, 31).Compare(New(2024, time.January, 1)) != -1 {
		t.Error("年をまたぐ比較が正しくない")
	}
}

// TestBetween は両端を含む範囲判定を検証する。
func TestBetween(t *testing.T) {
	t.Parallel()

	from := New(2024, time.March, 1)
	to := New(2024, time.March, 3)

	tests := []struct {
		name string
		day  Date
		want bool
	}{
		{name: "開始日の前日", day: New(2024, time.February, 29), want: false},
		{name: "開始日", day: from, want: true},
		{name: "中間日", day: New(2024, time.March, 2), want: true},
		{name: "終了日", day: to, want: true},
		{name: "終了日の翌日", day: New(2024, time.March, 4), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.day.Between(from, to); got != tt.want {
				t.Errorf("Between(%s) = %v, want %v", tt.day, got, tt.want)
			}
		})
	}
}

// TestAddDaysAndDaysIn は日付計算を検証する。
func TestAddDaysAndDaysIn(t *testing.T) {
	t.Parallel()

	if got := New(2024, time.February, 28).AddDays(1); got.String() != "2024-02-29" {
		t.Errorf("AddDays(1) = %s, want 2024-02-29", got)
	}
	if got := New(2024, time.March, 1).AddDays(-1); got.String() != "2024-02-29" {
		t.Errorf("AddDays(-1) = %s, want 2024-02-29", got)
	}
	if got := DaysIn(2024, time.February); got != 29 {
		t.Errorf("DaysIn(2024, 2) = %d, want 29", got)
	}
	if got := DaysIn(2023, time.February); got != 28 {
		t.Errorf("DaysIn(2023, 2) = %d, want 28", got)
	}
	if got := New(2024, time.March, 1).Weekday(); got != time.Friday {
		t.Errorf("Weekday() = %v, want Friday", got)
	}
}

// TestJSON はJSONの変換を検証する。
func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("文字列として出力されること", func(t *testing.T) {
		t.Parallel()

		b, err := json.Marshal(struct {
			Start Date `json:"startDate"`
		}{Start: New(2024, time.January, 10)})
		if err != nil {
			t.Fatalf("json.Marshal()でエラーが発生: %v", err)
		}
		if string(b) != `{"startDate":"2024-01-10"}` {
			t.Errorf("json = %s", b)
		}
	})

	t.Run("空文字列はゼロ値になること", func(t *testing.T) {
		t.Parallel()

		var v struct {
			Start Date `json:"startDate"`
		}
		if err := json.Unmarshal([]byte(`{"startDate":""}`), &v); err != nil {
			t.Fatalf("json.Unmarshal()でエラーが発生: %v", err)
		}
		if !v.Start.IsZero() {
			t.Errorf("Start = %s, want zero", v.Start)
		}
	})

	t.Run("不正な日付はエラーになること", func(t *testing.T) {
		t.Parallel()

		var v struct {
			Start Date `json:"startDate"`
		}
		if err := json.Unmarshal([]byte(`{"startDate":"2024-13-01"}`), &v); err == nil {
			t.Error("不正な日付でエラーが返らなかった")
		}
	})
}

// TestScan はデータベース値からの復元を検証する。
func TestScan(t *testing.T) {
	t.Parallel()

	var d Date
	if err := d.Scan("2024-01-12"); err != nil {
		t.Fatalf("Scan(string)でエラーが発生: %v", err)
	}
	if d.String() != "2024-01-12" {
		t.Errorf("Scan(string) = %s", d)
	}
	if err := d.Scan([]byte("2024-01-13")); err != nil {
		t.Fatalf("Scan([]byte)でエラーが発生: %v", err)
	}
	if d.String() != "2024-01-13" {
		t.Errorf("Scan([]byte) = %s", d)
	}
	if err := d.Scan(42); err == nil {
		t.Error("Scan(int)がエラーを返さなかった")
	}
	v, err := New(2024, time.May, 5).Value()
	if err != nil || v != "2024-05-05" {
		t.Errorf("Value() = %v, %v", v, err)
	}
}
