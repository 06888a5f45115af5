package date

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Layout は暦日の文字列表現。
const Layout = "2006-01-02"

// Date は時刻成分を持たない暦日。ゼロ値は未設定を表す。
type Date struct {
	// Year は西暦年。
	Year int
	// Month は月。
	Month time.Month
	// Day は日。
	Day int
}

// New は年・月・日からDateを生成する。範囲外の値は time.Date と同様に正規化される。
func New(year int, month time.Month, day int) Date {
	return Of(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Of はtime.Timeの暦日部分を取り出す。
func Of(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Parse は "2006-01-02" 形式の文字列を解析する。
// "2024-02-30" のように実在しない日付や、0000年はエラーになる。
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("日付の形式が不正です（YYYY-MM-DD）: %q", s)
	}
	if t.Year() < 1 {
		return Date{}, fmt.Errorf("年は0001以上を指定してください: %q", s)
	}
	return Of(t), nil
}

// String は "2006-01-02" 形式の文字列を返す。ゼロ値の場合は空文字列。
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero は未設定かどうかを返す。
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time はUTCの0時0分を表すtime.Timeを返す。
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday は曜日を返す。
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays はn日後（負数ならn日前）の日付を返す。
func (d Date) AddDays(n int) Date {
	return Of(d.Time().AddDate(0, 0, n))
}

// Compare はdがoより前なら-1、同じなら0、後なら+1を返す。
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Before はdがoより前の日付かどうかを返す。
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After はdがoより後の日付かどうかを返す。
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// Between はdが [from, to] の範囲（両端を含む）にあるかどうかを返す。
func (d Date) Between(from, to Date) bool {
	return d.Compare(from) >= 0 && d.Compare(to) <= 0
}

// DaysIn は指定された年月の日数を返す。
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// MarshalJSON は "2006-01-02" 形式のJSON文字列に変換する。
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON はJSON文字列を解析する。空文字列とnullはゼロ値として扱う。
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("日付は文字列で指定してください: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value はデータベースへ "2006-01-02" 形式のTEXTとして保存する。
// 文字列の辞書順が日付順と一致するため、SQLでの範囲比較にそのまま使える。
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan はデータベースの値からDateを復元する。
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case time.Time:
		*d = Of(v)
		return nil
	default:
		return fmt.Errorf("Dateに変換できない型です: %T", src)
	}
}

func (d *Date) scanString(s string) error {
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
