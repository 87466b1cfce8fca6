// Package timeutil は日時入力の検証と日付計算の共通ヘルパーを提供する。
// 集計ウィンドウはすべてUTCで計算する。
package timeutil

import (
	"strings"
	"time"

	"github.com/hitoshi/studytracker/internal/model"
)

// DateLayout は日付パラメータの形式。
const DateLayout = "2006-01-02"

// offsetLayouts はUTCオフセット付きとして受け付ける日時形式。
var offsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
}

// naiveLayouts はオフセットを持たない日時形式。
// 形式としては正しいがタイムゾーンが不明なものを判別するために使う。
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseInstant はUTCオフセット付きの日時文字列を解釈し、UTCに正規化して返す。
// オフセットのない日時はTimezoneRequiredエラー、解釈できない値はInvalidTimestampエラーとなる。
func ParseInstant(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	if t, ok := parseWithOffset(value); ok {
		return t, nil
	}
	if _, ok := parseNaive(value); ok {
		return time.Time{}, model.NewTimezoneRequiredError(field)
	}
	return time.Time{}, model.NewInvalidTimestampError(field, value)
}

// ParseBound は一覧の絞り込み境界として日時文字列を解釈する。
// ParseInstantと異なり、オフセットのない日時はUTCとみなす。
func ParseBound(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	if t, ok := parseWithOffset(value); ok {
		return t, nil
	}
	if t, ok := parseNaive(value); ok {
		return t, nil
	}
	return time.Time{}, model.NewInvalidTimestampError(field, value)
}

// ParseDate はYYYY-MM-DD形式の日付を解釈し、UTCの0時として返す。
func ParseDate(field, value string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, model.NewInvalidDateError(field, value)
	}
	return d, nil
}

// StartOfDay はtをUTCに変換し、その日の0時を返す。
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MondayOf はtを含む週（月曜始まり）の月曜日0時（UTC）を返す。
func MondayOf(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func parseWithOffset(value string) (time.Time, bool) {
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseNaive(value string) (time.Time, bool) {
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
