// Package stats は学習セッションの時間集計（日次・週次）を提供する。
//
// 集計はすべてUTCで行う。ウィンドウは [0時, 翌日0時) の半開区間とする。
// 23:30〜翌0:30 のセッションは前日30分・翌日30分・合計60分になる。
// 終端を 23:59:59.999999 の閉区間にすると前日分が切り捨てで29分になるため採用しない。
package stats

import (
	"time"

	"github.com/hitoshi/studytracker/internal/model"
	"github.com/hitoshi/studytracker/internal/timeutil"
)

// DaysPerWeek は週次集計の日数。
const DaysPerWeek = 7

// Window は集計対象の時間帯 [Start, End) を表す。
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow はdateを含む日のウィンドウを返す。
func DayWindow(date time.Time) Window {
	start := timeutil.StartOfDay(date)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// WeekWindow はweekStartから7日間のウィンドウを返す。
func WeekWindow(weekStart time.Time) Window {
	start := timeutil.StartOfDay(weekStart)
	return Window{Start: start, End: start.AddDate(0, 0, DaysPerWeek)}
}

// Intersects はセッション [start, end) がウィンドウと重なるかどうかを返す。
// 境界で接するだけの場合は重ならないものとする。
func (w Window) Intersects(start, end time.Time) bool {
	return start.Before(w.End) && end.After(w.Start)
}

// OverlapMinutes はセッション [start, end) とウィンドウが重なる時間を分単位で返す。
// 端数の秒は切り捨てる。
func OverlapMinutes(start, end time.Time, w Window) int {
	latestStart := start
	if w.Start.After(latestStart) {
		latestStart = w.Start
	}
	earliestEnd := end
	if w.End.Before(earliestEnd) {
		earliestEnd = w.End
	}
	if !latestStart.Before(earliestEnd) {
		return 0
	}
	return int(earliestEnd.Sub(latestStart) / time.Minute)
}

// Daily はdateの日次統計を計算する。
// 進行中のセッションとウィンドウと重ならないセッションは除外し、残りは渡された順序のまま内訳に含める。
func Daily(sessions []*model.StudySession, date time.Time) *model.DailyStats {
	w := DayWindow(date)
	result := &model.DailyStats{
		Date:     w.Start,
		Sessions: []model.SessionMinutes{},
	}

	for _, s := range sessions {
		if s.EndedAt == nil || !w.Intersects(s.StartedAt, *s.EndedAt) {
			continue
		}
		minutes := OverlapMinutes(s.StartedAt, *s.EndedAt, w)
		result.TotalMinutes += minutes
		result.Sessions = append(result.Sessions, model.SessionMinutes{
			SessionID: s.ID,
			Minutes:   minutes,
			StartedAt: s.StartedAt,
			EndedAt:   *s.EndedAt,
		})
	}
	return result
}

// Weekly はweekStartから7日間の週次統計を計算する。
// 日をまたぐセッションは各日のウィンドウごとに按分され、合計は日別の和と一致する。
func Weekly(sessions []*model.StudySession, weekStart time.Time) *model.WeeklyStats {
	start := timeutil.StartOfDay(weekStart)
	result := &model.WeeklyStats{
		WeekStart: start,
		WeekEnd:   start.AddDate(0, 0, DaysPerWeek-1),
		ByDay:     make([]model.DayMinutes, 0, DaysPerWeek),
	}

	for i := 0; i < DaysPerWeek; i++ {
		w := DayWindow(start.AddDate(0, 0, i))
		day := model.DayMinutes{Date: w.Start}
		for _, s := range sessions {
			if s.EndedAt == nil {
				continue
			}
			day.Minutes += OverlapMinutes(s.StartedAt, *s.EndedAt, w)
		}
		result.TotalMinutes += day.Minutes
		result.ByDay = append(result.ByDay, day)
	}
	return result
}
