package model

import "time"

// SessionMinutes は日次統計における1セッション分の内訳。
type SessionMinutes struct {
	SessionID int64
	Minutes   int
	StartedAt time.Time
	EndedAt   time.Time
}

// DailyStats は1日分の学習時間集計結果。
type DailyStats struct {
	Date         time.Time
	TotalMinutes int
	Sessions     []SessionMinutes
}

// DayMinutes は週次統計における1日分の学習時間。
type DayMinutes struct {
	Date    time.Time
	Minutes int
}

// WeeklyStats は7日分の学習時間集計結果。
// TotalMinutesは常にByDayのMinutesの合計と一致する。
type WeeklyStats struct {
	WeekStart    time.Time
	WeekEnd      time.Time
	TotalMinutes int
	ByDay        []DayMinutes
}
