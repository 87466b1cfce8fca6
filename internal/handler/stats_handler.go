package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/studytracker/internal/model"
)

// StatsServiceInterface は統計ハンドラーが必要とするサービスインターフェース。
type StatsServiceInterface interface {
	// Daily は日次統計を返す。dateが空の場合はUTCの今日。
	Daily(ctx context.Context, userID, date string) (*model.DailyStats, error)
	// Weekly は週次統計を返す。weekStartが空の場合はUTCの今週の月曜日。
	Weekly(ctx context.Context, userID, weekStart string) (*model.WeeklyStats, error)
}

// StatsHandler は学習時間統計のHTTPハンドラー。
type StatsHandler struct {
	service StatsServiceInterface
}

// NewStatsHandler はStatsHandlerを生成する。
func NewStatsHandler(service StatsServiceInterface) *StatsHandler {
	return &StatsHandler{
		service: service,
	}
}

// Daily は日次統計を取得する。
// GET /api/users/{user_id}/stats/daily?date=YYYY-MM-DD
func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Daily(r.Context(), chi.URLParam(r, "user_id"), r.URL.Query().Get("date"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDailyStatsResponse(stats))
}

// Weekly は週次統計を取得する。
// GET /api/users/{user_id}/stats/weekly?week_start=YYYY-MM-DD
func (h *StatsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Weekly(r.Context(), chi.URLParam(r, "user_id"), r.URL.Query().Get("week_start"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toWeeklyStatsResponse(stats))
}
