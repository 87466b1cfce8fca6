package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/studytracker/internal/middleware"
	"github.com/hitoshi/studytracker/internal/model"
	"github.com/hitoshi/studytracker/internal/timeutil"
)

// maxRequestBodyBytes はJSONリクエストボディの上限サイズ。
const maxRequestBodyBytes = 1 << 20

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// sessionResponse は学習セッションのAPIレスポンス。
// 進行中のセッションではended_atがnullになる。
type sessionResponse struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"user_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	Memo      *string    `json:"memo"`
	CreatedAt time.Time  `json:"created_at"`
}

// sessionMinutesResponse は日次統計のセッション内訳。
type sessionMinutesResponse struct {
	SessionID int64     `json:"session_id"`
	Minutes   int       `json:"minutes"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// dailyStatsResponse は日次統計のAPIレスポンス。
type dailyStatsResponse struct {
	Date         string                   `json:"date"`
	TotalMinutes int                      `json:"total_minutes"`
	Sessions     []sessionMinutesResponse `json:"sessions"`
}

// dayMinutesResponse は週次統計の1日分。
type dayMinutesResponse struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// weeklyStatsResponse は週次統計のAPIレスポンス。
type weeklyStatsResponse struct {
	WeekStart    string               `json:"week_start"`
	WeekEnd      string               `json:"week_end"`
	TotalMinutes int                  `json:"total_minutes"`
	ByDay        []dayMinutesResponse `json:"by_day"`
}

// --- ヘルパー関数 ---

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC(),
	}
}

func toSessionResponse(s *model.StudySession) sessionResponse {
	resp := sessionResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		StartedAt: s.StartedAt.UTC(),
		Memo:      s.Memo,
		CreatedAt: s.CreatedAt.UTC(),
	}
	if s.EndedAt != nil {
		ended := s.EndedAt.UTC()
		resp.EndedAt = &ended
	}
	return resp
}

func toDailyStatsResponse(d *model.DailyStats) dailyStatsResponse {
	resp := dailyStatsResponse{
		Date:         d.Date.Format(timeutil.DateLayout),
		TotalMinutes: d.TotalMinutes,
		Sessions:     make([]sessionMinutesResponse, 0, len(d.Sessions)),
	}
	for _, s := range d.Sessions {
		resp.Sessions = append(resp.Sessions, sessionMinutesResponse{
			SessionID: s.SessionID,
			Minutes:   s.Minutes,
			StartedAt: s.StartedAt.UTC(),
			EndedAt:   s.EndedAt.UTC(),
		})
	}
	return resp
}

func toWeeklyStatsResponse(w *model.WeeklyStats) weeklyStatsResponse {
	resp := weeklyStatsResponse{
		WeekStart:    w.WeekStart.Format(timeutil.DateLayout),
		WeekEnd:      w.WeekEnd.Format(timeutil.DateLayout),
		TotalMinutes: w.TotalMinutes,
		ByDay:        make([]dayMinutesResponse, 0, len(w.ByDay)),
	}
	for _, d := range w.ByDay {
		resp.ByDay = append(resp.ByDay, dayMinutesResponse{
			Date:    d.Date.Format(timeutil.DateLayout),
			Minutes: d.Minutes,
		})
	}
	return resp
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// decodeJSONBody はリクエストボディをdstにデコードする。
// 空のボディはエラーとせず、dstをゼロ値のまま残す。
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return model.NewInvalidRequestError("リクエストボディの解析に失敗しました")
	}
	return nil
}

// handleServiceError はサービス層から返されたエラーをレスポンスに変換する。
// エラー種別を持つAPIErrorは種別に応じたステータスで返し、それ以外は500として詳細をログに残す。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Kind != model.KindUnknown {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", chimw.GetReqID(r.Context())),
	)
	middleware.WriteInternalServerError(w)
}
