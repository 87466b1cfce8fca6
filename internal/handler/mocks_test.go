package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/studytracker/internal/model"
	"github.com/hitoshi/studytracker/internal/studysession"
)

// --- モック定義 ---

type mockUserService struct {
	createFn func(ctx context.Context, email string) (*model.User, error)
	getFn    func(ctx context.Context, userID string) (*model.User, error)
	deleteFn func(ctx context.Context, userID string) error
}

func (m *mockUserService) Create(ctx context.Context, email string) (*model.User, error) {
	return m.createFn(ctx, email)
}

func (m *mockUserService) Get(ctx context.Context, userID string) (*model.User, error) {
	return m.getFn(ctx, userID)
}

func (m *mockUserService) Delete(ctx context.Context, userID string) error {
	return m.deleteFn(ctx, userID)
}

type mockSessionService struct {
	startFn  func(ctx context.Context, userID string, in studysession.StartInput) (*model.StudySession, error)
	stopFn   func(ctx context.Context, userID string, sessionID int64, in studysession.StopInput) (*model.StudySession, error)
	listFn   func(ctx context.Context, userID string, in studysession.ListInput) ([]*model.StudySession, error)
	deleteFn func(ctx context.Context, userID string, sessionID int64) error
}

func (m *mockSessionService) Start(ctx context.Context, userID string, in studysession.StartInput) (*model.StudySession, error) {
	return m.startFn(ctx, userID, in)
}

func (m *mockSessionService) Stop(ctx context.Context, userID string, sessionID int64, in studysession.StopInput) (*model.StudySession, error) {
	return m.stopFn(ctx, userID, sessionID, in)
}

func (m *mockSessionService) List(ctx context.Context, userID string, in studysession.ListInput) ([]*model.StudySession, error) {
	return m.listFn(ctx, userID, in)
}

func (m *mockSessionService) Delete(ctx context.Context, userID string, sessionID int64) error {
	return m.deleteFn(ctx, userID, sessionID)
}

type mockStatsService struct {
	dailyFn  func(ctx context.Context, userID, date string) (*model.DailyStats, error)
	weeklyFn func(ctx context.Context, userID, weekStart string) (*model.WeeklyStats, error)
}

func (m *mockStatsService) Daily(ctx context.Context, userID, date string) (*model.DailyStats, error) {
	return m.dailyFn(ctx, userID, date)
}

func (m *mockStatsService) Weekly(ctx context.Context, userID, weekStart string) (*model.WeeklyStats, error) {
	return m.weeklyFn(ctx, userID, weekStart)
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

// --- テストヘルパー ---

// withChiURLParams はchiのURLパラメータをリクエストのコンテキストに設定する。
func withChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseAPIErrorResponse はレスポンスボディから統一エラーフォーマットを解析する。
func parseAPIErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

