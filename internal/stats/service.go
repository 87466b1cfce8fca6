package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/studytracker/internal/clock"
	"github.com/hitoshi/studytracker/internal/metrics"
	"github.com/hitoshi/studytracker/internal/model"
	"github.com/hitoshi/studytracker/internal/timeutil"
)

// UserFinder はユーザー存在確認に使うインターフェース。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// SessionSource は集計対象の終了済みセッションを取得するインターフェース。
type SessionSource interface {
	ListClosedOverlapping(ctx context.Context, userID string, from, to time.Time) ([]*model.StudySession, error)
}

// Service は日次・週次統計を提供するサービス層。
type Service struct {
	users    UserFinder
	sessions SessionSource
	clock    clock.Clock
	metrics  metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(users UserFinder, sessions SessionSource, clk clock.Clock, mc metrics.MetricsCollector) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{users: users, sessions: sessions, clock: clk, metrics: mc}
}

// Daily はdate（YYYY-MM-DD）の日次統計を返す。dateが空の場合はUTCの今日を使う。
func (s *Service) Daily(ctx context.Context, userID, date string) (*model.DailyStats, error) {
	began := time.Now()

	day := timeutil.StartOfDay(s.clock.Now())
	if date != "" {
		var err error
		if day, err = timeutil.ParseDate("date", date); err != nil {
			return nil, s.reject("daily", err)
		}
	}

	w := DayWindow(day)
	sessions, err := s.fetch(ctx, userID, w)
	if err != nil {
		return nil, s.reject("daily", err)
	}

	result := Daily(sessions, day)
	s.metrics.RecordStatsQuery("daily", time.Since(began))
	return result, nil
}

// Weekly はweekStart（YYYY-MM-DD）から7日間の週次統計を返す。
// weekStartが空の場合はUTCの今週の月曜日を使う。
func (s *Service) Weekly(ctx context.Context, userID, weekStart string) (*model.WeeklyStats, error) {
	began := time.Now()

	start := timeutil.MondayOf(s.clock.Now())
	if weekStart != "" {
		var err error
		if start, err = timeutil.ParseDate("week_start", weekStart); err != nil {
			return nil, s.reject("weekly", err)
		}
	}

	sessions, err := s.fetch(ctx, userID, WeekWindow(start))
	if err != nil {
		return nil, s.reject("weekly", err)
	}

	result := Weekly(sessions, start)
	s.metrics.RecordStatsQuery("weekly", time.Since(began))
	return result, nil
}

// fetch はユーザーの存在を確認し、ウィンドウと重なる終了済みセッションを取得する。
func (s *Service) fetch(ctx context.Context, rawUserID string, w Window) ([]*model.StudySession, error) {
	userID, err := model.CanonicalUserID(rawUserID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	sessions, err := s.sessions.ListClosedOverlapping(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("集計対象セッションの取得に失敗しました: %w", err)
	}
	return sessions, nil
}

func (s *Service) reject(window string, err error) error {
	if kind := model.KindOf(err); kind != model.KindUnknown {
		s.metrics.RecordRejected(window+"_stats", kind.String())
	}
	return err
}
