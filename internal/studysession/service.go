// Package studysession は学習セッションのライフサイクル（開始・終了・一覧・削除）を管理する。
// セッションは OPEN → CLOSED の一方向にのみ遷移し、ユーザーごとに進行中セッションは最大1件。
package studysession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/studytracker/internal/clock"
	"github.com/hitoshi/studytracker/internal/metrics"
	"github.com/hitoshi/studytracker/internal/model"
	"github.com/hitoshi/studytracker/internal/repository"
	"github.com/hitoshi/studytracker/internal/timeutil"
)

// UserFinder はユーザー存在確認に使うインターフェース。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// StartInput はセッション開始の入力値。
// StartedAtが空の場合は現在時刻を使う。
type StartInput struct {
	StartedAt string
	Memo      *string
}

// StopInput はセッション終了の入力値。
// EndedAtが空の場合は現在時刻を使う。
type StopInput struct {
	EndedAt string
}

// ListInput はセッション一覧の絞り込み条件。
// From、Toはstarted_atに対する閉区間の境界で、オフセットがない場合はUTCとみなす。
type ListInput struct {
	From   string
	To     string
	Status string
}

// Service は学習セッションのライフサイクルを管理するサービス層。
type Service struct {
	users    UserFinder
	sessions repository.StudySessionRepository
	clock    clock.Clock
	metrics  metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
// clkがnilの場合はシステム時計、mcがnilの場合は記録なしの実装を使う。
func NewService(
	users UserFinder,
	sessions repository.StudySessionRepository,
	clk clock.Clock,
	mc metrics.MetricsCollector,
) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{
		users:    users,
		sessions: sessions,
		clock:    clk,
		metrics:  mc,
	}
}

// Start は進行中セッションを作成する。
// 確認順序: ユーザー存在（NotFound）→ 進行中セッション（Conflict）→ 開始日時（Validation）。
func (s *Service) Start(ctx context.Context, userID string, in StartInput) (*model.StudySession, error) {
	session, err := s.start(ctx, userID, in)
	if err != nil {
		return nil, s.reject("start", err)
	}

	s.metrics.RecordSessionStarted()
	slog.Info("学習セッションを開始しました",
		slog.String("user_id", session.UserID),
		slog.Int64("session_id", session.ID),
		slog.Time("started_at", session.StartedAt),
	)
	return session, nil
}

func (s *Service) start(ctx context.Context, rawUserID string, in StartInput) (*model.StudySession, error) {
	userID, err := s.requireUser(ctx, rawUserID)
	if err != nil {
		return nil, err
	}

	open, err := s.sessions.CountOpenByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("進行中セッション数の取得に失敗しました: %w", err)
	}
	if open > 0 {
		return nil, model.NewActiveSessionExistsError()
	}

	startedAt := s.clock.Now()
	if in.StartedAt != "" {
		startedAt, err = timeutil.ParseInstant("started_at", in.StartedAt)
		if err != nil {
			return nil, err
		}
	}

	session := &model.StudySession{
		UserID:    userID,
		StartedAt: startedAt,
		Memo:      in.Memo,
		CreatedAt: s.clock.Now(),
	}
	err = s.sessions.CreateOpen(ctx, session)
	switch {
	case errors.Is(err, repository.ErrOpenSessionExists):
		return nil, model.NewActiveSessionExistsError()
	case errors.Is(err, repository.ErrNotFound):
		return nil, model.NewUserNotFoundError()
	case err != nil:
		return nil, fmt.Errorf("学習セッションの作成に失敗しました: %w", err)
	}
	return session, nil
}

// Stop は進行中セッションを終了する。
// 確認順序: 所有（NotFound）→ 終了済み（Conflict）→ 終了日時（Validation）→ 前後関係（Validation）。
func (s *Service) Stop(ctx context.Context, userID string, sessionID int64, in StopInput) (*model.StudySession, error) {
	session, err := s.stop(ctx, userID, sessionID, in)
	if err != nil {
		return nil, s.reject("stop", err)
	}

	s.metrics.RecordSessionStopped(session.EndedAt.Sub(session.StartedAt))
	slog.Info("学習セッションを終了しました",
		slog.String("user_id", session.UserID),
		slog.Int64("session_id", session.ID),
		slog.Time("ended_at", *session.EndedAt),
	)
	return session, nil
}

func (s *Service) stop(ctx context.Context, userID string, sessionID int64, in StopInput) (*model.StudySession, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsOpen() {
		return nil, model.NewSessionAlreadyStoppedError(sessionID)
	}

	endedAt := s.clock.Now()
	if in.EndedAt != "" {
		endedAt, err = timeutil.ParseInstant("ended_at", in.EndedAt)
		if err != nil {
			return nil, err
		}
	}
	if !endedAt.After(session.StartedAt) {
		return nil, model.NewInvalidTimeRangeError()
	}

	updated, err := s.sessions.UpdateEndedAt(ctx, sessionID, endedAt)
	switch {
	case errors.Is(err, repository.ErrSessionClosed):
		return nil, model.NewSessionAlreadyStoppedError(sessionID)
	case errors.Is(err, repository.ErrInvalidTimeRange):
		return nil, model.NewInvalidTimeRangeError()
	case err != nil:
		return nil, fmt.Errorf("学習セッションの更新に失敗しました: %w", err)
	}
	return updated, nil
}

// List はユーザーのセッションをstarted_at降順で返す。
func (s *Service) List(ctx context.Context, userID string, in ListInput) ([]*model.StudySession, error) {
	sessions, err := s.list(ctx, userID, in)
	if err != nil {
		return nil, s.reject("list", err)
	}
	return sessions, nil
}

func (s *Service) list(ctx context.Context, rawUserID string, in ListInput) ([]*model.StudySession, error) {
	userID, err := s.requireUser(ctx, rawUserID)
	if err != nil {
		return nil, err
	}

	status, err := model.ParseSessionStatus(in.Status)
	if err != nil {
		return nil, err
	}
	filter := model.SessionFilter{Status: status}

	if in.From != "" {
		from, err := timeutil.ParseBound("from", in.From)
		if err != nil {
			return nil, err
		}
		filter.StartFrom = &from
	}
	if in.To != "" {
		to, err := timeutil.ParseBound("to", in.To)
		if err != nil {
			return nil, err
		}
		filter.StartTo = &to
	}

	sessions, err := s.sessions.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("学習セッション一覧の取得に失敗しました: %w", err)
	}
	if sessions == nil {
		sessions = []*model.StudySession{}
	}
	return sessions, nil
}

// Delete はユーザーのセッションを状態に関係なく削除する。
func (s *Service) Delete(ctx context.Context, userID string, sessionID int64) error {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err == nil {
		err = s.sessions.DeleteByID(ctx, sessionID)
		if errors.Is(err, repository.ErrNotFound) {
			err = model.NewSessionNotFoundError(sessionID)
		} else if err != nil {
			err = fmt.Errorf("学習セッションの削除に失敗しました: %w", err)
		}
	}
	if err != nil {
		return s.reject("delete", err)
	}

	s.metrics.RecordSessionDeleted()
	slog.Info("学習セッションを削除しました",
		slog.String("user_id", session.UserID),
		slog.Int64("session_id", sessionID),
	)
	return nil
}

// requireUser はユーザーIDを正規化し、ユーザーが存在することを確認する。
func (s *Service) requireUser(ctx context.Context, rawUserID string) (string, error) {
	userID, err := model.CanonicalUserID(rawUserID)
	if err != nil {
		return "", err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return "", model.NewUserNotFoundError()
	}
	return userID, nil
}

// ownedSession は指定ユーザーが所有するセッションを返す。
// 他ユーザーのセッションは存在しないものとして扱う。
func (s *Service) ownedSession(ctx context.Context, rawUserID string, sessionID int64) (*model.StudySession, error) {
	userID, err := model.CanonicalUserID(rawUserID)
	if err != nil {
		return nil, model.NewSessionNotFoundError(sessionID)
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("学習セッションの取得に失敗しました: %w", err)
	}
	if session == nil || session.UserID != userID {
		return nil, model.NewSessionNotFoundError(sessionID)
	}
	return session, nil
}

// reject はビジネスエラーをメトリクスに記録してそのまま返す。
func (s *Service) reject(operation string, err error) error {
	if kind := model.KindOf(err); kind != model.KindUnknown {
		s.metrics.RecordRejected(operation, kind.String())
	}
	return err
}
