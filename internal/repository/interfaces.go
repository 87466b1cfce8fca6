// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/studytracker/internal/model"
)

// ストア層が返す番兵エラー。サービス層でAPIErrorに変換する。
var (
	// ErrNotFound は更新・削除対象の行が存在しないことを表す。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail はメールアドレスのユニーク制約違反を表す。
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrOpenSessionExists は同一ユーザーの進行中セッションが既に存在することを表す。
	ErrOpenSessionExists = errors.New("open session already exists")
	// ErrSessionClosed は終了済みセッションのended_atを更新しようとしたことを表す。
	ErrSessionClosed = errors.New("session already closed")
	// ErrInvalidTimeRange はstarted_at < ended_at のCHECK制約違反を表す。
	ErrInvalidTimeRange = errors.New("ended_at must be after started_at")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。メールアドレスが重複する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// DeleteWithSessions はユーザーが所有する学習セッションとユーザー本体を
	// 同一トランザクションで削除する。ユーザーが存在しない場合はErrNotFoundを返す。
	DeleteWithSessions(ctx context.Context, id string) error
}

// StudySessionRepository は学習セッションの永続化インターフェース。
type StudySessionRepository interface {
	// CountOpenByUserID はended_atが未設定のセッション数を返す。
	CountOpenByUserID(ctx context.Context, userID string) (int, error)

	// CreateOpen は進行中セッションを作成し、採番されたIDと作成日時をsessionに設定する。
	// 進行中セッションの存在確認と挿入は同一トランザクションで行い、
	// 既に存在する場合はErrOpenSessionExistsを返す。
	CreateOpen(ctx context.Context, session *model.StudySession) error

	// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.StudySession, error)

	// UpdateEndedAt は進行中セッションのended_atを設定し、更新後のセッションを返す。
	// 既に終了済みの場合はErrSessionClosedを返す。
	UpdateEndedAt(ctx context.Context, id int64, endedAt time.Time) (*model.StudySession, error)

	// List はユーザーのセッションをfilterで絞り込み、started_at降順で返す。
	List(ctx context.Context, userID string, filter model.SessionFilter) ([]*model.StudySession, error)

	// ListClosedOverlapping は [from, to) と重なる終了済みセッションを返す。
	// started_at < to かつ ended_at > from の行をstarted_at昇順で返す。
	ListClosedOverlapping(ctx context.Context, userID string, from, to time.Time) ([]*model.StudySession, error)

	// DeleteByID は指定IDのセッションを削除する。存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id int64) error
}
