package model

import "time"

// SessionStatus は学習セッション一覧のステータスフィルタを表す。
type SessionStatus string

const (
	// SessionStatusActive は進行中（ended_at未設定）のセッションのみを対象とする。
	SessionStatusActive SessionStatus = "active"
	// SessionStatusClosed は終了済みのセッションのみを対象とする。
	SessionStatusClosed SessionStatus = "closed"
	// SessionStatusAll はすべてのセッションを対象とする。
	SessionStatusAll SessionStatus = "all"
)

// ParseSessionStatus は文字列からSessionStatusを生成する。
// 空文字列はSessionStatusAllとして扱う。
func ParseSessionStatus(s string) (SessionStatus, error) {
	switch SessionStatus(s) {
	case "", SessionStatusAll:
		return SessionStatusAll, nil
	case SessionStatusActive:
		return SessionStatusActive, nil
	case SessionStatusClosed:
		return SessionStatusClosed, nil
	default:
		return "", NewInvalidStatusError(s)
	}
}

// StudySession はユーザーの学習セッションを表す。
// EndedAtがnilの間は進行中（open）、設定後は終了済み（closed）となる。
// closedからopenへ戻ることはない。
type StudySession struct {
	ID        int64
	UserID    string
	StartedAt time.Time
	EndedAt   *time.Time
	Memo      *string
	CreatedAt time.Time
}

// IsOpen はセッションが進行中かどうかを返す。
func (s *StudySession) IsOpen() bool {
	return s.EndedAt == nil
}

// SessionFilter は学習セッション一覧の絞り込み条件。
// StartFrom、StartToはstarted_atに対する閉区間の境界で、nilの場合は制限しない。
type SessionFilter struct {
	Status    SessionStatus
	StartFrom *time.Time
	StartTo   *time.Time
}
