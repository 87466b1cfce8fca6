// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// ErrorKind はビジネスエラーの種別を表す。
// HTTP層でステータスコードに変換される。
type ErrorKind int

const (
	// KindUnknown はAPIErrorではないエラーを表す。
	KindUnknown ErrorKind = iota
	// KindNotFound は参照先のユーザーまたはセッションが存在しないことを表す。
	KindNotFound
	// KindConflict はビジネス上の不変条件に反する操作を表す。
	KindConflict
	// KindValidation は入力値の不備を表す。
	KindValidation
)

// String はエラー種別の名前を返す。
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Kind     ErrorKind // エラー種別
	Code     string    // エラーコード
	Message  string    // エラーメッセージ
	Category string    // カテゴリ: user, session, validation, system
	Action   string    // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// KindOf はエラーチェーンからAPIErrorを探し、その種別を返す。
// APIErrorが含まれない場合はKindUnknownを返す。
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound          = "USER_NOT_FOUND"
	ErrCodeSessionNotFound       = "SESSION_NOT_FOUND"
	ErrCodeActiveSessionExists   = "ACTIVE_SESSION_EXISTS"
	ErrCodeSessionAlreadyStopped = "SESSION_ALREADY_STOPPED"
	ErrCodeDuplicateEmail        = "DUPLICATE_EMAIL"
	ErrCodeInvalidEmail          = "INVALID_EMAIL"
	ErrCodeTimezoneRequired      = "TIMEZONE_REQUIRED"
	ErrCodeInvalidTimestamp      = "INVALID_TIMESTAMP"
	ErrCodeInvalidTimeRange      = "INVALID_TIME_RANGE"
	ErrCodeInvalidDate           = "INVALID_DATE"
	ErrCodeInvalidStatus         = "INVALID_STATUS"
	ErrCodeInvalidRequest        = "INVALID_REQUEST"
	ErrCodeRateLimitExceeded     = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal              = "INTERNAL_ERROR"
)

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Kind:     KindNotFound,
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "user",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewSessionNotFoundError は学習セッションが見つからない場合のエラーを生成する。
// 他ユーザーのセッションも存在しないものとして扱うため、このエラーを返す。
func NewSessionNotFoundError(sessionID int64) *APIError {
	return &APIError{
		Kind:     KindNotFound,
		Code:     ErrCodeSessionNotFound,
		Message:  fmt.Sprintf("指定された学習セッションが見つかりません: %d", sessionID),
		Category: "session",
		Action:   "セッションIDを確認してください。",
	}
}

// NewActiveSessionExistsError は進行中のセッションが既に存在する場合のエラーを生成する。
func NewActiveSessionExistsError() *APIError {
	return &APIError{
		Kind:     KindConflict,
		Code:     ErrCodeActiveSessionExists,
		Message:  "進行中の学習セッションが既に存在します。",
		Category: "session",
		Action:   "進行中のセッションを終了してから、新しいセッションを開始してください。",
	}
}

// NewSessionAlreadyStoppedError は終了済みセッションを再度終了しようとした場合のエラーを生成する。
func NewSessionAlreadyStoppedError(sessionID int64) *APIError {
	return &APIError{
		Kind:     KindConflict,
		Code:     ErrCodeSessionAlreadyStopped,
		Message:  fmt.Sprintf("学習セッションは既に終了しています: %d", sessionID),
		Category: "session",
		Action:   "新しいセッションを開始してください。",
	}
}

// NewDuplicateEmailError はメールアドレスが登録済みの場合のエラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Kind:     KindValidation,
		Code:     ErrCodeDuplicateEmail,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを指定してください。",
	}
}

// NewInvalidEmailError はメールアドレスの形式が不正な場合のエラーを生成する。
func NewInvalidEmailError(email string) *APIError {
	return &APIError{
		Kind:     KindValidation,
		Code:     ErrCodeInvalidEmail,
		Message:  fmt.Sprintf("無効なメールアドレスです: %q", email),
		Category: "validation",
		Action:   "正しい形式のメールアドレスを入力してください。",
	}
}

// NewTimezoneRequiredError はタイムゾーンオフセットのない日時が指定された場合のエラーを生成する。
func NewTimezoneRequiredError(field string) *APIError {
	return &APIError{
		Kind:     KindValidation,
		Code:     ErrCodeTimezoneRequired,
		Message:  fmt.Sprintf("%s must be timezone-aware", field),
		Category: "validation",
		Action:   "UTCオフセット付きのRFC 3339形式（例: 2024-01-01T09:00:00+09:00）で指定してください。",
	}
}

// NewInvalidTimestampError は日時として解釈できない値が指定された場合のエラーを生成する。
func NewInvalidTimestampError(field, value string) *APIError {
	return &APIError{
		Kind:     KindValidation,
		Code:     ErrCodeInvalidTimestamp,
		Message:  fmt.Sprintf("%s の日時形式が不正です: %q", field, value),
		Category: "validation",
		Action:   "RFC 3339形式（例: 2024-01-01T00:00:00Z）で指定してください。",
	}
}

// NewInvalidTimeRangeError は終了日時が開始日時以前の場合のエラーを生成する。
func NewInvalidTimeRangeError() *APIError {
	return &APIError{
		Kind:     KindValidation,
		Code:     ErrCodeInvalidTimeRange,
		Message:  "ended_at must be after started_at",
		Category: "validation",
		Action:   "開始日時より後の終了日時を指定してください。",
	}
}

// NewInvalidDateError は日付として解釈できない値が指定された場合のエラーを生成する。
func NewInvalidDateError(field, value string) *APIError {
	return &APIError{
		Kind:     KindValidation,
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("%s の日付形式が不正です: %q", field, value),
		Category: "validation",
		Action:   "YYYY-MM-DD形式で指定してください。",
	}
}

// NewInvalidStatusError は無効なステータスフィルタが指定された場合のエラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Kind:     KindValidation,
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効なステータスです: %s", status),
		Category: "validation",
		Action:   "ステータスには active、closed、all のいずれかを指定してください。",
	}
}

// NewInvalidRequestError はリクエストの形式が不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Kind:     KindValidation,
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "正しいJSON形式とパラメータでリクエストしてください。",
	}
}

// NewRateLimitExceededError はレート制限超過時のエラーを生成する。
// ドメインのエラー種別を持たず、HTTP層で429として返す。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
