package model

import (
	"time"

	"github.com/google/uuid"
)

// User は学習記録を所有するユーザーを表す。
// 作成後は削除以外で変更されない。
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// CanonicalUserID はユーザーIDを小文字ハイフン区切りの正規形に変換する。
// UUIDとして解釈できないIDはどのユーザーにも一致しないため、UserNotFoundエラーを返す。
func CanonicalUserID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", NewUserNotFoundError()
	}
	return id.String(), nil
}
