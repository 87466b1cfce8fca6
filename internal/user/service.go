// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/studytracker/internal/clock"
	"github.com/hitoshi/studytracker/internal/model"
	"github.com/hitoshi/studytracker/internal/repository"
)

// Service はユーザー管理のサービス層。
// 登録・参照と、学習セッションを含めた削除のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	clock    clock.Clock
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		userRepo: userRepo,
		clock:    clk,
	}
}

// Create はユーザーを登録する。
// メールアドレスは前後の空白を除去して検証し、重複する場合はValidationエラーとする。
func (s *Service) Create(ctx context.Context, email string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if !validEmail(email) {
		return nil, model.NewInvalidEmailError(email)
	}

	user := &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: s.clock.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewDuplicateEmailError()
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("ユーザーを登録しました",
		slog.String("user_id", user.ID),
	)
	return user, nil
}

// Get は指定IDのユーザーを返す。
func (s *Service) Get(ctx context.Context, rawUserID string) (*model.User, error) {
	userID, err := model.CanonicalUserID(rawUserID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// Delete はユーザーと所有するすべての学習セッションを削除する。
// セッションとユーザーはストア側の単一トランザクションで削除される。
func (s *Service) Delete(ctx context.Context, rawUserID string) error {
	user, err := s.Get(ctx, rawUserID)
	if err != nil {
		return err
	}

	slog.Info("ユーザー削除を開始します",
		slog.String("user_id", user.ID),
	)

	if err := s.userRepo.DeleteWithSessions(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewUserNotFoundError()
		}
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("ユーザー削除が完了しました",
		slog.String("user_id", user.ID),
	)
	return nil
}

// validEmail はアドレスが表示名を含まない単一のメールアドレスかどうかを返す。
func validEmail(email string) bool {
	if email == "" || len(email) > 255 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	if addr.Address != email {
		return false
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	return strings.Contains(domain, ".")
}
