package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/studytracker/internal/model"
)

const (
	studySessionColumns = `id, user_id, started_at, ended_at, memo, created_at`

	// oneOpenSessionIndex は1ユーザー1進行中セッションを保証する部分ユニークインデックス名。
	oneOpenSessionIndex = "ux_study_sessions_one_open"
	// startedBeforeEndCheck は開始・終了日時の順序を保証するCHECK制約名。
	startedBeforeEndCheck = "ck_started_before_end"
)

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresStudySessionRepo はPostgreSQLを使用した学習セッションリポジトリ。
type PostgresStudySessionRepo struct {
	db *sql.DB
}

// NewPostgresStudySessionRepo はPostgresStudySessionRepoを生成する。
func NewPostgresStudySessionRepo(db *sql.DB) *PostgresStudySessionRepo {
	return &PostgresStudySessionRepo{db: db}
}

// CountOpenByUserID はended_atが未設定のセッション数を返す。
func (r *PostgresStudySessionRepo) CountOpenByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM study_sessions WHERE user_id = $1 AND ended_at IS NULL`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count open sessions: %w", err)
	}
	return count, nil
}

// CreateOpen は進行中セッションを作成する。
// ユーザー行をFOR UPDATEでロックして同一ユーザーの開始処理を直列化し、
// 進行中セッションの再確認と挿入を同一トランザクションで行う。
// 部分ユニークインデックス違反もErrOpenSessionExistsとして扱う。
func (r *PostgresStudySessionRepo) CreateOpen(ctx context.Context, session *model.StudySession) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lockedID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM users WHERE id = $1 FOR UPDATE`,
		session.UserID,
	).Scan(&lockedID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock user: %w", err)
	}

	var open int
	if err := tx.QueryRowContext(ctx,
		`SELECT count(*) FROM study_sessions WHERE user_id = $1 AND ended_at IS NULL`,
		session.UserID,
	).Scan(&open); err != nil {
		return fmt.Errorf("failed to count open sessions: %w", err)
	}
	if open > 0 {
		return ErrOpenSessionExists
	}

	// created_atが未設定の場合はDB側の現在時刻を使う
	err = tx.QueryRowContext(ctx,
		`INSERT INTO study_sessions (user_id, started_at, memo, created_at)
		 VALUES ($1, $2, $3, COALESCE($4, now()))
		 RETURNING id, created_at`,
		session.UserID, session.StartedAt, nullString(session.Memo), nullTime(session.CreatedAt),
	).Scan(&session.ID, &session.CreatedAt)
	if isConstraintViolation(err, sqlStateUniqueViolation, oneOpenSessionIndex) {
		return ErrOpenSessionExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert study session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	session.CreatedAt = session.CreatedAt.UTC()
	return nil
}

// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
func (r *PostgresStudySessionRepo) FindByID(ctx context.Context, id int64) (*model.StudySession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+studySessionColumns+` FROM study_sessions WHERE id = $1`,
		id,
	)
	session, err := scanStudySession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find study session: %w", err)
	}
	return session, nil
}

// UpdateEndedAt は進行中セッションのended_atを設定する。
// WHERE句でended_at IS NULLを条件にするため、同時に終了された場合は
// 後勝ちにならずErrSessionClosedを返す。
func (r *PostgresStudySessionRepo) UpdateEndedAt(ctx context.Context, id int64, endedAt time.Time) (*model.StudySession, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE study_sessions SET ended_at = $2
		 WHERE id = $1 AND ended_at IS NULL
		 RETURNING `+studySessionColumns,
		id, endedAt,
	)
	session, err := scanStudySession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionClosed
	}
	if isConstraintViolation(err, sqlStateCheckViolation, startedBeforeEndCheck) {
		return nil, ErrInvalidTimeRange
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update ended_at: %w", err)
	}
	return session, nil
}

// List はユーザーのセッションをfilterで絞り込み、started_at降順で返す。
func (r *PostgresStudySessionRepo) List(ctx context.Context, userID string, filter model.SessionFilter) ([]*model.StudySession, error) {
	conds := []string{"user_id = $1"}
	args := []any{userID}

	switch filter.Status {
	case model.SessionStatusActive:
		conds = append(conds, "ended_at IS NULL")
	case model.SessionStatusClosed:
		conds = append(conds, "ended_at IS NOT NULL")
	}

	if filter.StartFrom != nil {
		args = append(args, *filter.StartFrom)
		conds = append(conds, fmt.Sprintf("started_at >= $%d", len(args)))
	}
	if filter.StartTo != nil {
		args = append(args, *filter.StartTo)
		conds = append(conds, fmt.Sprintf("started_at <= $%d", len(args)))
	}

	query := `SELECT ` + studySessionColumns + ` FROM study_sessions
		 WHERE ` + strings.Join(conds, " AND ") + `
		 ORDER BY started_at DESC, id DESC`

	return r.query(ctx, query, args...)
}

// ListClosedOverlapping は [from, to) と重なる終了済みセッションを返す。
func (r *PostgresStudySessionRepo) ListClosedOverlapping(ctx context.Context, userID string, from, to time.Time) ([]*model.StudySession, error) {
	return r.query(ctx,
		`SELECT `+studySessionColumns+` FROM study_sessions
		 WHERE user_id = $1
		   AND ended_at IS NOT NULL
		   AND started_at < $3
		   AND ended_at > $2
		 ORDER BY started_at, id`,
		userID, from, to,
	)
}

// DeleteByID は指定IDのセッションを削除する。存在しない場合はErrNotFoundを返す。
func (r *PostgresStudySessionRepo) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM study_sessions WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete study session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresStudySessionRepo) query(ctx context.Context, query string, args ...any) ([]*model.StudySession, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query study sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.StudySession
	for rows.Next() {
		session, err := scanStudySession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan study session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate study sessions: %w", err)
	}

	return sessions, nil
}

// scanStudySession は1行をmodel.StudySessionに変換する。
// PostgreSQLから返るtimestamptzはセッションのタイムゾーンを持つため、UTCに正規化する。
func scanStudySession(row rowScanner) (*model.StudySession, error) {
	var (
		s       model.StudySession
		endedAt sql.NullTime
		memo    sql.NullString
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.StartedAt, &endedAt, &memo, &s.CreatedAt); err != nil {
		return nil, err
	}

	s.StartedAt = s.StartedAt.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	if endedAt.Valid {
		t := endedAt.Time.UTC()
		s.EndedAt = &t
	}
	if memo.Valid {
		m := memo.String
		s.Memo = &m
	}
	return &s, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullTime はゼロ値の時刻をNULLとして扱う。
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// compile-time interface check
var _ StudySessionRepository = (*PostgresStudySessionRepo)(nil)
