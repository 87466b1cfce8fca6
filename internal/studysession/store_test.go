package studysession

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/studytracker/internal/model"
	"github.com/hitoshi/studytracker/internal/repository"
)

// memStore はPostgres実装と同じ振る舞いをするインメモリのストア。
type memStore struct {
	mu       sync.Mutex
	users    map[string]*model.User
	sessions map[int64]*model.StudySession
	nextID   int64

	// エラー注入用
	countErr error
}

func newMemStore(userIDs ...string) *memStore {
	s := &memStore{
		users:    map[string]*model.User{},
		sessions: map[int64]*model.StudySession{},
	}
	for _, id := range userIDs {
		s.users[id] = &model.User{ID: id, Email: id + "@example.com"}
	}
	return s
}

func (s *memStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

// sessionRepo はStudySessionRepositoryとしてのビューを返す。
// FindByIDがユーザー検索と衝突するため型を分けている。
func (s *memStore) sessionRepo() *memSessionRepo {
	return &memSessionRepo{s}
}

type memSessionRepo struct {
	*memStore
}

var _ repository.StudySessionRepository = (*memSessionRepo)(nil)

func (r *memSessionRepo) CountOpenByUserID(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	return r.countOpen(userID), nil
}

func (r *memSessionRepo) countOpen(userID string) int {
	n := 0
	for _, ss := range r.sessions {
		if ss.UserID == userID && ss.EndedAt == nil {
			n++
		}
	}
	return n
}

func (r *memSessionRepo) CreateOpen(ctx context.Context, session *model.StudySession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[session.UserID]; !ok {
		return repository.ErrNotFound
	}
	if r.countOpen(session.UserID) > 0 {
		return repository.ErrOpenSessionExists
	}
	r.nextID++
	session.ID = r.nextID
	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *memSessionRepo) FindByID(ctx context.Context, id int64) (*model.StudySession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ss, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *ss
	return &cp, nil
}

func (r *memSessionRepo) UpdateEndedAt(ctx context.Context, id int64, endedAt time.Time) (*model.StudySession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ss, ok := r.sessions[id]
	if !ok || ss.EndedAt != nil {
		return nil, repository.ErrSessionClosed
	}
	if !ss.StartedAt.Before(endedAt) {
		return nil, repository.ErrInvalidTimeRange
	}
	ss.EndedAt = &endedAt
	cp := *ss
	return &cp, nil
}

func (r *memSessionRepo) List(ctx context.Context, userID string, filter model.SessionFilter) ([]*model.StudySession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.StudySession
	for _, ss := range r.sessions {
		if ss.UserID != userID {
			continue
		}
		switch filter.Status {
		case model.SessionStatusActive:
			if ss.EndedAt != nil {
				continue
			}
		case model.SessionStatusClosed:
			if ss.EndedAt == nil {
				continue
			}
		}
		if filter.StartFrom != nil && ss.StartedAt.Before(*filter.StartFrom) {
			continue
		}
		if filter.StartTo != nil && ss.StartedAt.After(*filter.StartTo) {
			continue
		}
		cp := *ss
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

func (r *memSessionRepo) ListClosedOverlapping(ctx context.Context, userID string, from, to time.Time) ([]*model.StudySession, error) {
	return nil, nil
}

func (r *memSessionRepo) DeleteByID(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

// spyMetrics は記録内容を保持するMetricsCollector。
type spyMetrics struct {
	started  int
	stopped  []time.Duration
	deleted  int
	rejected []string
}

func (m *spyMetrics) RecordSessionStarted() { m.started++ }
func (m *spyMetrics) RecordSessionStopped(d time.Duration) { m.stopped = append(m.stopped, d) }
func (m *spyMetrics) RecordSessionDeleted() { m.deleted++ }
func (m *spyMetrics) RecordRejected(operation, kind string) { m.rejected = append(m.rejected, operation+"/"+kind) }
func (m *spyMetrics) RecordStatsQuery(string, time.Duration) {}
func (m *spyMetrics) RecordHTTPStatus(int) {}
