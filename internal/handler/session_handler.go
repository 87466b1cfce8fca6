package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/studytracker/internal/model"
	"github.com/hitoshi/studytracker/internal/studysession"
)

// SessionServiceInterface は学習セッションハンドラーが必要とするサービスインターフェース。
type SessionServiceInterface interface {
	// Start は進行中セッションを作成する。
	Start(ctx context.Context, userID string, in studysession.StartInput) (*model.StudySession, error)
	// Stop は進行中セッションを終了する。
	Stop(ctx context.Context, userID string, sessionID int64, in studysession.StopInput) (*model.StudySession, error)
	// List はセッション一覧をstarted_at降順で返す。
	List(ctx context.Context, userID string, in studysession.ListInput) ([]*model.StudySession, error)
	// Delete はセッションを削除する。
	Delete(ctx context.Context, userID string, sessionID int64) error
}

// SessionHandler は学習セッションのHTTPハンドラー。
type SessionHandler struct {
	service SessionServiceInterface
}

// NewSessionHandler はSessionHandlerを生成する。
func NewSessionHandler(service SessionServiceInterface) *SessionHandler {
	return &SessionHandler{
		service: service,
	}
}

// startSessionRequest はセッション開始リクエストのボディ。
// 日時はUTCオフセット付きの文字列で受け取り、サービス層で検証する。
type startSessionRequest struct {
	StartedAt *string `json:"started_at"`
	Memo      *string `json:"memo"`
}

// stopSessionRequest はセッション終了リクエストのボディ。
type stopSessionRequest struct {
	EndedAt *string `json:"ended_at"`
}

// StartSession はセッションを開始する。
// POST /api/users/{user_id}/sessions/start
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	in := studysession.StartInput{Memo: req.Memo}
	if req.StartedAt != nil {
		in.StartedAt = *req.StartedAt
	}

	session, err := h.service.Start(r.Context(), chi.URLParam(r, "user_id"), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// StopSession はセッションを終了する。
// POST /api/users/{user_id}/sessions/{session_id}/stop
func (h *SessionHandler) StopSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseSessionID(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	var req stopSessionRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	var in studysession.StopInput
	if req.EndedAt != nil {
		in.EndedAt = *req.EndedAt
	}

	session, err := h.service.Stop(r.Context(), chi.URLParam(r, "user_id"), sessionID, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// ListSessions はセッション一覧を取得する。
// GET /api/users/{user_id}/sessions?from=...&to=...&status=active|closed|all
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessions, err := h.service.List(r.Context(), chi.URLParam(r, "user_id"), studysession.ListInput{
		From:   q.Get("from"),
		To:     q.Get("to"),
		Status: q.Get("status"),
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteSession はセッションを削除する。
// DELETE /api/users/{user_id}/sessions/{session_id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseSessionID(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "user_id"), sessionID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseSessionID はパスのsession_idを整数として解釈する。
func parseSessionID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "session_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, model.NewInvalidRequestError("session_idは整数で指定してください: " + raw)
	}
	return id, nil
}
