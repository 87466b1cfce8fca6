package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/studytracker/internal/middleware"
	"github.com/hitoshi/studytracker/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	StatusRecorder    middleware.StatusRecorder

	// ヘルスチェック・メトリクス
	AppName        string
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// ドメインサービス
	UserService    UserServiceInterface
	SessionService SessionServiceInterface
	StatsService   StatsServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → RealIP → Recovery → Logging → Metrics → SecurityHeaders → CORS
//
// /api/* にはさらにRateLimit(General)を適用し、セッション開始・終了にはRateLimit(Write)を追加する。
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteAPIError(w, &model.APIError{
			Kind:     model.KindNotFound,
			Code:     "ROUTE_NOT_FOUND",
			Message:  "エンドポイントが見つかりません。",
			Category: "system",
			Action:   "URLを確認してください。",
		})
	})

	healthHandler := NewHealthHandler(deps.HealthChecker, deps.AppName)
	userHandler := NewUserHandler(deps.UserService)
	sessionHandler := NewSessionHandler(deps.SessionService)
	statsHandler := NewStatsHandler(deps.StatsService)

	// --- レート制限対象外 ---
	r.Get("/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Get("/health", healthHandler.Health)

		// ユーザー管理
		r.Post("/users", userHandler.CreateUser)

		r.Route("/users/{user_id}", func(r chi.Router) {
			r.Get("/", userHandler.GetUser)
			r.Delete("/", userHandler.DeleteUser)

			// 学習セッション
			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", sessionHandler.ListSessions)

				r.Group(func(r chi.Router) {
					if deps.RateLimiter != nil {
						r.Use(deps.RateLimiter.WriteMiddleware())
					}
					r.Post("/start", sessionHandler.StartSession)
					r.Post("/{session_id}/stop", sessionHandler.StopSession)
				})

				r.Delete("/{session_id}", sessionHandler.DeleteSession)
			})

			// 統計
			r.Get("/stats/daily", statsHandler.Daily)
			r.Get("/stats/weekly", statsHandler.Weekly)
		})
	})

	return r
}
