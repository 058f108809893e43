package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/meetman/internal/metrics"
	"github.com/hitoshi/meetman/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Sessions          SessionManager
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string
	BaseURL           string

	// サービス
	AccountService      AccountServiceInterface
	AvailabilityService AvailabilityServiceInterface
	FriendshipService   FriendshipServiceInterface

	// 管理者
	UserRecordLister UserRecordLister
	AdminUserID      string

	// 運用
	HealthChecker   HealthChecker
	MetricsGatherer prometheus.Gatherer
	AuthConfig      AuthHandlerConfig
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → OriginCheck → Logging →（認証ルート）Session → RateLimit
//
// 認証ルート（/auth/*）、/health、/metricsはセッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewOriginCheckMiddleware(deps.CORSAllowedOrigin, deps.BaseURL))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))

	authHandler := NewAuthHandler(deps.AccountService, deps.Sessions, deps.AuthConfig)
	availHandler := NewAvailabilityHandler(deps.AvailabilityService, deps.FriendshipService)
	friendHandler := NewFriendHandler(deps.FriendshipService)
	adminHandler := NewAdminHandler(deps.UserRecordLister, deps.AdminUserID)

	// --- 認証不要のルート ---

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	r.Get("/health", newHealthHandler(deps.HealthChecker))

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.Sessions))
		r.Use(deps.RateLimiter.Middleware())

		// 可用日管理
		r.Route("/api/availability", func(r chi.Router) {
			r.Put("/", availHandler.SetAvailability)
			r.Get("/search", availHandler.Search)
		})

		// 友達管理
		r.Route("/api/friends", func(r chi.Router) {
			r.Get("/", friendHandler.ListFriends)

			r.Route("/requests", func(r chi.Router) {
				r.Get("/", friendHandler.ListPendingRequests)
				r.Post("/", friendHandler.SendRequest)
				r.Post("/{requester}", friendHandler.Respond)
			})
		})

		// 管理者
		r.Get("/api/admin/users", adminHandler.ListAllUsers)
	})

	return r
}

// newHealthHandler はストアへの到達性を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				middleware.WriteBackendUnavailable(w)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
