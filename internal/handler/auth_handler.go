package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/meetman/internal/middleware"
	"github.com/hitoshi/meetman/internal/model"
	"github.com/hitoshi/meetman/internal/session"
)

// AccountServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	Register(ctx context.Context, userID, password string) error
	Authenticate(ctx context.Context, userID, password string) (bool, error)
}

// SessionManager はセッションの発行・検索・破棄のインターフェース。
// session.Storeの部分集合として定義する。
type SessionManager interface {
	Create(userID string) *session.Session
	Find(id string) *session.Session
	Delete(id string)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はアカウント登録・ログイン関連のHTTPハンドラー。
type AuthHandler struct {
	service  AccountServiceInterface
	sessions SessionManager
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AccountServiceInterface, sessions SessionManager, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		config:   config,
	}
}

// credentialsRequest は登録・ログイン共通のリクエストボディ。
type credentialsRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// Register は新規アカウントを登録する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "user_idとpasswordをJSONで指定してください。",
		})
		return
	}

	if err := h.service.Register(r.Context(), req.UserID, req.Password); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"user_id": req.UserID})
}

// Login は認証に成功した場合にセッションを発行し、HTTP Only Cookieを設定する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "user_idとpasswordをJSONで指定してください。",
		})
		return
	}

	ok, err := h.service.Authenticate(r.Context(), req.UserID, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !ok {
		handleServiceError(w, model.NewInvalidCredentialsError())
		return
	}

	sess := h.sessions.Create(req.UserID)

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"user_id": req.UserID})
}

// Logout はセッションを破棄し、セッションCookieを無効化する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		h.sessions.Delete(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のログインユーザーを返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeUnauthorized(w)
		return
	}

	sess := h.sessions.Find(cookie.Value)
	if sess == nil {
		writeUnauthorized(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"user_id": sess.UserID})
}
