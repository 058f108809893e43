package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/meetman/internal/middleware"
	"github.com/hitoshi/meetman/internal/model"
)

// FriendshipServiceInterface は友達ハンドラーが必要とするサービスインターフェース。
type FriendshipServiceInterface interface {
	SendRequest(ctx context.Context, from, to string) error
	Respond(ctx context.Context, userID, requester string, accept bool) error
	ListFriends(ctx context.Context, userID string) (model.StringSet, error)
	ListPendingRequests(ctx context.Context, userID string) (model.StringSet, error)
}

// FriendHandler は友達関係管理のHTTPハンドラー。
type FriendHandler struct {
	service FriendshipServiceInterface
}

// NewFriendHandler はFriendHandlerを生成する。
func NewFriendHandler(service FriendshipServiceInterface) *FriendHandler {
	return &FriendHandler{service: service}
}

// sendRequestBody は友達申請のリクエストボディ。
type sendRequestBody struct {
	TargetID string `json:"target_id"`
}

// SendRequest はログインユーザーから指定ユーザーへの友達申請を送信する。
// POST /api/friends/requests
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req sendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TargetID == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "target_idをJSONで指定してください。",
		})
		return
	}

	if err := h.service.SendRequest(r.Context(), userID, req.TargetID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// respondBody は友達申請への応答のリクエストボディ。
type respondBody struct {
	Accept bool `json:"accept"`
}

// Respond は保留中の友達申請を承認または拒否する。
// POST /api/friends/requests/{requester}
func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	requester := chi.URLParam(r, "requester")
	if requester == "" {
		handleServiceError(w, model.NewEmptyUserIDError())
		return
	}

	var req respondBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "acceptを真偽値で指定してください。",
		})
		return
	}

	if err := h.service.Respond(r.Context(), userID, requester, req.Accept); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListFriends はログインユーザーの確定済み友達一覧を返す。
// GET /api/friends
func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	friends, err := h.service.ListFriends(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"friends": friends.Values()})
}

// ListPendingRequests はログインユーザー宛の保留中申請一覧を返す。
// GET /api/friends/requests
func (h *FriendHandler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	requests, err := h.service.ListPendingRequests(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"requests": requests.Values()})
}
