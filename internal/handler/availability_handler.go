package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/meetman/internal/middleware"
	"github.com/hitoshi/meetman/internal/model"
)

// AvailabilityServiceInterface は可用日ハンドラーが必要とするサービスインターフェース。
type AvailabilityServiceInterface interface {
	SetAvailability(ctx context.Context, userID string, dates model.StringSet) error
	FindAvailableOnDates(ctx context.Context, dates []string, excluding string, scope model.StringSet) (map[string][]string, error)
}

// FriendLister は友達スコープの解決に必要なインターフェース。
type FriendLister interface {
	ListFriends(ctx context.Context, userID string) (model.StringSet, error)
}

// AvailabilityHandler は可用日管理のHTTPハンドラー。
type AvailabilityHandler struct {
	service AvailabilityServiceInterface
	friends FriendLister
}

// NewAvailabilityHandler はAvailabilityHandlerを生成する。
func NewAvailabilityHandler(service AvailabilityServiceInterface, friends FriendLister) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		friends: friends,
	}
}

// setAvailabilityRequest は可用日更新のリクエストボディ。
type setAvailabilityRequest struct {
	Dates []string `json:"dates"`
}

// SetAvailability はログインユーザーの可用日集合を全置換する。
// PUT /api/availability
func (h *AvailabilityHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req setAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "datesを文字列配列で指定してください。",
		})
		return
	}

	if err := h.service.SetAvailability(r.Context(), userID, model.NewStringSet(req.Dates...)); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Search は指定日に空いている他のユーザーを検索する。
// friends_only=trueの場合、ログインユーザーの友達のみを対象とする。
// GET /api/availability/search?date=2025-06-01&dates=2025-06-02,2025-06-03&friends_only=true
func (h *AvailabilityHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	dates := parseDatesQuery(r)
	if len(dates) == 0 {
		handleServiceError(w, model.NewInvalidDateError("日付が指定されていません"))
		return
	}

	var scope model.StringSet
	if r.URL.Query().Get("friends_only") == "true" {
		scope, err = h.friends.ListFriends(r.Context(), userID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
	}

	results, err := h.service.FindAvailableOnDates(r.Context(), dates, userID, scope)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// parseDatesQuery はdateおよびdatesクエリパラメータから日付リストを組み立てる。
// datesはカンマ区切りで複数指定できる。重複は除去し、指定順は保持する。
func parseDatesQuery(r *http.Request) []string {
	raw := []string{r.URL.Query().Get("date")}
	raw = append(raw, strings.Split(r.URL.Query().Get("dates"), ",")...)

	seen := make(map[string]struct{})
	dates := []string{}
	for _, d := range raw {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	return dates
}
