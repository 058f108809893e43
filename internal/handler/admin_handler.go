package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/meetman/internal/middleware"
	"github.com/hitoshi/meetman/internal/model"
)

// UserRecordLister は全ユーザーレコードの読み出しインターフェース。
// repository.UserRecordRepositoryの部分集合として定義する。
type UserRecordLister interface {
	LoadAll(ctx context.Context) ([]*model.UserRecord, error)
}

// AdminHandler は管理者向けのHTTPハンドラー。
type AdminHandler struct {
	lister      UserRecordLister
	adminUserID string
}

// NewAdminHandler はAdminHandlerを生成する。
// adminUserIDに一致するログインユーザーのみが管理者操作を実行できる。
func NewAdminHandler(lister UserRecordLister, adminUserID string) *AdminHandler {
	return &AdminHandler{
		lister:      lister,
		adminUserID: adminUserID,
	}
}

// adminUserView は管理者向けユーザー一覧の1件分。資格情報は含めない。
type adminUserView struct {
	UserID         string   `json:"user_id"`
	AvailableDates []string `json:"available_dates"`
	Friends        []string `json:"friends"`
	FriendRequests []string `json:"friend_requests"`
}

// ListAllUsers は全ユーザーレコードをテーブル順で返す。
// 設定された管理者IDでログインしている場合のみ実行できる。
// GET /api/admin/users
func (h *AdminHandler) ListAllUsers(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if userID != h.adminUserID {
		handleServiceError(w, model.NewForbiddenError())
		return
	}

	records, err := h.lister.LoadAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	users := make([]adminUserView, len(records))
	for i, record := range records {
		users[i] = adminUserView{
			UserID:         record.UserID,
			AvailableDates: record.AvailableDates.Values(),
			Friends:        record.Friends.Values(),
			FriendRequests: record.FriendRequests.Values(),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}
