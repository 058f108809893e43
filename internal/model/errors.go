// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"time"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, conflict, friend, system
	Action   string // ユーザー向け対処方法

	// RetryAfter はRATE_LIMITEDで再試行可能になるまでの待機時間。
	// HTTP層でRetry-Afterヘッダーに変換される。レスポンスボディには含めない。
	RetryAfter time.Duration
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEmptyUserID        = "EMPTY_USER_ID"
	ErrCodeInvalidPassword    = "INVALID_PASSWORD"
	ErrCodeUserExists         = "USER_EXISTS"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidDate        = "INVALID_DATE"
	ErrCodeSelfRequest        = "SELF_REQUEST"
	ErrCodeAlreadyFriends     = "ALREADY_FRIENDS"
	ErrCodeReciprocalPending  = "RECIPROCAL_PENDING"
	ErrCodeDuplicateRequest   = "DUPLICATE_REQUEST"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeBackendUnavailable = "BACKEND_UNAVAILABLE"
)

// NewEmptyUserIDError はユーザーIDが空の場合のエラーを生成する。
func NewEmptyUserIDError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyUserID,
		Message:  "ユーザーIDが指定されていません。",
		Category: "validation",
		Action:   "ユーザーIDを入力してください。",
	}
}

// NewInvalidPasswordError はパスワードポリシー違反のエラーを生成する。
func NewInvalidPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPassword,
		Message:  "パスワードは6文字以上で、英字を1文字以上含む必要があります。",
		Category: "validation",
		Action:   "条件を満たすパスワードを入力してください。",
	}
}

// NewUserExistsError は登録済みIDの再登録エラーを生成する。
func NewUserExistsError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserExists,
		Message:  fmt.Sprintf("このユーザーIDは既に使用されています: %s", userID),
		Category: "conflict",
		Action:   "別のユーザーIDを指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "auth",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewInvalidCredentialsError は認証失敗のエラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "ユーザーIDまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "ユーザーIDとパスワードを確認して再度お試しください。",
	}
}

// NewInvalidDateError は日付パラメータ不正のエラーを生成する。
func NewInvalidDateError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("無効な日付指定です: %s", reason),
		Category: "validation",
		Action:   "日付をYYYY-MM-DD形式で指定してください。",
	}
}

// NewSelfRequestError は自分自身への友達申請エラーを生成する。
func NewSelfRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfRequest,
		Message:  "自分自身に友達申請を送ることはできません。",
		Category: "validation",
		Action:   "他のユーザーを指定してください。",
	}
}

// NewAlreadyFriendsError は既に友達関係にある場合のエラーを生成する。
func NewAlreadyFriendsError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyFriends,
		Message:  fmt.Sprintf("既に友達です: %s", userID),
		Category: "conflict",
		Action:   "友達一覧を確認してください。",
	}
}

// NewReciprocalPendingError は相手からの申請が保留中の場合のエラーを生成する。
func NewReciprocalPendingError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeReciprocalPending,
		Message:  fmt.Sprintf("相手から既に友達申請が届いています: %s", userID),
		Category: "validation",
		Action:   "保留中の申請を承認してください。",
	}
}

// NewDuplicateRequestError は重複した友達申請のエラーを生成する。
func NewDuplicateRequestError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateRequest,
		Message:  fmt.Sprintf("このユーザーには既に友達申請を送信済みです: %s", userID),
		Category: "validation",
		Action:   "相手の承認をお待ちください。",
	}
}

// NewRateLimitedError は友達申請のクールダウン中エラーを生成する。
// retryAfterには再試行可能になるまでの残り時間を渡す。
func NewRateLimitedError(retryAfter time.Duration) *APIError {
	return &APIError{
		Code:       ErrCodeRateLimited,
		Message:    "同じユーザーへの友達申請の間隔が短すぎます。",
		Category:   "system",
		Action:     "しばらく待ってから再度お試しください。",
		RetryAfter: retryAfter,
	}
}

// NewForbiddenError は権限不足のエラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を実行する権限がありません。",
		Category: "auth",
		Action:   "管理者アカウントでログインしてください。",
	}
}

// NewBackendUnavailableError は共有ストアとの通信失敗エラーを生成する。
// ストア障害は現在の操作の致命的な失敗として扱い、自動リトライしない。
func NewBackendUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeBackendUnavailable,
		Message:  "共有ストアとの通信に失敗しました。",
		Category: "system",
		Action:   "ストアが復旧してから再度お試しください。",
	}
}
