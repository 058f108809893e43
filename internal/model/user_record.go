// Package model はドメインモデルを定義する。
package model

// UserRecord は共有ストアの1行に対応する登録済みアカウントを表す。
// 3つのコレクションはストア境界でのみカンマ区切り文字列にシリアライズされ、
// プロセス内では集合として扱う。
type UserRecord struct {
	UserID         string
	Password       string
	AvailableDates StringSet
	Friends        StringSet
	FriendRequests StringSet
}

// NewUserRecord は空のコレクションを持つUserRecordを生成する。
func NewUserRecord(userID, password string) *UserRecord {
	return &UserRecord{
		UserID:         userID,
		Password:       password,
		AvailableDates: NewStringSet(),
		Friends:        NewStringSet(),
		FriendRequests: NewStringSet(),
	}
}

// Clone はUserRecordのディープコピーを返す。
func (r *UserRecord) Clone() *UserRecord {
	return &UserRecord{
		UserID:         r.UserID,
		Password:       r.Password,
		AvailableDates: r.AvailableDates.Clone(),
		Friends:        r.Friends.Clone(),
		FriendRequests: r.FriendRequests.Clone(),
	}
}
