// Package store は共有テーブルストアへの境界を定義する。
// ストアは「全行読み出し・全行書き換え」のみを提供し、
// 部分更新のプリミティブは存在しない。
package store

import "context"

// 共有ストアの列名。列順は固定。
const (
	ColUserID         = "user_id"
	ColPassword       = "password"
	ColAvailableDates = "available_dates"
	ColFriends        = "friends"
	ColFriendRequests = "friend_requests"
)

// Columns はストアの固定列順を返す。
func Columns() []string {
	return []string{ColUserID, ColPassword, ColAvailableDates, ColFriends, ColFriendRequests}
}

// Row はテーブルの1行を列名→値のマッピングとして表す。
// 古いスキーマ由来の行では一部の列が欠落していることがある。
type Row map[string]string

// Clone はRowのコピーを返す。
func (r Row) Clone() Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// TableStore は共有テーブルストアへの読み書きインターフェース。
// ReplaceAllRowsは呼び出し側から見てアトミックなclear-then-writeであり、
// 並行する書き込み同士はlast-writer-winsで競合する。
type TableStore interface {
	// ReadAllRows はテーブル全行を挿入順で返す。0行の場合は空スライスを返す。
	ReadAllRows(ctx context.Context) ([]Row, error)

	// ReplaceAllRows はテーブル全体を指定された行と列順で書き換える。
	ReplaceAllRows(ctx context.Context, rows []Row, columnOrder []string) error
}
