package store

import (
	"context"
	"sync"
)

// MemoryTableStore はテスト・ローカル開発用のインメモリ実装。
// 行は欠落列を含んだまま保持できるため、
// 旧スキーマ由来のデータに対する正規化の検証にも使用する。
type MemoryTableStore struct {
	mu   sync.RWMutex
	rows []Row
}

// NewMemoryTableStore は空のMemoryTableStoreを生成する。
func NewMemoryTableStore() *MemoryTableStore {
	return &MemoryTableStore{rows: []Row{}}
}

// Seed は初期データを直接投入する。テスト用。
func (s *MemoryTableStore) Seed(rows []Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = cloneRows(rows)
}

// ReadAllRows は全行のコピーを挿入順で返す。
func (s *MemoryTableStore) ReadAllRows(ctx context.Context) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRows(s.rows), nil
}

// ReplaceAllRows は全行を置き換える。
func (s *MemoryTableStore) ReplaceAllRows(ctx context.Context, rows []Row, columnOrder []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = cloneRows(rows)
	return nil
}

// cloneRows は行スライスのディープコピーを返す。
// 呼び出し側の変更がストア内部に波及しないようにする。
func cloneRows(rows []Row) []Row {
	cloned := make([]Row, len(rows))
	for i, row := range rows {
		cloned[i] = row.Clone()
	}
	return cloned
}

// compile-time interface check
var _ TableStore = (*MemoryTableStore)(nil)
