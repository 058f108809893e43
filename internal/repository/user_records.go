// Package repository は共有ストア上のUserRecord永続化を提供する。
//
// ストアには部分更新のプリミティブが存在しないため、
// すべての変更は「全件ロード→コピーを変更→全件セーブ」のパターンで行う。
// 並行する書き込み同士はlast-writer-winsで競合し、失われた更新は検出されない。
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/meetman/internal/model"
	"github.com/hitoshi/meetman/internal/store"
)

// UserRecordRepository はUserRecord永続化のインターフェース。
type UserRecordRepository interface {
	// LoadAll は全UserRecordをテーブル順で返す。0件の場合は空スライスを返す。
	LoadAll(ctx context.Context) ([]*model.UserRecord, error)

	// SaveAll は全UserRecordをテーブル全体の書き換えとして永続化する。
	SaveAll(ctx context.Context, records []*model.UserRecord) error
}

// MetricsRecorder はストア操作のメトリクス収集インターフェース。
type MetricsRecorder interface {
	RecordStoreLoad(duration time.Duration)
	RecordStoreSave(duration time.Duration)
	RecordStoreFault(op string)
	RecordCacheHit()
}

// AdapterConfig はStoreAdapterの設定。
type AdapterConfig struct {
	// CacheTTL はLoadAll結果の読み取りキャッシュ有効期間。0で無効。
	CacheTTL time.Duration
	// Metrics はメトリクス収集。nilの場合は収集しない。
	Metrics MetricsRecorder
}

// StoreAdapter はTableStoreの行表現とUserRecordを相互変換するアダプタ。
// 欠落列は空文字列として正規化する。
// CacheTTLが設定されている場合、LoadAllは短命の読み取りキャッシュを使用し、
// 同一プロセスからのSaveAllで即座に無効化する。
type StoreAdapter struct {
	table   store.TableStore
	config  AdapterConfig
	now     func() time.Time

	mu       sync.Mutex
	cached   []store.Row
	cachedAt time.Time
}

// NewStoreAdapter はStoreAdapterを生成する。
func NewStoreAdapter(table store.TableStore, config AdapterConfig) *StoreAdapter {
	return &StoreAdapter{
		table:  table,
		config: config,
		now:    time.Now,
	}
}

// LoadAll は全行を読み出し、UserRecordにデコードして返す。
// ストア障害はBACKEND_UNAVAILABLEとして返し、リトライしない。
func (a *StoreAdapter) LoadAll(ctx context.Context) ([]*model.UserRecord, error) {
	rows, err := a.readRows(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]*model.UserRecord, len(rows))
	for i, row := range rows {
		records[i] = decodeRecord(row)
	}
	return records, nil
}

// SaveAll は全UserRecordを固定列順でシリアライズし、テーブル全体を書き換える。
// 成功・失敗にかかわらず読み取りキャッシュを無効化する。
func (a *StoreAdapter) SaveAll(ctx context.Context, records []*model.UserRecord) error {
	rows := make([]store.Row, len(records))
	for i, record := range records {
		rows[i] = encodeRecord(record)
	}

	start := a.now()
	err := a.table.ReplaceAllRows(ctx, rows, store.Columns())

	a.invalidateCache()

	if err != nil {
		slog.Error("store rewrite failed", slog.String("error", err.Error()))
		if a.config.Metrics != nil {
			a.config.Metrics.RecordStoreFault("save")
		}
		return fmt.Errorf("%w: %v", model.NewBackendUnavailableError(), err)
	}

	if a.config.Metrics != nil {
		a.config.Metrics.RecordStoreSave(a.now().Sub(start))
	}
	return nil
}

// readRows はキャッシュが有効ならキャッシュから、そうでなければストアから行を読む。
func (a *StoreAdapter) readRows(ctx context.Context) ([]store.Row, error) {
	if a.config.CacheTTL > 0 {
		a.mu.Lock()
		if a.cached != nil && a.now().Sub(a.cachedAt) < a.config.CacheTTL {
			rows := a.cached
			a.mu.Unlock()
			if a.config.Metrics != nil {
				a.config.Metrics.RecordCacheHit()
			}
			return rows, nil
		}
		a.mu.Unlock()
	}

	start := a.now()
	rows, err := a.table.ReadAllRows(ctx)
	if err != nil {
		slog.Error("store read failed", slog.String("error", err.Error()))
		if a.config.Metrics != nil {
			a.config.Metrics.RecordStoreFault("load")
		}
		return nil, fmt.Errorf("%w: %v", model.NewBackendUnavailableError(), err)
	}

	if a.config.Metrics != nil {
		a.config.Metrics.RecordStoreLoad(a.now().Sub(start))
	}

	if a.config.CacheTTL > 0 {
		a.mu.Lock()
		a.cached = rows
		a.cachedAt = a.now()
		a.mu.Unlock()
	}

	return rows, nil
}

// invalidateCache は読み取りキャッシュを破棄する。
// SaveAll後に同一プロセス内の読み取りが古いデータを観測しないようにする。
func (a *StoreAdapter) invalidateCache() {
	a.mu.Lock()
	a.cached = nil
	a.mu.Unlock()
}

// decodeRecord は1行をUserRecordにデコードする。
// 欠落列はRowのゼロ値（空文字列）として読み取られ、空集合に正規化される。
func decodeRecord(row store.Row) *model.UserRecord {
	return &model.UserRecord{
		UserID:         row[store.ColUserID],
		Password:       row[store.ColPassword],
		AvailableDates: model.DecodeStringSet(row[store.ColAvailableDates]),
		Friends:        model.DecodeStringSet(row[store.ColFriends]),
		FriendRequests: model.DecodeStringSet(row[store.ColFriendRequests]),
	}
}

// encodeRecord はUserRecordを1行にシリアライズする。
func encodeRecord(record *model.UserRecord) store.Row {
	return store.Row{
		store.ColUserID:         record.UserID,
		store.ColPassword:       record.Password,
		store.ColAvailableDates: record.AvailableDates.Encode(),
		store.ColFriends:        record.Friends.Encode(),
		store.ColFriendRequests: record.FriendRequests.Encode(),
	}
}

// compile-time interface check
var _ UserRecordRepository = (*StoreAdapter)(nil)
